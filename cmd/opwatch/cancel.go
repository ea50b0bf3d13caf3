package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/opwatch/config"
	"github.com/jpalmerr/opwatch/lrohttp"
)

// cancelCmd asks the server to cancel an operation.
var cancelCmd = &cobra.Command{
	Use:   "cancel <operation-name>",
	Short: "Request server-side cancellation of an operation",
	Long: `Ask the server to cancel a long-running operation.

This is the explicit remote cancel. It is separate from interrupting
'opwatch wait' (Ctrl+C), which only stops watching. Cancellation is
best-effort: the server may have already finished the operation.

Example:
  opwatch cancel projects/p/locations/l/operations/op-123 -c config.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runCancel,
}

func init() {
	rootCmd.AddCommand(cancelCmd)
	addClientFlags(cancelCmd)
}

func runCancel(cmd *cobra.Command, args []string) error {
	name := args[0]
	if err := lrohttp.ValidateName(name); err != nil {
		return err
	}

	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	client, err := config.BuildClient(cfg)
	if err != nil {
		return fmt.Errorf("failed to build API client: %w", err)
	}
	defer client.Close()

	if err := client.CancelOperation(cmd.Context(), name); err != nil {
		return err
	}

	fmt.Printf("Cancellation requested for %s\n", name)
	fmt.Println("Confirm with: opwatch describe " + name)
	return nil
}
