package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/opwatch/config"
	"github.com/jpalmerr/opwatch/lrohttp"
)

// describeCmd performs a single status check and prints the operation.
var describeCmd = &cobra.Command{
	Use:   "describe <operation-name>",
	Short: "Show the current state of an operation",
	Long: `Fetch and print the current state of a long-running operation.

This performs exactly one status check; it never polls. Use it to inspect
an operation started with --async, or to check on a wait that timed out.

Example:
  opwatch describe projects/p/locations/l/operations/op-123 -c config.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runDescribe,
}

func init() {
	rootCmd.AddCommand(describeCmd)
	addClientFlags(describeCmd)
}

func runDescribe(cmd *cobra.Command, args []string) error {
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

	op, err := client.GetOperation(cmd.Context(), name)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(op, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to render operation: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
