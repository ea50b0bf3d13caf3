package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/opwatch/config"
)

// validateCmd validates a config file without contacting any API.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate an opwatch configuration file without making any requests.

This command parses the YAML, expands environment variables, and validates
all fields. It's useful for CI/CD pipelines or pre-deployment checks.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  opwatch validate -c config.yaml
  opwatch validate --config /etc/opwatch/config.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	timeout := "none"
	if !cfg.Poll.Timeout.Unbounded() {
		timeout = cfg.Poll.Timeout.Duration().String()
	}

	fmt.Printf("Config is valid!\n")
	fmt.Printf("  API base:        %s\n", cfg.APIBase)
	fmt.Printf("  Request timeout: %s\n", cfg.RequestTimeout.Duration())
	fmt.Printf("  Poll delay:      %s -> %s (x%g)\n",
		cfg.Poll.InitialDelay.Duration(), cfg.Poll.MaxDelay.Duration(), cfg.Poll.Multiplier)
	fmt.Printf("  Wait timeout:    %s\n", timeout)

	return nil
}
