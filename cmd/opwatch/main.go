// Package main is the entry point for the opwatch CLI.
//
// Opwatch can be used either as a library (SDK) or as a standalone binary
// for watching long-running operations. This CLI provides the standalone
// binary approach.
//
// Usage:
//
//	opwatch wait <operation-name> -c config.yaml     # Block until terminal
//	opwatch describe <operation-name> -c config.yaml # One status check
//	opwatch cancel <operation-name> -c config.yaml   # Remote cancel
//	opwatch validate -c config.yaml                  # Validate configuration
//	opwatch version                                  # Show version info
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/opwatch/config"
)

// Version information - set by GoReleaser at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
// It just displays help - actual functionality is in subcommands.
var rootCmd = &cobra.Command{
	Use:   "opwatch",
	Short: "Watch long-running operations until they finish",
	Long: `Opwatch polls long-running server-side operations until they reach a
terminal state: success, failure, timeout, or local cancellation.

Quick start:
  1. Create a config file (opwatch.yaml) pointing at your operations API
  2. Run: opwatch wait projects/p/operations/op-123 -c opwatch.yaml
  3. Press Ctrl+C at any time to stop watching (the operation keeps running)

Example config:
  api_base: https://example.googleapis.com/v1
  poll:
    initial_delay: 2s
    max_delay: 10s
    timeout: 10m`,
	// No Run/RunE means this just shows help when called without subcommands
}

// Execute runs the root command.
// This is the main entry point called from main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// newLogger creates a JSON logger for CLI use.
func newLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// addClientFlags registers the flags shared by commands that talk to the
// operations API.
func addClientFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("config", "c", "", "path to config file")
	cmd.Flags().String("api-base", "", "operations API root URL (overrides config)")
}

// resolveConfig builds the effective config from --config and --api-base.
// At least one of the two must be provided.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	configFile, _ := cmd.Flags().GetString("config")
	apiBase, _ := cmd.Flags().GetString("api-base")

	if configFile != "" {
		cfg, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		if apiBase != "" {
			cfg.APIBase = apiBase
		}
		return cfg, nil
	}

	if apiBase == "" {
		return nil, errors.New("either --config or --api-base is required")
	}
	return config.Default(apiBase)
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this opwatch binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("opwatch %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

func init() {
	// Register subcommands with root
	rootCmd.AddCommand(versionCmd)
}
