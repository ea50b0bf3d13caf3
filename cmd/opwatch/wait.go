package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/opwatch"
	"github.com/jpalmerr/opwatch/config"
	"github.com/jpalmerr/opwatch/lrohttp"
)

// waitCmd blocks until an operation reaches a terminal state.
var waitCmd = &cobra.Command{
	Use:   "wait <operation-name>",
	Short: "Wait for an operation to finish",
	Long: `Wait for a long-running operation to reach a terminal state.

The command polls the operation's status with a capped exponential
backoff until it succeeds, fails, or the wait deadline expires.
Press Ctrl+C to stop watching: the operation keeps running server-side
and can be waited on again later.

Exit codes:
  0 - Operation succeeded
  1 - Operation failed, polling failed, timed out, or wait was cancelled

A timeout does NOT mean the operation failed; it may still complete.

With --async the command prints the operation name and returns
immediately without polling; check progress later with another
'opwatch wait' invocation.

Example:
  opwatch wait projects/p/locations/l/operations/op-123 -c config.yaml
  opwatch wait projects/p/locations/l/operations/op-123 -c config.yaml --timeout 5m
  opwatch wait projects/p/locations/l/operations/op-123 -c config.yaml --async`,
	Args: cobra.ExactArgs(1),
	RunE: runWait,
}

func init() {
	rootCmd.AddCommand(waitCmd)

	addClientFlags(waitCmd)
	waitCmd.Flags().Bool("async", false, "return immediately without polling")
	waitCmd.Flags().String("timeout", "", `wait deadline (e.g. "10m"), or "none" to wait forever`)
	waitCmd.Flags().String("progress-field", "", "metadata field to log on every poll (dot notation)")
}

func runWait(cmd *cobra.Command, args []string) error {
	logger := newLogger()
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

	policy := config.BuildPolicy(cfg)
	if timeoutFlag, _ := cmd.Flags().GetString("timeout"); timeoutFlag != "" {
		policy.Timeout, err = parseTimeoutFlag(timeoutFlag)
		if err != nil {
			return err
		}
	}

	poller, err := buildPoller(cmd, cfg, client, logger)
	if err != nil {
		return err
	}

	handle := &opwatch.Operation{Name: name}

	// --async: hand the handle straight back, no polling
	if async, _ := cmd.Flags().GetBool("async"); async {
		handle = poller.Async(handle)
		logger.Info("not waiting for operation",
			"operation", handle.Name,
			"check_later_with", "opwatch wait "+handle.Name,
		)
		fmt.Println(handle.Name)
		return nil
	}

	logger.Info("waiting for operation",
		"operation", name,
		"initial_delay", policy.InitialDelay.String(),
		"max_delay", policy.MaxDelay.String(),
	)

	// stop watching on SIGINT/SIGTERM; the remote operation is unaffected
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, err := poller.Wait(ctx, handle, policy)
	if err != nil {
		return fmt.Errorf("polling failed: %w", err)
	}

	switch result.State {
	case opwatch.StateSucceeded:
		logger.Info("operation succeeded",
			"operation", name,
			"polls", result.Polls,
			"elapsed", result.Elapsed.Round(time.Millisecond).String(),
		)
		printResponse(result.Operation.Response)
		return nil

	case opwatch.StateFailed:
		return errors.New(result.Operation.Error.String())

	case opwatch.StateTimedOut:
		// do not claim failure: the remote side may still succeed later
		logger.Warn("gave up waiting; the operation may still complete",
			"operation", name,
			"polls", result.Polls,
		)
		return fmt.Errorf("timed out after %s waiting for %s",
			result.Elapsed.Round(time.Second), name)

	case opwatch.StateCancelled:
		logger.Warn("stopped watching; the operation keeps running server-side",
			"operation", name,
			"polls", result.Polls,
		)
		return fmt.Errorf("wait for %s cancelled", name)

	default:
		return fmt.Errorf("unexpected wait state %q", result.State)
	}
}

// buildPoller assembles the SDK poller with logging and optional
// progress reporting from --progress-field or the config file.
func buildPoller(cmd *cobra.Command, cfg *config.Config, client *lrohttp.Client, logger *slog.Logger) (*opwatch.Poller, error) {
	opts := []opwatch.Option{opwatch.WithLogger(logger)}

	progressField, _ := cmd.Flags().GetString("progress-field")
	if progressField == "" {
		progressField = cfg.ProgressField
	}
	if progressField != "" {
		field := opwatch.JSONField(progressField)
		attr := strings.ReplaceAll(progressField, ".", "_")
		opts = append(opts, opwatch.WithProgress(func(op *opwatch.Operation) {
			if v, ok := field(op.Metadata); ok {
				logger.Info("operation progress", "operation", op.Name, attr, v)
			}
		}))
	}

	return opwatch.New(client.PollFunc(), opts...)
}

// parseTimeoutFlag parses the --timeout value: a duration or "none".
func parseTimeoutFlag(s string) (time.Duration, error) {
	if strings.EqualFold(s, "none") {
		return opwatch.NoTimeout, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf(`invalid --timeout %q (expected a duration or "none"): %w`, s, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("--timeout cannot be negative, got %s", d)
	}
	return d, nil
}

// printResponse pretty-prints the operation's response payload to stdout.
// Void operations have no payload; print a plain confirmation instead.
func printResponse(response json.RawMessage) {
	if len(response) == 0 {
		fmt.Println("done")
		return
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, response, "", "  "); err != nil {
		// not JSON after all; print it raw
		fmt.Println(string(response))
		return
	}
	fmt.Println(buf.String())
}
