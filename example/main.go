package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jpalmerr/opwatch"
	"github.com/jpalmerr/opwatch/lrohttp"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	// start mock operations API (see mock_server.go)
	go StartMockOperationServer(":9999")
	time.Sleep(100 * time.Millisecond)

	client, err := lrohttp.NewClient("http://localhost:9999/v1",
		lrohttp.WithRequestTimeout(5*time.Second),
	)
	if err != nil {
		logger.Error("failed to create client", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	// log the mock's progressPercent metadata on every poll
	percent := opwatch.JSONField("progressPercent")
	poller, err := opwatch.New(client.PollFunc(),
		opwatch.WithLogger(logger),
		opwatch.WithProgress(func(op *opwatch.Operation) {
			if v, ok := percent(op.Metadata); ok {
				logger.Info("progress", "operation", op.Name, "percent", v)
			}
		}),
	)
	if err != nil {
		logger.Error("failed to create poller", "error", err)
		os.Exit(1)
	}

	// Ctrl+C stops watching without touching the remote operation
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	op := &opwatch.Operation{Name: "projects/demo/operations/op-1"}
	policy := opwatch.PollPolicy{
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     2 * time.Second,
		Multiplier:   1.5,
		Jitter:       true,
		Timeout:      time.Minute,
	}

	result, err := poller.Wait(ctx, op, policy)
	if err != nil {
		logger.Error("polling failed", "error", err)
		os.Exit(1)
	}

	switch result.State {
	case opwatch.StateSucceeded:
		fmt.Printf("operation finished after %d polls: %s\n", result.Polls, result.Operation.Response)
	case opwatch.StateFailed:
		fmt.Fprintln(os.Stderr, result.Operation.Error.String())
		os.Exit(1)
	default:
		fmt.Fprintf(os.Stderr, "stopped waiting: %s\n", result.State)
		os.Exit(1)
	}
}
