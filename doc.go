// Package opwatch provides a generic poller for long-running operations
// (LROs): server-side actions that return a handle immediately and
// complete some time later.
//
// Opwatch is designed as an SDK-first library. The poller knows nothing
// about HTTP, gRPC, or any specific backend; each API integration supplies
// a single status-check function and the poller owns the waiting logic:
// delay cadence, deadlines, cancellation, and terminal-state
// classification. It follows functional programming principles with
// immutable types and composable configuration via the functional options
// pattern.
//
// # Quick Start
//
// Wrap your API's "get operation" call in a [PollFunc] and wait:
//
//	poller, _ := opwatch.New(func(ctx context.Context, name string) (*opwatch.Operation, error) {
//	    return client.GetOperation(ctx, name)
//	})
//
//	op := &opwatch.Operation{Name: "projects/p/operations/op-123"}
//	result, err := poller.Wait(ctx, op, opwatch.DefaultPolicy())
//	if err != nil {
//	    // transport failure: the poller never saw a terminal state
//	    return err
//	}
//	switch result.State {
//	case opwatch.StateSucceeded:
//	    fmt.Printf("%s\n", result.Operation.Response)
//	case opwatch.StateFailed:
//	    fmt.Fprintln(os.Stderr, result.Operation.Error.Message)
//	}
//
// # Configuration
//
// Pollers are configured with functional options:
//
//	poller, err := opwatch.New(pollFn,
//	    opwatch.WithLogger(logger),
//	    opwatch.WithProgress(func(op *opwatch.Operation) {
//	        // invoked once per poll with the latest snapshot
//	    }),
//	    opwatch.WithMetrics(prometheus.DefaultRegisterer),
//	)
//
// Poll cadence is a per-wait concern, expressed as a [PollPolicy]: a
// capped exponential backoff with optional jitter and a wall-clock
// timeout. [DefaultPolicy] starts at 1s, caps at 10s, and waits forever
// (cancel via the context).
//
// # Terminal states
//
// A wait ends in exactly one of four states: [StateSucceeded],
// [StateFailed], [StateTimedOut], or [StateCancelled]. Timeouts and
// local cancellation say nothing about the remote operation, which keeps
// running on the server; use an explicit cancel call (for example
// [github.com/jpalmerr/opwatch/lrohttp.Client.CancelOperation]) to stop
// it remotely.
//
// Transport failures (network errors, 404s, permission errors from the
// status check) are never folded into a terminal state. They propagate
// out of [Poller.Wait] unchanged so callers can apply their own retry
// policy one layer up.
//
// # Architecture
//
// The repository consists of:
//
//   - opwatch (this package): the generic poller and its data model
//   - lrohttp: a REST status-check client for longrunning-style APIs
//   - config: YAML configuration for the standalone CLI
//   - cmd/opwatch: wait/describe/cancel CLI built on the SDK
//   - internal/backoff: the delay sequence used between polls
package opwatch
