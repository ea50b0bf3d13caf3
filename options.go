package opwatch

import (
	"errors"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// pollerConfig holds mutable state during Poller construction.
type pollerConfig struct {
	logger   *slog.Logger
	progress ProgressFunc
	metrics  *pollerMetrics
}

// Option is a function that configures a [Poller] during construction.
//
// Option implements the functional options pattern, allowing optional
// configuration to be passed to [New] in a type-safe, extensible way.
// Options return an error if validation fails.
//
// Built-in options: [WithLogger], [WithProgress], [WithMetrics].
type Option func(*pollerConfig) error

// WithLogger sets a custom [slog.Logger] for the poller.
//
// The poller logs at DEBUG level (wait lifecycle) and ERROR level
// (progress callback panics). If not specified, [slog.Default] is used.
//
// Example:
//
//	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
//	poller, err := opwatch.New(pollFn, opwatch.WithLogger(logger))
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *pollerConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithProgress registers a callback invoked once per poll with the latest
// operation snapshot, including the final terminal one.
//
// The callback drives progress indicators and has no effect on control
// flow. It runs synchronously between polls, so it must be fast; panics
// are recovered and logged with a correlation ID.
//
// Example:
//
//	poller, err := opwatch.New(pollFn,
//	    opwatch.WithProgress(func(op *opwatch.Operation) {
//	        if pct, ok := opwatch.JSONField("progressPercent")(op.Metadata); ok {
//	            fmt.Printf("\r%s%%", pct)
//	        }
//	    }),
//	)
//
// Nil callbacks are silently ignored.
func WithProgress(fn ProgressFunc) Option {
	return func(cfg *pollerConfig) error {
		if fn == nil {
			return nil // no-op for nil callback (safe to call)
		}
		cfg.progress = fn
		return nil
	}
}

// WithMetrics registers Prometheus instrumentation on the given registerer.
//
// Three collectors are registered:
//
//   - opwatch_polls_total{outcome}: status checks by "ok" or "error"
//   - opwatch_poll_duration_seconds: status-check round-trip latency
//   - opwatch_waits_total{state}: completed waits by terminal state
//
// Without this option the poller records nothing. Registering two pollers
// on the same registerer will fail at construction time with a duplicate
// registration error; use separate registerers or share one Poller.
//
// Returns an error if the registerer is nil.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(cfg *pollerConfig) error {
		if reg == nil {
			return errors.New("metrics registerer cannot be nil")
		}
		m, err := newPollerMetrics(reg)
		if err != nil {
			return err
		}
		cfg.metrics = m
		return nil
	}
}
