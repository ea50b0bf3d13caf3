package opwatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/jpalmerr/opwatch/internal/backoff"
)

// PollFunc performs one status-check round trip for the named operation
// and returns a fresh snapshot of its state.
//
// A PollFunc is the poller's only link to the backend that owns the
// operation. It must be read-only with respect to server-side effects:
// polling an operation repeatedly must not change it beyond observation.
// Transport failures (network errors, not-found, permission-denied) are
// returned as errors; the poller propagates them unchanged and never
// retries them itself.
//
// Each API integration supplies a closure, not a subclass; see
// [github.com/jpalmerr/opwatch/lrohttp.Client.PollFunc] for the REST one.
type PollFunc func(ctx context.Context, name string) (*Operation, error)

// ProgressFunc receives the latest operation snapshot once per poll.
//
// Progress callbacks are cosmetic: they drive spinners, log lines, and
// progress bars, and have no bearing on control flow. They are invoked
// synchronously between polls, so they must be fast; panics are recovered
// and logged with a correlation ID rather than aborting the wait.
type ProgressFunc func(op *Operation)

// Poller waits for long-running operations to reach a terminal state.
//
// A Poller is parameterized by a single [PollFunc] and is otherwise
// stateless: it holds no per-operation state, so one Poller may serve any
// number of concurrent [Poller.Wait] calls, each independent. Polls for a
// given wait are strictly sequential.
//
// Create a Poller with [New] and functional options.
type Poller struct {
	poll     PollFunc
	logger   *slog.Logger
	progress ProgressFunc
	metrics  *pollerMetrics
}

// New creates a [Poller] around the given status-check function.
//
// Options have sensible defaults: logging goes to [slog.Default], no
// progress callback, no metrics. Returns an error if poll is nil or any
// option is invalid.
//
// Example:
//
//	poller, err := opwatch.New(client.PollFunc(),
//	    opwatch.WithLogger(logger),
//	    opwatch.WithProgress(printProgress),
//	)
func New(poll PollFunc, opts ...Option) (*Poller, error) {
	if poll == nil {
		return nil, errors.New("poll function is required")
	}

	cfg := &pollerConfig{}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Poller{
		poll:     poll,
		logger:   logger,
		progress: cfg.progress,
		metrics:  cfg.metrics,
	}, nil
}

// PollOnce performs exactly one status-check round trip and returns a
// refreshed snapshot of the operation.
//
// The input handle is not mutated. Transport failures are returned
// unchanged; retry policy lives one layer up, in [Poller.Wait] callers
// that choose to compose one.
func (p *Poller) PollOnce(ctx context.Context, op *Operation) (*Operation, error) {
	if op == nil || op.Name == "" {
		return nil, errors.New("operation handle with a name is required")
	}

	start := time.Now()
	latest, err := p.poll(ctx, op.Name)
	p.metrics.observePoll(time.Since(start), err)
	if err != nil {
		return nil, err
	}
	if latest == nil {
		return nil, fmt.Errorf("status check for %q returned no operation", op.Name)
	}
	return latest, nil
}

// Wait blocks until the operation reaches a terminal state, classifying
// the outcome into a [Result].
//
// If the handle is already done, Wait returns immediately without any
// network call. Otherwise it loops: sleep per the policy's backoff, poll
// once, report progress, check for completion. The loop ends when:
//
//   - the operation is done (StateSucceeded or StateFailed),
//   - the policy's wall-clock timeout expires (StateTimedOut), or
//   - ctx is cancelled (StateCancelled).
//
// Timeouts and cancellation stop the watching only; the server-side
// operation keeps running. Wait never sleeps after the final check.
//
// All four outcomes above are returned as a Result with a nil error.
// A non-nil error means the wait could not be carried out at all: the
// status check failed at the transport level (propagated unchanged, never
// mapped to a timeout) or the inputs were invalid.
func (p *Poller) Wait(ctx context.Context, op *Operation, policy PollPolicy) (Result, error) {
	if op == nil || op.Name == "" {
		return Result{}, errors.New("operation handle with a name is required")
	}
	policy = policy.withDefaults()
	if err := policy.validate(); err != nil {
		return Result{}, err
	}

	start := time.Now()

	// fast path: terminal handles classify without a network call
	if op.Done {
		return p.finish(Result{State: op.State(), Operation: op}, start), nil
	}

	strategy := backoff.Strategy{
		Initial:    policy.InitialDelay,
		Max:        policy.MaxDelay,
		Multiplier: policy.Multiplier,
		Jitter:     policy.Jitter,
	}

	var deadline time.Time
	if !policy.Unbounded() {
		deadline = start.Add(policy.Timeout)
	}

	polls := 0
	for attempt := 0; ; attempt++ {
		delay := strategy.Delay(attempt)
		if !policy.Unbounded() {
			// never sleep past the deadline; the last poll happens at it
			if remaining := time.Until(deadline); remaining < delay {
				delay = remaining
			}
		}

		if cancelled := p.sleep(ctx, delay); cancelled {
			p.logger.Debug("wait cancelled", "operation", op.Name, "polls", polls)
			return p.finish(Result{State: StateCancelled, Operation: op, Polls: polls}, start), nil
		}

		latest, err := p.PollOnce(ctx, op)
		polls++
		if err != nil {
			if ctx.Err() != nil {
				// the caller stopped watching mid-poll
				return p.finish(Result{State: StateCancelled, Operation: op, Polls: polls}, start), nil
			}
			return Result{}, err
		}
		op = latest
		p.reportProgress(op)

		if op.Done {
			return p.finish(Result{State: op.State(), Operation: op, Polls: polls}, start), nil
		}
		if !policy.Unbounded() && !time.Now().Before(deadline) {
			p.logger.Debug("wait deadline exceeded", "operation", op.Name, "polls", polls)
			return p.finish(Result{State: StateTimedOut, Operation: op, Polls: polls}, start), nil
		}
	}
}

// Async is the opt-out of waiting: it returns the handle as-is without
// any polling.
//
// Commands expose this as an --async flag; completion-checking is then
// deferred to the caller, typically via a later "wait <name>" invocation.
func (p *Poller) Async(op *Operation) *Operation {
	return op
}

// sleep waits for the given delay or until the context is cancelled.
// Reports true when the context fired first. Non-positive delays still
// observe cancellation but do not block.
func (p *Poller) sleep(ctx context.Context, delay time.Duration) bool {
	if delay <= 0 {
		return ctx.Err() != nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return true
	case <-timer.C:
		return false
	}
}

// finish stamps timing on a result and records wait metrics.
func (p *Poller) finish(r Result, start time.Time) Result {
	r.Elapsed = time.Since(start)
	p.metrics.observeWait(r.State)
	return r
}

// reportProgress invokes the progress callback with panic recovery.
// If the callback panics, it logs the full stack trace with a correlation
// ID and carries on; a misbehaving callback cannot abort the wait.
func (p *Poller) reportProgress(op *Operation) {
	if p.progress == nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			correlationID := uuid.NewString()
			p.logger.Error("progress callback panic",
				"correlation_id", correlationID,
				"operation", op.Name,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
		}
	}()
	p.progress(op)
}
