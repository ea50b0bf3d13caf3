package opwatch

import (
	"errors"
	"fmt"
	"time"
)

// Default poll cadence: capped exponential with jitter, no deadline.
// The original CLI surface this generalizes used fixed 2-5 second
// intervals per call site; a capped exponential is a strict superset
// (Multiplier 1.0 gives a fixed interval).
const (
	defaultInitialDelay = 1 * time.Second
	defaultMaxDelay     = 10 * time.Second
	defaultMultiplier   = 1.5
)

// NoTimeout disables the wall-clock deadline for a wait. The wait then
// runs until the operation finishes or the context is cancelled.
const NoTimeout time.Duration = -1

// PollPolicy configures poll cadence and termination for a single
// [Poller.Wait] call.
//
// The delay before each poll starts at InitialDelay and grows by
// Multiplier per attempt, capped at MaxDelay. With Jitter enabled each
// delay is drawn uniformly from [delay/2, delay], which keeps many
// concurrent waiters from polling in lockstep.
//
// Timeout is the wall-clock budget for the whole wait. [NoTimeout] (or
// any negative value) means unbounded; zero means the budget is already
// spent, so the wait performs at most one status check before reporting
// [StateTimedOut].
type PollPolicy struct {
	// InitialDelay is the delay before the first poll. Defaults to 1s.
	InitialDelay time.Duration

	// MaxDelay is the ceiling the growing delay is capped at. Defaults to 10s.
	MaxDelay time.Duration

	// Multiplier is the per-attempt delay growth factor. Values at or
	// below 1.0 give a fixed interval. Defaults to 1.5.
	Multiplier float64

	// Jitter randomizes each delay within [delay/2, delay].
	Jitter bool

	// Timeout bounds the total wall-clock time of the wait.
	// Negative means unbounded; see [NoTimeout].
	Timeout time.Duration
}

// DefaultPolicy returns the recommended poll policy: 1s initial delay
// growing 1.5x per attempt up to 10s, with jitter, and no deadline.
//
// Unbounded waits rely on the caller's context for cancellation, which
// matches interactive CLI use where Ctrl+C is the escape hatch.
func DefaultPolicy() PollPolicy {
	return PollPolicy{
		InitialDelay: defaultInitialDelay,
		MaxDelay:     defaultMaxDelay,
		Multiplier:   defaultMultiplier,
		Jitter:       true,
		Timeout:      NoTimeout,
	}
}

// withDefaults fills unset cadence fields. Timeout is left as-is: zero is
// a meaningful value (immediately expired), not an absent one.
func (p PollPolicy) withDefaults() PollPolicy {
	if p.InitialDelay == 0 {
		p.InitialDelay = defaultInitialDelay
	}
	if p.MaxDelay == 0 {
		p.MaxDelay = defaultMaxDelay
	}
	if p.Multiplier == 0 {
		p.Multiplier = defaultMultiplier
	}
	return p
}

// validate checks policy invariants after defaults are applied.
func (p PollPolicy) validate() error {
	if p.InitialDelay < 0 {
		return errors.New("poll policy: initial delay cannot be negative")
	}
	if p.MaxDelay < 0 {
		return errors.New("poll policy: max delay cannot be negative")
	}
	if p.InitialDelay > p.MaxDelay {
		return fmt.Errorf("poll policy: initial delay %s exceeds max delay %s", p.InitialDelay, p.MaxDelay)
	}
	return nil
}

// Unbounded reports whether the policy has no wall-clock deadline.
func (p PollPolicy) Unbounded() bool {
	return p.Timeout < 0
}
