// Package backoff computes the delay sequence used between status polls.
//
// This package is internal to opwatch. It implements a capped exponential
// backoff with optional full jitter. The sequence is deterministic when
// jitter is disabled, which keeps the poller's timing testable.
package backoff

import (
	"math/rand"
	"time"
)

// Strategy describes a capped exponential delay sequence.
//
// Attempt 0 yields Initial; each subsequent attempt multiplies the delay
// by Multiplier until it reaches Max, where it stays. A Multiplier at or
// below 1.0 yields a fixed interval of Initial.
type Strategy struct {
	// Initial is the delay for attempt 0.
	Initial time.Duration

	// Max is the ceiling the delay is capped at. Zero means no cap.
	Max time.Duration

	// Multiplier is the per-attempt growth factor.
	Multiplier float64

	// Jitter randomizes each delay within [delay/2, delay].
	Jitter bool
}

// Delay returns the delay for the given zero-based attempt number.
//
// Negative attempts are treated as attempt 0. The returned delay is never
// negative and never exceeds Max (when Max is set), jitter included.
func (s Strategy) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}

	d := float64(s.Initial)
	if s.Multiplier > 1 {
		for i := 0; i < attempt; i++ {
			d *= s.Multiplier
			// stop growing once past the cap; also guards against overflow
			if s.Max > 0 && d >= float64(s.Max) {
				d = float64(s.Max)
				break
			}
		}
	}

	delay := time.Duration(d)
	if s.Max > 0 && delay > s.Max {
		delay = s.Max
	}
	if delay < 0 {
		delay = 0
	}

	if s.Jitter && delay > 0 {
		half := delay / 2
		delay = half + time.Duration(rand.Int63n(int64(delay-half)+1))
	}

	return delay
}
