package backoff

import (
	"testing"
	"time"
)

func TestDelay_ExponentialGrowthWithCap(t *testing.T) {
	s := Strategy{
		Initial:    10 * time.Millisecond,
		Max:        50 * time.Millisecond,
		Multiplier: 2,
	}

	want := []time.Duration{
		10 * time.Millisecond,
		20 * time.Millisecond,
		40 * time.Millisecond,
		50 * time.Millisecond, // capped
		50 * time.Millisecond, // stays at cap
	}

	for attempt, expected := range want {
		if got := s.Delay(attempt); got != expected {
			t.Errorf("Delay(%d) = %s, want %s", attempt, got, expected)
		}
	}
}

func TestDelay_FixedInterval(t *testing.T) {
	// multiplier at or below 1.0 means no growth
	for _, multiplier := range []float64{0, 0.5, 1.0} {
		s := Strategy{Initial: 2 * time.Second, Max: time.Minute, Multiplier: multiplier}
		for attempt := 0; attempt < 5; attempt++ {
			if got := s.Delay(attempt); got != 2*time.Second {
				t.Errorf("multiplier %g: Delay(%d) = %s, want 2s", multiplier, attempt, got)
			}
		}
	}
}

func TestDelay_NegativeAttempt(t *testing.T) {
	s := Strategy{Initial: time.Second, Max: time.Minute, Multiplier: 2}
	if got := s.Delay(-3); got != time.Second {
		t.Errorf("Delay(-3) = %s, want the initial delay", got)
	}
}

func TestDelay_NoCap(t *testing.T) {
	s := Strategy{Initial: time.Second, Multiplier: 2}
	if got := s.Delay(4); got != 16*time.Second {
		t.Errorf("Delay(4) without cap = %s, want 16s", got)
	}
}

func TestDelay_JitterStaysWithinBounds(t *testing.T) {
	s := Strategy{
		Initial:    100 * time.Millisecond,
		Max:        100 * time.Millisecond,
		Multiplier: 1,
		Jitter:     true,
	}

	min := 50 * time.Millisecond
	max := 100 * time.Millisecond
	for i := 0; i < 200; i++ {
		got := s.Delay(0)
		if got < min || got > max {
			t.Fatalf("jittered Delay(0) = %s, want within [%s, %s]", got, min, max)
		}
	}
}

func TestDelay_ZeroInitial(t *testing.T) {
	s := Strategy{Initial: 0, Max: time.Second, Multiplier: 2, Jitter: true}
	if got := s.Delay(0); got != 0 {
		t.Errorf("Delay(0) with zero initial = %s, want 0", got)
	}
}
