package opwatch

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestWithLogger_RejectsNil(t *testing.T) {
	var calls atomic.Int32
	if _, err := New(pendingForever(&calls), WithLogger(nil)); err == nil {
		t.Error("New(WithLogger(nil)) expected error, got nil")
	}
}

func TestWithProgress_NilIsNoOp(t *testing.T) {
	var calls atomic.Int32
	poller, err := New(pendingForever(&calls), WithProgress(nil))
	if err != nil {
		t.Fatalf("New(WithProgress(nil)) error = %v", err)
	}
	if poller.progress != nil {
		t.Error("nil progress callback should not be registered")
	}
}

func TestWithMetrics_RejectsNil(t *testing.T) {
	var calls atomic.Int32
	if _, err := New(pendingForever(&calls), WithMetrics(nil)); err == nil {
		t.Error("New(WithMetrics(nil)) expected error, got nil")
	}
}

func TestWithMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	var calls atomic.Int32

	if _, err := New(pendingForever(&calls), WithMetrics(reg)); err != nil {
		t.Fatalf("first New(WithMetrics) error = %v", err)
	}
	if _, err := New(pendingForever(&calls), WithMetrics(reg)); err == nil {
		t.Error("second registration on the same registerer expected error, got nil")
	}
}

func TestNew_DefaultsWithoutOptions(t *testing.T) {
	var calls atomic.Int32
	poller, err := New(pendingForever(&calls))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if poller.logger == nil {
		t.Error("logger should default to slog.Default")
	}
	if poller.metrics != nil {
		t.Error("metrics should be nil when not configured")
	}

	// a metrics-less poller must still poll fine
	if _, err := poller.PollOnce(context.Background(), &Operation{Name: "operations/x"}); err != nil {
		t.Errorf("PollOnce() without metrics error = %v", err)
	}
}
