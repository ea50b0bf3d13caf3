package opwatch

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// counterValue digs a labelled counter value out of gathered metric families.
func counterValue(t *testing.T, reg *prometheus.Registry, name, labelValue string) float64 {
	t.Helper()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}

	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetValue() == labelValue {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestMetrics_RecordPollsAndWaits(t *testing.T) {
	reg := prometheus.NewRegistry()

	terminal := &Operation{
		Name:     "projects/p/operations/op-1",
		Done:     true,
		Response: json.RawMessage(`{}`),
	}
	var calls atomic.Int32
	poller, err := New(doneOnCall(2, terminal, &calls), WithMetrics(reg))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	op := &Operation{Name: terminal.Name}
	result, err := poller.Wait(context.Background(), op, fixedPolicy(time.Millisecond, NoTimeout))
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if result.State != StateSucceeded {
		t.Fatalf("State = %q, want %q", result.State, StateSucceeded)
	}

	if got := counterValue(t, reg, "opwatch_polls_total", "ok"); got != 2 {
		t.Errorf("opwatch_polls_total{outcome=ok} = %g, want 2", got)
	}
	if got := counterValue(t, reg, "opwatch_waits_total", "succeeded"); got != 1 {
		t.Errorf("opwatch_waits_total{state=succeeded} = %g, want 1", got)
	}
}

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *pollerMetrics

	// must be callable unconditionally from the poller
	m.observePoll(time.Millisecond, nil)
	m.observeWait(StateSucceeded)
}
