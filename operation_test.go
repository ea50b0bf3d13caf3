package opwatch

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestOperationState(t *testing.T) {
	tests := []struct {
		name string
		op   *Operation
		want State
	}{
		{
			name: "nil operation is pending",
			op:   nil,
			want: StatePending,
		},
		{
			name: "not done is pending",
			op:   &Operation{Name: "operations/a"},
			want: StatePending,
		},
		{
			name: "not done with metadata is still pending",
			op:   &Operation{Name: "operations/a", Metadata: json.RawMessage(`{"pct":50}`)},
			want: StatePending,
		},
		{
			name: "done without error succeeded",
			op:   &Operation{Name: "operations/a", Done: true, Response: json.RawMessage(`{}`)},
			want: StateSucceeded,
		},
		{
			name: "done without response still succeeded (void action)",
			op:   &Operation{Name: "operations/a", Done: true},
			want: StateSucceeded,
		},
		{
			name: "done with error failed",
			op:   &Operation{Name: "operations/a", Done: true, Error: &Status{Code: 9}},
			want: StateFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.op.State(); got != tt.want {
				t.Errorf("State() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStateTerminal(t *testing.T) {
	terminal := []State{StateSucceeded, StateFailed, StateTimedOut, StateCancelled}
	for _, s := range terminal {
		if !s.Terminal() {
			t.Errorf("%q.Terminal() = false, want true", s)
		}
	}
	if StatePending.Terminal() {
		t.Error("pending.Terminal() = true, want false")
	}
}

func TestStatusString(t *testing.T) {
	s := &Status{Code: 9, Message: "FAILED_PRECONDITION"}
	got := s.String()

	if !strings.Contains(got, "code 9") {
		t.Errorf("String() = %q, want the code included", got)
	}
	if !strings.Contains(got, "FAILED_PRECONDITION") {
		t.Errorf("String() = %q, want the message included", got)
	}

	var nilStatus *Status
	if nilStatus.String() != "" {
		t.Errorf("nil status String() = %q, want empty", nilStatus.String())
	}
}

func TestOperationJSONRoundTrip(t *testing.T) {
	// the longrunning wire shape: error and response as siblings of done
	raw := `{"name":"projects/p/operations/op-1","done":true,"error":{"code":9,"message":"nope"}}`

	var op Operation
	if err := json.Unmarshal([]byte(raw), &op); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if op.Name != "projects/p/operations/op-1" {
		t.Errorf("Name = %q", op.Name)
	}
	if !op.Done {
		t.Error("Done = false, want true")
	}
	if op.Error == nil || op.Error.Code != 9 || op.Error.Message != "nope" {
		t.Errorf("Error = %+v, want code 9 message nope", op.Error)
	}
	if op.State() != StateFailed {
		t.Errorf("State() = %q, want %q", op.State(), StateFailed)
	}
}
