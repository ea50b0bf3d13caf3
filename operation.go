package opwatch

import (
	"encoding/json"
	"fmt"
	"time"
)

// State represents where an operation is in its lifecycle, from the
// poller's point of view.
//
// State is a string type that can hold one of five predefined values:
// [StatePending], [StateSucceeded], [StateFailed], [StateTimedOut], or
// [StateCancelled]. Using a string type allows for easy JSON
// serialization and human-readable logging while maintaining type safety
// through the defined constants.
type State string

const (
	// StatePending indicates the operation is still running server-side.
	StatePending State = "pending"

	// StateSucceeded indicates the operation finished with a response.
	StateSucceeded State = "succeeded"

	// StateFailed indicates the operation finished with a server-reported error.
	StateFailed State = "failed"

	// StateTimedOut indicates the poller gave up before the operation
	// finished. The server-side state is unknown; the operation may still
	// complete later.
	StateTimedOut State = "timed_out"

	// StateCancelled indicates the caller stopped watching (context
	// cancellation, e.g. Ctrl+C). Only the local wait is cancelled; the
	// server-side operation keeps running unless cancelled explicitly.
	StateCancelled State = "cancelled"
)

// String returns the string representation of the state.
// This implements the fmt.Stringer interface.
func (s State) String() string {
	return string(s)
}

// Terminal reports whether the poller stops watching once this state is
// reached. Every state except [StatePending] is terminal.
func (s State) Terminal() bool {
	return s != StatePending
}

// Status is a server-reported operation failure: a numeric code plus a
// human-readable message, carried verbatim for user display.
//
// The code space is backend-defined; REST longrunning APIs use the
// google.rpc canonical codes (9 = FAILED_PRECONDITION and so on).
type Status struct {
	Code    int32  `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// String formats the status for display, e.g. "operation failed (code 9): msg".
func (s *Status) String() string {
	if s == nil {
		return ""
	}
	return fmt.Sprintf("operation failed (code %d): %s", s.Code, s.Message)
}

// Operation is a handle to a long-running server-side action.
//
// An Operation is created by whatever "start" call kicked off the action
// and refreshed by polling; the poller treats it as read-only and never
// mutates a handle it is given. Once Done is true, exactly one of Error
// or Response is meaningfully populated (Response may be empty for a
// void-returning action).
//
// Metadata and Response are kept as raw JSON: their shape is owned by the
// backend API, not by the poller. Use [MetadataField] to pull display
// values out of Metadata.
type Operation struct {
	// Name is the opaque server-assigned identifier for the operation.
	Name string `json:"name"`

	// Done is true once the operation reached a terminal state server-side.
	Done bool `json:"done,omitempty"`

	// Metadata is an implementation-defined progress payload, refreshed
	// on every poll (e.g. counts of items processed, percent complete).
	Metadata json.RawMessage `json:"metadata,omitempty"`

	// Response is the operation's result payload, populated on success.
	Response json.RawMessage `json:"response,omitempty"`

	// Error is the structured failure, populated when the operation failed.
	Error *Status `json:"error,omitempty"`
}

// State classifies the operation as the poller sees it: pending while
// not done, then succeeded or failed depending on whether Error is set.
func (o *Operation) State() State {
	switch {
	case o == nil || !o.Done:
		return StatePending
	case o.Error != nil:
		return StateFailed
	default:
		return StateSucceeded
	}
}

// Result is the terminal outcome of a [Poller.Wait] call.
//
// State is always terminal: succeeded, failed, timed out, or cancelled.
// Operation holds the most recently observed handle; for succeeded and
// failed waits that is the terminal snapshot, for timed-out and cancelled
// waits it is the last pending snapshot (or the input handle if no poll
// completed).
type Result struct {
	// State is the terminal state the wait ended in.
	State State

	// Operation is the last observed operation snapshot.
	Operation *Operation

	// Polls is the number of status-check round trips performed.
	Polls int

	// Elapsed is the wall-clock duration of the wait.
	Elapsed time.Duration
}
