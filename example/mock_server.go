package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
)

// mockOperation tracks poll count and outcome for a single operation.
type mockOperation struct {
	polls     int
	doneAfter int
	cancelled bool
}

// StartMockOperationServer runs a mock longrunning operations API.
//
// Every GET under /v1/ is treated as an operation fetch. Operations are
// created lazily on first fetch and complete after three polls; names
// containing "fail" complete with a FAILED_PRECONDITION error instead.
// POST <name>:cancel marks the operation cancelled. Metadata carries a
// progressPercent field that advances with each poll.
//
// Call this in a goroutine before pointing an opwatch client at it.
func StartMockOperationServer(addr string) {
	var (
		ops = make(map[string]*mockOperation)
		mu  sync.Mutex
	)

	http.HandleFunc("/v1/", func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/v1/")

		if r.Method == http.MethodPost && strings.HasSuffix(name, ":cancel") {
			name = strings.TrimSuffix(name, ":cancel")
			mu.Lock()
			if op, exists := ops[name]; exists {
				op.cancelled = true
			}
			mu.Unlock()
			slog.Info("cancel requested", "operation", name)
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprintln(w, "{}")
			return
		}

		mu.Lock()
		op, exists := ops[name]
		if !exists {
			op = &mockOperation{doneAfter: 3}
			ops[name] = op
		}
		op.polls++
		snapshot := *op
		mu.Unlock()

		done := snapshot.polls >= snapshot.doneAfter || snapshot.cancelled
		percent := snapshot.polls * 100 / snapshot.doneAfter
		if percent > 100 {
			percent = 100
		}

		body := map[string]interface{}{
			"name":     name,
			"done":     done,
			"metadata": map[string]interface{}{"progressPercent": percent},
		}
		switch {
		case done && snapshot.cancelled:
			body["error"] = map[string]interface{}{"code": 1, "message": "operation was cancelled"}
		case done && strings.Contains(name, "fail"):
			body["error"] = map[string]interface{}{"code": 9, "message": "FAILED_PRECONDITION"}
		case done:
			body["response"] = map[string]interface{}{"ok": true}
		}

		slog.Info("operation fetched", "operation", name, "polls", snapshot.polls, "done", done)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(body); err != nil {
			slog.Error("failed to write response", "error", err)
		}
	})

	if err := http.ListenAndServe(addr, nil); err != nil {
		slog.Error("mock server error", "error", err)
	}
}
