// Standalone mock operations API for testing the CLI.
//
// Usage:
//
//	go run ./example/cmd/mockserver
//
// Then in another terminal:
//
//	go run ./cmd/opwatch wait projects/demo/operations/op-1 \
//	    --api-base http://localhost:9999/v1
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
)

func main() {
	fmt.Println("Mock operations API starting on :9999")
	fmt.Println("Operations complete after 3 polls; names containing \"fail\" fail")
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	var (
		polls = make(map[string]int)
		mu    sync.Mutex
	)
	const doneAfter = 3

	http.HandleFunc("/v1/", func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/v1/")

		if r.Method == http.MethodPost && strings.HasSuffix(name, ":cancel") {
			slog.Info("cancel requested", "operation", strings.TrimSuffix(name, ":cancel"))
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprintln(w, "{}")
			return
		}

		mu.Lock()
		polls[name]++
		count := polls[name]
		mu.Unlock()

		done := count >= doneAfter
		percent := count * 100 / doneAfter
		if percent > 100 {
			percent = 100
		}

		body := map[string]interface{}{
			"name":     name,
			"done":     done,
			"metadata": map[string]interface{}{"progressPercent": percent},
		}
		if done {
			if strings.Contains(name, "fail") {
				body["error"] = map[string]interface{}{"code": 9, "message": "FAILED_PRECONDITION"}
			} else {
				body["response"] = map[string]interface{}{"ok": true}
			}
		}

		slog.Info("operation fetched", "operation", name, "polls", count, "done", done)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(body)
	})

	if err := http.ListenAndServe(":9999", nil); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
