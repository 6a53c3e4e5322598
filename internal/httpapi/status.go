package httpapi

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"
)

// CycleStatus is the snapshot served by /status; the runner loop stores a
// fresh copy after every cycle.
type CycleStatus struct {
	LastRunAt     string `json:"last_run_at"`
	LastOkAt      string `json:"last_ok_at"`
	LastError     string `json:"last_error"`
	LastListed    int    `json:"last_listed"`
	LastNew       int    `json:"last_new"`
	LastPublished int    `json:"last_published"`
	LastFailed    int    `json:"last_failed"`
	Running       bool   `json:"running"`
}

func Routes(status *atomic.Value) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"ok": true, "time": time.Now().Format(time.RFC3339)})
	})

	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		st := CycleStatus{}
		if v := status.Load(); v != nil {
			st = v.(CycleStatus)
		}
		writeJSON(w, st)
	})

	return mux
}

func Start(addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return srv.ListenAndServe()
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
