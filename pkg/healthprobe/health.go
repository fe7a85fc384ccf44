// Package healthprobe serves liveness and readiness for the mirroring service.
package healthprobe

import (
	"net/http"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"
)

// HealthChecker provides health and readiness checks. Readiness also requires a recent
// executor heartbeat once one has been recorded and maxStale is set.
type HealthChecker struct {
	startTime time.Time
	ready     atomic.Bool
	lastBeat  atomic.Int64 // unix nanos, 0 = never
	maxStale  time.Duration
	now       func() time.Time
}

// New creates a new HealthChecker. A zero maxStale disables the heartbeat check.
func New(maxStale time.Duration) *HealthChecker {
	return &HealthChecker{
		startTime: time.Now(),
		maxStale:  maxStale,
		now:       time.Now,
	}
}

// SetReady marks the application as ready to serve traffic.
func (h *HealthChecker) SetReady(ready bool) {
	h.ready.Store(ready)
}

// Beat records that the executor completed a pass.
func (h *HealthChecker) Beat() {
	h.lastBeat.Store(h.now().UnixNano())
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status   string `json:"status"`
	Uptime   string `json:"uptime"`
	LastPass string `json:"last_pass,omitempty"`
	Message  string `json:"message,omitempty"`
}

// Health returns an HTTP handler for liveness checks.
// Always returns 200 OK if the application is running.
func (h *HealthChecker) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, HealthResponse{
			Status:   "healthy",
			Uptime:   time.Since(h.startTime).String(),
			LastPass: h.lastPass(),
		})
	}
}

// Ready returns an HTTP handler for readiness checks.
// Returns 200 OK if ready, 503 Service Unavailable if not.
func (h *HealthChecker) Ready() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !h.ready.Load() {
			writeJSON(w, http.StatusServiceUnavailable, HealthResponse{
				Status:  "not_ready",
				Message: "application is starting",
			})
			return
		}

		if h.stale() {
			writeJSON(w, http.StatusServiceUnavailable, HealthResponse{
				Status:   "not_ready",
				LastPass: h.lastPass(),
				Message:  "executor heartbeat is stale",
			})
			return
		}

		writeJSON(w, http.StatusOK, HealthResponse{
			Status:   "ready",
			Uptime:   time.Since(h.startTime).String(),
			LastPass: h.lastPass(),
		})
	}
}

func (h *HealthChecker) stale() bool {
	beat := h.lastBeat.Load()
	if h.maxStale <= 0 || beat == 0 {
		return false
	}
	return h.now().Sub(time.Unix(0, beat)) > h.maxStale
}

func (h *HealthChecker) lastPass() string {
	beat := h.lastBeat.Load()
	if beat == 0 {
		return ""
	}
	return time.Unix(0, beat).UTC().Format(time.RFC3339)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
