// Package health provides the /livez and /readyz probe endpoints. Checks run
// on demand when a probe arrives; readiness additionally requires the service
// to have been marked ready after startup.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// CheckFunc probes one component. A nil return means healthy.
type CheckFunc func(ctx context.Context) error

type check struct {
	name    string
	timeout time.Duration
	fn      CheckFunc
}

// Health holds the registered probes and the manual ready flag.
type Health struct {
	ready atomic.Bool

	mu        sync.RWMutex
	liveness  []check
	readiness []check
}

// New creates a Health in the not-ready state; call SetReady(true) once
// initialization finishes.
func New() *Health {
	return &Health{}
}

// AddLivenessCheck registers a liveness probe.
func (h *Health) AddLivenessCheck(name string, timeout time.Duration, fn CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.liveness = append(h.liveness, check{name: name, timeout: timeout, fn: fn})
}

// AddReadinessCheck registers a readiness probe.
func (h *Health) AddReadinessCheck(name string, timeout time.Duration, fn CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.readiness = append(h.readiness, check{name: name, timeout: timeout, fn: fn})
}

// SetReady flips the manual readiness flag. Set false during graceful shutdown
// to drain traffic before the listener closes.
func (h *Health) SetReady(ready bool) {
	h.ready.Store(ready)
}

// LiveEndpoint serves /livez.
func (h *Health) LiveEndpoint(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	checks := append([]check(nil), h.liveness...)
	h.mu.RUnlock()

	writeStatus(w, runChecks(r.Context(), checks))
}

// ReadyEndpoint serves /readyz.
func (h *Health) ReadyEndpoint(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	checks := append([]check(nil), h.readiness...)
	h.mu.RUnlock()

	failures := runChecks(r.Context(), checks)
	if !h.ready.Load() {
		failures["_readiness"] = "service is not ready"
	}
	writeStatus(w, failures)
}

func runChecks(ctx context.Context, checks []check) map[string]string {
	failures := make(map[string]string)
	for _, c := range checks {
		checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
		err := c.fn(checkCtx)
		cancel()
		if err != nil {
			failures[c.name] = err.Error()
		}
	}
	return failures
}

type statusResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func writeStatus(w http.ResponseWriter, failures map[string]string) {
	w.Header().Set("Content-Type", "application/json")

	resp := statusResponse{Status: "ok"}
	code := http.StatusOK
	if len(failures) > 0 {
		resp.Status = "unhealthy"
		resp.Checks = failures
		code = http.StatusServiceUnavailable
	}

	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}
