package http

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	notReady atomic.Bool
}

// NewHealthHandler creates a new health handler. The service reports
// ready until SetReady(false) flips it, which main does when shutdown
// begins so traffic drains.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// SetReady sets the ready state.
func (h *HealthHandler) SetReady(ready bool) {
	h.notReady.Store(!ready)
}

// Health checks if the service is healthy.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "healthy",
		"service": "aura_service",
	})
}

// Ready checks if the service is ready to receive traffic.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if h.notReady.Load() {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": "not_ready",
		})
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status": "ready",
	})
}

// Live checks if the service is alive (for Kubernetes liveness probe).
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status": "alive",
	})
}
