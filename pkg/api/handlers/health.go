package handlers

import (
	"net/http"
	"time"
)

// Groups is the part of the sample store the health endpoints need.
type Groups interface {
	GroupsNumber() int
}

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	store     Groups
	startTime time.Time
}

// NewHealthHandler creates a health handler. A nil store makes the
// readiness probe fail.
func NewHealthHandler(store Groups) *HealthHandler {
	return &HealthHandler{
		store:     store,
		startTime: time.Now(),
	}
}

// Liveness handles GET /health. It succeeds while the process serves HTTP.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(h.startTime)
	WriteJSON(w, http.StatusOK, healthyResponse(map[string]interface{}{
		"service":    "logiclink",
		"started_at": h.startTime.UTC().Format(time.RFC3339),
		"uptime":     uptime.Round(time.Second).String(),
		"uptime_sec": int64(uptime.Seconds()),
	}))
}

// Readiness handles GET /health/ready. It succeeds once the store has at
// least one group.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		WriteJSON(w, http.StatusServiceUnavailable, unhealthyResponse("store not initialized"))
		return
	}
	n := h.store.GroupsNumber()
	if n == 0 {
		WriteJSON(w, http.StatusServiceUnavailable, unhealthyResponse("no groups configured"))
		return
	}
	WriteJSON(w, http.StatusOK, healthyResponse(map[string]interface{}{
		"groups": n,
	}))
}
