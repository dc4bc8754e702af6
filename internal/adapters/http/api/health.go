package api

import (
	"net/http"
)

// HealthHandler answers liveness probes from the launcher keep-alive loop.
type HealthHandler struct {
	deps Dependencies
}

// NewHealthHandler creates a health handler.
func NewHealthHandler(deps Dependencies) *HealthHandler {
	return &HealthHandler{deps: deps}
}

type healthResponse struct {
	Status        string  `json:"status"`
	Mode          string  `json:"mode"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// HandleHealth handles GET /healthz requests.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:        "ok",
		Mode:          h.deps.Mode(),
		UptimeSeconds: h.deps.Uptime().Seconds(),
	})
}
