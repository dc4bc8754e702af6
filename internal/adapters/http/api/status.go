package api

import (
	"net/http"
)

// StatusHandler serves the operational summary behind the dashboard header.
type StatusHandler struct {
	deps Dependencies
}

// NewStatusHandler creates a status handler.
func NewStatusHandler(deps Dependencies) *StatusHandler {
	return &StatusHandler{deps: deps}
}

// HandleStatus handles GET /api/v1/status requests.
func (h *StatusHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	st, err := h.deps.Status(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "not_ready", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
