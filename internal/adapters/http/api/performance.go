package api

import (
	"errors"
	"net/http"

	"github.com/nurtas/bloomcast/internal/domain/forecast"
)

// PerformanceHandler serves per-store and network performance indicators.
type PerformanceHandler struct {
	deps Dependencies
}

// NewPerformanceHandler creates a performance handler.
func NewPerformanceHandler(deps Dependencies) *PerformanceHandler {
	return &PerformanceHandler{deps: deps}
}

// HandlePerformance handles GET /api/v1/performance?store= requests. Without
// a store parameter the network aggregate is returned.
func (h *PerformanceHandler) HandlePerformance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	store := r.URL.Query().Get("store")
	if store == "" {
		writeJSON(w, http.StatusOK, h.deps.NetworkPerformance(r.Context()))
		return
	}

	perf, err := h.deps.StorePerformance(r.Context(), store)
	if err != nil {
		if errors.Is(err, forecast.ErrUnknownStore) {
			writeError(w, http.StatusNotFound, "unknown_store", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, perf)
}
