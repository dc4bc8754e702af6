package api

import (
	"errors"
	"net/http"

	"github.com/nurtas/bloomcast/internal/adapters/repository"
	"github.com/nurtas/bloomcast/internal/domain/forecast"
)

// ConsolidationHandler serves cross-store purchase pooling opportunities.
type ConsolidationHandler struct {
	deps Dependencies
}

// NewConsolidationHandler creates a consolidation handler.
func NewConsolidationHandler(deps Dependencies) *ConsolidationHandler {
	return &ConsolidationHandler{deps: deps}
}

type consolidationResponse struct {
	Days []forecast.ConsolidationDay `json:"days"`
}

// HandleConsolidation handles GET /api/v1/consolidation requests.
func (h *ConsolidationHandler) HandleConsolidation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	days, err := h.deps.Consolidation(r.Context())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no_forecast", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, consolidationResponse{Days: days})
}
