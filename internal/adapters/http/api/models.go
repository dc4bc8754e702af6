package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nurtas/bloomcast/internal/adapters/modelregistry"
	"github.com/nurtas/bloomcast/internal/domain/trainer"
)

// ModelsHandler exposes the model registry and synchronous training.
type ModelsHandler struct {
	deps Dependencies
}

// NewModelsHandler creates a models handler.
func NewModelsHandler(deps Dependencies) *ModelsHandler {
	return &ModelsHandler{deps: deps}
}

// HandleModels handles GET /api/v1/models requests.
func (h *ModelsHandler) HandleModels(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.ModelsDocument(r.Context()))
}

type trainRequest struct {
	Algorithm string `json:"algorithm"`
}

type trainResponse struct {
	Record modelregistry.Record `json:"record"`
	Best   bool                 `json:"best"`
}

// HandleTrain handles POST /api/v1/models/train requests. Training runs
// synchronously; the dashboard shows a spinner while it waits.
func (h *ModelsHandler) HandleTrain(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req trainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	rec, best, err := h.deps.TrainModel(r.Context(), req.Algorithm)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, trainResponse{Record: rec, Best: best})
	case errors.Is(err, trainer.ErrUnknownAlgorithm):
		writeError(w, http.StatusBadRequest, "unknown_algorithm", err)
	case errors.Is(err, trainer.ErrNotEnoughData):
		writeError(w, http.StatusConflict, "not_enough_data", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
