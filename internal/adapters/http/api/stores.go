package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nurtas/bloomcast/internal/domain/stores"
)

// StoresHandler lists the network and registers new stores.
type StoresHandler struct {
	deps Dependencies
}

// NewStoresHandler creates a stores handler.
func NewStoresHandler(deps Dependencies) *StoresHandler {
	return &StoresHandler{deps: deps}
}

type addStoreRequest struct {
	ID    string          `json:"id"`
	Store stores.NewStore `json:"store"`
}

// HandleStores handles GET and POST /api/v1/stores requests.
func (h *StoresHandler) HandleStores(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.deps.Stores(r.Context()))
	case http.MethodPost:
		var req addStoreRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
			return
		}
		if err := h.deps.AddStore(r.Context(), req.ID, req.Store); err != nil {
			if errors.Is(err, stores.ErrMissingField) || errors.Is(err, stores.ErrInvalidStores) {
				writeError(w, http.StatusBadRequest, "invalid_store", err)
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"status": "created", "id": req.ID})
	default:
		http.NotFound(w, r)
	}
}
