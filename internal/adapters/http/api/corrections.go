package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/nurtas/bloomcast/internal/domain/model"
)

// CorrectionsHandler records and lists manual forecast overrides.
type CorrectionsHandler struct {
	deps Dependencies
}

// NewCorrectionsHandler creates a corrections handler.
func NewCorrectionsHandler(deps Dependencies) *CorrectionsHandler {
	return &CorrectionsHandler{deps: deps}
}

type correctionRequest struct {
	Date      string `json:"date"`
	Store     string `json:"store"`
	SKU       string `json:"sku"`
	Original  int    `json:"original_forecast"`
	Corrected int    `json:"corrected_forecast"`
	Reason    string `json:"reason"`
	Author    string `json:"author"`
}

func (c correctionRequest) validate() error {
	switch {
	case strings.TrimSpace(c.Date) == "":
		return errMissing("date")
	case strings.TrimSpace(c.Store) == "":
		return errMissing("store")
	case strings.TrimSpace(c.SKU) == "":
		return errMissing("sku")
	case strings.TrimSpace(c.Reason) == "":
		return errMissing("reason")
	case c.Corrected < 0:
		return errMissing("corrected_forecast must not be negative")
	}
	if _, err := time.Parse("2006-01-02", c.Date); err != nil {
		return errMissing("date must be YYYY-MM-DD")
	}
	return nil
}

func errMissing(field string) error {
	return &fieldError{field: field}
}

type fieldError struct {
	field string
}

func (e *fieldError) Error() string { return "invalid correction: " + e.field }

// HandleCorrections handles GET and POST /api/v1/corrections requests.
func (h *CorrectionsHandler) HandleCorrections(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		cs, err := h.deps.Corrections(r.Context(), r.URL.Query().Get("store"))
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err)
			return
		}
		writeJSON(w, http.StatusOK, cs)
	case http.MethodPost:
		var req correctionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
			return
		}
		if err := req.validate(); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
		c, err := h.deps.AddCorrection(r.Context(), model.Correction{
			Date:      req.Date,
			Store:     req.Store,
			SKU:       req.SKU,
			Original:  req.Original,
			Corrected: req.Corrected,
			Reason:    req.Reason,
			Author:    req.Author,
		})
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err)
			return
		}
		writeJSON(w, http.StatusCreated, c)
	default:
		http.NotFound(w, r)
	}
}
