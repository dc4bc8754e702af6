package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nurtas/bloomcast/internal/adapters/repository"
	"github.com/nurtas/bloomcast/internal/app"
	"github.com/nurtas/bloomcast/internal/domain/forecast"
	"github.com/nurtas/bloomcast/internal/domain/model"
)

// ForecastsHandler serves persisted forecast rows and accepts refresh
// requests.
type ForecastsHandler struct {
	deps Dependencies
}

// NewForecastsHandler creates a forecasts handler.
func NewForecastsHandler(deps Dependencies) *ForecastsHandler {
	return &ForecastsHandler{deps: deps}
}

type forecastsResponse struct {
	Rows  []model.ForecastRow `json:"rows"`
	Count int                 `json:"count"`
}

// HandleForecasts handles GET /api/v1/forecasts?store=&date=&priority=.
func (h *ForecastsHandler) HandleForecasts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	q := repository.SnapshotQuery{
		Store:    r.URL.Query().Get("store"),
		Date:     r.URL.Query().Get("date"),
		Priority: r.URL.Query().Get("priority"),
	}
	rows, err := h.deps.Forecasts(r.Context(), q)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no_forecast", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, forecastsResponse{Rows: rows, Count: len(rows)})
}

type refreshRequest struct {
	StoreID string `json:"store_id"`
}

type refreshResponse struct {
	Status string   `json:"status"`
	JobIDs []string `json:"job_ids"`
}

// HandleRefresh handles POST /api/v1/forecasts/refresh. An empty or absent
// store_id refreshes the whole network.
func (h *ForecastsHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req refreshRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
			return
		}
	}

	ids, err := h.deps.Refresh(r.Context(), req.StoreID)
	switch {
	case err == nil:
		writeJSON(w, http.StatusAccepted, refreshResponse{Status: "accepted", JobIDs: ids})
	case errors.Is(err, forecast.ErrUnknownStore):
		writeError(w, http.StatusNotFound, "unknown_store", err)
	case errors.Is(err, forecast.ErrStoreInactive):
		writeError(w, http.StatusConflict, "store_inactive", err)
	case errors.Is(err, app.ErrRefreshInFlight):
		writeError(w, http.StatusConflict, "refresh_in_flight", err)
	case errors.Is(err, app.ErrBackpressure):
		writeError(w, http.StatusTooManyRequests, "backpressure", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
