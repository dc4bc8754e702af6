package api

import (
	"net/http"
)

// defaultWeatherDays sizes the outlook when the query does not say.
const defaultWeatherDays = 7

// WeatherHandler serves the stubbed weather outlook.
type WeatherHandler struct {
	deps Dependencies
}

// NewWeatherHandler creates a weather handler.
func NewWeatherHandler(deps Dependencies) *WeatherHandler {
	return &WeatherHandler{deps: deps}
}

// HandleWeather handles GET /api/v1/weather?days= requests.
func (h *WeatherHandler) HandleWeather(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	days := queryInt(r, "days", defaultWeatherDays)
	writeJSON(w, http.StatusOK, h.deps.Weather(r.Context(), days))
}
