// Package api declares HTTP contracts and route registration helpers for
// the forecasting dashboard API.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nurtas/bloomcast/internal/adapters/modelregistry"
	"github.com/nurtas/bloomcast/internal/adapters/repository"
	"github.com/nurtas/bloomcast/internal/app"
	"github.com/nurtas/bloomcast/internal/domain/forecast"
	"github.com/nurtas/bloomcast/internal/domain/model"
	"github.com/nurtas/bloomcast/internal/domain/stores"
	"github.com/nurtas/bloomcast/pkg/metrics"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	Mode() string
	Uptime() time.Duration

	Status(ctx context.Context) (app.Status, error)

	Forecasts(ctx context.Context, q repository.SnapshotQuery) ([]model.ForecastRow, error)
	Refresh(ctx context.Context, storeID string) ([]string, error)
	Consolidation(ctx context.Context) ([]forecast.ConsolidationDay, error)

	Stores(ctx context.Context) []stores.Entry
	AddStore(ctx context.Context, id string, n stores.NewStore) error

	Corrections(ctx context.Context, store string) ([]model.Correction, error)
	AddCorrection(ctx context.Context, c model.Correction) (model.Correction, error)

	ModelsDocument(ctx context.Context) modelregistry.Document
	TrainModel(ctx context.Context, algorithm string) (modelregistry.Record, bool, error)

	StorePerformance(ctx context.Context, storeID string) (forecast.StorePerformance, error)
	NetworkPerformance(ctx context.Context) forecast.NetworkPerformance
	Weather(ctx context.Context, days int) forecast.Weather
}

// Server wires HTTP routes for the dashboard API.
type Server struct {
	healthHandler        *HealthHandler
	statusHandler        *StatusHandler
	forecastsHandler     *ForecastsHandler
	consolidationHandler *ConsolidationHandler
	storesHandler        *StoresHandler
	correctionsHandler   *CorrectionsHandler
	modelsHandler        *ModelsHandler
	performanceHandler   *PerformanceHandler
	weatherHandler       *WeatherHandler
	dashboardHandler     *dashboardHandler
}

// NewServer creates an API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:        NewHealthHandler(deps),
		statusHandler:        NewStatusHandler(deps),
		forecastsHandler:     NewForecastsHandler(deps),
		consolidationHandler: NewConsolidationHandler(deps),
		storesHandler:        NewStoresHandler(deps),
		correctionsHandler:   NewCorrectionsHandler(deps),
		modelsHandler:        NewModelsHandler(deps),
		performanceHandler:   NewPerformanceHandler(deps),
		weatherHandler:       NewWeatherHandler(deps),
		dashboardHandler:     newDashboardHandler(),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
	mux.HandleFunc("/dashboard", s.dashboardHandler.HandleDashboard)

	mux.HandleFunc("/api/v1/status", MetricsMiddleware(s.statusHandler.HandleStatus, "status"))
	mux.HandleFunc("/api/v1/forecasts", MetricsMiddleware(s.forecastsHandler.HandleForecasts, "forecasts"))
	mux.HandleFunc("/api/v1/forecasts/refresh", MetricsMiddleware(s.forecastsHandler.HandleRefresh, "forecasts_refresh"))
	mux.HandleFunc("/api/v1/consolidation", MetricsMiddleware(s.consolidationHandler.HandleConsolidation, "consolidation"))
	mux.HandleFunc("/api/v1/stores", MetricsMiddleware(s.storesHandler.HandleStores, "stores"))
	mux.HandleFunc("/api/v1/corrections", MetricsMiddleware(s.correctionsHandler.HandleCorrections, "corrections"))
	mux.HandleFunc("/api/v1/models", MetricsMiddleware(s.modelsHandler.HandleModels, "models"))
	mux.HandleFunc("/api/v1/models/train", MetricsMiddleware(s.modelsHandler.HandleTrain, "models_train"))
	mux.HandleFunc("/api/v1/performance", MetricsMiddleware(s.performanceHandler.HandlePerformance, "performance"))
	mux.HandleFunc("/api/v1/weather", MetricsMiddleware(s.weatherHandler.HandleWeather, "weather"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
