package cli

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/nurtas/bloomcast/internal/adapters/http/api"
	"github.com/nurtas/bloomcast/internal/adapters/http/site"
	"github.com/nurtas/bloomcast/internal/adapters/http/swagger"
	"github.com/nurtas/bloomcast/internal/adapters/sheets"
	"github.com/nurtas/bloomcast/internal/app"
	"github.com/nurtas/bloomcast/internal/config"
	"github.com/nurtas/bloomcast/pkg/logger"
	"github.com/nurtas/bloomcast/pkg/metrics"
)

const systemMetricsInterval = 10 * time.Second

// buildService constructs the application service, attaching the spreadsheet
// client when credentials and a real spreadsheet URL are configured.
func (r *rootState) buildService(ctx context.Context) *app.Service {
	opts := []app.Option{app.WithConfig(r.cfg)}
	if sc := r.sheetsClient(ctx); sc != nil {
		opts = append(opts, app.WithSheets(sc))
	}
	return app.New(opts...)
}

// sheetsClient returns a spreadsheet client, or nil when the configuration
// selects demo mode. Invalid credentials degrade to demo with a warning
// rather than failing the command.
func (r *rootState) sheetsClient(ctx context.Context) app.Spreadsheet {
	url := r.cfg.SpreadsheetURL
	if url == "" || url == config.SpreadsheetURLSentinel {
		return nil
	}

	log := logger.Named("cli")
	if _, err := sheets.ValidateCredentialsFile(r.cfg.CredentialsPath); err != nil {
		log.Warn(ctx, "google credentials invalid, staying in demo mode", logger.Err(err))
		return nil
	}
	client, err := sheets.NewClient(ctx, r.cfg.CredentialsPath, url)
	if err != nil {
		log.Warn(ctx, "sheets client unavailable, staying in demo mode", logger.Err(err))
		return nil
	}
	return client
}

// buildHandler wires every HTTP surface onto one mux: the landing page, the
// API reference and the dashboard API.
func buildHandler(ctx context.Context, svc *app.Service) http.Handler {
	mux := http.NewServeMux()
	site.Register(ctx, mux)
	swagger.Register(ctx, mux)
	api.NewServer(svc).Register(ctx, mux)
	return mux
}

// startSystemMetricsUpdater refreshes process-level gauges until ctx ends.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			var m runtime.MemStats
			runtime.ReadMemStats(&m)
			metrics.UpdateSystemMemoryUsage(m.Alloc)
			metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
		}
	}
}
