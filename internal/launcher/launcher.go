// Package launcher runs the full deployment flow: report the configured
// credentials, bring the dashboard server up, expose it through the tunnel
// and keep polling its health endpoint until interrupted.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/nurtas/bloomcast/internal/adapters/sheets"
	"github.com/nurtas/bloomcast/internal/adapters/tunnel"
	"github.com/nurtas/bloomcast/internal/config"
	"github.com/nurtas/bloomcast/pkg/logger"
	"github.com/nurtas/bloomcast/pkg/metrics"
)

const shutdownTimeout = 10 * time.Second

// Dashboard is the slice of the application service the launcher needs.
type Dashboard interface {
	Mode() string
	SetTunnelURL(url string)
}

// Option applies a configuration option to the launcher.
type Option func(*Launcher)

// WithLogger sets the logger.
func WithLogger(log logger.Logger) Option {
	return func(l *Launcher) {
		if log != nil {
			l.log = log
		}
	}
}

// WithoutTunnel skips the tunnel subprocess; the dashboard stays local.
func WithoutTunnel() Option {
	return func(l *Launcher) {
		l.noTunnel = true
	}
}

// Launcher owns the dashboard server lifecycle and the keep-alive loop.
type Launcher struct {
	cfg      *config.Config
	svc      Dashboard
	handler  http.Handler
	noTunnel bool
	log      logger.Logger
}

// New creates a launcher serving handler on cfg.Addr.
func New(cfg *config.Config, svc Dashboard, handler http.Handler, opts ...Option) *Launcher {
	l := &Launcher{
		cfg:     cfg,
		svc:     svc,
		handler: handler,
		log:     logger.Named("launcher"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run blocks until ctx is canceled or the server fails. Tunnel failure is
// non-fatal: the dashboard stays reachable locally and the launcher says so.
func (l *Launcher) Run(ctx context.Context) error {
	l.reportCredentials(ctx)

	ln, err := net.Listen("tcp", l.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", l.cfg.Addr, err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	baseURL := fmt.Sprintf("http://127.0.0.1:%d", port)

	srv := &http.Server{
		Handler:           l.handler,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(ln)
	}()

	if err := l.waitReady(ctx, baseURL, serveErr); err != nil {
		l.shutdown(srv)
		return err
	}
	l.log.Info(ctx, "dashboard up",
		logger.String("local_url", baseURL),
		logger.String("mode", l.svc.Mode()))

	var runner *tunnel.Runner
	if !l.noTunnel {
		runner = l.startTunnel(ctx, port)
	}

	err = l.keepAlive(ctx, baseURL, serveErr)

	if runner != nil {
		runner.Stop()
	}
	l.shutdown(srv)
	return err
}

// reportCredentials tells the operator which identity the sheets integration
// will use, or that the dashboard runs on demo data.
func (l *Launcher) reportCredentials(ctx context.Context) {
	creds, err := sheets.ValidateCredentialsFile(l.cfg.CredentialsPath)
	if err != nil {
		l.log.Info(ctx, "no valid google credentials, running on demo data",
			logger.String("path", l.cfg.CredentialsPath))
		return
	}
	l.log.Info(ctx, "google service account configured",
		logger.String("client_email", creds.ClientEmail),
		logger.String("project_id", creds.ProjectID))
}

// waitReady polls /healthz until it answers 200, the server fails, or the
// startup timeout passes.
func (l *Launcher) waitReady(ctx context.Context, baseURL string, serveErr <-chan error) error {
	deadline := time.After(time.Duration(l.cfg.StartupTimeoutSec) * time.Second)
	client := &http.Client{Timeout: time.Duration(l.cfg.HealthTimeoutSec) * time.Second}

	for {
		if l.probe(ctx, client, baseURL) {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-serveErr:
			return fmt.Errorf("%w: %v", ErrServerClosed, err)
		case <-deadline:
			return ErrNotReady
		case <-time.After(500 * time.Millisecond):
		}
	}
}

// startTunnel launches the tunneling subprocess and publishes the public URL.
func (l *Launcher) startTunnel(ctx context.Context, port int) *tunnel.Runner {
	runner, err := tunnel.New(l.cfg.TunnelCommand, port,
		tunnel.WithURLPattern(l.cfg.TunnelURLPattern),
		tunnel.WithStartTimeout(time.Duration(l.cfg.TunnelStartTimeoutSec)*time.Second))
	if err != nil {
		l.log.Warn(ctx, "tunnel not configured, dashboard reachable locally only", logger.Err(err))
		return nil
	}

	url, err := runner.Start(ctx)
	if err != nil {
		l.log.Warn(ctx, "tunnel failed to start, dashboard reachable locally only", logger.Err(err))
		return nil
	}

	l.svc.SetTunnelURL(url)
	l.log.Info(ctx, "dashboard exposed", logger.String("public_url", url))
	return runner
}

// keepAlive polls /healthz until ctx is canceled. A failed probe logs that a
// restart is recommended; the loop never restarts anything itself.
func (l *Launcher) keepAlive(ctx context.Context, baseURL string, serveErr <-chan error) error {
	client := &http.Client{Timeout: time.Duration(l.cfg.HealthTimeoutSec) * time.Second}
	ticker := time.NewTicker(time.Duration(l.cfg.HealthIntervalSec) * time.Second)
	defer ticker.Stop()

	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-serveErr:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("%w: %v", ErrServerClosed, err)
		case <-ticker.C:
			uptime := time.Since(start)
			if l.probe(ctx, client, baseURL) {
				metrics.RecordHealthCheck("ok")
				metrics.UpdateUptime(uptime.Seconds())
				l.log.Info(ctx, "dashboard healthy", logger.Duration("uptime", uptime))
				continue
			}
			metrics.RecordHealthCheck("fail")
			l.log.Warn(ctx, "dashboard unreachable, restart recommended",
				logger.Duration("uptime", uptime))
		}
	}
}

func (l *Launcher) probe(ctx context.Context, client *http.Client, baseURL string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/healthz", nil)
	if err != nil {
		return false
	}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close() //nolint:errcheck // nothing useful to do on close failure
	return resp.StatusCode == http.StatusOK
}

func (l *Launcher) shutdown(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	_ = srv.Shutdown(ctx)
}
