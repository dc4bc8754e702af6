// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) returning a Config populated with defaults.
// - Load(ctx) layers file and environment on top of the defaults.
// - External errors must be wrapped via this package's sentinel errors.
package config

import (
	"context"
	"runtime"
)

// SpreadsheetURLSentinel is the value the spreadsheet URL falls back to when
// the operator supplies none; it selects demo mode for the sheets
// integration.
const SpreadsheetURLSentinel = "demo"

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the dashboard HTTP listen address.
	Addr string `koanf:"addr"`

	// DataDir is where generated artifacts live. Path fields left empty are
	// resolved beneath it.
	DataDir string `koanf:"data_dir"`

	// DBPath locates the sqlite sales database.
	DBPath string `koanf:"db_path"`

	// StoresConfigPath locates the store network configuration document.
	StoresConfigPath string `koanf:"stores_config_path"`

	// ModelConfigPath locates the model-metrics JSON document.
	ModelConfigPath string `koanf:"model_config_path"`

	// HolidaysCSVPath optionally overrides the built-in holiday calendar.
	HolidaysCSVPath string `koanf:"holidays_csv_path"`

	// CredentialsPath is the Google service-account key file. A missing file
	// selects demo mode.
	CredentialsPath string `koanf:"credentials_path"`

	// SpreadsheetURL is the Google Sheets document to sync with. Empty falls
	// back to SpreadsheetURLSentinel.
	SpreadsheetURL string `koanf:"spreadsheet_url"`

	// POSExportDir is where Inspiro CSV exports are dropped.
	POSExportDir string `koanf:"pos_export_dir"`

	// POSAPIBase and POSAPIKey enable the vendor API path when set.
	POSAPIBase string `koanf:"pos_api_base"`
	POSAPIKey  string `koanf:"pos_api_key"`

	// TunnelCommand is the command line that exposes the dashboard publicly.
	// The listen port is appended as "--port N".
	TunnelCommand string `koanf:"tunnel_command"`

	// TunnelURLPattern extracts the public URL from tunnel stdout.
	TunnelURLPattern string `koanf:"tunnel_url_pattern"`

	// TunnelStartTimeoutSec bounds the wait for the public URL.
	TunnelStartTimeoutSec int `koanf:"tunnel_start_timeout_sec"`

	// HealthIntervalSec is the keep-alive polling period.
	HealthIntervalSec int `koanf:"health_interval_sec"`

	// HealthTimeoutSec bounds a single health probe.
	HealthTimeoutSec int `koanf:"health_timeout_sec"`

	// StartupTimeoutSec bounds the wait for the dashboard to come up.
	StartupTimeoutSec int `koanf:"startup_timeout_sec"`

	// RefreshQueueSize bounds the in-memory forecast refresh queue.
	RefreshQueueSize int `koanf:"refresh_queue_size"`

	// RefreshWorkers sets the number of forecast workers.
	RefreshWorkers int `koanf:"refresh_workers"`

	// ForecastHorizonDays is the default horizon when a store sets none.
	ForecastHorizonDays int `koanf:"forecast_horizon_days"`

	// TrainingDays sizes the synthetic training window.
	TrainingDays int `koanf:"training_days"`

	// TrainingTestRatio is the chronological holdout share.
	TrainingTestRatio float64 `koanf:"training_test_ratio"`

	// RandSeed pins the demand generators; zero means time-seeded.
	RandSeed int64 `koanf:"rand_seed"`
}

// New creates a Config populated with defaults. Context is accepted first to
// satisfy the project-wide convention; it is reserved for future use.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:              "info",
		Addr:                  ":8501",
		DataDir:               "data",
		CredentialsPath:       "credentials.json",
		POSExportDir:          ".",
		TunnelCommand:         "npx localtunnel",
		TunnelURLPattern:      `https://[a-z0-9-]+\.loca\.lt`,
		TunnelStartTimeoutSec: 45,
		HealthIntervalSec:     60,
		HealthTimeoutSec:      5,
		StartupTimeoutSec:     30,
		RefreshQueueSize:      64,
		RefreshWorkers:        max(2, runtime.NumCPU()/2),
		ForecastHorizonDays:   7,
		TrainingDays:          90,
		TrainingTestRatio:     0.2,
	}
}
