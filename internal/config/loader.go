package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New(ctx))
//  2. file (YAML) if BLOOMCAST_CONFIG is set
//  3. env (prefix BLOOMCAST_)
func Load(ctx context.Context) (*Config, error) {
	// Start with defaults
	base := New(ctx)

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("BLOOMCAST_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: BLOOMCAST_ADDR, BLOOMCAST_REFRESH_WORKERS, ...
	// Map env keys like BLOOMCAST_DB_PATH -> db_path (flat keys).
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("BLOOMCAST_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "bloomcast_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg.resolvePaths()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// resolvePaths fills artifact paths left empty beneath DataDir.
func (c *Config) resolvePaths() {
	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if c.DBPath == "" {
		c.DBPath = filepath.Join(c.DataDir, "bloomcast.db")
	}
	if c.StoresConfigPath == "" {
		c.StoresConfigPath = filepath.Join(c.DataDir, "stores.json")
	}
	if c.ModelConfigPath == "" {
		c.ModelConfigPath = filepath.Join(c.DataDir, "model_config.json")
	}
}

func (c *Config) validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.RefreshQueueSize <= 0 {
		return fmt.Errorf("%w: refresh_queue_size must be positive", ErrInvalidConfig)
	}
	if c.RefreshWorkers <= 0 {
		return fmt.Errorf("%w: refresh_workers must be positive", ErrInvalidConfig)
	}
	if c.TrainingTestRatio <= 0 || c.TrainingTestRatio >= 1 {
		return fmt.Errorf("%w: training_test_ratio must be in (0, 1)", ErrInvalidConfig)
	}
	if c.HealthIntervalSec <= 0 || c.HealthTimeoutSec <= 0 || c.StartupTimeoutSec <= 0 {
		return fmt.Errorf("%w: health and startup timings must be positive", ErrInvalidConfig)
	}
	if c.TunnelStartTimeoutSec <= 0 {
		return fmt.Errorf("%w: tunnel_start_timeout_sec must be positive", ErrInvalidConfig)
	}
	return nil
}
