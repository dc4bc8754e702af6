package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/nurtas/bloomcast/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			// Clear any existing environment variables
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8501")
				convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
				convey.So(cfg.RefreshQueueSize, convey.ShouldEqual, 64)
				convey.So(cfg.ForecastHorizonDays, convey.ShouldEqual, 7)
				convey.So(cfg.TrainingDays, convey.ShouldEqual, 90)
				convey.So(cfg.TrainingTestRatio, convey.ShouldEqual, 0.2)
				convey.So(cfg.HealthIntervalSec, convey.ShouldEqual, 60)
			})

			convey.Convey("Then artifact paths should resolve beneath the data dir", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.DataDir, convey.ShouldEqual, "data")
				convey.So(cfg.DBPath, convey.ShouldEqual, filepath.Join("data", "bloomcast.db"))
				convey.So(cfg.StoresConfigPath, convey.ShouldEqual, filepath.Join("data", "stores.json"))
				convey.So(cfg.ModelConfigPath, convey.ShouldEqual, filepath.Join("data", "model_config.json"))
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			// Set environment variables
			_ = os.Setenv("BLOOMCAST_ADDR", ":8080")
			_ = os.Setenv("BLOOMCAST_LOG_LEVEL", "debug")
			_ = os.Setenv("BLOOMCAST_REFRESH_QUEUE_SIZE", "128")
			_ = os.Setenv("BLOOMCAST_REFRESH_WORKERS", "4")
			_ = os.Setenv("BLOOMCAST_FORECAST_HORIZON_DAYS", "14")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
				convey.So(cfg.RefreshQueueSize, convey.ShouldEqual, 128)
				convey.So(cfg.RefreshWorkers, convey.ShouldEqual, 4)
				convey.So(cfg.ForecastHorizonDays, convey.ShouldEqual, 14)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			// Create a temporary YAML config file
			yamlContent := `
addr: ":9090"
data_dir: "/var/lib/bloomcast"
refresh_queue_size: 256
refresh_workers: 8
training_days: 120
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			// Set the config file path
			_ = os.Setenv("BLOOMCAST_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.DataDir, convey.ShouldEqual, "/var/lib/bloomcast")
				convey.So(cfg.RefreshQueueSize, convey.ShouldEqual, 256)
				convey.So(cfg.RefreshWorkers, convey.ShouldEqual, 8)
				convey.So(cfg.TrainingDays, convey.ShouldEqual, 120)
			})

			convey.Convey("Then empty artifact paths should follow the data dir", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.DBPath, convey.ShouldEqual, filepath.Join("/var/lib/bloomcast", "bloomcast.db"))
				convey.So(cfg.StoresConfigPath, convey.ShouldEqual, filepath.Join("/var/lib/bloomcast", "stores.json"))
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			// Create a YAML config file
			yamlContent := `
addr: ":9090"
refresh_queue_size: 256
refresh_workers: 8
training_days: 120
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			// Set both file and environment variables
			_ = os.Setenv("BLOOMCAST_CONFIG", tmpFile)
			_ = os.Setenv("BLOOMCAST_ADDR", ":8080")        // This should override the file
			_ = os.Setenv("BLOOMCAST_REFRESH_WORKERS", "3") // This should override the file
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")         // Overridden by env
				convey.So(cfg.RefreshQueueSize, convey.ShouldEqual, 256) // From file
				convey.So(cfg.RefreshWorkers, convey.ShouldEqual, 3)     // Overridden by env
				convey.So(cfg.TrainingDays, convey.ShouldEqual, 120)     // From file
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			// Create an invalid YAML file
			invalidYaml := `invalid: yaml: content: [`
			tmpFile := createTempConfigFile(invalidYaml)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("BLOOMCAST_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("BLOOMCAST_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("BLOOMCAST_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with partial YAML file", func() {
			// Create a YAML file with only some fields
			yamlContent := `
addr: ":9090"
refresh_workers: 6
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("BLOOMCAST_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should merge with defaults for missing fields", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")           // From file
				convey.So(cfg.RefreshWorkers, convey.ShouldEqual, 6)       // From file
				convey.So(cfg.RefreshQueueSize, convey.ShouldEqual, 64)    // From defaults
				convey.So(cfg.TrainingDays, convey.ShouldEqual, 90)        // From defaults
				convey.So(cfg.ForecastHorizonDays, convey.ShouldEqual, 7)  // From defaults
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("BLOOMCAST_REFRESH_QUEUE_SIZE", "invalid")
			_ = os.Setenv("BLOOMCAST_REFRESH_WORKERS", "not_a_number")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func TestConfigLoaderValidation(t *testing.T) {
	convey.Convey("Given config loader validation", t, func() {
		ctx := context.Background()

		convey.Convey("When the refresh queue size is zero", func() {
			_ = os.Setenv("BLOOMCAST_REFRESH_QUEUE_SIZE", "0")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "refresh_queue_size")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the worker count is negative", func() {
			_ = os.Setenv("BLOOMCAST_REFRESH_WORKERS", "-2")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "refresh_workers")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the training test ratio is out of range", func() {
			_ = os.Setenv("BLOOMCAST_TRAINING_TEST_RATIO", "1.5")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "training_test_ratio")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the health interval is zero", func() {
			_ = os.Setenv("BLOOMCAST_HEALTH_INTERVAL_SEC", "0")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When an explicit db path is supplied", func() {
			_ = os.Setenv("BLOOMCAST_DB_PATH", "/tmp/custom.db")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then the explicit path should win over data dir resolution", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.DBPath, convey.ShouldEqual, "/tmp/custom.db")
				convey.So(cfg.StoresConfigPath, convey.ShouldEqual, filepath.Join("data", "stores.json"))
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"BLOOMCAST_CONFIG",
		"BLOOMCAST_ADDR",
		"BLOOMCAST_LOG_LEVEL",
		"BLOOMCAST_DATA_DIR",
		"BLOOMCAST_DB_PATH",
		"BLOOMCAST_REFRESH_QUEUE_SIZE",
		"BLOOMCAST_REFRESH_WORKERS",
		"BLOOMCAST_FORECAST_HORIZON_DAYS",
		"BLOOMCAST_TRAINING_DAYS",
		"BLOOMCAST_TRAINING_TEST_RATIO",
		"BLOOMCAST_HEALTH_INTERVAL_SEC",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "bloomcast-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
