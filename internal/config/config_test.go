package config_test

import (
	"context"
	"runtime"
	"testing"

	"github.com/nurtas/bloomcast/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":8501")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.DataDir, convey.ShouldEqual, "data")
			convey.So(cfg.CredentialsPath, convey.ShouldEqual, "credentials.json")
			convey.So(cfg.TunnelCommand, convey.ShouldEqual, "npx localtunnel")
			convey.So(cfg.RefreshQueueSize, convey.ShouldEqual, 64)
			convey.So(cfg.RefreshWorkers, convey.ShouldBeGreaterThanOrEqualTo, 2)
			convey.So(cfg.RefreshWorkers, convey.ShouldEqual, max(2, runtime.NumCPU()/2))
			convey.So(cfg.ForecastHorizonDays, convey.ShouldEqual, 7)
			convey.So(cfg.TrainingDays, convey.ShouldEqual, 90)
			convey.So(cfg.TrainingTestRatio, convey.ShouldEqual, 0.2)
		})

		convey.Convey("Then artifact paths should stay unresolved until Load", func() {
			convey.So(cfg.DBPath, convey.ShouldBeEmpty)
			convey.So(cfg.StoresConfigPath, convey.ShouldBeEmpty)
			convey.So(cfg.ModelConfigPath, convey.ShouldBeEmpty)
		})
	})
}
