package stores_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/nurtas/bloomcast/internal/domain/stores"
	"github.com/nurtas/bloomcast/internal/domain/types"
	"github.com/smartystreets/goconvey/convey"
)

func TestManagerLoad(t *testing.T) {
	convey.Convey("Given a stores manager", t, func() {
		ctx := context.Background()
		dir := t.TempDir()
		path := filepath.Join(dir, "stores.json")

		convey.Convey("When the config file does not exist", func() {
			m := stores.NewManager(path)
			err := m.Load(ctx)

			convey.Convey("Then the default network should be created and written", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(m.All()), convey.ShouldEqual, 3)

				raw, readErr := os.ReadFile(path)
				convey.So(readErr, convey.ShouldBeNil)

				var doc stores.Document
				convey.So(json.Unmarshal(raw, &doc), convey.ShouldBeNil)
				convey.So(doc.Stores, convey.ShouldContainKey, "almaty_1")
				convey.So(doc.Stores["almaty_1"].Name, convey.ShouldEqual, "Алматы ЦУМ")
				convey.So(doc.Stores["almaty_2"].Type, convey.ShouldEqual, types.StoreMassMarket)
				convey.So(doc.GlobalSettings.Currency, convey.ShouldEqual, "KZT")
				convey.So(doc.GlobalSettings.Timezone, convey.ShouldEqual, "Asia/Almaty")
			})

			convey.Convey("Then a second load should read the file back", func() {
				convey.So(err, convey.ShouldBeNil)

				again := stores.NewManager(path)
				convey.So(again.Load(ctx), convey.ShouldBeNil)
				s, ok := again.Get("almaty_3")
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(s.ForecastHorizonDays, convey.ShouldEqual, 10)
				convey.So(s.WeatherSensitivity, convey.ShouldEqual, 0.4)
			})
		})

		convey.Convey("When the config file fails schema validation", func() {
			bad := `{"stores": {"x": {"name": "No Address"}}, "global_settings": {}}`
			convey.So(os.WriteFile(path, []byte(bad), 0o600), convey.ShouldBeNil)

			m := stores.NewManager(path)
			err := m.Load(ctx)

			convey.Convey("Then the load should fail with a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, stores.ErrInvalidStores), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the config file is not JSON", func() {
			convey.So(os.WriteFile(path, []byte("not json"), 0o600), convey.ShouldBeNil)

			m := stores.NewManager(path)
			err := m.Load(ctx)

			convey.Convey("Then the load should fail", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestManagerAdd(t *testing.T) {
	convey.Convey("Given a loaded stores manager", t, func() {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "stores.json")
		m := stores.NewManager(path)
		convey.So(m.Load(ctx), convey.ShouldBeNil)

		valid := stores.NewStore{
			Name:             "Алматы Esentai Mall",
			Address:          "пр. Аль-Фараби, 77/8",
			Type:             types.StorePremium,
			SizeCategory:     "large",
			TargetAudience:   "luxury_customers",
			AvgDailyVisitors: 180,
		}

		convey.Convey("When adding a store with all required fields", func() {
			err := m.Add(ctx, "almaty_4", valid)

			convey.Convey("Then it should be stored with defaults filled", func() {
				convey.So(err, convey.ShouldBeNil)

				s, ok := m.Get("almaty_4")
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(s.Active, convey.ShouldBeTrue)
				convey.So(s.WeatherSensitivity, convey.ShouldEqual, 0.25)
				convey.So(s.ForecastHorizonDays, convey.ShouldEqual, 7)
				convey.So(s.SafetyStockRatio, convey.ShouldEqual, 1.2)
				convey.So(s.SeasonalMultipliers[types.SeasonSpring], convey.ShouldEqual, 1.1)
				convey.So(s.HolidayMultipliers["WOMENS_DAY"], convey.ShouldEqual, 4.0)
			})

			convey.Convey("Then the addition should be persisted", func() {
				convey.So(err, convey.ShouldBeNil)

				again := stores.NewManager(path)
				convey.So(again.Load(ctx), convey.ShouldBeNil)
				_, ok := again.Get("almaty_4")
				convey.So(ok, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When adding a store with explicit overrides", func() {
			horizon := 21
			inactive := false
			custom := valid
			custom.ForecastHorizonDays = &horizon
			custom.Active = &inactive

			err := m.Add(ctx, "almaty_5", custom)

			convey.Convey("Then the overrides should win over defaults", func() {
				convey.So(err, convey.ShouldBeNil)

				s, ok := m.Get("almaty_5")
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(s.ForecastHorizonDays, convey.ShouldEqual, 21)
				convey.So(s.Active, convey.ShouldBeFalse)
			})

			convey.Convey("Then the inactive store should not list as active", func() {
				convey.So(err, convey.ShouldBeNil)

				for _, e := range m.Active() {
					convey.So(e.ID, convey.ShouldNotEqual, "almaty_5")
				}
			})
		})

		convey.Convey("When a required field is missing", func() {
			broken := valid
			broken.Address = ""

			err := m.Add(ctx, "almaty_6", broken)

			convey.Convey("Then it should fail naming the field", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, stores.ErrMissingField), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "address")
			})
		})

		convey.Convey("When the store type is unknown", func() {
			broken := valid
			broken.Type = "boutique"

			err := m.Add(ctx, "almaty_7", broken)

			convey.Convey("Then it should fail validation", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, stores.ErrInvalidStores), convey.ShouldBeTrue)
			})
		})
	})
}

func TestManagerListing(t *testing.T) {
	convey.Convey("Given the default network", t, func() {
		ctx := context.Background()
		m := stores.NewManager(filepath.Join(t.TempDir(), "stores.json"))
		convey.So(m.Load(ctx), convey.ShouldBeNil)

		convey.Convey("Then Active should return entries sorted by id", func() {
			entries := m.Active()
			convey.So(len(entries), convey.ShouldEqual, 3)
			convey.So(entries[0].ID, convey.ShouldEqual, "almaty_1")
			convey.So(entries[1].ID, convey.ShouldEqual, "almaty_2")
			convey.So(entries[2].ID, convey.ShouldEqual, "almaty_3")
		})

		convey.Convey("Then Settings should expose the global block", func() {
			gs := m.Settings()
			convey.So(gs.ModelRetrainFrequencyDays, convey.ShouldEqual, 7)
			convey.So(gs.MaxForecastHorizonDays, convey.ShouldEqual, 30)
			convey.So(gs.AnomalyDetectionThreshold, convey.ShouldEqual, 2.5)
		})

		convey.Convey("Then Get should miss on unknown ids", func() {
			_, ok := m.Get("astana_1")
			convey.So(ok, convey.ShouldBeFalse)
		})
	})
}
