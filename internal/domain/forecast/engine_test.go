package forecast_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/nurtas/bloomcast/internal/domain/forecast"
	"github.com/nurtas/bloomcast/internal/domain/holidays"
	"github.com/nurtas/bloomcast/internal/domain/stores"
	"github.com/nurtas/bloomcast/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func loadNetwork(t *testing.T) *stores.Manager {
	t.Helper()
	m := stores.NewManager(filepath.Join(t.TempDir(), "stores.json"))
	if err := m.Load(context.Background()); err != nil {
		t.Fatalf("load stores: %v", err)
	}
	return m
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

type fixedStock struct{ n int }

func (f fixedStock) StockFor(context.Context, string, string) (int, bool, error) {
	return f.n, true, nil
}

func TestEngineGenerateStore(t *testing.T) {
	Convey("Given an engine over the default network", t, func() {
		ctx := context.Background()
		mgr := loadNetwork(t)
		cal := holidays.NewCalendar()
		wednesday := time.Date(2025, time.June, 4, 9, 0, 0, 0, time.UTC)

		eng := forecast.NewEngine(mgr, cal,
			forecast.WithSeed(42),
			forecast.WithNow(fixedClock(wednesday)),
		)

		Convey("When generating a premium store forecast for 7 days", func() {
			rows, err := eng.GenerateStore(ctx, "almaty_1", 7)

			Convey("Then it should cover every day and SKU of the premium assortment", func() {
				So(err, ShouldBeNil)
				So(len(rows), ShouldEqual, 7*6)
				So(rows[0].Date, ShouldEqual, "2025-06-04")
				So(rows[0].Weekday, ShouldEqual, "Wednesday")
				So(rows[0].StoreID, ShouldEqual, "almaty_1")
				So(rows[0].StoreName, ShouldEqual, "Алматы ЦУМ")
				So(rows[0].SKU, ShouldEqual, "Роза_Premium_80см")
				So(rows[len(rows)-1].Date, ShouldEqual, "2025-06-10")
			})

			Convey("Then demand, stock and purchase should respect the model", func() {
				So(err, ShouldBeNil)
				for _, r := range rows {
					So(r.Demand, ShouldBeGreaterThanOrEqualTo, 0)
					So(r.Stock, ShouldBeGreaterThanOrEqualTo, 0)
					So(r.Stock, ShouldBeLessThan, 25)
					So(r.Purchase, ShouldBeGreaterThanOrEqualTo, 0)

					switch {
					case r.Purchase > r.Demand:
						So(r.Priority, ShouldEqual, types.PriorityHigh)
					case float64(r.Purchase) > 0.5*float64(r.Demand):
						So(r.Priority, ShouldEqual, types.PriorityMedium)
					default:
						So(r.Priority, ShouldEqual, types.PriorityLow)
					}
				}
			})

			Convey("Then factors should reflect the store configuration", func() {
				So(err, ShouldBeNil)
				for _, r := range rows {
					// June is summer; almaty_1 configures summer at 1.0.
					So(r.SeasonalFactor, ShouldEqual, 1.0)
					So(r.HolidayFactor, ShouldEqual, 1.0)
					So(r.WeatherFactor, ShouldBeBetweenOrEqual, 0.7, 1.3)
				}
			})
		})

		Convey("When generating with a non-positive horizon", func() {
			rows, err := eng.GenerateStore(ctx, "almaty_1", 0)

			Convey("Then the store's own horizon should apply", func() {
				So(err, ShouldBeNil)
				So(len(rows), ShouldEqual, 14*6)
			})
		})

		Convey("When the store is unknown", func() {
			_, err := eng.GenerateStore(ctx, "astana_9", 7)

			Convey("Then the engine should reject it", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, forecast.ErrUnknownStore), ShouldBeTrue)
			})
		})

		Convey("When the store is inactive", func() {
			inactive := false
			So(mgr.Add(ctx, "almaty_off", stores.NewStore{
				Name:             "Closed",
				Address:          "x",
				Type:             types.StoreMassMarket,
				SizeCategory:     "small",
				TargetAudience:   "families",
				AvgDailyVisitors: 10,
				Active:           &inactive,
			}), ShouldBeNil)

			_, err := eng.GenerateStore(ctx, "almaty_off", 7)

			Convey("Then the engine should reject it", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, forecast.ErrStoreInactive), ShouldBeTrue)
			})
		})

		Convey("When a stock source is plugged in", func() {
			stocked := forecast.NewEngine(mgr, cal,
				forecast.WithSeed(42),
				forecast.WithNow(fixedClock(wednesday)),
				forecast.WithStockSource(fixedStock{n: 10}),
			)

			rows, err := stocked.GenerateStore(ctx, "almaty_2", 3)

			Convey("Then rows should carry the sourced stock", func() {
				So(err, ShouldBeNil)
				for _, r := range rows {
					So(r.Stock, ShouldEqual, 10)
				}
			})
		})

		Convey("When the context is cancelled", func() {
			cancelled, cancel := context.WithCancel(ctx)
			cancel()

			_, err := eng.GenerateStore(cancelled, "almaty_1", 7)

			Convey("Then generation should stop", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestEngineHolidayBoost(t *testing.T) {
	Convey("Given a forecast window opening on Women's Day", t, func() {
		ctx := context.Background()
		mgr := loadNetwork(t)
		cal := holidays.NewCalendar()
		womensDay := time.Date(2025, time.March, 8, 8, 0, 0, 0, time.UTC)

		eng := forecast.NewEngine(mgr, cal,
			forecast.WithSeed(7),
			forecast.WithNow(fixedClock(womensDay)),
		)

		rows, err := eng.GenerateStore(ctx, "almaty_1", 2)

		Convey("Then the holiday factor should apply only on the holiday", func() {
			So(err, ShouldBeNil)
			for _, r := range rows {
				// March is spring; almaty_1 configures spring at 1.2.
				So(r.SeasonalFactor, ShouldEqual, 1.2)
				switch r.Date {
				case "2025-03-08":
					So(r.HolidayFactor, ShouldEqual, 4.5)
				default:
					So(r.HolidayFactor, ShouldEqual, 1.0)
				}
			}
		})
	})
}

func TestEngineDeterminism(t *testing.T) {
	Convey("Given two engines with the same seed and clock", t, func() {
		ctx := context.Background()
		mgr := loadNetwork(t)
		cal := holidays.NewCalendar()
		now := fixedClock(time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC))

		a := forecast.NewEngine(mgr, cal, forecast.WithSeed(99), forecast.WithNow(now))
		b := forecast.NewEngine(mgr, cal, forecast.WithSeed(99), forecast.WithNow(now))

		Convey("Then they should produce identical forecasts", func() {
			rowsA, errA := a.GenerateStore(ctx, "almaty_3", 5)
			rowsB, errB := b.GenerateStore(ctx, "almaty_3", 5)

			So(errA, ShouldBeNil)
			So(errB, ShouldBeNil)
			So(rowsA, ShouldResemble, rowsB)
		})

		Convey("Then different stores should not share a stream", func() {
			rowsA, errA := a.GenerateStore(ctx, "almaty_1", 5)
			rowsB, errB := a.GenerateStore(ctx, "almaty_3", 5)

			So(errA, ShouldBeNil)
			So(errB, ShouldBeNil)

			demandsA := make([]int, len(rowsA))
			demandsB := make([]int, len(rowsB))
			for i := range rowsA {
				demandsA[i] = rowsA[i].Demand
				demandsB[i] = rowsB[i].Demand
			}
			So(demandsA, ShouldNotResemble, demandsB)
		})
	})
}

func TestEngineGenerateNetwork(t *testing.T) {
	Convey("Given the default three-store network", t, func() {
		ctx := context.Background()
		mgr := loadNetwork(t)
		eng := forecast.NewEngine(mgr, holidays.NewCalendar(),
			forecast.WithSeed(42),
			forecast.WithNow(fixedClock(time.Date(2025, time.June, 4, 0, 0, 0, 0, time.UTC))),
		)

		Convey("When generating a network forecast", func() {
			rows, err := eng.GenerateNetwork(ctx, 4)

			Convey("Then every active store should contribute the same horizon", func() {
				So(err, ShouldBeNil)
				So(len(rows), ShouldEqual, 3*4*6)

				seen := map[string]int{}
				for _, r := range rows {
					seen[r.StoreID]++
				}
				So(seen["almaty_1"], ShouldEqual, 4*6)
				So(seen["almaty_2"], ShouldEqual, 4*6)
				So(seen["almaty_3"], ShouldEqual, 4*6)
			})
		})
	})
}

func TestEnginePerformance(t *testing.T) {
	Convey("Given a seeded engine", t, func() {
		mgr := loadNetwork(t)
		eng := forecast.NewEngine(mgr, holidays.NewCalendar(), forecast.WithSeed(42))

		Convey("When asking for store performance", func() {
			p, err := eng.StorePerformance("almaty_1")

			Convey("Then indicators should sit in their documented ranges", func() {
				So(err, ShouldBeNil)
				So(p.StoreID, ShouldEqual, "almaty_1")
				So(p.StoreName, ShouldEqual, "Алматы ЦУМ")
				So(p.ForecastAccuracy, ShouldBeBetweenOrEqual, 0.75, 0.95)
				So(p.AvgDailyDemand, ShouldBeBetweenOrEqual, 100, 299)
				So(p.StockTurnover, ShouldBeBetweenOrEqual, 2.5, 4.0)
				So(p.WastePercentage, ShouldBeBetweenOrEqual, 0.02, 0.08)
				So(p.ServiceLevel, ShouldBeBetweenOrEqual, 0.92, 0.98)
			})

			Convey("Then repeated reads should be stable under the seed", func() {
				So(err, ShouldBeNil)
				again, err2 := eng.StorePerformance("almaty_1")
				So(err2, ShouldBeNil)
				So(again, ShouldResemble, p)
			})
		})

		Convey("When asking for performance of an unknown store", func() {
			_, err := eng.StorePerformance("nowhere")

			Convey("Then it should fail", func() {
				So(errors.Is(err, forecast.ErrUnknownStore), ShouldBeTrue)
			})
		})

		Convey("When asking for network performance", func() {
			p := eng.NetworkPerformance()

			Convey("Then it should cover all active stores", func() {
				So(p.TotalStores, ShouldEqual, 3)
				So(p.NetworkForecastAccuracy, ShouldBeBetweenOrEqual, 0.80, 0.92)
				So(p.TotalDailyDemand, ShouldBeBetweenOrEqual, 500, 1499)
				So(p.AvgStockTurnover, ShouldBeBetweenOrEqual, 3.0, 4.5)
				So(p.NetworkWastePercentage, ShouldBeBetweenOrEqual, 0.03, 0.06)
				So(p.AvgServiceLevel, ShouldBeBetweenOrEqual, 0.94, 0.97)
			})
		})
	})
}

func TestEngineWeather(t *testing.T) {
	Convey("Given a seeded engine", t, func() {
		mgr := loadNetwork(t)
		eng := forecast.NewEngine(mgr, holidays.NewCalendar(),
			forecast.WithSeed(42),
			forecast.WithNow(fixedClock(time.Date(2025, time.June, 4, 0, 0, 0, 0, time.UTC))),
		)

		Convey("When asking for the weather outlook", func() {
			w := eng.Weather("", 7)

			Convey("Then it should default to Almaty and cover the horizon", func() {
				So(w.City, ShouldEqual, "Almaty")
				So(len(w.Forecast), ShouldEqual, 7)
				So(w.Forecast[0].Date, ShouldEqual, "2025-06-04")
			})

			Convey("Then values should sit in their demo ranges", func() {
				So(w.Humidity, ShouldBeBetweenOrEqual, 40, 79)
				So(w.Precipitation, ShouldBeIn, []float64{0, 2, 5, 10})
				for _, d := range w.Forecast {
					So(d.Precipitation, ShouldBeIn, []float64{0, 1, 2, 5})
				}
			})
		})
	})
}
