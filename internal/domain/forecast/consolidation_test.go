package forecast_test

import (
	"testing"

	"github.com/nurtas/bloomcast/internal/domain/forecast"
	"github.com/nurtas/bloomcast/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func row(date, store, sku string, purchase int) model.ForecastRow {
	return model.ForecastRow{Date: date, StoreID: store, SKU: sku, Purchase: purchase}
}

func TestConsolidate(t *testing.T) {
	Convey("Given a network forecast", t, func() {
		Convey("When one SKU crosses the volume floor on one date", func() {
			rows := []model.ForecastRow{
				row("2025-06-04", "almaty_1", "Роза_стандарт_60см", 30),
				row("2025-06-04", "almaty_2", "Роза_стандарт_60см", 25),
				row("2025-06-04", "almaty_1", "Тюльпан_стандарт", 10),
				row("2025-06-04", "almaty_2", "Тюльпан_стандарт", 10),
				row("2025-06-05", "almaty_1", "Роза_стандарт_60см", 20),
			}

			days := forecast.Consolidate(rows)

			Convey("Then only that date and SKU should qualify", func() {
				So(len(days), ShouldEqual, 1)
				So(days[0].Date, ShouldEqual, "2025-06-04")
				So(days[0].TotalVolume, ShouldEqual, 55)
				So(days[0].PotentialSavings, ShouldAlmostEqual, 2.75, 0.0001)
				So(len(days[0].TopItems), ShouldEqual, 1)
				So(days[0].TopItems[0].SKU, ShouldEqual, "Роза_стандарт_60см")
				So(days[0].TopItems[0].Volume, ShouldEqual, 55)
				So(days[0].TopItems[0].StoreCount, ShouldEqual, 2)
			})
		})

		Convey("When many SKUs qualify on the same date", func() {
			rows := []model.ForecastRow{
				row("2025-06-04", "almaty_1", "sku_a", 90),
				row("2025-06-04", "almaty_1", "sku_b", 80),
				row("2025-06-04", "almaty_1", "sku_c", 70),
				row("2025-06-04", "almaty_1", "sku_d", 60),
				row("2025-06-04", "almaty_1", "sku_e", 55),
				row("2025-06-04", "almaty_1", "sku_f", 50),
				row("2025-06-04", "almaty_1", "sku_g", 50),
			}

			days := forecast.Consolidate(rows)

			Convey("Then only the top five items should be listed", func() {
				So(len(days), ShouldEqual, 1)
				So(len(days[0].TopItems), ShouldEqual, 5)
				So(days[0].TopItems[0].SKU, ShouldEqual, "sku_a")
				So(days[0].TopItems[4].SKU, ShouldEqual, "sku_e")
			})

			Convey("Then the total should still count every qualifying item", func() {
				So(days[0].TotalVolume, ShouldEqual, 90+80+70+60+55+50+50)
			})
		})

		Convey("When dates are interleaved", func() {
			rows := []model.ForecastRow{
				row("2025-06-06", "almaty_1", "sku_a", 60),
				row("2025-06-04", "almaty_1", "sku_a", 70),
				row("2025-06-05", "almaty_1", "sku_a", 80),
			}

			days := forecast.Consolidate(rows)

			Convey("Then output should be in date order", func() {
				So(len(days), ShouldEqual, 3)
				So(days[0].Date, ShouldEqual, "2025-06-04")
				So(days[1].Date, ShouldEqual, "2025-06-05")
				So(days[2].Date, ShouldEqual, "2025-06-06")
			})
		})

		Convey("When nothing reaches the floor", func() {
			rows := []model.ForecastRow{
				row("2025-06-04", "almaty_1", "sku_a", 10),
				row("2025-06-04", "almaty_2", "sku_a", 20),
			}

			days := forecast.Consolidate(rows)

			Convey("Then there should be no opportunities", func() {
				So(len(days), ShouldEqual, 0)
			})
		})

		Convey("When the forecast is empty", func() {
			days := forecast.Consolidate(nil)

			Convey("Then there should be no opportunities", func() {
				So(len(days), ShouldEqual, 0)
			})
		})
	})
}
