package model_test

import (
	"testing"
	"time"

	model "github.com/nurtas/bloomcast/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestSalesRecord(t *testing.T) {
	convey.Convey("Given a SalesRecord", t, func() {
		convey.Convey("When creating a populated record", func() {
			date := time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC)
			rec := model.SalesRecord{
				Date:     date,
				Store:    "almaty_1",
				SKU:      "Роза_красная_60см",
				Quantity: 12,
				Price:    750,
				Total:    9000,
			}

			convey.Convey("Then it should keep the values", func() {
				convey.So(rec.Store, convey.ShouldEqual, "almaty_1")
				convey.So(rec.Quantity, convey.ShouldEqual, 12)
				convey.So(rec.Total, convey.ShouldEqual, 9000)
			})

			convey.Convey("And its key should join date, store and SKU", func() {
				convey.So(rec.Key(), convey.ShouldEqual, "2025-03-08_almaty_1_Роза_красная_60см")
			})
		})

		convey.Convey("When creating a zero record", func() {
			rec := model.SalesRecord{}

			convey.Convey("Then it should have default values", func() {
				convey.So(rec.Store, convey.ShouldEqual, "")
				convey.So(rec.Quantity, convey.ShouldEqual, 0)
				convey.So(rec.Date, convey.ShouldEqual, time.Time{})
			})
		})
	})
}

func TestCorrectionKey(t *testing.T) {
	convey.Convey("Given a correction", t, func() {
		corr := model.Correction{
			ID:        "c-1",
			Date:      "2025-03-08",
			Store:     "almaty_2",
			SKU:       "Тюльпан_стандарт",
			Original:  40,
			Corrected: 120,
			Reason:    "holiday demand underestimated",
		}

		convey.Convey("Then the key should be date_store_sku", func() {
			convey.So(corr.Key(), convey.ShouldEqual, "2025-03-08_almaty_2_Тюльпан_стандарт")
		})

		convey.Convey("Then corrected value should be independent of original", func() {
			convey.So(corr.Corrected, convey.ShouldEqual, 120)
			convey.So(corr.Original, convey.ShouldEqual, 40)
		})
	})
}

func TestRefreshJob(t *testing.T) {
	convey.Convey("Given a refresh job", t, func() {
		job := model.RefreshJob{ID: "j-1", StoreID: "almaty_3", Days: 10}

		convey.Convey("Then it should carry the target store and horizon", func() {
			convey.So(job.StoreID, convey.ShouldEqual, "almaty_3")
			convey.So(job.Days, convey.ShouldEqual, 10)
			convey.So(job.EnqueuedAt, convey.ShouldEqual, time.Time{})
		})
	})
}
