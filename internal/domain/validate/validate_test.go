package validate_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/nurtas/bloomcast/internal/domain/model"
	"github.com/nurtas/bloomcast/internal/domain/validate"
)

func TestCheckColumns(t *testing.T) {
	Convey("Given a sales export header", t, func() {
		Convey("When every required column is present", func() {
			err := validate.CheckColumns([]string{"Дата", "Магазин", "SKU", "Название", "Количество", "Цена"})
			So(err, ShouldBeNil)
		})

		Convey("When order differs and names carry whitespace", func() {
			err := validate.CheckColumns([]string{" Количество ", "SKU", "Магазин", "Дата"})
			So(err, ShouldBeNil)
		})

		Convey("When a required column is missing", func() {
			err := validate.CheckColumns([]string{"Дата", "Магазин", "SKU"})
			So(errors.Is(err, validate.ErrMissingColumns), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "Количество")
		})
	})
}

func TestCleanSales(t *testing.T) {
	Convey("Given a raw export with broken lines", t, func() {
		auditor := validate.NewAuditor()
		raw := []validate.RawSale{
			{Date: "2025-06-07", Store: "Алматы_1", SKU: "Роза_красная", Quantity: "25"},
			{Date: "2025-06-08", Store: "Алматы_2", SKU: "Тюльпан_белый", Quantity: "invalid"},
			{Date: "invalid_date", Store: "Алматы_1", SKU: "Роза_красная", Quantity: "-5"},
			{Date: "2025-06-09", Store: "Алматы_3", SKU: "Новый_товар", Quantity: "1000"},
		}

		Convey("When cleaning", func() {
			records, issues := auditor.CleanSales(raw)

			Convey("Then the unparseable date line is dropped", func() {
				So(len(records), ShouldEqual, 3)
				So(records[0].Store, ShouldEqual, "Алматы_1")
				So(records[0].Date, ShouldResemble, time.Date(2025, 6, 7, 0, 0, 0, 0, time.UTC))
			})

			Convey("Then the unparseable quantity becomes zero", func() {
				So(records[1].SKU, ShouldEqual, "Тюльпан_белый")
				So(records[1].Quantity, ShouldEqual, 0)
			})

			Convey("Then the runaway quantity is capped at the percentile", func() {
				So(records[2].Quantity, ShouldEqual, 990)
			})

			Convey("Then every repair is reported", func() {
				So(issues, ShouldContain, "Найдено 1 некорректных дат")
				So(issues, ShouldContain, "Найдено 1 некорректных значений количества")
				So(issues, ShouldContain, "Удалено 1 строк с критическими пропусками")
				So(issues, ShouldContain, "Заполнено 1 пропущенных значений количества нулями")
				So(issues, ShouldContain, "Обнаружено и исправлено 1 аномально высоких значений")
			})
		})
	})

	Convey("Given duplicated lines for one sale", t, func() {
		auditor := validate.NewAuditor()
		raw := []validate.RawSale{
			{Date: "2025-06-07", Store: "almaty_1", SKU: "Роза_красная_60см", Quantity: "10", Price: "900"},
			{Date: "2025-06-07", Store: "almaty_1", SKU: "Роза_красная_60см", Quantity: "20", Price: "900"},
			{Date: "2025-06-08", Store: "almaty_1", SKU: "Роза_красная_60см", Quantity: "20", Price: "900"},
		}

		Convey("When cleaning", func() {
			records, issues := auditor.CleanSales(raw)

			Convey("Then the last line per day wins", func() {
				So(len(records), ShouldEqual, 2)
				So(records[0].Quantity, ShouldEqual, 20)
				So(records[1].Quantity, ShouldEqual, 20)
				So(issues, ShouldContain, "Удалено 1 дубликатов")
			})
		})
	})

	Convey("Given lines with missing prices", t, func() {
		auditor := validate.NewAuditor()
		raw := []validate.RawSale{
			{Date: "2025-06-07", Store: "almaty_1", SKU: "Роза", Quantity: "5", Price: "100"},
			{Date: "2025-06-08", Store: "almaty_1", SKU: "Роза", Quantity: "5", Price: "200"},
			{Date: "2025-06-09", Store: "almaty_1", SKU: "Роза", Quantity: "2"},
			{Date: "2025-06-09", Store: "almaty_1", SKU: "Пион", Quantity: "3"},
		}

		Convey("When cleaning", func() {
			records, _ := auditor.CleanSales(raw)
			So(len(records), ShouldEqual, 4)

			Convey("Then the SKU median fills its own gaps", func() {
				So(records[2].Price, ShouldEqual, 150)
			})

			Convey("Then a SKU with no prices falls back to the global median", func() {
				So(records[3].Price, ShouldEqual, 150)
			})

			Convey("Then the missing total is reconstructed", func() {
				So(records[2].Total, ShouldEqual, 300)
			})
		})
	})

	Convey("Given negative quantities", t, func() {
		auditor := validate.NewAuditor()
		raw := []validate.RawSale{
			{Date: "2025-06-07", Store: "almaty_1", SKU: "Роза", Quantity: "-5", Price: "100"},
			{Date: "2025-06-08", Store: "almaty_1", SKU: "Роза", Quantity: "8", Price: "100"},
			{Date: "2025-06-09", Store: "almaty_1", SKU: "Роза", Quantity: "8", Price: "100"},
		}

		Convey("When cleaning", func() {
			records, issues := auditor.CleanSales(raw)

			So(records[0].Quantity, ShouldEqual, 0)
			So(records[1].Quantity, ShouldEqual, 8)
			So(issues, ShouldContain, "Обнаружено и исправлено 1 отрицательных значений")
		})
	})

	Convey("Given alternate date layouts", t, func() {
		auditor := validate.NewAuditor()
		raw := []validate.RawSale{
			{Date: "07.06.2025", Store: "almaty_1", SKU: "Роза", Quantity: "5"},
			{Date: "2025-06-08 14:30:00", Store: "almaty_1", SKU: "Роза", Quantity: "5"},
		}

		Convey("When cleaning", func() {
			records, issues := auditor.CleanSales(raw)

			So(len(records), ShouldEqual, 2)
			So(issues, ShouldBeEmpty)
			So(records[0].Date.Format("2006-01-02"), ShouldEqual, "2025-06-07")
			So(records[1].Date.Format("2006-01-02"), ShouldEqual, "2025-06-08")
		})
	})
}

func TestCheckForecast(t *testing.T) {
	Convey("Given a forecast with one runaway and one empty row", t, func() {
		auditor := validate.NewAuditor()

		var rows []model.ForecastRow
		for i := 0; i < 100; i++ {
			rows = append(rows, model.ForecastRow{
				Date: "2025-06-10", StoreID: "almaty_1",
				SKU: fmt.Sprintf("sku_%d", i), Demand: 10,
			})
		}
		rows = append(rows, model.ForecastRow{Date: "2025-06-10", StoreID: "almaty_1", SKU: "runaway", Demand: 10000})
		rows = append(rows, model.ForecastRow{Date: "2025-06-10", StoreID: "almaty_1", SKU: "empty", Demand: 0})

		Convey("When checking", func() {
			flags, issues := auditor.CheckForecast(rows)

			So(len(flags), ShouldEqual, 2)
			So(flags[0].Row.SKU, ShouldEqual, "runaway")
			So(flags[0].Reason, ShouldEqual, validate.ReasonHighForecast)
			So(flags[1].Row.SKU, ShouldEqual, "empty")
			So(flags[1].Reason, ShouldEqual, validate.ReasonZeroForecast)

			So(issues, ShouldContain, "Обнаружено 1 аномально высоких прогнозов")
			So(issues, ShouldContain, "Обнаружено 1 нулевых прогнозов")
		})

		Convey("When the forecast is empty", func() {
			flags, issues := auditor.CheckForecast(nil)
			So(flags, ShouldBeNil)
			So(issues, ShouldBeNil)
		})
	})

	Convey("Given an ordinary forecast", t, func() {
		auditor := validate.NewAuditor()
		rows := []model.ForecastRow{
			{Date: "2025-06-10", StoreID: "almaty_1", SKU: "a", Demand: 12},
			{Date: "2025-06-10", StoreID: "almaty_1", SKU: "b", Demand: 15},
			{Date: "2025-06-10", StoreID: "almaty_1", SKU: "c", Demand: 9},
		}

		Convey("When checking", func() {
			flags, issues := auditor.CheckForecast(rows)
			So(flags, ShouldBeEmpty)
			So(issues, ShouldBeEmpty)
		})
	})
}
