package model

import (
	"github.com/nurtas/bloomcast/internal/domain/types"
)

// ForecastRow is one store/SKU/day line of a demand forecast. Rows are
// persisted as snapshots and pushed to the spreadsheet in this shape.
type ForecastRow struct {
	Date           string         `json:"date"` // YYYY-MM-DD
	Weekday        string         `json:"weekday"`
	StoreID        string         `json:"store_id"`
	StoreName      string         `json:"store_name"`
	SKU            string         `json:"sku"`
	Demand         int            `json:"forecast_demand"`
	Stock          int            `json:"current_stock"`
	Purchase       int            `json:"recommended_purchase"`
	Priority       types.Priority `json:"priority"`
	SeasonalFactor float64        `json:"seasonal_factor"`
	HolidayFactor  float64        `json:"holiday_factor"`
	WeatherFactor  float64        `json:"weather_factor"`
}
