// Package stores manages the flower shop network configuration: per-store
// demand parameters plus network-wide settings, persisted as a JSON document.
package stores

import (
	"github.com/nurtas/bloomcast/internal/domain/types"
)

// Default values applied to newly added stores when the caller leaves the
// corresponding field unset.
const (
	defaultWeatherSensitivity = 0.25
	defaultForecastHorizon    = 7
	defaultSafetyStockRatio   = 1.2
)

// OpeningHours is the daily opening window of a store.
type OpeningHours struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Store holds the demand parameters of a single shop.
type Store struct {
	Name                string                   `json:"name"`
	Address             string                   `json:"address"`
	Type                types.StoreType          `json:"type"`
	SizeCategory        string                   `json:"size_category"`
	OpeningHours        *OpeningHours            `json:"opening_hours,omitempty"`
	TargetAudience      string                   `json:"target_audience"`
	AvgDailyVisitors    int                      `json:"avg_daily_visitors"`
	SeasonalMultipliers map[types.Season]float64 `json:"seasonal_multipliers"`
	HolidayMultipliers  map[string]float64       `json:"holiday_multipliers"`
	WeatherSensitivity  float64                  `json:"weather_sensitivity"`
	ForecastHorizonDays int                      `json:"forecast_horizon_days"`
	SafetyStockRatio    float64                  `json:"safety_stock_ratio"`
	Active              bool                     `json:"active"`
}

// NewStore carries caller-supplied fields for Add. Nil pointers and nil maps
// receive network defaults, mirroring how absent JSON keys behave.
type NewStore struct {
	Name                string                   `json:"name"`
	Address             string                   `json:"address"`
	Type                types.StoreType          `json:"type"`
	SizeCategory        string                   `json:"size_category"`
	OpeningHours        *OpeningHours            `json:"opening_hours,omitempty"`
	TargetAudience      string                   `json:"target_audience"`
	AvgDailyVisitors    int                      `json:"avg_daily_visitors"`
	SeasonalMultipliers map[types.Season]float64 `json:"seasonal_multipliers,omitempty"`
	HolidayMultipliers  map[string]float64       `json:"holiday_multipliers,omitempty"`
	WeatherSensitivity  *float64                 `json:"weather_sensitivity,omitempty"`
	ForecastHorizonDays *int                     `json:"forecast_horizon_days,omitempty"`
	SafetyStockRatio    *float64                 `json:"safety_stock_ratio,omitempty"`
	Active              *bool                    `json:"active,omitempty"`
}

// GlobalSettings are network-wide parameters shared by every store.
type GlobalSettings struct {
	ModelRetrainFrequencyDays int     `json:"model_retrain_frequency_days"`
	AnomalyDetectionThreshold float64 `json:"anomaly_detection_threshold"`
	MinHistoricalDataDays     int     `json:"min_historical_data_days"`
	MaxForecastHorizonDays    int     `json:"max_forecast_horizon_days"`
	DefaultSafetyStockRatio   float64 `json:"default_safety_stock_ratio"`
	Currency                  string  `json:"currency"`
	Timezone                  string  `json:"timezone"`
}

// Document is the persisted shape of the network configuration.
type Document struct {
	Stores         map[string]Store `json:"stores"`
	GlobalSettings GlobalSettings   `json:"global_settings"`
}

// Entry pairs a store with its network identifier.
type Entry struct {
	ID    string `json:"id"`
	Store Store  `json:"store"`
}

// DefaultDocument returns the three-store Almaty network the system ships
// with.
func DefaultDocument() *Document {
	return &Document{
		Stores: map[string]Store{
			"almaty_1": {
				Name:             "Алматы ЦУМ",
				Address:          "пр. Абылай хана, 62",
				Type:             types.StorePremium,
				SizeCategory:     "large",
				OpeningHours:     &OpeningHours{Start: "09:00", End: "22:00"},
				TargetAudience:   "premium_customers",
				AvgDailyVisitors: 200,
				SeasonalMultipliers: map[types.Season]float64{
					types.SeasonWinter: 0.8,
					types.SeasonSpring: 1.2,
					types.SeasonSummer: 1.0,
					types.SeasonAutumn: 1.1,
				},
				HolidayMultipliers: map[string]float64{
					"WOMENS_DAY": 4.5,
					"VALENTINES": 2.0,
					"NAURYZ":     2.2,
				},
				WeatherSensitivity:  0.3,
				ForecastHorizonDays: 14,
				SafetyStockRatio:    1.2,
				Active:              true,
			},
			"almaty_2": {
				Name:             "Алматы Мега",
				Address:          "ул. Розыбакиева, 247а",
				Type:             types.StoreMassMarket,
				SizeCategory:     "large",
				OpeningHours:     &OpeningHours{Start: "10:00", End: "22:00"},
				TargetAudience:   "families",
				AvgDailyVisitors: 350,
				SeasonalMultipliers: map[types.Season]float64{
					types.SeasonWinter: 0.9,
					types.SeasonSpring: 1.3,
					types.SeasonSummer: 1.1,
					types.SeasonAutumn: 1.0,
				},
				HolidayMultipliers: map[string]float64{
					"WOMENS_DAY": 4.0,
					"VALENTINES": 1.8,
					"NAURYZ":     2.5,
				},
				WeatherSensitivity:  0.2,
				ForecastHorizonDays: 7,
				SafetyStockRatio:    1.5,
				Active:              true,
			},
			"almaty_3": {
				Name:             "Алматы Dostyk Plaza",
				Address:          "пр. Достык, 111",
				Type:             types.StorePremium,
				SizeCategory:     "medium",
				OpeningHours:     &OpeningHours{Start: "10:00", End: "21:00"},
				TargetAudience:   "business_customers",
				AvgDailyVisitors: 150,
				SeasonalMultipliers: map[types.Season]float64{
					types.SeasonWinter: 0.7,
					types.SeasonSpring: 1.1,
					types.SeasonSummer: 0.9,
					types.SeasonAutumn: 1.2,
				},
				HolidayMultipliers: map[string]float64{
					"WOMENS_DAY": 3.8,
					"VALENTINES": 2.2,
					"NAURYZ":     1.8,
				},
				WeatherSensitivity:  0.4,
				ForecastHorizonDays: 10,
				SafetyStockRatio:    1.3,
				Active:              true,
			},
		},
		GlobalSettings: GlobalSettings{
			ModelRetrainFrequencyDays: 7,
			AnomalyDetectionThreshold: 2.5,
			MinHistoricalDataDays:     30,
			MaxForecastHorizonDays:    30,
			DefaultSafetyStockRatio:   1.2,
			Currency:                  types.Currency,
			Timezone:                  types.Timezone,
		},
	}
}

// withDefaults resolves a NewStore into a Store, filling unset fields.
func (n NewStore) withDefaults() Store {
	s := Store{
		Name:                n.Name,
		Address:             n.Address,
		Type:                n.Type,
		SizeCategory:        n.SizeCategory,
		OpeningHours:        n.OpeningHours,
		TargetAudience:      n.TargetAudience,
		AvgDailyVisitors:    n.AvgDailyVisitors,
		SeasonalMultipliers: n.SeasonalMultipliers,
		HolidayMultipliers:  n.HolidayMultipliers,
		WeatherSensitivity:  defaultWeatherSensitivity,
		ForecastHorizonDays: defaultForecastHorizon,
		SafetyStockRatio:    defaultSafetyStockRatio,
		Active:              true,
	}
	if s.SeasonalMultipliers == nil {
		s.SeasonalMultipliers = map[types.Season]float64{
			types.SeasonWinter: 0.9,
			types.SeasonSpring: 1.1,
			types.SeasonSummer: 1.0,
			types.SeasonAutumn: 1.0,
		}
	}
	if s.HolidayMultipliers == nil {
		s.HolidayMultipliers = map[string]float64{
			"WOMENS_DAY": 4.0,
			"VALENTINES": 1.8,
			"NAURYZ":     2.0,
		}
	}
	if n.WeatherSensitivity != nil {
		s.WeatherSensitivity = *n.WeatherSensitivity
	}
	if n.ForecastHorizonDays != nil {
		s.ForecastHorizonDays = *n.ForecastHorizonDays
	}
	if n.SafetyStockRatio != nil {
		s.SafetyStockRatio = *n.SafetyStockRatio
	}
	if n.Active != nil {
		s.Active = *n.Active
	}
	return s
}
