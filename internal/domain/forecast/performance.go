package forecast

import (
	"fmt"
)

// StorePerformance summarizes one store's operational indicators. Figures
// are demo values until the accounting feed lands; ranges match what the
// network historically reports.
type StorePerformance struct {
	StoreID          string  `json:"store_id"`
	StoreName        string  `json:"store_name"`
	ForecastAccuracy float64 `json:"forecast_accuracy"`
	AvgDailyDemand   int     `json:"avg_daily_demand"`
	StockTurnover    float64 `json:"stock_turnover"`
	WastePercentage  float64 `json:"waste_percentage"`
	ServiceLevel     float64 `json:"service_level"`
}

// NetworkPerformance summarizes the whole network.
type NetworkPerformance struct {
	TotalStores             int     `json:"total_stores"`
	NetworkForecastAccuracy float64 `json:"network_forecast_accuracy"`
	TotalDailyDemand        int     `json:"total_daily_demand"`
	AvgStockTurnover        float64 `json:"avg_stock_turnover"`
	NetworkWastePercentage  float64 `json:"network_waste_percentage"`
	AvgServiceLevel         float64 `json:"avg_service_level"`
}

// StorePerformance returns the indicators for one store.
func (e *Engine) StorePerformance(storeID string) (StorePerformance, error) {
	store, ok := e.stores.Get(storeID)
	if !ok {
		return StorePerformance{}, fmt.Errorf("%w: %s", ErrUnknownStore, storeID)
	}

	rng := e.rng("performance", storeID)
	return StorePerformance{
		StoreID:          storeID,
		StoreName:        store.Name,
		ForecastAccuracy: uniform(rng, 0.75, 0.95),
		AvgDailyDemand:   100 + rng.Intn(200),
		StockTurnover:    uniform(rng, 2.5, 4.0),
		WastePercentage:  uniform(rng, 0.02, 0.08),
		ServiceLevel:     uniform(rng, 0.92, 0.98),
	}, nil
}

// NetworkPerformance returns the indicators aggregated over active stores.
func (e *Engine) NetworkPerformance() NetworkPerformance {
	rng := e.rng("performance", "network")
	return NetworkPerformance{
		TotalStores:             len(e.stores.Active()),
		NetworkForecastAccuracy: uniform(rng, 0.80, 0.92),
		TotalDailyDemand:        500 + rng.Intn(1000),
		AvgStockTurnover:        uniform(rng, 3.0, 4.5),
		NetworkWastePercentage:  uniform(rng, 0.03, 0.06),
		AvgServiceLevel:         uniform(rng, 0.94, 0.97),
	}
}
