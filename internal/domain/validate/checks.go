package validate

import (
	"fmt"

	"github.com/nurtas/bloomcast/internal/domain/model"
)

// Review reasons attached to flagged forecast rows.
const (
	ReasonHighForecast = "Аномально высокий прогноз"
	ReasonZeroForecast = "Нулевой прогноз"
)

// ForecastFlag marks one forecast row for manual review.
type ForecastFlag struct {
	Row    model.ForecastRow `json:"row"`
	Reason string            `json:"reason"`
}

// CheckForecast flags rows whose demand exceeds twice the 99th percentile
// and rows that forecast nothing at all.
func (a *Auditor) CheckForecast(rows []model.ForecastRow) ([]ForecastFlag, []string) {
	if len(rows) == 0 {
		return nil, nil
	}

	demands := make([]float64, len(rows))
	for i, r := range rows {
		demands[i] = float64(r.Demand)
	}
	threshold := quantile(demands, 0.99) * 2

	var flags []ForecastFlag
	high, zero := 0, 0
	for _, r := range rows {
		switch {
		case float64(r.Demand) > threshold:
			flags = append(flags, ForecastFlag{Row: r, Reason: ReasonHighForecast})
			high++
		case r.Demand == 0:
			flags = append(flags, ForecastFlag{Row: r, Reason: ReasonZeroForecast})
			zero++
		}
	}

	var issues []string
	if high > 0 {
		issues = append(issues, fmt.Sprintf("Обнаружено %d аномально высоких прогнозов", high))
	}
	if zero > 0 {
		issues = append(issues, fmt.Sprintf("Обнаружено %d нулевых прогнозов", zero))
	}

	if high > 0 {
		a.mu.Lock()
		a.stats.AnomalyHigh += high
		a.mu.Unlock()
	}
	return flags, issues
}
