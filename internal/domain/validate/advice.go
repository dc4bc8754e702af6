package validate

import (
	"fmt"
	"strings"
)

// Confidence levels for new-SKU recommendations.
const (
	ConfidenceLow    = "Низкая"
	ConfidenceMedium = "Средняя"
)

// Conservative defaults for a SKU with no history.
const (
	newSKUForecast   = 5
	newSKUPurchase   = 10
	newSKUMonitoring = 14 // days
)

// flowerForecasts maps a flower type found in a SKU name to a starting
// daily forecast borrowed from comparable assortment.
var flowerForecasts = []struct {
	flower   string
	forecast int
}{
	{"роза", 25},
	{"тюльпан", 15},
	{"хризантема", 10},
	{"лилия", 12},
	{"гвоздика", 8},
	{"мимоза", 20},
	{"нарцисс", 10},
}

// Recommendation is the purchasing advice for a SKU without sales history.
type Recommendation struct {
	InitialForecast     int    `json:"initial_forecast"`
	RecommendedPurchase int    `json:"recommended_purchase"`
	Confidence          string `json:"confidence"`
	Strategy            string `json:"strategy"`
	MonitoringDays      int    `json:"monitoring_period"`
	Notes               string `json:"notes"`
}

// RecommendNewSKU advises how to stock a SKU that has never sold. Known
// flower types transfer a forecast from comparable assortment; anything else
// gets a conservative test purchase.
func (a *Auditor) RecommendNewSKU(sku, store string) Recommendation {
	a.mu.Lock()
	a.stats.NewSKU++
	a.mu.Unlock()

	rec := Recommendation{
		InitialForecast:     newSKUForecast,
		RecommendedPurchase: newSKUPurchase,
		Confidence:          ConfidenceLow,
		Strategy:            "Тестовая закупка",
		MonitoringDays:      newSKUMonitoring,
		Notes:               fmt.Sprintf("Новый SKU %s. Требуется наблюдение в течение %d дней.", sku, newSKUMonitoring),
	}

	if forecast, ok := similarFlowerForecast(sku); ok {
		rec.InitialForecast = forecast
		rec.RecommendedPurchase = forecast * 2
		rec.Confidence = ConfidenceMedium
		rec.Strategy = "На основе похожих товаров"
	}
	return rec
}

func similarFlowerForecast(sku string) (int, bool) {
	lower := strings.ToLower(sku)
	for _, ft := range flowerForecasts {
		if strings.Contains(lower, ft.flower) {
			return ft.forecast, true
		}
	}
	return 0, false
}

// Advice tells an operator how to react to a failing integration.
type Advice struct {
	ImmediateAction     string `json:"immediate_action"`
	BackupPlan          string `json:"backup_plan"`
	RetryIntervalSec    int    `json:"retry_interval"`
	EscalationThreshold int    `json:"escalation_threshold"`
}

// Integration source names recognised by IntegrationAdvice.
const (
	SourceGoogleSheets = "google_sheets"
	SourceInspiro      = "inspiro"
	SourceWeatherAPI   = "weather_api"
)

var integrationAdvice = map[string]Advice{
	SourceGoogleSheets: {
		ImmediateAction:     "Проверить права доступа к таблице",
		BackupPlan:          "Использовать локальные файлы CSV",
		RetryIntervalSec:    300,
		EscalationThreshold: 3,
	},
	SourceInspiro: {
		ImmediateAction:     "Проверить статус системы Inspiro",
		BackupPlan:          "Использовать последние загруженные данные",
		RetryIntervalSec:    600,
		EscalationThreshold: 2,
	},
	SourceWeatherAPI: {
		ImmediateAction:     "Проверить API ключ",
		BackupPlan:          "Использовать исторические погодные данные",
		RetryIntervalSec:    1800,
		EscalationThreshold: 5,
	},
}

// IntegrationAdvice returns the runbook entry for a failing source and
// counts the failure.
func (a *Auditor) IntegrationAdvice(source string) Advice {
	a.mu.Lock()
	a.stats.IntegrationErrors++
	a.mu.Unlock()

	if advice, ok := integrationAdvice[source]; ok {
		return advice
	}
	return Advice{
		ImmediateAction:     "Проверить подключение",
		BackupPlan:          "Использовать резервные данные",
		RetryIntervalSec:    300,
		EscalationThreshold: 3,
	}
}

// Rates breaks total errors down by class.
type Rates struct {
	MissingData float64 `json:"missing_data_rate"`
	Anomaly     float64 `json:"anomaly_rate"`
	Integration float64 `json:"integration_error_rate"`
}

// ErrorReport summarises everything the auditor has seen.
type ErrorReport struct {
	TotalErrors     int      `json:"total_errors"`
	Breakdown       Stats    `json:"error_breakdown"`
	Rates           Rates    `json:"error_rate"`
	Recommendations []string `json:"recommendations"`
}

// Report snapshots the counters and derives data-quality recommendations.
func (a *Auditor) Report() ErrorReport {
	a.mu.Lock()
	stats := a.stats
	a.mu.Unlock()

	total := stats.MissingData + stats.NewSKU + stats.AnomalyHigh + stats.AnomalyLow + stats.IntegrationErrors
	denom := float64(total)
	if denom < 1 {
		denom = 1
	}

	var recs []string
	if stats.MissingData > 10 {
		recs = append(recs, "Улучшить процедуры сбора данных для снижения количества пропусков")
	}
	if stats.AnomalyHigh > 5 {
		recs = append(recs, "Внедрить проверки качества данных на этапе ввода")
	}
	if stats.NewSKU > 3 {
		recs = append(recs, "Разработать процедуру ввода новых товаров с базовыми прогнозами")
	}
	if stats.IntegrationErrors > 2 {
		recs = append(recs, "Проверить стабильность интеграционных подключений")
	}

	return ErrorReport{
		TotalErrors: total,
		Breakdown:   stats,
		Rates: Rates{
			MissingData: float64(stats.MissingData) / denom,
			Anomaly:     float64(stats.AnomalyHigh+stats.AnomalyLow) / denom,
			Integration: float64(stats.IntegrationErrors) / denom,
		},
		Recommendations: recs,
	}
}
