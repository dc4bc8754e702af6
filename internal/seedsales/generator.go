package seedsales

import (
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/nurtas/bloomcast/internal/adapters/pos"
	"github.com/nurtas/bloomcast/internal/domain/holidays"
	"github.com/nurtas/bloomcast/internal/domain/model"
)

// Demand shape of the synthetic history. Flower sales spike before holidays
// and climb on weekends, so the generated series carries the same pattern
// the forecaster is expected to find.
const (
	saleProbability   = 0.7
	baseQuantityMax   = 14
	basePrice         = 200.0
	priceSpread       = 1300.0
	weekendMultiplier = 1.3
)

// generate produces one synthetic sales line per store, SKU and day that
// records a sale, oldest day first.
func generate(cfg *Config, now time.Time) []model.SalesRecord {
	stores := cfg.Stores
	if len(stores) == 0 {
		stores = pos.DemoStores()
	}
	skus := pos.DemoSKUs()

	seed := cfg.Seed
	if seed == 0 {
		seed = now.UnixNano()
	}
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // synthetic data, not crypto

	calendar := holidays.NewCalendar()
	y, m, d := now.AddDate(0, 0, -1).Date()
	to := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	from := to.AddDate(0, 0, -(cfg.Days - 1))

	var records []model.SalesRecord
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		multiplier := calendar.MultiplierOn(day)
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			multiplier *= weekendMultiplier
		}

		for _, store := range stores {
			for _, sku := range skus {
				if rng.Float64() > saleProbability {
					continue
				}
				quantity := int(math.Round(float64(1+rng.Intn(baseQuantityMax)) * multiplier))
				if quantity < 1 {
					quantity = 1
				}
				price := round2(basePrice + rng.Float64()*priceSpread)
				records = append(records, model.SalesRecord{
					Date:     day,
					Store:    store,
					SKU:      sku,
					Name:     strings.ReplaceAll(sku, "_", " "),
					Quantity: quantity,
					Price:    price,
					Total:    round2(float64(quantity) * price),
				})
			}
		}
	}
	return records
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
