package forecast

import (
	"sort"

	"github.com/nurtas/bloomcast/internal/domain/model"
)

// Consolidation thresholds. Positions under the volume floor are cheaper to
// buy per store; above it pooling across stores earns the supplier discount.
const (
	consolidationMinVolume = 50
	consolidationTopItems  = 5
	consolidationSavings   = 0.05
)

// ConsolidationItem is one SKU worth pooling on a date.
type ConsolidationItem struct {
	SKU        string `json:"sku"`
	Volume     int    `json:"volume"`
	StoreCount int    `json:"store_count"`
}

// ConsolidationDay aggregates the pooling opportunity for one date.
type ConsolidationDay struct {
	Date             string              `json:"date"`
	TotalVolume      int                 `json:"total_volume"`
	TopItems         []ConsolidationItem `json:"top_items"`
	PotentialSavings float64             `json:"potential_savings"`
}

// Consolidate finds cross-store purchase pooling opportunities in a network
// forecast: per date and SKU the summed recommended purchase, kept when the
// volume reaches the floor. Days are returned in date order.
func Consolidate(rows []model.ForecastRow) []ConsolidationDay {
	type key struct {
		date string
		sku  string
	}
	volumes := make(map[key]*ConsolidationItem)
	for _, r := range rows {
		k := key{date: r.Date, sku: r.SKU}
		item, ok := volumes[k]
		if !ok {
			item = &ConsolidationItem{SKU: r.SKU}
			volumes[k] = item
		}
		item.Volume += r.Purchase
		item.StoreCount++
	}

	byDate := make(map[string][]ConsolidationItem)
	for k, item := range volumes {
		if item.Volume < consolidationMinVolume {
			continue
		}
		byDate[k.date] = append(byDate[k.date], *item)
	}

	dates := make([]string, 0, len(byDate))
	for date := range byDate {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	out := make([]ConsolidationDay, 0, len(dates))
	for _, date := range dates {
		items := byDate[date]
		sort.Slice(items, func(i, j int) bool {
			if items[i].Volume != items[j].Volume {
				return items[i].Volume > items[j].Volume
			}
			return items[i].SKU < items[j].SKU
		})

		total := 0
		for _, item := range items {
			total += item.Volume
		}
		if len(items) > consolidationTopItems {
			items = items[:consolidationTopItems]
		}

		out = append(out, ConsolidationDay{
			Date:             date,
			TotalVolume:      total,
			TopItems:         items,
			PotentialSavings: float64(total) * consolidationSavings,
		})
	}
	return out
}
