// Package types contains common types used across the application
package types

import "time"

// Priority classifies a purchase recommendation.
type Priority string

// Priority levels, highest urgency first.
const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// StoreType selects assortment and base demand range for a store.
type StoreType string

// Known store types.
const (
	StorePremium    StoreType = "premium"
	StoreMassMarket StoreType = "mass_market"
	StoreBusiness   StoreType = "business"
)

// Valid reports whether the store type is one of the known kinds.
func (t StoreType) Valid() bool {
	switch t {
	case StorePremium, StoreMassMarket, StoreBusiness:
		return true
	default:
		return false
	}
}

// Season buckets used by the per-store seasonal multipliers.
type Season string

// Seasons.
const (
	SeasonWinter Season = "winter"
	SeasonSpring Season = "spring"
	SeasonSummer Season = "summer"
	SeasonAutumn Season = "autumn"
)

// SeasonOf maps a month to its season bucket.
func SeasonOf(m time.Month) Season {
	switch m {
	case time.December, time.January, time.February:
		return SeasonWinter
	case time.March, time.April, time.May:
		return SeasonSpring
	case time.June, time.July, time.August:
		return SeasonSummer
	default:
		return SeasonAutumn
	}
}

// Network-wide defaults.
const (
	Currency = "KZT"
	Timezone = "Asia/Almaty"
)
