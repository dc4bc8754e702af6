package trainer

import (
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/nurtas/bloomcast/internal/domain/model"
)

// Synthetic demand model constants.
const (
	syntheticBaseDemand   = 20
	syntheticWeekendBoost = 1.4
	syntheticHolidayBoost = 3.5
	trendPerDay           = 0.01
)

// Training assortment used by the synthetic generator.
var syntheticSKUs = []string{
	"Роза_красная_60см", "Роза_белая_50см", "Тюльпан_красный",
	"Хризантема_желтая", "Лилия_белая", "Гвоздика_красная",
}

var syntheticStores = []string{"almaty_1", "almaty_2", "almaty_3"}

// peakDates are the dates the synthetic model treats as demand spikes,
// keyed MM-DD.
var peakDates = map[string]bool{
	"03-08": true,
	"02-14": true,
	"03-21": true,
}

// Synthetic generates a demand training set covering the given number of
// days ending now: every day x three stores x six SKUs. A zero seed uses
// time-based seeding.
func Synthetic(days int, seed int64, now time.Time) TrainingData {
	if days <= 0 {
		days = 90
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // synthetic data, not crypto

	capacity := days * len(syntheticStores) * len(syntheticSKUs)
	data := TrainingData{
		Features:     make([][]float64, 0, capacity),
		Labels:       make([]float64, 0, capacity),
		FeatureNames: FeatureNames,
	}

	base := now.AddDate(0, 0, -days)
	for day := 0; day < days; day++ {
		date := base.AddDate(0, 0, day)

		season := 1 + 0.3*math.Sin(2*math.Pi*float64(day)/365)
		weekday := 1.0
		if date.Weekday() == time.Saturday || date.Weekday() == time.Sunday {
			weekday = syntheticWeekendBoost
		}
		holiday := 1.0
		if peakDates[date.Format("01-02")] {
			holiday = syntheticHolidayBoost
		}
		trend := float64(day) * trendPerDay

		for range syntheticStores {
			for range syntheticSKUs {
				baseDemand := float64(syntheticBaseDemand + rng.Intn(21) - 5)
				noise := 0.8 + rng.Float64()*0.4

				demand := float64(int(baseDemand*season*weekday*holiday*noise + trend))
				if demand < 0 {
					demand = 0
				}

				temperature := -10 + rng.Float64()*40
				precipitation := [5]float64{0, 0, 0, 2, 5}[rng.Intn(5)]

				data.Features = append(data.Features, []float64{
					season, weekday, holiday, temperature, precipitation, trend,
				})
				data.Labels = append(data.Labels, demand)
			}
		}
	}
	return data
}

// FromSales builds training data from real sales history. Records are
// ordered chronologically; weather columns are seeded demo values until the
// weather feed carries history.
func FromSales(records []model.SalesRecord, seed int64) (TrainingData, error) {
	if len(records) == 0 {
		return TrainingData{}, ErrNotEnoughData
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // filler weather columns

	sorted := make([]model.SalesRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	first := sorted[0].Date
	data := TrainingData{
		Features:     make([][]float64, 0, len(sorted)),
		Labels:       make([]float64, 0, len(sorted)),
		FeatureNames: FeatureNames,
	}

	for _, r := range sorted {
		day := int(r.Date.Sub(first).Hours() / 24)

		season := 1 + 0.3*math.Sin(2*math.Pi*float64(r.Date.YearDay())/365)
		weekday := 1.0
		if r.Date.Weekday() == time.Saturday || r.Date.Weekday() == time.Sunday {
			weekday = syntheticWeekendBoost
		}
		holiday := 1.0
		if peakDates[r.Date.Format("01-02")] {
			holiday = syntheticHolidayBoost
		}

		data.Features = append(data.Features, []float64{
			season,
			weekday,
			holiday,
			-10 + rng.Float64()*40,
			[5]float64{0, 0, 0, 2, 5}[rng.Intn(5)],
			float64(day) * trendPerDay,
		})
		data.Labels = append(data.Labels, float64(r.Quantity))
	}
	return data, nil
}
