package forecast

import (
	"math/rand"
	"time"
)

// WeatherDay is one day of the outlook shown beside the forecast.
type WeatherDay struct {
	Date          string  `json:"date"`
	Temperature   float64 `json:"temperature"`
	Precipitation float64 `json:"precipitation"`
}

// Weather is the current conditions plus a short outlook for the city the
// network operates in. Values are a demo stand-in for a provider API.
type Weather struct {
	City          string       `json:"city"`
	Temperature   float64      `json:"temperature"`
	Humidity      int          `json:"humidity"`
	Precipitation float64      `json:"precipitation"`
	WindSpeed     float64      `json:"wind_speed"`
	Forecast      []WeatherDay `json:"forecast"`
}

// Weather returns conditions for the given city and an outlook of the given
// length in days.
func (e *Engine) Weather(city string, days int) Weather {
	if city == "" {
		city = "Almaty"
	}
	if days <= 0 {
		days = defaultHorizonDays
	}

	rng := e.rng("weather", city)
	w := Weather{
		City:          city,
		Temperature:   rng.NormFloat64()*10 + 15,
		Humidity:      40 + rng.Intn(40),
		Precipitation: weightedChoice(rng, []float64{0, 0, 0, 2, 5, 10}, []float64{0.6, 0.1, 0.1, 0.1, 0.05, 0.05}),
		WindSpeed:     rng.NormFloat64()*2 + 3,
		Forecast:      make([]WeatherDay, 0, days),
	}

	start := e.now()
	for day := 0; day < days; day++ {
		w.Forecast = append(w.Forecast, WeatherDay{
			Date:          start.AddDate(0, 0, day).Format(dateLayout),
			Temperature:   rng.NormFloat64()*5 + 15,
			Precipitation: weightedChoice(rng, []float64{0, 1, 2, 5}, []float64{0.7, 0.15, 0.1, 0.05}),
		})
	}
	return w
}

// uniform draws from [lo, hi).
func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

// weightedChoice picks one value according to the given probabilities.
func weightedChoice(rng *rand.Rand, values, probs []float64) float64 {
	r := rng.Float64()
	acc := 0.0
	for i, p := range probs {
		acc += p
		if r < acc {
			return values[i]
		}
	}
	return values[len(values)-1]
}

// Engine clock accessor for packages embedding weather views in reports.
func (e *Engine) Now() time.Time {
	return e.now()
}
