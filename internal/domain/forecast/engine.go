// Package forecast generates per-store demand forecasts and the network
// views derived from them: consolidation opportunities, performance
// indicators, and the weather outlook the dashboard shows next to them.
package forecast

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"time"

	"github.com/nurtas/bloomcast/internal/domain/holidays"
	"github.com/nurtas/bloomcast/internal/domain/model"
	"github.com/nurtas/bloomcast/internal/domain/stores"
	"github.com/nurtas/bloomcast/internal/domain/types"
)

// Demand model constants.
const (
	weekendMultiplier  = 1.3
	defaultHorizonDays = 7
	maxDemoStock       = 25 // demo stock is uniform in [0, 25)
	dateLayout         = "2006-01-02"
)

// Assortments by store type. Premium shops sell imported large-headed
// flowers, mass market the standard street assortment, business the
// corporate line.
var (
	premiumSKUs = []string{
		"Роза_Premium_80см", "Пион_импорт", "Орхидея_фаленопсис",
		"Лилия_ориенталь", "Роза_Дэвид_Остин", "Гортензия_крупная",
	}
	massMarketSKUs = []string{
		"Роза_стандарт_60см", "Тюльпан_стандарт", "Хризантема_куст",
		"Гвоздика_стандарт", "Альстромерия", "Герберы_микс",
	}
	businessSKUs = []string{
		"Роза_бизнес_70см", "Букет_корпоративный", "Композиция_офис",
		"Роза_классик", "Лилия_бизнес", "Хризантема_одногол",
	}
)

// StockSource supplies current shelf stock for a store and SKU. The second
// return reports whether a figure is known; unknown stock falls back to the
// demo generator.
type StockSource interface {
	StockFor(ctx context.Context, storeID, sku string) (int, bool, error)
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithSeed pins the demand generators. Zero keeps time-based seeding.
func WithSeed(seed int64) Option {
	return func(e *Engine) {
		e.seed = seed
	}
}

// WithStockSource plugs in real shelf stock instead of demo values.
func WithStockSource(src StockSource) Option {
	return func(e *Engine) {
		e.stock = src
	}
}

// WithNow overrides the clock. Forecast windows start at now.
func WithNow(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// Engine produces forecasts for the store network.
type Engine struct {
	stores   *stores.Manager
	calendar *holidays.Calendar
	stock    StockSource
	seed     int64
	now      func() time.Time
}

// NewEngine creates an engine over the given network and holiday calendar.
func NewEngine(mgr *stores.Manager, cal *holidays.Calendar, opts ...Option) *Engine {
	e := &Engine{
		stores:   mgr,
		calendar: cal,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// GenerateStore builds a demand forecast for one store. A non-positive days
// falls back to the store's own horizon. Inactive and unknown stores are
// rejected.
func (e *Engine) GenerateStore(ctx context.Context, storeID string, days int) ([]model.ForecastRow, error) {
	store, ok := e.stores.Get(storeID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStore, storeID)
	}
	if !store.Active {
		return nil, fmt.Errorf("%w: %s", ErrStoreInactive, storeID)
	}
	if days <= 0 {
		days = store.ForecastHorizonDays
	}
	if days <= 0 {
		days = defaultHorizonDays
	}

	skus, lo, hi := assortment(store.Type)
	rng := e.rng("forecast", storeID)
	start := e.now()

	rows := make([]model.ForecastRow, 0, days*len(skus))
	for day := 0; day < days; day++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("forecast cancelled: %w", ctx.Err())
		default:
		}

		date := start.AddDate(0, 0, day)
		seasonal := seasonalMultiplier(store, date)
		weekend := weekendFactor(date)
		holiday := e.holidayMultiplier(store, date)

		for _, sku := range skus {
			base := lo + rng.Intn(hi-lo)
			weather := 1.0 + (rng.Float64()*2-1)*store.WeatherSensitivity

			demand := int(float64(base) * seasonal * weekend * holiday * weather)
			stock := e.currentStock(ctx, storeID, sku, rng)

			purchase := int(float64(demand)*store.SafetyStockRatio - float64(stock))
			if purchase < 0 {
				purchase = 0
			}

			rows = append(rows, model.ForecastRow{
				Date:           date.Format(dateLayout),
				Weekday:        date.Weekday().String(),
				StoreID:        storeID,
				StoreName:      store.Name,
				SKU:            sku,
				Demand:         demand,
				Stock:          stock,
				Purchase:       purchase,
				Priority:       priorityFor(demand, purchase),
				SeasonalFactor: seasonal,
				HolidayFactor:  holiday,
				WeatherFactor:  weather,
			})
		}
	}
	return rows, nil
}

// GenerateNetwork builds forecasts for every active store over the same
// horizon and concatenates them in store id order.
func (e *Engine) GenerateNetwork(ctx context.Context, days int) ([]model.ForecastRow, error) {
	var rows []model.ForecastRow
	for _, entry := range e.stores.Active() {
		storeRows, err := e.GenerateStore(ctx, entry.ID, days)
		if err != nil {
			return nil, err
		}
		rows = append(rows, storeRows...)
	}
	return rows, nil
}

// currentStock consults the stock source, falling back to demo values.
func (e *Engine) currentStock(ctx context.Context, storeID, sku string, rng *rand.Rand) int {
	if e.stock != nil {
		if n, ok, err := e.stock.StockFor(ctx, storeID, sku); err == nil && ok {
			return n
		}
	}
	return rng.Intn(maxDemoStock)
}

// holidayMultiplier resolves the store's boost for a holiday date. Codes the
// store does not configure stay neutral.
func (e *Engine) holidayMultiplier(store stores.Store, date time.Time) float64 {
	h, ok := e.calendar.On(date)
	if !ok {
		return 1.0
	}
	if m, ok := store.HolidayMultipliers[h.Code]; ok {
		return m
	}
	return 1.0
}

// rng derives a generator from the engine seed and the given key parts, so a
// pinned seed yields reproducible forecasts per store.
func (e *Engine) rng(parts ...string) *rand.Rand {
	if e.seed == 0 {
		return rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec // demand simulation, not crypto
	}
	h := fnv.New64a()
	for _, p := range parts {
		_, _ = h.Write([]byte(p))
	}
	return rand.New(rand.NewSource(e.seed ^ int64(h.Sum64()))) //nolint:gosec // deterministic seed for reproducible forecasts
}

func assortment(t types.StoreType) (skus []string, lo, hi int) {
	switch t {
	case types.StorePremium:
		return premiumSKUs, 15, 40
	case types.StoreBusiness:
		return businessSKUs, 10, 35
	default:
		return massMarketSKUs, 25, 60
	}
}

func seasonalMultiplier(store stores.Store, date time.Time) float64 {
	if m, ok := store.SeasonalMultipliers[types.SeasonOf(date.Month())]; ok {
		return m
	}
	return 1.0
}

func weekendFactor(date time.Time) float64 {
	switch date.Weekday() {
	case time.Saturday, time.Sunday:
		return weekendMultiplier
	default:
		return 1.0
	}
}

func priorityFor(demand, purchase int) types.Priority {
	switch {
	case purchase > demand:
		return types.PriorityHigh
	case float64(purchase) > 0.5*float64(demand):
		return types.PriorityMedium
	default:
		return types.PriorityLow
	}
}
