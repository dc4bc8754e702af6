package pos

import (
	"math"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/nurtas/bloomcast/internal/domain/model"
	"github.com/nurtas/bloomcast/internal/domain/validate"
)

// CatalogItem is one active product from the Inspiro catalog.
type CatalogItem struct {
	SKU      string `json:"sku"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Unit     string `json:"unit"`
}

var demoStores = []string{"almaty_1", "almaty_2", "almaty_3"}

var demoSKUs = []string{
	"Роза_красная_60см", "Роза_белая_50см", "Тюльпан_красный",
	"Тюльпан_белый", "Хризантема_желтая", "Лилия_белая",
	"Гвоздика_красная", "Мимоза", "Нарцисс_белый",
}

const demoSaleProbability = 0.3

// DemoStores returns the store ids the demo generator covers.
func DemoStores() []string {
	return append([]string(nil), demoStores...)
}

// DemoSKUs returns the demo product assortment.
func DemoSKUs() []string {
	return append([]string(nil), demoSKUs...)
}

func (c *Client) demoRNG() *rand.Rand {
	seed := c.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed)) //nolint:gosec // demo data, not crypto
}

// demoSales generates plausible sales for every day in the range. Roughly
// seven of ten store/SKU/day combinations record a sale.
func (c *Client) demoSales(from, to time.Time, stores []string) []validate.RawSale {
	if len(stores) == 0 {
		stores = demoStores
	}
	rng := c.demoRNG()

	var rows []validate.RawSale
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		for _, store := range stores {
			for _, sku := range demoSKUs {
				if rng.Float64() <= demoSaleProbability {
					continue
				}
				quantity := 1 + rng.Intn(14)
				price := 200 + rng.Float64()*1300
				rows = append(rows, validate.RawSale{
					Date:     day.Format("2006-01-02"),
					Store:    store,
					SKU:      sku,
					Quantity: strconv.Itoa(quantity),
					Price:    formatMoney(round2(price)),
					Total:    formatMoney(round2(float64(quantity) * price)),
				})
			}
		}
	}
	return rows
}

// demoStock generates a stock level for every store/SKU pair.
func (c *Client) demoStock(stores []string) []model.StockRecord {
	if len(stores) == 0 {
		stores = demoStores
	}
	rng := c.demoRNG()

	rows := make([]model.StockRecord, 0, len(stores)*len(demoSKUs))
	for _, store := range stores {
		for _, sku := range demoSKUs {
			rows = append(rows, model.StockRecord{
				Store:    store,
				SKU:      sku,
				Quantity: rng.Intn(25),
			})
		}
	}
	return rows
}

// demoCatalog derives display names and categories from the SKU codes.
func (c *Client) demoCatalog() []CatalogItem {
	items := make([]CatalogItem, 0, len(demoSKUs))
	for _, sku := range demoSKUs {
		category, _, _ := strings.Cut(sku, "_")
		items = append(items, CatalogItem{
			SKU:      sku,
			Name:     strings.ReplaceAll(sku, "_", " "),
			Category: category,
			Unit:     "шт",
		})
	}
	return items
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
