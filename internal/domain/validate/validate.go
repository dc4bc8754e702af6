// Package validate cleans point-of-sale exports before they reach the
// repository and audits forecast output. Issue messages are returned in the
// language the dashboard displays.
package validate

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/nurtas/bloomcast/internal/domain/model"
)

const dateLayout = "2006-01-02"

// highQuantityQuantile caps sold quantities at the 99.5th percentile.
const highQuantityQuantile = 0.995

// RequiredColumns are the export columns a sales feed must carry.
var RequiredColumns = []string{"Дата", "Магазин", "SKU", "Количество"}

// dateLayouts are accepted in the order the exports use them.
var dateLayouts = []string{dateLayout, "2006-01-02 15:04:05", "02.01.2006"}

// RawSale is one sales line as read from an export, before coercion.
type RawSale struct {
	Date     string
	Store    string
	SKU      string
	Name     string
	Quantity string
	Price    string
	Total    string
}

// Stats counts the problems seen since the auditor was created.
type Stats struct {
	MissingData       int `json:"missing_data"`
	NewSKU            int `json:"new_sku"`
	AnomalyHigh       int `json:"anomaly_high"`
	AnomalyLow        int `json:"anomaly_low"`
	IntegrationErrors int `json:"integration_errors"`
}

// Auditor validates incoming and outgoing data and accumulates error
// statistics across calls. Safe for concurrent use.
type Auditor struct {
	mu    sync.Mutex
	stats Stats
}

// NewAuditor creates an auditor with zeroed statistics.
func NewAuditor() *Auditor {
	return &Auditor{}
}

// CheckColumns verifies an export header carries every required column.
func CheckColumns(header []string) error {
	present := make(map[string]bool, len(header))
	for _, col := range header {
		present[strings.TrimSpace(col)] = true
	}

	var missing []string
	for _, col := range RequiredColumns {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}
	return nil
}

// saleRow carries a line through the cleaning stages.
type saleRow struct {
	date    time.Time
	dateOK  bool
	store   string
	sku     string
	name    string
	qty     float64
	qtyOK   bool
	price   float64
	priceOK bool
	total   float64
	totalOK bool
}

// CleanSales coerces, repairs and deduplicates raw sales lines. It returns
// the surviving records plus human-readable issue messages; counters for the
// error report are updated as a side effect.
func (a *Auditor) CleanSales(raw []RawSale) ([]model.SalesRecord, []string) {
	var issues []string

	rows, invalidDates, invalidQty := coerce(raw)
	if invalidDates > 0 {
		issues = append(issues, fmt.Sprintf("Найдено %d некорректных дат", invalidDates))
	}
	if invalidQty > 0 {
		issues = append(issues, fmt.Sprintf("Найдено %d некорректных значений количества", invalidQty))
	}

	rows, removed := dropCritical(rows)
	if removed > 0 {
		issues = append(issues, fmt.Sprintf("Удалено %d строк с критическими пропусками", removed))
	}

	filled := fillMissingQuantities(rows)
	if filled > 0 {
		issues = append(issues, fmt.Sprintf("Заполнено %d пропущенных значений количества нулями", filled))
	}
	fillMissingPrices(rows)

	clamped := clampHighQuantities(rows)
	if clamped > 0 {
		issues = append(issues, fmt.Sprintf("Обнаружено и исправлено %d аномально высоких значений", clamped))
	}

	negatives := zeroNegativeQuantities(rows)
	if negatives > 0 {
		issues = append(issues, fmt.Sprintf("Обнаружено и исправлено %d отрицательных значений", negatives))
	}

	rows, dupes := dropDuplicates(rows)
	if dupes > 0 {
		issues = append(issues, fmt.Sprintf("Удалено %d дубликатов", dupes))
	}

	a.mu.Lock()
	a.stats.MissingData += invalidDates + invalidQty + removed
	a.stats.AnomalyHigh += clamped
	a.stats.AnomalyLow += negatives
	a.mu.Unlock()

	return materialize(rows), issues
}

// coerce parses dates and numeric columns, counting values that fail.
func coerce(raw []RawSale) (rows []saleRow, invalidDates, invalidQty int) {
	rows = make([]saleRow, 0, len(raw))
	for _, r := range raw {
		row := saleRow{
			store: strings.TrimSpace(r.Store),
			sku:   strings.TrimSpace(r.SKU),
			name:  strings.TrimSpace(r.Name),
		}

		if row.date, row.dateOK = parseDate(r.Date); !row.dateOK {
			invalidDates++
		}
		if row.qty, row.qtyOK = parseNumber(r.Quantity); !row.qtyOK {
			invalidQty++
		}
		row.price, row.priceOK = parseNumber(r.Price)
		row.total, row.totalOK = parseNumber(r.Total)

		rows = append(rows, row)
	}
	return rows, invalidDates, invalidQty
}

// dropCritical removes lines missing a date, store or SKU.
func dropCritical(rows []saleRow) ([]saleRow, int) {
	kept := rows[:0]
	for _, r := range rows {
		if r.dateOK && r.store != "" && r.sku != "" {
			kept = append(kept, r)
		}
	}
	return kept, len(rows) - len(kept)
}

// fillMissingQuantities treats an absent quantity as no sales.
func fillMissingQuantities(rows []saleRow) int {
	filled := 0
	for i := range rows {
		if !rows[i].qtyOK {
			rows[i].qty = 0
			rows[i].qtyOK = true
			filled++
		}
	}
	return filled
}

// fillMissingPrices fills absent prices with the per-SKU median, falling
// back to the median over every priced line.
func fillMissingPrices(rows []saleRow) {
	bySKU := make(map[string][]float64)
	var all []float64
	for _, r := range rows {
		if r.priceOK {
			bySKU[r.sku] = append(bySKU[r.sku], r.price)
			all = append(all, r.price)
		}
	}

	for i := range rows {
		if rows[i].priceOK {
			continue
		}
		if prices, ok := bySKU[rows[i].sku]; ok && len(prices) > 0 {
			rows[i].price = median(prices)
			rows[i].priceOK = true
		} else if len(all) > 0 {
			rows[i].price = median(all)
			rows[i].priceOK = true
		}
	}
}

// clampHighQuantities caps quantities above the high percentile threshold.
func clampHighQuantities(rows []saleRow) int {
	if len(rows) == 0 {
		return 0
	}
	quantities := make([]float64, len(rows))
	for i, r := range rows {
		quantities[i] = r.qty
	}
	threshold := quantile(quantities, highQuantityQuantile)

	clamped := 0
	for i := range rows {
		if rows[i].qty > threshold {
			rows[i].qty = threshold
			clamped++
		}
	}
	return clamped
}

// zeroNegativeQuantities floors negative quantities at zero.
func zeroNegativeQuantities(rows []saleRow) int {
	fixed := 0
	for i := range rows {
		if rows[i].qty < 0 {
			rows[i].qty = 0
			fixed++
		}
	}
	return fixed
}

// dropDuplicates keeps the last line per (date, store, SKU), preserving the
// order of the kept lines.
func dropDuplicates(rows []saleRow) ([]saleRow, int) {
	last := make(map[string]int, len(rows))
	for i, r := range rows {
		last[dedupeKey(r)] = i
	}

	kept := rows[:0]
	for i, r := range rows {
		if last[dedupeKey(r)] == i {
			kept = append(kept, r)
		}
	}
	return kept, len(rows) - len(kept)
}

func dedupeKey(r saleRow) string {
	return fmt.Sprintf("%s_%s_%s", r.date.Format(dateLayout), r.store, r.sku)
}

// materialize converts surviving rows into sales records. A missing total
// is reconstructed from quantity and price.
func materialize(rows []saleRow) []model.SalesRecord {
	out := make([]model.SalesRecord, 0, len(rows))
	for _, r := range rows {
		rec := model.SalesRecord{
			Date:     r.date,
			Store:    r.store,
			SKU:      r.sku,
			Name:     r.name,
			Quantity: int(r.qty),
			Price:    r.price,
		}
		if r.totalOK {
			rec.Total = r.total
		} else {
			rec.Total = r.qty * r.price
		}
		out = append(out, rec)
	}
	return out
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// quantile interpolates linearly between order statistics, matching how the
// reporting stack computes percentiles.
func quantile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return 0
	}
	s := make([]float64, len(values))
	copy(s, values)
	sort.Float64s(s)

	if len(s) == 1 {
		return s[0]
	}
	pos := q * float64(len(s)-1)
	lo := int(math.Floor(pos))
	if lo+1 >= len(s) {
		return s[len(s)-1]
	}
	frac := pos - float64(lo)
	return s[lo] + frac*(s[lo+1]-s[lo])
}

func median(values []float64) float64 {
	return quantile(values, 0.5)
}
