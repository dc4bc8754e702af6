package pos

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nurtas/bloomcast/internal/domain/model"
	"github.com/nurtas/bloomcast/internal/domain/validate"
)

// Column names Inspiro writes into its CSV exports. Sales and inventory
// share the quantity column name.
const (
	colDate     = "Дата"
	colStore    = "Магазин"
	colSKU      = "SKU"
	colName     = "Название"
	colQuantity = "Количество"
	colPrice    = "Цена"
	colTotal    = "Сумма"
	colCategory = "Категория"
	colUnit     = "Единица"
)

// vendorColumns maps the long headers Inspiro writes into its exports to the
// canonical names the rest of the system uses. Canonical headers pass
// through untouched.
var vendorColumns = map[string]string{
	"Дата продажи":        colDate,
	"Код магазина":        colStore,
	"Артикул товара":      colSKU,
	"Наименование товара": colName,
	"Цена за единицу":     colPrice,
	"Сумма продажи":       colTotal,
}

// exportTable is a header-indexed CSV export.
type exportTable struct {
	index map[string]int
	rows  [][]string
}

// readExport loads a CSV export and indexes it by header. Missing files
// surface the underlying fs.ErrNotExist so callers can fall through to the
// next source in the chain.
func (c *Client) readExport(name string, required []string) (*exportTable, error) {
	path := filepath.Join(c.exportDir, name)
	f, err := os.Open(path) //nolint:gosec // operator-controlled export directory
	if err != nil {
		return nil, err
	}
	defer f.Close() //nolint:errcheck // read-only file

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrBadExport, name, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s: empty file", ErrBadExport, name)
	}

	index := make(map[string]int, len(records[0]))
	for i, col := range records[0] {
		name := strings.TrimSpace(col)
		if canonical, ok := vendorColumns[name]; ok {
			name = canonical
		}
		index[name] = i
	}
	for _, col := range required {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: %s: missing column %q", ErrBadExport, name, col)
		}
	}
	return &exportTable{index: index, rows: records[1:]}, nil
}

// cell returns the named column of a row, empty when absent.
func (t *exportTable) cell(row []string, col string) string {
	i, ok := t.index[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// readSalesExport parses the operator-saved sales export, limited to the
// given store ids when non-empty. Rows stay raw; the auditor coerces and
// filters them later.
func (c *Client) readSalesExport(stores []string) ([]validate.RawSale, error) {
	t, err := c.readExport(salesExportFile, validate.RequiredColumns)
	if err != nil {
		return nil, err
	}

	keep := storeFilter(stores)
	rows := make([]validate.RawSale, 0, len(t.rows))
	for _, row := range t.rows {
		store := t.cell(row, colStore)
		if !keep(store) {
			continue
		}
		rows = append(rows, validate.RawSale{
			Date:     t.cell(row, colDate),
			Store:    store,
			SKU:      t.cell(row, colSKU),
			Name:     t.cell(row, colName),
			Quantity: t.cell(row, colQuantity),
			Price:    t.cell(row, colPrice),
			Total:    t.cell(row, colTotal),
		})
	}
	return rows, nil
}

// readStockExport parses the inventory export. Rows with a non-numeric
// quantity are dropped rather than failing the whole import.
func (c *Client) readStockExport(stores []string) ([]model.StockRecord, error) {
	t, err := c.readExport(inventoryExportFile, []string{colStore, colSKU, colQuantity})
	if err != nil {
		return nil, err
	}

	keep := storeFilter(stores)
	rows := make([]model.StockRecord, 0, len(t.rows))
	for _, row := range t.rows {
		store := t.cell(row, colStore)
		if !keep(store) {
			continue
		}
		qty, err := strconv.Atoi(t.cell(row, colQuantity))
		if err != nil || qty < 0 {
			continue
		}
		rows = append(rows, model.StockRecord{
			Store:    store,
			SKU:      t.cell(row, colSKU),
			Quantity: qty,
		})
	}
	return rows, nil
}

// readCatalogExport parses the product catalog export.
func (c *Client) readCatalogExport() ([]CatalogItem, error) {
	t, err := c.readExport(catalogExportFile, []string{colSKU, colName})
	if err != nil {
		return nil, err
	}

	items := make([]CatalogItem, 0, len(t.rows))
	for _, row := range t.rows {
		sku := t.cell(row, colSKU)
		if sku == "" {
			continue
		}
		items = append(items, CatalogItem{
			SKU:      sku,
			Name:     t.cell(row, colName),
			Category: t.cell(row, colCategory),
			Unit:     t.cell(row, colUnit),
		})
	}
	return items, nil
}

// WriteSalesExport writes sales lines in the Inspiro export format, so the
// file source of the import chain can serve them back.
func WriteSalesExport(path string, records []model.SalesRecord) error {
	f, err := os.Create(path) //nolint:gosec // operator-chosen output path
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	header := []string{colDate, colStore, colSKU, colName, colQuantity, colPrice, colTotal}
	if err := w.Write(header); err != nil {
		f.Close() //nolint:errcheck,gosec // write error takes precedence
		return err
	}
	for _, rec := range records {
		row := []string{
			rec.Date.Format("2006-01-02"),
			rec.Store,
			rec.SKU,
			rec.Name,
			strconv.Itoa(rec.Quantity),
			strconv.FormatFloat(rec.Price, 'f', 2, 64),
			strconv.FormatFloat(rec.Total, 'f', 2, 64),
		}
		if err := w.Write(row); err != nil {
			f.Close() //nolint:errcheck,gosec // write error takes precedence
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close() //nolint:errcheck,gosec // write error takes precedence
		return err
	}
	return f.Close()
}

// storeFilter returns a predicate keeping only the listed stores, or
// everything when the list is empty.
func storeFilter(stores []string) func(string) bool {
	if len(stores) == 0 {
		return func(string) bool { return true }
	}
	set := make(map[string]bool, len(stores))
	for _, s := range stores {
		set[s] = true
	}
	return func(s string) bool { return set[s] }
}
