// Package sheets syncs sales, stock, forecast and correction data with a
// Google Sheets document via a service account. The dashboard works without
// it; the adapter only exists when valid credentials and a spreadsheet URL
// are configured.
package sheets

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/nurtas/bloomcast/internal/domain/model"
	"github.com/nurtas/bloomcast/internal/domain/validate"
	"github.com/nurtas/bloomcast/pkg/logger"
	"github.com/nurtas/bloomcast/pkg/metrics"
)

// Worksheet titles as the operators see them.
const (
	SheetSales       = "Продажи"
	SheetStock       = "Остатки"
	SheetForecast    = "Прогноз"
	SheetCorrections = "Корректировки"
)

// worksheetHeaders maps each managed worksheet to its header row.
var worksheetHeaders = map[string][]string{
	SheetSales:       {"Дата", "Магазин", "SKU", "Название", "Количество", "Цена", "Сумма"},
	SheetStock:       {"Магазин", "SKU", "Количество"},
	SheetForecast:    {"Дата", "День недели", "Магазин", "Название магазина", "SKU", "Прогноз спроса", "Текущий остаток", "Рекомендуемая закупка", "Приоритет"},
	SheetCorrections: {"Дата", "Магазин", "SKU", "Исходный прогноз", "Скорректированный прогноз", "Причина", "Автор"},
}

// Option applies a configuration option to the client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(log logger.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// Client reads and writes the configured spreadsheet.
type Client struct {
	svc           *sheetsapi.Service
	spreadsheetID string
	creds         Credentials
	log           logger.Logger
}

// NewClient validates the credentials file, extracts the spreadsheet id from
// the URL and builds an authorized Sheets service.
func NewClient(ctx context.Context, credentialsPath, spreadsheetURL string, opts ...Option) (*Client, error) {
	creds, err := ValidateCredentialsFile(credentialsPath)
	if err != nil {
		return nil, err
	}
	id, err := SpreadsheetIDFromURL(spreadsheetURL)
	if err != nil {
		return nil, err
	}

	svc, err := sheetsapi.NewService(ctx,
		option.WithCredentialsFile(credentialsPath),
		option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("%w: build service: %v", ErrAPICall, err)
	}

	c := &Client{
		svc:           svc,
		spreadsheetID: id,
		creds:         creds,
		log:           logger.Named("sheets"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Credentials returns the validated service-account identity for the
// operator report.
func (c *Client) Credentials() Credentials {
	return c.creds
}

// EnsureWorksheets creates any missing managed worksheet and writes its
// header row. Existing worksheets and their data are left alone.
func (c *Client) EnsureWorksheets(ctx context.Context) error {
	doc, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%w: get spreadsheet: %v", ErrAPICall, err)
	}

	existing := make(map[string]bool, len(doc.Sheets))
	for _, sh := range doc.Sheets {
		if sh.Properties != nil {
			existing[sh.Properties.Title] = true
		}
	}

	var requests []*sheetsapi.Request
	var created []string
	for title := range worksheetHeaders {
		if existing[title] {
			continue
		}
		requests = append(requests, &sheetsapi.Request{
			AddSheet: &sheetsapi.AddSheetRequest{
				Properties: &sheetsapi.SheetProperties{Title: title},
			},
		})
		created = append(created, title)
	}
	if len(requests) == 0 {
		return nil
	}

	_, err = c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, &sheetsapi.BatchUpdateSpreadsheetRequest{
		Requests: requests,
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%w: add worksheets: %v", ErrAPICall, err)
	}

	for _, title := range created {
		header := make([]any, len(worksheetHeaders[title]))
		for i, h := range worksheetHeaders[title] {
			header[i] = h
		}
		if err := c.writeRange(ctx, title+"!A1", [][]any{header}); err != nil {
			return err
		}
	}
	c.log.Info(ctx, "worksheets created", logger.Any("titles", created))
	return nil
}

// PushForecast replaces the forecast worksheet with the given rows.
func (c *Client) PushForecast(ctx context.Context, rows []model.ForecastRow) error {
	_, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, SheetForecast, &sheetsapi.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%w: clear forecast: %v", ErrAPICall, err)
	}

	values := make([][]any, 0, len(rows)+1)
	header := make([]any, len(worksheetHeaders[SheetForecast]))
	for i, h := range worksheetHeaders[SheetForecast] {
		header[i] = h
	}
	values = append(values, header)
	for _, r := range rows {
		values = append(values, []any{
			r.Date, r.Weekday, r.StoreID, r.StoreName, r.SKU,
			r.Demand, r.Stock, r.Purchase, string(r.Priority),
		})
	}
	if err := c.writeRange(ctx, SheetForecast+"!A1", values); err != nil {
		return err
	}

	metrics.RecordSheetsOp(SheetForecast, "ok")
	c.log.Info(ctx, "forecast pushed", logger.Int("rows", len(rows)))
	return nil
}

// PullSales reads raw sales lines from the sales worksheet. Values come back
// as strings; the validation pipeline does the type coercion.
func (c *Client) PullSales(ctx context.Context) ([]validate.RawSale, error) {
	records, err := c.readRecords(ctx, SheetSales)
	if err != nil {
		return nil, err
	}

	rows := make([]validate.RawSale, 0, len(records))
	for _, rec := range records {
		rows = append(rows, validate.RawSale{
			Date:     rec["Дата"],
			Store:    rec["Магазин"],
			SKU:      rec["SKU"],
			Name:     rec["Название"],
			Quantity: rec["Количество"],
			Price:    rec["Цена"],
			Total:    rec["Сумма"],
		})
	}
	metrics.RecordSheetsOp(SheetSales, "ok")
	return rows, nil
}

// PullStock reads stock levels from the stock worksheet.
func (c *Client) PullStock(ctx context.Context) ([]model.StockRecord, error) {
	records, err := c.readRecords(ctx, SheetStock)
	if err != nil {
		return nil, err
	}

	stock := make([]model.StockRecord, 0, len(records))
	for _, rec := range records {
		qty, _ := strconv.Atoi(strings.TrimSpace(rec["Количество"]))
		stock = append(stock, model.StockRecord{
			Store:    rec["Магазин"],
			SKU:      rec["SKU"],
			Quantity: qty,
		})
	}
	metrics.RecordSheetsOp(SheetStock, "ok")
	return stock, nil
}

// PullCorrections reads manual overrides from the corrections worksheet.
func (c *Client) PullCorrections(ctx context.Context) ([]model.Correction, error) {
	records, err := c.readRecords(ctx, SheetCorrections)
	if err != nil {
		return nil, err
	}

	corrections := make([]model.Correction, 0, len(records))
	for _, rec := range records {
		original, _ := strconv.Atoi(strings.TrimSpace(rec["Исходный прогноз"]))
		corrected, _ := strconv.Atoi(strings.TrimSpace(rec["Скорректированный прогноз"]))
		corrections = append(corrections, model.Correction{
			Date:      rec["Дата"],
			Store:     rec["Магазин"],
			SKU:       rec["SKU"],
			Original:  original,
			Corrected: corrected,
			Reason:    rec["Причина"],
			Author:    rec["Автор"],
		})
	}
	metrics.RecordSheetsOp(SheetCorrections, "ok")
	return corrections, nil
}

// readRecords fetches a worksheet and zips every data row with the header
// row, the get_all_records shape.
func (c *Client) readRecords(ctx context.Context, title string) ([]map[string]string, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, title).Context(ctx).Do()
	if err != nil {
		metrics.RecordSheetsOp(title, "error")
		return nil, fmt.Errorf("%w: read %s: %v", ErrAPICall, title, err)
	}
	if len(resp.Values) < 2 {
		return nil, nil
	}

	header := make([]string, len(resp.Values[0]))
	for i, v := range resp.Values[0] {
		header[i] = strings.TrimSpace(cellString(v))
	}

	records := make([]map[string]string, 0, len(resp.Values)-1)
	for _, row := range resp.Values[1:] {
		rec := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(row) {
				rec[name] = cellString(row[i])
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

func (c *Client) writeRange(ctx context.Context, rng string, values [][]any) error {
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, &sheetsapi.ValueRange{
		Values: values,
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrAPICall, rng, err)
	}
	return nil
}

func cellString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}
