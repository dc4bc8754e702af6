// Package pos imports sales, stock and catalog data from the Inspiro POS
// system. Every import runs a fallback chain and reports which source
// actually served the data: the HTTP API when a key is configured, the
// operator-exported CSV files, and finally generated demo data so the
// dashboard works before any integration is set up.
package pos

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"time"

	"github.com/nurtas/bloomcast/internal/domain/model"
	"github.com/nurtas/bloomcast/internal/domain/validate"
	"github.com/nurtas/bloomcast/pkg/logger"
	"github.com/nurtas/bloomcast/pkg/metrics"
)

// Sources an import can be served by.
const (
	SourceAPI  = "api"
	SourceFile = "file"
	SourceDemo = "demo"
)

// Export file names as the Inspiro instructions tell operators to save them.
const (
	salesExportFile     = "inspiro_sales_export.csv"
	inventoryExportFile = "inspiro_inventory_export.csv"
	catalogExportFile   = "inspiro_catalog_export.csv"
)

const (
	defaultBaseURL     = "https://api.inspiro.pro/v1"
	defaultHTTPTimeout = 30 * time.Second
)

// Option applies a configuration option to the client.
type Option func(*Client)

// WithBaseURL overrides the Inspiro API base URL.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.baseURL = url
		}
	}
}

// WithAPIKey enables the API path of the fallback chain.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithHTTPClient overrides the HTTP client used for API calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithExportDir sets the directory scanned for operator-exported CSV files.
func WithExportDir(dir string) Option {
	return func(c *Client) {
		if dir != "" {
			c.exportDir = dir
		}
	}
}

// WithSeed pins the demo data generator. Zero keeps time-based seeding.
func WithSeed(seed int64) Option {
	return func(c *Client) {
		c.seed = seed
	}
}

// WithLogger sets the logger.
func WithLogger(log logger.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// Client talks to the Inspiro POS system.
type Client struct {
	baseURL   string
	apiKey    string
	http      *http.Client
	exportDir string
	seed      int64
	log       logger.Logger
}

// NewClient creates a POS client. Without an API key only the file and demo
// sources are used.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:   defaultBaseURL,
		http:      &http.Client{Timeout: defaultHTTPTimeout},
		exportDir: ".",
		log:       logger.Named("pos"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchSales imports raw sales lines for the date range, limited to the
// given store ids when non-empty. The returned source reports which backend
// served the data.
func (c *Client) FetchSales(ctx context.Context, from, to time.Time, stores []string) ([]validate.RawSale, string, error) {
	if c.apiKey != "" {
		rows, err := c.fetchSalesAPI(ctx, from, to, stores)
		if err == nil {
			metrics.RecordPOSImport(SourceAPI, "ok")
			return rows, SourceAPI, nil
		}
		c.log.Warn(ctx, "inspiro api unavailable, falling back to export file", logger.Err(err))
		metrics.RecordPOSImport(SourceAPI, "error")
	}

	rows, err := c.readSalesExport(stores)
	if err == nil {
		metrics.RecordPOSImport(SourceFile, "ok")
		return rows, SourceFile, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		// A present but broken export needs the operator, not demo data.
		metrics.RecordPOSImport(SourceFile, "error")
		return nil, "", err
	}

	c.log.Info(ctx, "no sales export found, generating demo data",
		logger.String("file", salesExportFile))
	metrics.RecordPOSImport(SourceDemo, "ok")
	return c.demoSales(from, to, stores), SourceDemo, nil
}

// LoadStock imports current stock levels from the inventory export, falling
// back to demo levels when the file is missing.
func (c *Client) LoadStock(ctx context.Context, stores []string) ([]model.StockRecord, string, error) {
	records, err := c.readStockExport(stores)
	if err == nil {
		return records, SourceFile, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, "", err
	}

	c.log.Info(ctx, "no inventory export found, generating demo stock",
		logger.String("file", inventoryExportFile))
	return c.demoStock(stores), SourceDemo, nil
}

// LoadCatalog imports the product catalog from the catalog export, falling
// back to the demo assortment when the file is missing.
func (c *Client) LoadCatalog(ctx context.Context) ([]CatalogItem, string, error) {
	items, err := c.readCatalogExport()
	if err == nil {
		return items, SourceFile, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, "", err
	}

	c.log.Info(ctx, "no catalog export found, using demo assortment",
		logger.String("file", catalogExportFile))
	return c.demoCatalog(), SourceDemo, nil
}
