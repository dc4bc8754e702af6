// Package repository persists sales history, stock levels, manual
// corrections and forecast snapshots.
package repository

import (
	"context"
	"time"

	"github.com/nurtas/bloomcast/internal/domain/model"
)

// SalesQuery filters sales history. Zero-valued fields are ignored.
type SalesQuery struct {
	From  time.Time
	To    time.Time
	Store string
	SKU   string
	Limit int
}

// SnapshotQuery filters the persisted forecast. Empty fields are ignored.
type SnapshotQuery struct {
	Store    string
	Date     string // YYYY-MM-DD
	Priority string
}

// Store provides durable access to the forecasting state.
type Store interface {
	// InsertSales upserts a batch of sales lines keyed by (date, store, SKU).
	// Re-imported lines overwrite their previous version.
	InsertSales(ctx context.Context, records []model.SalesRecord) (int, error)

	// SalesHistory returns sales matching the query, oldest first.
	SalesHistory(ctx context.Context, q SalesQuery) ([]model.SalesRecord, error)

	// CountSales returns the number of stored sales lines.
	CountSales(ctx context.Context) (int, error)

	// ReplaceStock swaps the stock table for the given levels.
	ReplaceStock(ctx context.Context, records []model.StockRecord) error

	// StockFor returns the on-hand quantity for a store and SKU. The bool
	// reports whether a level is known.
	StockFor(ctx context.Context, storeID, sku string) (int, bool, error)

	// AddCorrection stores a manual forecast override.
	AddCorrection(ctx context.Context, c model.Correction) error

	// ListCorrections returns corrections newest first, optionally filtered
	// by store.
	ListCorrections(ctx context.Context, store string) ([]model.Correction, error)

	// SaveSnapshot replaces the persisted forecast for a store, or for the
	// whole network when storeID is empty.
	SaveSnapshot(ctx context.Context, storeID string, rows []model.ForecastRow) error

	// LatestSnapshot returns persisted forecast rows matching the query.
	// Returns ErrNotFound if no forecast has been generated yet.
	LatestSnapshot(ctx context.Context, q SnapshotQuery) ([]model.ForecastRow, error)

	// Close releases the underlying database.
	Close() error
}
