// Package model contains domain records passed between layers.
package model

import (
	"fmt"
	"time"
)

// SalesRecord is one point-of-sale line after validation.
type SalesRecord struct {
	Date     time.Time // sale date, truncated to day
	Store    string    // store id, e.g. "almaty_1"
	SKU      string    // article as exported by the POS
	Name     string    // human product name, optional
	Quantity int       // units sold
	Price    float64   // unit price in KZT
	Total    float64   // quantity * price as reported by the source
}

// Key identifies a sales line for deduplication.
func (r SalesRecord) Key() string {
	return fmt.Sprintf("%s_%s_%s", r.Date.Format("2006-01-02"), r.Store, r.SKU)
}

// StockRecord is the on-hand quantity of a SKU at a store.
type StockRecord struct {
	Store    string
	SKU      string
	Quantity int
}

// Correction is a manual override of one forecast row.
type Correction struct {
	ID        string    `json:"id"`
	Date      string    `json:"date"` // forecast date, YYYY-MM-DD
	Store     string    `json:"store"`
	SKU       string    `json:"sku"`
	Original  int       `json:"original_forecast"`
	Corrected int       `json:"corrected_forecast"`
	Reason    string    `json:"reason"`
	Author    string    `json:"author,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Key returns the date_store_sku key the dashboard uses to look up overrides.
func (c Correction) Key() string {
	return fmt.Sprintf("%s_%s_%s", c.Date, c.Store, c.SKU)
}

// RefreshJob asks the worker pool to regenerate one store's forecast.
type RefreshJob struct {
	ID         string    // job id for tracing
	StoreID    string    // target store
	Days       int       // horizon; 0 means the store's configured horizon
	EnqueuedAt time.Time // set by the service on accept
}
