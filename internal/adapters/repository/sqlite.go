package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // registers the sqlite3 driver

	"github.com/nurtas/bloomcast/internal/domain/model"
)

const dateLayout = "2006-01-02"

const defaultBusyTimeout = 5 * time.Second

// schema is applied on every open; all statements are idempotent.
const schema = `
CREATE TABLE IF NOT EXISTS sales (
	date     TEXT NOT NULL,
	store    TEXT NOT NULL,
	sku      TEXT NOT NULL,
	name     TEXT NOT NULL DEFAULT '',
	quantity INTEGER NOT NULL,
	price    REAL NOT NULL DEFAULT 0,
	total    REAL NOT NULL DEFAULT 0,
	PRIMARY KEY (date, store, sku)
);
CREATE INDEX IF NOT EXISTS idx_sales_store_sku ON sales (store, sku);

CREATE TABLE IF NOT EXISTS stock (
	store    TEXT NOT NULL,
	sku      TEXT NOT NULL,
	quantity INTEGER NOT NULL,
	PRIMARY KEY (store, sku)
);

CREATE TABLE IF NOT EXISTS corrections (
	id         TEXT PRIMARY KEY,
	date       TEXT NOT NULL,
	store      TEXT NOT NULL,
	sku        TEXT NOT NULL,
	original   INTEGER NOT NULL,
	corrected  INTEGER NOT NULL,
	reason     TEXT NOT NULL DEFAULT '',
	author     TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_corrections_store ON corrections (store);

CREATE TABLE IF NOT EXISTS forecast_snapshot (
	date         TEXT NOT NULL,
	weekday      TEXT NOT NULL,
	store_id     TEXT NOT NULL,
	store_name   TEXT NOT NULL,
	sku          TEXT NOT NULL,
	demand       INTEGER NOT NULL,
	stock        INTEGER NOT NULL,
	purchase     INTEGER NOT NULL,
	priority     TEXT NOT NULL,
	seasonal     REAL NOT NULL,
	holiday      REAL NOT NULL,
	weather      REAL NOT NULL,
	generated_at TIMESTAMP NOT NULL,
	PRIMARY KEY (date, store_id, sku)
);
`

// SQLite is the file-backed Store behind the dashboard and the CLI.
type SQLite struct {
	db          *sql.DB
	busyTimeout time.Duration
	journalMode string
}

var _ Store = (*SQLite)(nil)

// NewSQLite opens the database at path, creating it and the schema when
// missing.
func NewSQLite(path string, opts ...Option) (*SQLite, error) {
	s := &SQLite{
		busyTimeout: defaultBusyTimeout,
		journalMode: "WAL",
	}
	for _, opt := range opts {
		opt(s)
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=%d&_journal_mode=%s&_foreign_keys=on",
		path, s.busyTimeout.Milliseconds(), s.journalMode)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpenStore, err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: apply schema: %v", ErrOpenStore, err)
	}

	s.db = db
	return s, nil
}

// InsertSales upserts a batch in one transaction.
func (s *SQLite) InsertSales(ctx context.Context, records []model.SalesRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin sales insert: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO sales (date, store, sku, name, quantity, price, total)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare sales insert: %w", err)
	}
	defer stmt.Close() //nolint:errcheck // read-only statement handle

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx,
			r.Date.Format(dateLayout), r.Store, r.SKU, r.Name, r.Quantity, r.Price, r.Total); err != nil {
			return 0, fmt.Errorf("insert sale %s: %w", r.Key(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit sales insert: %w", err)
	}
	return len(records), nil
}

// SalesHistory returns matching sales ordered by date, store and SKU.
func (s *SQLite) SalesHistory(ctx context.Context, q SalesQuery) ([]model.SalesRecord, error) {
	query := `SELECT date, store, sku, name, quantity, price, total FROM sales`

	var conds []string
	var args []any
	if !q.From.IsZero() {
		conds = append(conds, "date >= ?")
		args = append(args, q.From.Format(dateLayout))
	}
	if !q.To.IsZero() {
		conds = append(conds, "date <= ?")
		args = append(args, q.To.Format(dateLayout))
	}
	if q.Store != "" {
		conds = append(conds, "store = ?")
		args = append(args, q.Store)
	}
	if q.SKU != "" {
		conds = append(conds, "sku = ?")
		args = append(args, q.SKU)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY date, store, sku"
	if q.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sales: %w", err)
	}
	defer rows.Close() //nolint:errcheck // drained below

	var out []model.SalesRecord
	for rows.Next() {
		var r model.SalesRecord
		var date string
		if err := rows.Scan(&date, &r.Store, &r.SKU, &r.Name, &r.Quantity, &r.Price, &r.Total); err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		if r.Date, err = time.Parse(dateLayout, date); err != nil {
			return nil, fmt.Errorf("parse sale date %q: %w", date, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// CountSales returns the number of stored sales lines.
func (s *SQLite) CountSales(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sales`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count sales: %w", err)
	}
	return n, nil
}

// ReplaceStock swaps the whole stock table for the given levels.
func (s *SQLite) ReplaceStock(ctx context.Context, records []model.StockRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin stock replace: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, `DELETE FROM stock`); err != nil {
		return fmt.Errorf("clear stock: %w", err)
	}
	for _, r := range records {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO stock (store, sku, quantity) VALUES (?, ?, ?)`,
			r.Store, r.SKU, r.Quantity); err != nil {
			return fmt.Errorf("insert stock %s/%s: %w", r.Store, r.SKU, err)
		}
	}
	return tx.Commit()
}

// StockFor reports the known stock level for a store and SKU.
func (s *SQLite) StockFor(ctx context.Context, storeID, sku string) (int, bool, error) {
	var qty int
	err := s.db.QueryRowContext(ctx,
		`SELECT quantity FROM stock WHERE store = ? AND sku = ?`, storeID, sku).Scan(&qty)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("query stock %s/%s: %w", storeID, sku, err)
	}
	return qty, true, nil
}

// AddCorrection stores a manual forecast override.
func (s *SQLite) AddCorrection(ctx context.Context, c model.Correction) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO corrections (id, date, store, sku, original, corrected, reason, author, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Date, c.Store, c.SKU, c.Original, c.Corrected, c.Reason, c.Author, c.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert correction %s: %w", c.Key(), err)
	}
	return nil
}

// ListCorrections returns corrections newest first.
func (s *SQLite) ListCorrections(ctx context.Context, store string) ([]model.Correction, error) {
	query := `SELECT id, date, store, sku, original, corrected, reason, author, created_at FROM corrections`
	var args []any
	if store != "" {
		query += ` WHERE store = ?`
		args = append(args, store)
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query corrections: %w", err)
	}
	defer rows.Close() //nolint:errcheck // drained below

	var out []model.Correction
	for rows.Next() {
		var c model.Correction
		if err := rows.Scan(&c.ID, &c.Date, &c.Store, &c.SKU,
			&c.Original, &c.Corrected, &c.Reason, &c.Author, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan correction: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// SaveSnapshot replaces the persisted forecast for one store, or for the
// whole network when storeID is empty.
func (s *SQLite) SaveSnapshot(ctx context.Context, storeID string, rows []model.ForecastRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot save: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if storeID == "" {
		_, err = tx.ExecContext(ctx, `DELETE FROM forecast_snapshot`)
	} else {
		_, err = tx.ExecContext(ctx, `DELETE FROM forecast_snapshot WHERE store_id = ?`, storeID)
	}
	if err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO forecast_snapshot
		 (date, weekday, store_id, store_name, sku, demand, stock, purchase,
		  priority, seasonal, holiday, weather, generated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare snapshot insert: %w", err)
	}
	defer stmt.Close() //nolint:errcheck // read-only statement handle

	generatedAt := time.Now().UTC()
	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx,
			r.Date, r.Weekday, r.StoreID, r.StoreName, r.SKU,
			r.Demand, r.Stock, r.Purchase, string(r.Priority),
			r.SeasonalFactor, r.HolidayFactor, r.WeatherFactor, generatedAt); err != nil {
			return fmt.Errorf("insert snapshot row %s/%s/%s: %w", r.Date, r.StoreID, r.SKU, err)
		}
	}
	return tx.Commit()
}

// LatestSnapshot returns the persisted forecast filtered by the query.
func (s *SQLite) LatestSnapshot(ctx context.Context, q SnapshotQuery) ([]model.ForecastRow, error) {
	query := `SELECT date, weekday, store_id, store_name, sku, demand, stock,
	          purchase, priority, seasonal, holiday, weather FROM forecast_snapshot`

	var conds []string
	var args []any
	if q.Store != "" {
		conds = append(conds, "store_id = ?")
		args = append(args, q.Store)
	}
	if q.Date != "" {
		conds = append(conds, "date = ?")
		args = append(args, q.Date)
	}
	if q.Priority != "" {
		conds = append(conds, "priority = ?")
		args = append(args, q.Priority)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY date, store_id, sku"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query snapshot: %w", err)
	}
	defer rows.Close() //nolint:errcheck // drained below

	var out []model.ForecastRow
	for rows.Next() {
		var r model.ForecastRow
		if err := rows.Scan(&r.Date, &r.Weekday, &r.StoreID, &r.StoreName, &r.SKU,
			&r.Demand, &r.Stock, &r.Purchase, &r.Priority,
			&r.SeasonalFactor, &r.HolidayFactor, &r.WeatherFactor); err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(out) == 0 {
		var n int
		if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM forecast_snapshot`).Scan(&n); err != nil {
			return nil, fmt.Errorf("count snapshot: %w", err)
		}
		if n == 0 {
			return nil, ErrNotFound
		}
	}
	return out, nil
}

// Close releases the database handle.
func (s *SQLite) Close() error {
	return s.db.Close()
}
