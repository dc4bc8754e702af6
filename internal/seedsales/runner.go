package seedsales

import (
	"context"
	"fmt"
	"time"

	"github.com/nurtas/bloomcast/internal/adapters/pos"
	"github.com/nurtas/bloomcast/internal/adapters/repository"
	"github.com/nurtas/bloomcast/pkg/logger"
)

const (
	defaultDays  = 90
	defaultBatch = 500
)

// Run generates the history and loads it into the database in batches.
func Run(ctx context.Context, cfg *Config) (Stats, error) {
	log := logger.Named("seedsales")
	start := time.Now()

	if cfg.Days <= 0 {
		cfg.Days = defaultDays
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatch
	}

	records := generate(cfg, start)
	stats := Stats{Generated: len(records)}
	log.Info(ctx, "generated synthetic sales history",
		logger.Int("rows", len(records)),
		logger.Int("days", cfg.Days),
		logger.Int64("seed", cfg.Seed))

	store, err := repository.NewSQLite(cfg.DBPath)
	if err != nil {
		return stats, fmt.Errorf("open database: %w", err)
	}
	defer store.Close() //nolint:errcheck // read-back already verified below

	for offset := 0; offset < len(records); offset += cfg.BatchSize {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		end := offset + cfg.BatchSize
		if end > len(records) {
			end = len(records)
		}
		n, err := store.InsertSales(ctx, records[offset:end])
		if err != nil {
			return stats, fmt.Errorf("insert batch at row %d: %w", offset, err)
		}
		stats.Inserted += n
		log.Debug(ctx, "batch inserted",
			logger.Int("offset", offset),
			logger.Int("inserted", stats.Inserted))
	}

	// Read back the count so a silently lossy run fails loudly.
	stored, err := store.CountSales(ctx)
	if err != nil {
		return stats, fmt.Errorf("verify row count: %w", err)
	}
	stats.Stored = stored
	if stored < stats.Inserted {
		return stats, fmt.Errorf("database reports %d rows after inserting %d", stored, stats.Inserted)
	}

	if cfg.CSVOut != "" {
		if err := pos.WriteSalesExport(cfg.CSVOut, records); err != nil {
			return stats, fmt.Errorf("write sales export: %w", err)
		}
		log.Info(ctx, "sales export written", logger.String("file", cfg.CSVOut))
	}

	stats.Duration = time.Since(start)
	log.Info(ctx, "seeding complete",
		logger.Int("inserted", stats.Inserted),
		logger.Int("stored", stats.Stored),
		logger.Duration("took", stats.Duration))
	return stats, nil
}
