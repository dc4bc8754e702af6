package seedsales

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestGenerate_Deterministic(t *testing.T) {
	cfg := &Config{Days: 14, Seed: 42}
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	first := generate(cfg, now)
	second := generate(cfg, now)

	if len(first) == 0 {
		t.Fatal("expected generated rows")
	}
	if len(first) != len(second) {
		t.Fatalf("same seed produced %d then %d rows", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("row %d differs between runs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestGenerate_CoversRequestedRange(t *testing.T) {
	cfg := &Config{Days: 30, Seed: 1, Stores: []string{"almaty_1"}}
	now := time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC)

	records := generate(cfg, now)

	last := time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC)
	first := last.AddDate(0, 0, -29)
	for _, rec := range records {
		if rec.Date.Before(first) || rec.Date.After(last) {
			t.Fatalf("row outside requested range: %s", rec.Date.Format("2006-01-02"))
		}
		if rec.Store != "almaty_1" {
			t.Fatalf("unexpected store %q", rec.Store)
		}
		if rec.Quantity < 1 || rec.Price < 200 {
			t.Fatalf("implausible row: %+v", rec)
		}
	}
}

func TestRun_SeedsDatabase(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{
		DBPath:    filepath.Join(dir, "bloomcast.db"),
		Days:      7,
		Seed:      7,
		BatchSize: 50,
		CSVOut:    filepath.Join(dir, "inspiro_sales_export.csv"),
	}

	stats, err := Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if stats.Generated == 0 || stats.Inserted != stats.Generated {
		t.Fatalf("expected every generated row inserted, got %+v", stats)
	}
	if stats.Stored < stats.Inserted {
		t.Fatalf("database holds %d rows after inserting %d", stats.Stored, stats.Inserted)
	}
	if _, err := os.Stat(cfg.CSVOut); err != nil {
		t.Fatalf("expected sales export to exist: %v", err)
	}
}

func TestRun_DefaultsApplied(t *testing.T) {
	cfg := &Config{DBPath: filepath.Join(t.TempDir(), "bloomcast.db"), Seed: 3, Days: 2}

	if _, err := Run(context.Background(), cfg); err != nil {
		t.Fatalf("run: %v", err)
	}
	if cfg.BatchSize != defaultBatch {
		t.Errorf("expected default batch size, got %d", cfg.BatchSize)
	}
}
