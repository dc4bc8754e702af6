// Package seedsales fills a forecasting database with synthetic sales
// history, so models can be trained and the dashboard demonstrated before a
// real POS integration delivers data.
package seedsales

import "time"

// Config holds the parameters of a seeding run.
type Config struct {
	DBPath    string   // SQLite database to fill
	Days      int      // days of history ending yesterday
	Stores    []string // store ids; empty uses the demo network
	Seed      int64    // RNG seed; zero derives one from the clock
	BatchSize int      // rows per insert batch
	CSVOut    string   // optional sales export to write alongside the DB
}

// Stats summarizes what a run produced.
type Stats struct {
	Generated int           // rows generated
	Inserted  int           // rows the database accepted
	Stored    int           // rows counted in the database afterwards
	Duration  time.Duration // wall time of the run
}
