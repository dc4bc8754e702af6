package repository

import "time"

// Option applies a configuration option to the SQLite store.
type Option func(*SQLite)

// WithBusyTimeout sets how long a locked database is retried before the
// driver gives up.
func WithBusyTimeout(d time.Duration) Option {
	return func(s *SQLite) {
		if d > 0 {
			s.busyTimeout = d
		}
	}
}

// WithJournalMode overrides the journal mode. The default is WAL so the
// dashboard can read while an import writes.
func WithJournalMode(mode string) Option {
	return func(s *SQLite) {
		if mode != "" {
			s.journalMode = mode
		}
	}
}
