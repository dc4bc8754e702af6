package worker

import (
	"github.com/nurtas/bloomcast/pkg/logger"
)

// Option applies a configuration option to a RefreshWorker.
type Option func(*RefreshWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *RefreshWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(log logger.Logger) Option {
	return func(w *RefreshWorker) {
		if log != nil {
			w.logger = log
		}
	}
}

// WithTracker wires the in-flight tracker released after each job.
func WithTracker(t Tracker) Option {
	return func(w *RefreshWorker) {
		w.tracker = t
	}
}
