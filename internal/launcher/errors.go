package launcher

import "errors"

var (
	// ErrNotReady means the dashboard never answered its health probe within
	// the startup timeout.
	ErrNotReady = errors.New("dashboard did not become ready")
	// ErrServerClosed wraps an unexpected server exit.
	ErrServerClosed = errors.New("dashboard server exited")
)
