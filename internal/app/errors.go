package app

import "errors"

// Sentinel errors surfaced to the API and CLI layers.
var (
	// ErrNotStarted reports a call before Start.
	ErrNotStarted = errors.New("service not started")

	// ErrRefreshInFlight reports a refresh already pending for the store.
	ErrRefreshInFlight = errors.New("refresh already in flight")

	// ErrBackpressure reports a full refresh queue.
	ErrBackpressure = errors.New("refresh queue full")

	// ErrDemoMode reports a spreadsheet operation without credentials.
	ErrDemoMode = errors.New("spreadsheet not configured")
)
