package repository

import "errors"

// Sentinel kinds for store errors.
var (
	// ErrOpenStore indicates the database could not be opened or migrated.
	ErrOpenStore = errors.New("open store")

	// ErrNotFound indicates no forecast snapshot exists yet.
	ErrNotFound = errors.New("no forecast snapshot")
)
