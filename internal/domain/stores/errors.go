package stores

import "errors"

// Sentinel errors returned by the stores manager.
var (
	// ErrLoadStores indicates the configuration document could not be read.
	ErrLoadStores = errors.New("load stores config")

	// ErrSaveStores indicates the configuration document could not be written.
	ErrSaveStores = errors.New("save stores config")

	// ErrInvalidStores indicates the document failed schema validation.
	ErrInvalidStores = errors.New("invalid stores config")

	// ErrMissingField indicates a required store field was not supplied.
	ErrMissingField = errors.New("missing required field")
)
