package modelregistry

import "errors"

// Sentinel kinds for registry errors.
var (
	// ErrLoadRegistry indicates the model document could not be read.
	ErrLoadRegistry = errors.New("load model registry")

	// ErrSaveRegistry indicates the model document could not be written.
	ErrSaveRegistry = errors.New("save model registry")
)
