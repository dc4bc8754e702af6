package config

import "errors"

var (
	// ErrInvalidConfig marks configuration that parsed but fails validation,
	// like a malformed listen address or a non-positive worker count.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrLoadConfig wraps failures reading the config file or environment.
	ErrLoadConfig = errors.New("load config failed")
)
