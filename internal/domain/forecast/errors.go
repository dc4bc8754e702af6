package forecast

import "errors"

// Sentinel errors returned by the engine.
var (
	// ErrUnknownStore indicates the store id is not in the network config.
	ErrUnknownStore = errors.New("unknown store")

	// ErrStoreInactive indicates the store is configured but switched off.
	ErrStoreInactive = errors.New("store inactive")
)
