package pos

import "errors"

var (
	// ErrAPIRequest covers transport and protocol failures talking to the
	// Inspiro export API.
	ErrAPIRequest = errors.New("inspiro api request")
	// ErrBadExport marks an export file that exists but cannot be parsed.
	ErrBadExport = errors.New("malformed inspiro export")
)
