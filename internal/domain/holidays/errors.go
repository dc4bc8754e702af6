package holidays

import "errors"

// ErrLoadCalendar indicates a holiday calendar file could not be read or
// parsed.
var ErrLoadCalendar = errors.New("load holiday calendar")
