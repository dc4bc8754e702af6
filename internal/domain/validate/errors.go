package validate

import "errors"

// ErrMissingColumns indicates a sales export lacks required columns.
var ErrMissingColumns = errors.New("missing required columns")
