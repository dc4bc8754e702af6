package trainer

import "errors"

// Sentinel errors returned by trainers.
var (
	// ErrUnknownAlgorithm indicates an unsupported algorithm name.
	ErrUnknownAlgorithm = errors.New("unknown algorithm")

	// ErrNotEnoughData indicates the dataset is too small to fit and score.
	ErrNotEnoughData = errors.New("not enough training data")

	// ErrBadShape indicates the feature matrix is inconsistent.
	ErrBadShape = errors.New("bad training data shape")

	// ErrSingular indicates the normal equations could not be solved.
	ErrSingular = errors.New("singular feature matrix")
)
