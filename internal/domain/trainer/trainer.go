// Package trainer trains demand forecasting models and scores them on a
// chronological holdout. Three algorithms are supported; each reports its
// parameters in the shape the model registry persists.
package trainer

import (
	"context"
	"fmt"
	"math"
)

// Supported algorithm names.
const (
	AlgorithmLinearRegression = "linear_regression"
	AlgorithmDecisionTree     = "decision_tree"
	AlgorithmRandomForest     = "random_forest"
)

// Algorithms lists the supported algorithm names in training order.
func Algorithms() []string {
	return []string{AlgorithmLinearRegression, AlgorithmDecisionTree, AlgorithmRandomForest}
}

// Evaluation settings shared by all algorithms.
const (
	defaultTestRatio = 0.2
	maxEvalSamples   = 100
)

// FeatureNames gives the column order of the feature matrix.
var FeatureNames = []string{
	"season_factor",
	"weekday_factor",
	"holiday_factor",
	"temperature",
	"precipitation",
	"trend",
}

// TrainingData is a feature matrix with labels, ordered chronologically.
type TrainingData struct {
	Features     [][]float64
	Labels       []float64
	FeatureNames []string
}

// Len returns the number of samples.
func (d TrainingData) Len() int {
	return len(d.Labels)
}

// Split cuts the data chronologically: the first (1-testRatio) share trains,
// the remainder tests. A ratio outside (0, 1) falls back to the default.
func (d TrainingData) Split(testRatio float64) (train, test TrainingData) {
	if testRatio <= 0 || testRatio >= 1 {
		testRatio = defaultTestRatio
	}
	cut := int(float64(d.Len()) * (1 - testRatio))

	train = TrainingData{
		Features:     d.Features[:cut],
		Labels:       d.Labels[:cut],
		FeatureNames: d.FeatureNames,
	}
	test = TrainingData{
		Features:     d.Features[cut:],
		Labels:       d.Labels[cut:],
		FeatureNames: d.FeatureNames,
	}
	return train, test
}

// Metrics scores a model on the holdout.
type Metrics struct {
	MAE        float64 `json:"mae"`
	MAPE       float64 `json:"mape"`
	RMSE       float64 `json:"rmse"`
	Accuracy   float64 `json:"accuracy"`
	SampleSize int     `json:"sample_size"`
}

// Result is the outcome of one training run.
type Result struct {
	Algorithm       string         `json:"algorithm"`
	Params          map[string]any `json:"params"`
	Metrics         Metrics        `json:"metrics"`
	TrainingSamples int            `json:"training_samples"`
	TestSamples     int            `json:"test_samples"`
}

// Trainer fits one algorithm to training data.
type Trainer interface {
	// Algorithm returns the algorithm name.
	Algorithm() string

	// Train fits the model on the chronological training share and scores
	// it on the holdout.
	Train(ctx context.Context, data TrainingData) (*Result, error)
}

// Option applies shared trainer configuration.
type Option func(*options)

type options struct {
	testRatio       float64
	seed            int64
	maxDepth        int
	minSamplesSplit int
	estimators      int
}

// WithTestRatio overrides the chronological holdout share.
func WithTestRatio(r float64) Option {
	return func(o *options) {
		if r > 0 && r < 1 {
			o.testRatio = r
		}
	}
}

// WithSeed pins bootstrap sampling and feature subsets. Zero keeps
// time-based seeding.
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.seed = seed
	}
}

// WithMaxDepth caps tree growth for the tree-based algorithms.
func WithMaxDepth(d int) Option {
	return func(o *options) {
		if d > 0 {
			o.maxDepth = d
		}
	}
}

// WithMinSamplesSplit sets the minimum node size eligible for splitting.
func WithMinSamplesSplit(n int) Option {
	return func(o *options) {
		if n >= 2 {
			o.minSamplesSplit = n
		}
	}
}

// WithEstimators sets the forest size.
func WithEstimators(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.estimators = n
		}
	}
}

func newOptions(opts ...Option) options {
	o := options{
		testRatio:       defaultTestRatio,
		maxDepth:        10,
		minSamplesSplit: 5,
		estimators:      100,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// New creates a trainer for the named algorithm.
func New(algorithm string, opts ...Option) (Trainer, error) {
	o := newOptions(opts...)
	switch algorithm {
	case AlgorithmLinearRegression:
		return &linearTrainer{opts: o}, nil
	case AlgorithmDecisionTree:
		return &treeTrainer{opts: o}, nil
	case AlgorithmRandomForest:
		return &forestTrainer{opts: o}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownAlgorithm, algorithm)
	}
}

// predictor is the fitted-model side shared by the evaluators.
type predictor interface {
	predict(features []float64) float64
}

// evaluate scores a fitted model on up to maxEvalSamples of the holdout.
// Negative predictions are clamped to zero before scoring, matching how the
// forecast surfaces treat demand.
func evaluate(p predictor, test TrainingData) Metrics {
	n := test.Len()
	if n > maxEvalSamples {
		n = maxEvalSamples
	}
	if n == 0 {
		return Metrics{}
	}

	var absSum, pctSum, sqSum float64
	for i := 0; i < n; i++ {
		pred := p.predict(test.Features[i])
		if pred < 0 {
			pred = 0
		}
		actual := test.Labels[i]

		diff := pred - actual
		absSum += math.Abs(diff)
		pctSum += math.Abs(diff) / math.Max(actual, 1)
		sqSum += diff * diff
	}

	fn := float64(n)
	mape := pctSum / fn
	return Metrics{
		MAE:        absSum / fn,
		MAPE:       mape,
		RMSE:       math.Sqrt(sqSum / fn),
		Accuracy:   math.Max(0, 1-mape),
		SampleSize: n,
	}
}

// validate rejects data no algorithm can fit.
func validate(data TrainingData) error {
	if data.Len() < 10 {
		return fmt.Errorf("%w: %d samples", ErrNotEnoughData, data.Len())
	}
	if len(data.Features) != len(data.Labels) {
		return fmt.Errorf("%w: %d feature rows for %d labels", ErrBadShape, len(data.Features), len(data.Labels))
	}
	width := len(data.FeatureNames)
	if width == 0 {
		return fmt.Errorf("%w: no feature names", ErrBadShape)
	}
	for i, row := range data.Features {
		if len(row) != width {
			return fmt.Errorf("%w: row %d has %d columns, want %d", ErrBadShape, i, len(row), width)
		}
	}
	return nil
}

// importanceMap pairs per-column gains with feature names, normalized to
// sum to one.
func importanceMap(names []string, gains []float64) map[string]float64 {
	total := 0.0
	for _, g := range gains {
		total += g
	}

	out := make(map[string]float64, len(names))
	for i, name := range names {
		if total > 0 {
			out[name] = gains[i] / total
		} else {
			out[name] = 0
		}
	}
	return out
}
