package trainer

import (
	"context"
	"fmt"
	"math"
)

// pivotEpsilon is the smallest pivot treated as non-singular.
const pivotEpsilon = 1e-10

// linearTrainer fits ordinary least squares through the normal equations.
type linearTrainer struct {
	opts options
}

func (t *linearTrainer) Algorithm() string {
	return AlgorithmLinearRegression
}

func (t *linearTrainer) Train(ctx context.Context, data TrainingData) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("training cancelled: %w", err)
	}
	if err := validate(data); err != nil {
		return nil, err
	}

	train, test := data.Split(t.opts.testRatio)

	coeffs, err := solveNormalEquations(train.Features, train.Labels)
	if err != nil {
		return nil, err
	}

	model := &linearModel{coefficients: coeffs}

	params := make(map[string]any, len(data.FeatureNames)+1)
	params["intercept"] = coeffs[0]
	for i, name := range data.FeatureNames {
		params[name] = coeffs[i+1]
	}

	return &Result{
		Algorithm:       t.Algorithm(),
		Params:          params,
		Metrics:         evaluate(model, test),
		TrainingSamples: train.Len(),
		TestSamples:     test.Len(),
	}, nil
}

// linearModel predicts with an intercept followed by per-feature weights.
type linearModel struct {
	coefficients []float64
}

func (m *linearModel) predict(features []float64) float64 {
	y := m.coefficients[0]
	for i, x := range features {
		y += m.coefficients[i+1] * x
	}
	return y
}

// solveNormalEquations computes beta for X'X beta = X'y, with an implicit
// leading ones column for the intercept. The system is solved by Gaussian
// elimination with partial pivoting.
func solveNormalEquations(features [][]float64, labels []float64) ([]float64, error) {
	n := len(features)
	p := len(features[0]) + 1 // plus intercept

	// Build the augmented matrix [X'X | X'y] directly.
	aug := make([][]float64, p)
	for i := range aug {
		aug[i] = make([]float64, p+1)
	}

	row := make([]float64, p)
	for s := 0; s < n; s++ {
		row[0] = 1
		copy(row[1:], features[s])
		for i := 0; i < p; i++ {
			for j := 0; j < p; j++ {
				aug[i][j] += row[i] * row[j]
			}
			aug[i][p] += row[i] * labels[s]
		}
	}

	// Forward elimination with partial pivoting.
	for col := 0; col < p; col++ {
		pivot := col
		for r := col + 1; r < p; r++ {
			if math.Abs(aug[r][col]) > math.Abs(aug[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(aug[pivot][col]) < pivotEpsilon {
			return nil, fmt.Errorf("%w: pivot %d", ErrSingular, col)
		}
		aug[col], aug[pivot] = aug[pivot], aug[col]

		for r := col + 1; r < p; r++ {
			factor := aug[r][col] / aug[col][col]
			for c := col; c <= p; c++ {
				aug[r][c] -= factor * aug[col][c]
			}
		}
	}

	// Back substitution.
	beta := make([]float64, p)
	for i := p - 1; i >= 0; i-- {
		sum := aug[i][p]
		for j := i + 1; j < p; j++ {
			sum -= aug[i][j] * beta[j]
		}
		beta[i] = sum / aug[i][i]
	}
	return beta, nil
}
