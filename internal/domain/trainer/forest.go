package trainer

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// forestTrainer fits a bagged ensemble of regression trees with per-split
// feature subsets and an out-of-bag score.
type forestTrainer struct {
	opts options
}

func (t *forestTrainer) Algorithm() string {
	return AlgorithmRandomForest
}

func (t *forestTrainer) Train(ctx context.Context, data TrainingData) (*Result, error) {
	if err := validate(data); err != nil {
		return nil, err
	}

	train, test := data.Split(t.opts.testRatio)
	n := train.Len()
	p := len(data.FeatureNames)

	seed := t.opts.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // bootstrap sampling, not crypto

	maxFeatures := p / 3
	if maxFeatures < 1 {
		maxFeatures = 1
	}

	trees := make([]*treeNode, 0, t.opts.estimators)
	gains := make([]float64, p)
	oobSum := make([]float64, n)
	oobCount := make([]int, n)
	inBag := make([]bool, n)

	for b := 0; b < t.opts.estimators; b++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("training cancelled after %d trees: %w", b, err)
		}

		// Bootstrap sample with replacement; untouched rows are this
		// tree's out-of-bag set.
		for i := range inBag {
			inBag[i] = false
		}
		idx := make([]int, n)
		for i := range idx {
			draw := rng.Intn(n)
			idx[i] = draw
			inBag[draw] = true
		}

		tree := growTree(train.Features, train.Labels, idx, treeConfig{
			maxDepth:        t.opts.maxDepth,
			minSamplesSplit: t.opts.minSamplesSplit,
			maxFeatures:     maxFeatures,
			rng:             rng,
		}, 0, gains)
		trees = append(trees, tree)

		for i := 0; i < n; i++ {
			if !inBag[i] {
				oobSum[i] += tree.predict(train.Features[i])
				oobCount[i]++
			}
		}
	}

	model := &forestModel{trees: trees}

	params := map[string]any{
		"n_estimators":       t.opts.estimators,
		"max_depth":          t.opts.maxDepth,
		"feature_importance": importanceMap(data.FeatureNames, gains),
		"oob_score":          oobScore(train.Labels, oobSum, oobCount),
	}

	return &Result{
		Algorithm:       t.Algorithm(),
		Params:          params,
		Metrics:         evaluate(model, test),
		TrainingSamples: train.Len(),
		TestSamples:     test.Len(),
	}, nil
}

// forestModel averages its trees.
type forestModel struct {
	trees []*treeNode
}

func (m *forestModel) predict(features []float64) float64 {
	sum := 0.0
	for _, t := range m.trees {
		sum += t.predict(features)
	}
	return sum / float64(len(m.trees))
}

// oobScore computes R-squared over samples that were out of bag at least
// once, clamped to [0, 1].
func oobScore(labels, predSum []float64, predCount []int) float64 {
	var mean float64
	covered := 0
	for i, c := range predCount {
		if c > 0 {
			mean += labels[i]
			covered++
		}
	}
	if covered == 0 {
		return 0
	}
	mean /= float64(covered)

	var ssRes, ssTot float64
	for i, c := range predCount {
		if c == 0 {
			continue
		}
		pred := predSum[i] / float64(c)
		ssRes += (labels[i] - pred) * (labels[i] - pred)
		ssTot += (labels[i] - mean) * (labels[i] - mean)
	}
	if ssTot == 0 {
		return 0
	}
	return math.Max(0, math.Min(1, 1-ssRes/ssTot))
}
