package trainer

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
)

// treeTrainer fits a CART regression tree using variance-reduction splits.
type treeTrainer struct {
	opts options
}

func (t *treeTrainer) Algorithm() string {
	return AlgorithmDecisionTree
}

func (t *treeTrainer) Train(ctx context.Context, data TrainingData) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("training cancelled: %w", err)
	}
	if err := validate(data); err != nil {
		return nil, err
	}

	train, test := data.Split(t.opts.testRatio)

	idx := make([]int, train.Len())
	for i := range idx {
		idx[i] = i
	}

	gains := make([]float64, len(data.FeatureNames))
	root := growTree(train.Features, train.Labels, idx, treeConfig{
		maxDepth:        t.opts.maxDepth,
		minSamplesSplit: t.opts.minSamplesSplit,
	}, 0, gains)

	params := map[string]any{
		"max_depth":          t.opts.maxDepth,
		"min_samples_split":  t.opts.minSamplesSplit,
		"feature_importance": importanceMap(data.FeatureNames, gains),
	}

	return &Result{
		Algorithm:       t.Algorithm(),
		Params:          params,
		Metrics:         evaluate(root, test),
		TrainingSamples: train.Len(),
		TestSamples:     test.Len(),
	}, nil
}

// treeConfig controls tree growth. maxFeatures > 0 with a non-nil rng
// restricts every split to a random feature subset, which is how the forest
// decorrelates its trees.
type treeConfig struct {
	maxDepth        int
	minSamplesSplit int
	maxFeatures     int
	rng             *rand.Rand
}

// treeNode is either an internal split or a leaf carrying the mean label.
type treeNode struct {
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode
	value     float64
	leaf      bool
}

func (n *treeNode) predict(features []float64) float64 {
	for !n.leaf {
		if features[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.value
}

// growTree recursively builds a tree over the rows named by idx and
// accumulates per-feature split gains into gains.
func growTree(features [][]float64, labels []float64, idx []int, cfg treeConfig, depth int, gains []float64) *treeNode {
	sum, sumSq := 0.0, 0.0
	for _, i := range idx {
		sum += labels[i]
		sumSq += labels[i] * labels[i]
	}
	n := float64(len(idx))
	mean := sum / n
	ss := sumSq - sum*sum/n // total squared deviation at this node

	if depth >= cfg.maxDepth || len(idx) < cfg.minSamplesSplit || ss <= 0 {
		return &treeNode{leaf: true, value: mean}
	}

	feature, threshold, gain, ok := bestSplit(features, labels, idx, cfg, ss)
	if !ok {
		return &treeNode{leaf: true, value: mean}
	}
	gains[feature] += gain

	var leftIdx, rightIdx []int
	for _, i := range idx {
		if features[i][feature] <= threshold {
			leftIdx = append(leftIdx, i)
		} else {
			rightIdx = append(rightIdx, i)
		}
	}

	return &treeNode{
		feature:   feature,
		threshold: threshold,
		left:      growTree(features, labels, leftIdx, cfg, depth+1, gains),
		right:     growTree(features, labels, rightIdx, cfg, depth+1, gains),
	}
}

// bestSplit scans the candidate features for the split with the largest
// squared-deviation reduction. Candidates are midpoints between distinct
// adjacent values of the sorted column.
func bestSplit(features [][]float64, labels []float64, idx []int, cfg treeConfig, parentSS float64) (feature int, threshold, gain float64, ok bool) {
	candidates := candidateFeatures(len(features[idx[0]]), cfg)

	order := make([]int, len(idx))
	bestGain := 0.0

	for _, f := range candidates {
		copy(order, idx)
		sort.Slice(order, func(a, b int) bool {
			return features[order[a]][f] < features[order[b]][f]
		})

		// Left-side running sums; the remainder is the right side.
		leftSum, leftSq := 0.0, 0.0
		totalSum, totalSq := 0.0, 0.0
		for _, i := range order {
			totalSum += labels[i]
			totalSq += labels[i] * labels[i]
		}

		for k := 0; k < len(order)-1; k++ {
			y := labels[order[k]]
			leftSum += y
			leftSq += y * y

			cur, next := features[order[k]][f], features[order[k+1]][f]
			if cur == next {
				continue
			}

			nl := float64(k + 1)
			nr := float64(len(order) - k - 1)
			leftSS := leftSq - leftSum*leftSum/nl
			rightSum := totalSum - leftSum
			rightSS := (totalSq - leftSq) - rightSum*rightSum/nr

			g := parentSS - leftSS - rightSS
			if g > bestGain {
				bestGain = g
				feature = f
				threshold = (cur + next) / 2
				ok = true
			}
		}
	}

	return feature, threshold, bestGain, ok
}

// candidateFeatures selects the feature columns a split may use.
func candidateFeatures(total int, cfg treeConfig) []int {
	if cfg.maxFeatures <= 0 || cfg.maxFeatures >= total || cfg.rng == nil {
		all := make([]int, total)
		for i := range all {
			all[i] = i
		}
		return all
	}
	return cfg.rng.Perm(total)[:cfg.maxFeatures]
}
