// Package forest implements a seeded random-forest regressor built from CART
// regression trees. Fitted models are plain data and serialize to JSON.
package forest

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
)

const leaf = -1

// Node is one entry of a flattened tree. Leaves have Feature == -1.
type Node struct {
	Feature   int     `json:"f"`
	Threshold float64 `json:"t,omitempty"`
	Left      int     `json:"l,omitempty"`
	Right     int     `json:"r,omitempty"`
	Value     float64 `json:"v"`
	Samples   int     `json:"n"`
}

// RegressionTree is a CART tree that splits on squared-error reduction.
type RegressionTree struct {
	MaxDepth        int    `json:"max_depth"`
	MinSamplesSplit int    `json:"min_samples_split"`
	MinSamplesLeaf  int    `json:"min_samples_leaf"`
	MaxFeatures     int    `json:"max_features"`
	RandomState     int64  `json:"random_state"`
	NFeatures       int    `json:"n_features"`
	Nodes           []Node `json:"nodes"`

	rng *rand.Rand
}

// TreeOption configures a RegressionTree.
type TreeOption func(*RegressionTree)

// WithTreeMaxDepth limits depth; 0 means unlimited.
func WithTreeMaxDepth(d int) TreeOption { return func(t *RegressionTree) { t.MaxDepth = d } }

// WithTreeMinSamplesSplit sets the minimum node size eligible for a split.
func WithTreeMinSamplesSplit(n int) TreeOption {
	return func(t *RegressionTree) { t.MinSamplesSplit = n }
}

// WithTreeMinSamplesLeaf sets the minimum number of samples on each side of a split.
func WithTreeMinSamplesLeaf(n int) TreeOption {
	return func(t *RegressionTree) { t.MinSamplesLeaf = n }
}

// WithTreeMaxFeatures sets how many features are tried per split; 0 means all.
func WithTreeMaxFeatures(n int) TreeOption { return func(t *RegressionTree) { t.MaxFeatures = n } }

// WithTreeRandomState seeds feature subsampling.
func WithTreeRandomState(seed int64) TreeOption {
	return func(t *RegressionTree) { t.RandomState = seed }
}

// NewRegressionTree returns an unfitted tree.
func NewRegressionTree(opts ...TreeOption) *RegressionTree {
	t := &RegressionTree{
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Fit grows the tree on the rows of X selected by idx. A nil idx uses every row.
// idx may contain repeats (bootstrap samples).
func (t *RegressionTree) Fit(X [][]float64, y []float64, idx []int) error {
	if len(X) == 0 {
		return errors.New("forest: empty X")
	}
	if len(X) != len(y) {
		return fmt.Errorf("forest: X has %d rows but y has %d", len(X), len(y))
	}
	t.NFeatures = len(X[0])
	for i, row := range X {
		if len(row) != t.NFeatures {
			return fmt.Errorf("forest: row %d has %d features, want %d", i, len(row), t.NFeatures)
		}
	}
	if idx == nil {
		idx = make([]int, len(X))
		for i := range idx {
			idx[i] = i
		}
	}
	if len(idx) == 0 {
		return errors.New("forest: no samples selected")
	}

	t.rng = rand.New(rand.NewSource(t.RandomState))
	t.Nodes = t.Nodes[:0]
	t.grow(X, y, append([]int(nil), idx...), 0)
	t.rng = nil
	return nil
}

// grow appends the subtree for samples and returns its node index.
func (t *RegressionTree) grow(X [][]float64, y []float64, samples []int, depth int) int {
	mean, sse := meanSSE(y, samples)
	id := len(t.Nodes)
	t.Nodes = append(t.Nodes, Node{Feature: leaf, Value: mean, Samples: len(samples)})

	if sse == 0 || len(samples) < t.MinSamplesSplit || (t.MaxDepth > 0 && depth >= t.MaxDepth) {
		return id
	}

	s, ok := t.bestSplit(X, y, samples, sse)
	if !ok {
		return id
	}

	var left, right []int
	for _, i := range samples {
		if X[i][s.feature] <= s.threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	l := t.grow(X, y, left, depth+1)
	r := t.grow(X, y, right, depth+1)
	t.Nodes[id].Feature = s.feature
	t.Nodes[id].Threshold = s.threshold
	t.Nodes[id].Left = l
	t.Nodes[id].Right = r
	return id
}

type split struct {
	feature   int
	threshold float64
	gain      float64
}

func (t *RegressionTree) bestSplit(X [][]float64, y []float64, samples []int, parentSSE float64) (split, bool) {
	candidates := t.candidateFeatures()
	minLeaf := max(t.MinSamplesLeaf, 1)

	best := split{gain: 0}
	found := false
	sorted := make([]int, len(samples))

	var total, totalSq float64
	for _, i := range samples {
		total += y[i]
		totalSq += y[i] * y[i]
	}
	n := float64(len(samples))

	for _, f := range candidates {
		copy(sorted, samples)
		sort.SliceStable(sorted, func(a, b int) bool { return X[sorted[a]][f] < X[sorted[b]][f] })

		var leftSum, leftSq float64
		for k := 0; k < len(sorted)-1; k++ {
			yi := y[sorted[k]]
			leftSum += yi
			leftSq += yi * yi

			cur, next := X[sorted[k]][f], X[sorted[k+1]][f]
			if cur == next {
				continue
			}
			nl := float64(k + 1)
			nr := n - nl
			if k+1 < minLeaf || len(sorted)-(k+1) < minLeaf {
				continue
			}

			rightSum := total - leftSum
			rightSq := totalSq - leftSq
			childSSE := (leftSq - leftSum*leftSum/nl) + (rightSq - rightSum*rightSum/nr)
			gain := parentSSE - childSSE
			if gain > best.gain+1e-12 {
				best = split{feature: f, threshold: (cur + next) / 2, gain: gain}
				found = true
			}
		}
	}
	return best, found
}

// candidateFeatures returns the features to try at one node, in ascending order.
func (t *RegressionTree) candidateFeatures() []int {
	if t.MaxFeatures <= 0 || t.MaxFeatures >= t.NFeatures {
		all := make([]int, t.NFeatures)
		for i := range all {
			all[i] = i
		}
		return all
	}
	picked := t.rng.Perm(t.NFeatures)[:t.MaxFeatures]
	sort.Ints(picked)
	return picked
}

// PredictOne walks the tree for a single row.
func (t *RegressionTree) PredictOne(x []float64) (float64, error) {
	if len(t.Nodes) == 0 {
		return 0, errors.New("forest: tree is not fitted")
	}
	if len(x) != t.NFeatures {
		return 0, &FeatureCountError{Got: len(x), Want: t.NFeatures}
	}
	i := 0
	for t.Nodes[i].Feature != leaf {
		n := t.Nodes[i]
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
	return t.Nodes[i].Value, nil
}

// Depth returns the length of the longest root-to-leaf path.
func (t *RegressionTree) Depth() int {
	if len(t.Nodes) == 0 {
		return 0
	}
	var walk func(i int) int
	walk = func(i int) int {
		n := t.Nodes[i]
		if n.Feature == leaf {
			return 0
		}
		return 1 + max(walk(n.Left), walk(n.Right))
	}
	return walk(0)
}

func meanSSE(y []float64, samples []int) (mean, sse float64) {
	if len(samples) == 0 {
		return 0, 0
	}
	for _, i := range samples {
		mean += y[i]
	}
	mean /= float64(len(samples))
	for _, i := range samples {
		d := y[i] - mean
		sse += d * d
	}
	return mean, sse
}

// FeatureCountError is returned when an input row has the wrong width.
type FeatureCountError struct {
	Got  int
	Want int
}

func (e *FeatureCountError) Error() string {
	return fmt.Sprintf("forest: got %d features, model expects %d", e.Got, e.Want)
}
