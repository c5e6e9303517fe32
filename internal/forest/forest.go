package forest

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// RandomForest averages the predictions of bagged regression trees.
type RandomForest struct {
	NEstimators     int               `json:"n_estimators"`
	MaxDepth        int               `json:"max_depth"`
	MinSamplesSplit int               `json:"min_samples_split"`
	MinSamplesLeaf  int               `json:"min_samples_leaf"`
	MaxFeatures     int               `json:"max_features"`
	Bootstrap       bool              `json:"bootstrap"`
	RandomState     int64             `json:"random_state"`
	NFeatures       int               `json:"n_features"`
	Trees           []*RegressionTree `json:"trees"`
}

// Option configures a RandomForest.
type Option func(*RandomForest)

// WithNEstimators sets the number of trees.
func WithNEstimators(n int) Option { return func(rf *RandomForest) { rf.NEstimators = n } }

// WithMaxDepth limits tree depth; 0 means unlimited.
func WithMaxDepth(d int) Option { return func(rf *RandomForest) { rf.MaxDepth = d } }

// WithMinSamplesSplit sets the minimum node size eligible for a split.
func WithMinSamplesSplit(n int) Option { return func(rf *RandomForest) { rf.MinSamplesSplit = n } }

// WithMinSamplesLeaf sets the minimum leaf size.
func WithMinSamplesLeaf(n int) Option { return func(rf *RandomForest) { rf.MinSamplesLeaf = n } }

// WithMaxFeatures sets the features tried per split; 0 means all.
func WithMaxFeatures(n int) Option { return func(rf *RandomForest) { rf.MaxFeatures = n } }

// WithBootstrap toggles sampling rows with replacement per tree.
func WithBootstrap(b bool) Option { return func(rf *RandomForest) { rf.Bootstrap = b } }

// WithRandomState sets the forest seed. Tree i is seeded with seed+i.
func WithRandomState(seed int64) Option { return func(rf *RandomForest) { rf.RandomState = seed } }

// New returns an unfitted forest with 100 trees, bootstrap on and seed 42.
func New(opts ...Option) *RandomForest {
	rf := &RandomForest{
		NEstimators:     100,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		Bootstrap:       true,
		RandomState:     42,
	}
	for _, o := range opts {
		o(rf)
	}
	return rf
}

// Fit trains every tree concurrently. Each tree owns its seed and slot,
// so the fitted forest does not depend on scheduling.
func (rf *RandomForest) Fit(ctx context.Context, X [][]float64, y []float64) error {
	if rf.NEstimators <= 0 {
		return fmt.Errorf("forest: n_estimators must be positive, got %d", rf.NEstimators)
	}
	if len(X) == 0 {
		return errors.New("forest: empty X")
	}
	if len(X) != len(y) {
		return fmt.Errorf("forest: X has %d rows but y has %d", len(X), len(y))
	}

	n := len(X)
	trees := make([]*RegressionTree, rf.NEstimators)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := 0; i < rf.NEstimators; i++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			seed := rf.RandomState + int64(i)
			var idx []int
			if rf.Bootstrap {
				r := rand.New(rand.NewSource(seed))
				idx = make([]int, n)
				for j := range idx {
					idx[j] = r.Intn(n)
				}
			}

			tree := NewRegressionTree(
				WithTreeMaxDepth(rf.MaxDepth),
				WithTreeMinSamplesSplit(rf.MinSamplesSplit),
				WithTreeMinSamplesLeaf(rf.MinSamplesLeaf),
				WithTreeMaxFeatures(rf.MaxFeatures),
				WithTreeRandomState(seed),
			)
			if err := tree.Fit(X, y, idx); err != nil {
				return fmt.Errorf("tree %d: %w", i, err)
			}
			trees[i] = tree
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	rf.Trees = trees
	rf.NFeatures = len(X[0])
	return nil
}

// PredictOne averages the trees in index order.
func (rf *RandomForest) PredictOne(x []float64) (float64, error) {
	if len(rf.Trees) == 0 {
		return 0, errors.New("forest: model is not fitted")
	}
	if len(x) != rf.NFeatures {
		return 0, &FeatureCountError{Got: len(x), Want: rf.NFeatures}
	}
	var sum float64
	for i, t := range rf.Trees {
		v, err := t.PredictOne(x)
		if err != nil {
			return 0, fmt.Errorf("tree %d: %w", i, err)
		}
		sum += v
	}
	return sum / float64(len(rf.Trees)), nil
}

// Predict runs PredictOne on every row.
func (rf *RandomForest) Predict(X [][]float64) ([]float64, error) {
	out := make([]float64, len(X))
	for i, x := range X {
		v, err := rf.PredictOne(x)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// InputWidth reports the number of features the fitted model expects.
func (rf *RandomForest) InputWidth() int {
	return rf.NFeatures
}

// Validate checks a deserialized forest for structural consistency.
func (rf *RandomForest) Validate() error {
	if len(rf.Trees) == 0 {
		return errors.New("forest: no trees")
	}
	for i, t := range rf.Trees {
		if t == nil || len(t.Nodes) == 0 {
			return fmt.Errorf("forest: tree %d is empty", i)
		}
		if t.NFeatures != rf.NFeatures {
			return fmt.Errorf("forest: tree %d expects %d features, forest expects %d", i, t.NFeatures, rf.NFeatures)
		}
		for j, n := range t.Nodes {
			if n.Feature == leaf {
				continue
			}
			if n.Feature < 0 || n.Feature >= t.NFeatures {
				return fmt.Errorf("forest: tree %d node %d splits on feature %d", i, j, n.Feature)
			}
			if n.Left <= j || n.Right <= j || n.Left >= len(t.Nodes) || n.Right >= len(t.Nodes) {
				return fmt.Errorf("forest: tree %d node %d has invalid children", i, j)
			}
		}
	}
	return nil
}
