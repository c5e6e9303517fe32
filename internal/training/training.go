// Package training fits the salary model from the cleaned dataset and writes
// the model bundle.
package training

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonathan/hr-pulse/internal/bundle"
	"github.com/jonathan/hr-pulse/internal/dataset"
	"github.com/jonathan/hr-pulse/internal/features"
	"github.com/jonathan/hr-pulse/internal/forest"
	"github.com/jonathan/hr-pulse/internal/prediction"
	"go.uber.org/zap"
)

// Defaults for Options.
const (
	DefaultTrees     = 100
	DefaultSeed      = 42
	DefaultTestRatio = 0.2
)

// ErrNoTrainingRows is returned when no row has a salary target.
var ErrNoTrainingRows = errors.New("no rows with Average_Salary left to train on")

// Options configures a training run.
type Options struct {
	Input     string
	Output    string
	Skills    []string
	Trees     int
	MaxDepth  int
	Seed      int64
	TestRatio float64
	Logger    *zap.Logger
}

func (o *Options) applyDefaults() {
	if o.Trees <= 0 {
		o.Trees = DefaultTrees
	}
	if o.TestRatio == 0 {
		o.TestRatio = DefaultTestRatio
	}
	if o.Skills == nil {
		o.Skills = features.KnownSkills
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
}

// Result describes a finished run.
type Result struct {
	Bundle       *bundle.Bundle
	Metrics      forest.Metrics
	RatingMedian float64
	TotalRows    int
	DroppedRows  int
	TrainRows    int
	TestRows     int
	Fingerprint  string
	Output       string
	Duration     time.Duration
}

// Run loads opts.Input, trains and, when opts.Output is set, writes the bundle.
func Run(ctx context.Context, opts Options) (*Result, error) {
	opts.applyDefaults()

	postings, err := dataset.LoadPostings(opts.Input)
	if err != nil {
		return nil, fmt.Errorf("failed to load training data: %w", err)
	}
	opts.Logger.Info("loaded training data", zap.String("path", opts.Input), zap.Int("rows", len(postings)))

	return Train(ctx, postings, opts)
}

// Train fits a model on postings. Ratings are imputed in place. Nothing is
// written unless every step before persistence succeeds.
func Train(ctx context.Context, postings []dataset.Posting, opts Options) (*Result, error) {
	opts.applyDefaults()
	log := opts.Logger
	start := time.Now()

	median, err := dataset.ImputeRatings(postings)
	if err != nil {
		return nil, err
	}

	rows := dataset.DropMissingSalary(postings)
	if len(rows) == 0 {
		return nil, ErrNoTrainingRows
	}
	log.Info("prepared rows",
		zap.Float64("rating_median", median),
		zap.Int("kept", len(rows)),
		zap.Int("dropped", len(postings)-len(rows)),
	)

	schema := features.BuildSchema(opts.Skills)
	X := make([][]float64, len(rows))
	y := make([]float64, len(rows))
	for i, p := range rows {
		X[i] = schema.VectorizeDescription(p.Rating, p.Description)
		y[i] = *p.AverageSalary
	}

	trainIdx, testIdx, err := dataset.Split(len(rows), opts.TestRatio, opts.Seed)
	if err != nil {
		return nil, fmt.Errorf("failed to split dataset: %w", err)
	}
	XTrain, yTrain := gather(X, y, trainIdx)
	XTest, yTest := gather(X, y, testIdx)

	model := forest.New(
		forest.WithNEstimators(opts.Trees),
		forest.WithMaxDepth(opts.MaxDepth),
		forest.WithRandomState(opts.Seed),
	)
	if err := model.Fit(ctx, XTrain, yTrain); err != nil {
		return nil, fmt.Errorf("failed to fit model: %w", err)
	}

	yPred, err := model.Predict(XTest)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate model: %w", err)
	}
	metrics, err := forest.Evaluate(yTest, yPred)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate model: %w", err)
	}
	log.Info("model evaluated",
		zap.Float64("mae", metrics.MAE),
		zap.Float64("rmse", metrics.RMSE),
		zap.Float64("r2", metrics.R2),
	)

	b := bundle.New(schema, model, metrics)
	b.RatingMedian = median
	b.TrainRows = len(trainIdx)
	b.TestRows = len(testIdx)

	if err := smokeCheck(b, schema, median); err != nil {
		return nil, err
	}

	if opts.Output != "" {
		if err := bundle.Save(opts.Output, b); err != nil {
			return nil, err
		}
		log.Info("model saved", zap.String("path", opts.Output), zap.String("fingerprint", b.Fingerprint))
	}

	return &Result{
		Bundle:       b,
		Metrics:      metrics,
		RatingMedian: median,
		TotalRows:    len(postings),
		DroppedRows:  len(postings) - len(rows),
		TrainRows:    len(trainIdx),
		TestRows:     len(testIdx),
		Fingerprint:  b.Fingerprint,
		Output:       opts.Output,
		Duration:     time.Since(start),
	}, nil
}

// smokeCheck rebuilds the schema the bundle will serve with and runs one
// prediction through the serving path before anything is saved.
func smokeCheck(b *bundle.Bundle, trained *features.Schema, rating float64) error {
	served, err := b.Schema()
	if err != nil {
		return fmt.Errorf("trained model failed smoke check: %w", err)
	}
	if !served.Equal(trained) {
		return fmt.Errorf("trained model failed smoke check: bundle features %v differ from training features %v",
			served.Names(), trained.Names())
	}
	p, err := prediction.New(served, b.Model)
	if err != nil {
		return fmt.Errorf("trained model failed smoke check: %w", err)
	}
	if _, err := p.PredictSalary(rating, served.Skills()); err != nil {
		return fmt.Errorf("trained model failed smoke check: %w", err)
	}
	return nil
}

func gather(X [][]float64, y []float64, idx []int) ([][]float64, []float64) {
	xs := make([][]float64, len(idx))
	ys := make([]float64, len(idx))
	for i, j := range idx {
		xs[i] = X[j]
		ys[i] = y[j]
	}
	return xs, ys
}
