// Package prediction serves salary estimates from a loaded model bundle.
package prediction

import (
	"errors"
	"math"
	"time"

	"github.com/jonathan/hr-pulse/internal/bundle"
	"github.com/jonathan/hr-pulse/internal/features"
)

// Regressor is the model contract the predictor needs.
type Regressor interface {
	PredictOne(x []float64) (float64, error)
	InputWidth() int
}

// Predictor is an immutable (schema, model) pair. Safe for concurrent use.
type Predictor struct {
	schema *features.Schema
	model  Regressor
	info   Info
}

// Info describes the loaded artifact.
type Info struct {
	Path        string `json:"path,omitempty"`
	Fingerprint string `json:"fingerprint"`
	Features    int    `json:"features"`
	TrainedAt   string `json:"trained_at,omitempty"`
}

// Result is one prediction in thousands of currency units.
type Result struct {
	PredictedSalaryK float64  `json:"predicted_salary_k"`
	UnmatchedSkills  []string `json:"unmatched_skills,omitempty"`
}

// Load reads a bundle once. Any failure is a *ModelUnavailableError.
func Load(path string) (*Predictor, error) {
	b, schema, err := bundle.Load(path)
	if err != nil {
		return nil, &ModelUnavailableError{Cause: err}
	}
	p, err := New(schema, b.Model)
	if err != nil {
		return nil, err
	}
	p.info.Path = path
	p.info.TrainedAt = b.TrainedAt.Format(time.RFC3339)
	return p, nil
}

// New pairs an in-memory schema and model.
func New(schema *features.Schema, model Regressor) (*Predictor, error) {
	if schema == nil || model == nil {
		return nil, &ModelUnavailableError{Cause: errors.New("schema and model are required")}
	}
	if model.InputWidth() != schema.Len() {
		return nil, &ModelUnavailableError{
			Cause: &bundle.WidthMismatchError{Model: model.InputWidth(), Schema: schema.Len()},
		}
	}
	return &Predictor{
		schema: schema,
		model:  model,
		info: Info{
			Fingerprint: schema.Fingerprint(),
			Features:    schema.Len(),
		},
	}, nil
}

// Schema returns the feature schema the model was trained on.
func (p *Predictor) Schema() *features.Schema {
	return p.schema
}

// Info returns metadata about the loaded model.
func (p *Predictor) Info() Info {
	return p.info
}

// PredictSalary vectorizes (rating, skills) against the training schema and
// runs the model. The result is rounded to two decimals.
func (p *Predictor) PredictSalary(rating float64, skills []string) (Result, error) {
	if p == nil {
		return Result{}, &ModelUnavailableError{Cause: errors.New("model not loaded")}
	}
	if math.IsNaN(rating) || math.IsInf(rating, 0) {
		return Result{}, &ValidationError{Field: "rating", Message: "must be a finite number"}
	}

	x, unmatched := p.schema.VectorizeWithReport(rating, skills)
	y, err := p.model.PredictOne(x)
	if err != nil {
		return Result{}, &InferenceError{Cause: err}
	}
	if math.IsNaN(y) || math.IsInf(y, 0) {
		return Result{}, &InferenceError{Cause: errors.New("model produced a non-finite value")}
	}

	return Result{
		PredictedSalaryK: Round2(y),
		UnmatchedSkills:  unmatched,
	}, nil
}

// Round2 rounds half away from zero to two decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
