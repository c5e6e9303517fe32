// Package bundle persists a trained model together with the feature schema it
// was trained on. Both live in one versioned JSON file so they cannot drift apart.
package bundle

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jonathan/hr-pulse/internal/features"
	"github.com/jonathan/hr-pulse/internal/forest"
	"github.com/jonathan/hr-pulse/internal/schemas"
)

// FormatVersion is the current on-disk layout.
const FormatVersion = 1

// Bundle is the persisted training artifact.
type Bundle struct {
	FormatVersion int                  `json:"format_version"`
	Features      []string             `json:"features"`
	Fingerprint   string               `json:"fingerprint"`
	TrainedAt     time.Time            `json:"trained_at"`
	RatingMedian  float64              `json:"rating_median"`
	TrainRows     int                  `json:"train_rows"`
	TestRows      int                  `json:"test_rows"`
	Metrics       forest.Metrics       `json:"metrics"`
	Model         *forest.RandomForest `json:"model"`
}

// New stamps a bundle for schema and model.
func New(schema *features.Schema, model *forest.RandomForest, metrics forest.Metrics) *Bundle {
	return &Bundle{
		FormatVersion: FormatVersion,
		Features:      schema.Names(),
		Fingerprint:   schema.Fingerprint(),
		TrainedAt:     time.Now().UTC(),
		Metrics:       metrics,
		Model:         model,
	}
}

// Schema rebuilds and verifies the feature schema stored in the bundle.
func (b *Bundle) Schema() (*features.Schema, error) {
	schema, err := features.NewSchema(b.Features)
	if err != nil {
		return nil, err
	}
	if got := schema.Fingerprint(); got != b.Fingerprint {
		return nil, &FingerprintMismatchError{Stored: b.Fingerprint, Computed: got}
	}
	if b.Model.InputWidth() != schema.Len() {
		return nil, &WidthMismatchError{Model: b.Model.InputWidth(), Schema: schema.Len()}
	}
	return schema, nil
}

// Save writes the bundle to path atomically: a temp file in the same directory
// is renamed over the destination only after it is fully written.
func Save(path string, b *Bundle) error {
	if b.Model == nil {
		return fmt.Errorf("bundle has no model")
	}
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("failed to marshal bundle: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create model directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".bundle-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write bundle: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync bundle: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close bundle: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move bundle into place: %w", err)
	}
	return nil
}

// Load reads, validates and cross-checks a bundle. Every failure is a *LoadError.
func Load(path string) (*Bundle, *features.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, &LoadError{Path: path, Cause: err}
	}
	b, schema, err := Decode(data)
	if err != nil {
		return nil, nil, &LoadError{Path: path, Cause: err}
	}
	return b, schema, nil
}

// Decode parses bundle bytes and verifies them.
func Decode(data []byte) (*Bundle, *features.Schema, error) {
	if err := schemas.Validate(schemas.ModelBundle, data); err != nil {
		return nil, nil, err
	}

	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, nil, fmt.Errorf("failed to decode bundle: %w", err)
	}
	if b.FormatVersion != FormatVersion {
		return nil, nil, &VersionError{Got: b.FormatVersion}
	}
	if err := b.Model.Validate(); err != nil {
		return nil, nil, err
	}

	schema, err := b.Schema()
	if err != nil {
		return nil, nil, err
	}
	return &b, schema, nil
}
