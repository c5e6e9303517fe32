package training

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jonathan/hr-pulse/internal/bundle"
	"github.com/jonathan/hr-pulse/internal/dataset"
	"github.com/jonathan/hr-pulse/internal/features"
	"github.com/jonathan/hr-pulse/internal/forest"
	"github.com/jonathan/hr-pulse/internal/prediction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// writeDataset writes n rows where Python postings pay 40K more.
func writeDataset(t *testing.T, n int) string {
	t.Helper()
	var sb strings.Builder
	sb.WriteString("Job Title,Rating,Job Description,Average_Salary\n")
	for i := 0; i < n; i++ {
		rating := fmt.Sprintf("%.1f", 3+float64(i%3)*0.5)
		if i%7 == 0 {
			rating = "-1"
		}
		desc, salary := "Excel reporting", "70"
		if i%2 == 0 {
			desc, salary = "Python and SQL pipelines", "110"
		}
		if i%11 == 0 {
			salary = ""
		}
		fmt.Fprintf(&sb, "Data Scientist %d,%s,%s,%s\n", i, rating, desc, salary)
	}
	path := filepath.Join(t.TempDir(), "cleaned-data.csv")
	require.NoError(t, os.WriteFile(path, []byte(sb.String()), 0o644))
	return path
}

func TestRun_WritesLoadableBundle(t *testing.T) {
	input := writeDataset(t, 60)
	output := filepath.Join(t.TempDir(), "models", "salary_model.json")
	core, logs := observer.New(zap.InfoLevel)

	res, err := Run(context.Background(), Options{
		Input:     input,
		Output:    output,
		Trees:     20,
		Seed:      DefaultSeed,
		TestRatio: DefaultTestRatio,
		Logger:    zap.New(core),
	})
	require.NoError(t, err)

	assert.Equal(t, 60, res.TotalRows)
	assert.Equal(t, 6, res.DroppedRows)
	assert.Equal(t, 11, res.TestRows, "ceil(54 * 0.2)")
	assert.Equal(t, 43, res.TrainRows)
	assert.Equal(t, 3.5, res.RatingMedian)
	assert.Less(t, res.Metrics.MAE, 5.0)
	assert.Greater(t, res.Metrics.R2, 0.9)
	assert.Equal(t, 1, logs.FilterMessage("model saved").Len())

	p, err := prediction.Load(output)
	require.NoError(t, err)
	assert.Equal(t, res.Fingerprint, p.Info().Fingerprint)

	high, err := p.PredictSalary(4, []string{"python", "sql"})
	require.NoError(t, err)
	low, err := p.PredictSalary(4, []string{"excel"})
	require.NoError(t, err)
	assert.InDelta(t, 110, high.PredictedSalaryK, 5)
	assert.InDelta(t, 70, low.PredictedSalaryK, 5)

	b, _, err := bundle.Load(output)
	require.NoError(t, err)
	assert.Equal(t, 3.5, b.RatingMedian)
	assert.Equal(t, 43, b.TrainRows)
}

func TestTrain_Deterministic(t *testing.T) {
	input := writeDataset(t, 40)
	load := func() []dataset.Posting {
		postings, err := dataset.LoadPostings(input)
		require.NoError(t, err)
		return postings
	}
	opts := Options{Trees: 10, Seed: 42}

	a, err := Train(context.Background(), load(), opts)
	require.NoError(t, err)
	b, err := Train(context.Background(), load(), opts)
	require.NoError(t, err)

	assert.Equal(t, a.Metrics, b.Metrics)
	assert.Equal(t, a.Bundle.Model.Trees, b.Bundle.Model.Trees)
}

func TestTrain_NoOutputWritesNothing(t *testing.T) {
	dir := t.TempDir()
	postings, err := dataset.LoadPostings(writeDataset(t, 30))
	require.NoError(t, err)

	res, err := Train(context.Background(), postings, Options{Trees: 5, Seed: 1})
	require.NoError(t, err)
	assert.Empty(t, res.Output)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRun_Failures(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}

	tests := []struct {
		name    string
		input   string
		wantErr error
		wantMsg string
	}{
		{
			name:    "missing file",
			input:   filepath.Join(dir, "nope.csv"),
			wantMsg: "failed to load training data",
		},
		{
			name:    "missing columns",
			input:   write("cols.csv", "Rating,Job Description\n4,python\n"),
			wantMsg: "missing columns: Average_Salary",
		},
		{
			name:    "no rated rows",
			input:   write("unrated.csv", "Rating,Job Description,Average_Salary\n-1,python,100\n,sql,80\n"),
			wantErr: dataset.ErrNoRatings,
		},
		{
			name:    "no targets",
			input:   write("targets.csv", "Rating,Job Description,Average_Salary\n4,python,\n3,sql,\n"),
			wantErr: ErrNoTrainingRows,
		},
		{
			name:    "too few rows to split",
			input:   write("tiny.csv", "Rating,Job Description,Average_Salary\n4,python,100\n"),
			wantMsg: "failed to split dataset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := filepath.Join(dir, tt.name+".json")
			_, err := Run(context.Background(), Options{Input: tt.input, Output: output, Trees: 3})
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
			assert.NoFileExists(t, output)
		})
	}
}

func TestTrain_Canceled(t *testing.T) {
	postings, err := dataset.LoadPostings(writeDataset(t, 30))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Train(ctx, postings, Options{Trees: 5})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSmokeCheck_SchemaOrder(t *testing.T) {
	schema := features.BuildSchema([]string{"python", "sql"})
	X := [][]float64{{3, 1, 0}, {4, 0, 1}, {5, 1, 1}, {2, 0, 0}}
	y := []float64{110, 80, 130, 60}
	model := forest.New(forest.WithNEstimators(3), forest.WithRandomState(1))
	require.NoError(t, model.Fit(context.Background(), X, y))

	b := bundle.New(schema, model, forest.Metrics{})
	require.NoError(t, smokeCheck(b, schema, 3))

	swapped, err := features.NewSchema([]string{features.RatingFeature, "skill_sql", "skill_python"})
	require.NoError(t, err)
	b.Features = swapped.Names()
	b.Fingerprint = swapped.Fingerprint()

	err = smokeCheck(b, schema, 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "differ from training features")
}
