package observability

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/jonathan/hr-pulse/internal/dataset"
	"github.com/jonathan/hr-pulse/internal/forest"
	"github.com/jonathan/hr-pulse/internal/ingestion"
	"github.com/jonathan/hr-pulse/internal/nlp"
	"github.com/jonathan/hr-pulse/internal/prediction"
	"github.com/jonathan/hr-pulse/internal/training"
	"github.com/stretchr/testify/assert"
)

func TestPrintTrainingResult(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintTrainingResult(&training.Result{
		Metrics:      forest.Metrics{MAE: 12.3456, RMSE: 15.5, R2: 0.42},
		RatingMedian: 3.8,
		TotalRows:    100,
		DroppedRows:  4,
		TrainRows:    76,
		TestRows:     20,
		Fingerprint:  "abc123",
		Output:       "salary_model.json",
		Duration:     1500 * time.Millisecond,
	})
	output := buf.String()

	assert.Contains(t, output, "MODEL TRAINING")
	assert.Contains(t, output, "100 loaded, 4 dropped")
	assert.Contains(t, output, "76 train / 20 test")
	assert.Contains(t, output, "12.346")
	assert.Contains(t, output, "0.420")
	assert.Contains(t, output, "salary_model.json")
}

func TestPrintTrainingResult_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintTrainingResult(nil)
	assert.Empty(t, buf.String())
}

func TestPrintCleanReport(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintCleanReport(ingestion.CleanReport{
		InputRows: 10, OutputRows: 8, Duplicates: 1, MissingSalaries: 1, HourlySalaries: 2,
	}, "cleaned.csv")
	output := buf.String()

	assert.Contains(t, output, "DATASET CLEANING")
	assert.Contains(t, output, "Input rows:        10")
	assert.Contains(t, output, "Hourly converted:  2")
	assert.Contains(t, output, "cleaned.csv")
}

func TestPrintExtractionReport(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	records := make([]dataset.SkillRecord, 7)
	for i := range records {
		records[i] = dataset.SkillRecord{ID: i, JobTitle: "Data Scientist", SkillsExtracted: `["python"]`}
	}
	p.PrintExtractionReport(nlp.BatchReport{Processed: 7, Failed: 1, Empty: 2}, records)
	output := buf.String()

	assert.Contains(t, output, "SKILL EXTRACTION")
	assert.Contains(t, output, "Processed: 7  Failed: 1  Empty: 2")
	assert.Contains(t, output, `["python"]`)
	assert.Contains(t, output, "... and 2 more rows")
	assert.NotContains(t, output, "#5 ")
}

func TestPrintPrediction(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintPrediction(4.2, []string{"python", "cobol"}, prediction.Result{
		PredictedSalaryK: 123.45,
		UnmatchedSkills:  []string{"cobol"},
	})
	output := buf.String()

	assert.Contains(t, output, "SALARY PREDICTION")
	assert.Contains(t, output, "python, cobol")
	assert.Contains(t, output, "Ignored: cobol")
	assert.Contains(t, output, "123.45K")
}

func TestPrintBox_ClipsLongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.printBox("TITLE", strings.Repeat("é", 100))

	for _, line := range strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n") {
		assert.Equal(t, boxWidth, len([]rune(line)), line)
	}
	assert.Contains(t, buf.String(), "...")
}
