// Package observability provides tracing setup and the formatted summaries
// printed by the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/hr-pulse/internal/dataset"
	"github.com/jonathan/hr-pulse/internal/ingestion"
	"github.com/jonathan/hr-pulse/internal/nlp"
	"github.com/jonathan/hr-pulse/internal/prediction"
	"github.com/jonathan/hr-pulse/internal/training"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer writes boxed summaries for humans.
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, clip(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// clip shortens s to n runes with a trailing ellipsis.
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// PrintTrainingResult summarizes a training run.
func (p *Printer) PrintTrainingResult(res *training.Result) {
	if res == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Rows:        %d loaded, %d dropped\n", res.TotalRows, res.DroppedRows))
	sb.WriteString(fmt.Sprintf("Split:       %d train / %d test\n", res.TrainRows, res.TestRows))
	sb.WriteString(fmt.Sprintf("Rating fill: %.2f (median)\n", res.RatingMedian))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("MAE:   %.3f\n", res.Metrics.MAE))
	sb.WriteString(fmt.Sprintf("RMSE:  %.3f\n", res.Metrics.RMSE))
	sb.WriteString(fmt.Sprintf("R²:    %.3f\n", res.Metrics.R2))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Schema:   %s\n", res.Fingerprint))
	if res.Output != "" {
		sb.WriteString(fmt.Sprintf("Saved to: %s\n", res.Output))
	}
	sb.WriteString(fmt.Sprintf("Took:     %s", res.Duration.Round(1e6)))

	p.printBox("MODEL TRAINING", sb.String())
}

// PrintCleanReport summarizes a cleaning pass.
func (p *Printer) PrintCleanReport(report ingestion.CleanReport, output string) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Input rows:        %d\n", report.InputRows))
	sb.WriteString(fmt.Sprintf("Output rows:       %d\n", report.OutputRows))
	sb.WriteString(fmt.Sprintf("Duplicates:        %d\n", report.Duplicates))
	sb.WriteString(fmt.Sprintf("Missing salaries:  %d\n", report.MissingSalaries))
	sb.WriteString(fmt.Sprintf("Unparseable:       %d\n", report.BadSalaries))
	sb.WriteString(fmt.Sprintf("Hourly converted:  %d", report.HourlySalaries))
	if output != "" {
		sb.WriteString(fmt.Sprintf("\n\nWritten to: %s", output))
	}

	p.printBox("DATASET CLEANING", sb.String())
}

// PrintExtractionReport summarizes a skill-extraction batch and shows the
// first few rows.
func (p *Printer) PrintExtractionReport(report nlp.BatchReport, records []dataset.SkillRecord) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Processed: %d  Failed: %d  Empty: %d\n", report.Processed, report.Failed, report.Empty))

	if len(records) > 0 {
		sb.WriteString("\n")
		count := min(len(records), maxItemsToShow)
		for i := 0; i < count; i++ {
			rec := records[i]
			sb.WriteString(fmt.Sprintf("#%d  %s\n", rec.ID, rec.JobTitle))
			sb.WriteString(fmt.Sprintf("    %s\n", rec.SkillsExtracted))
		}
		if len(records) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("... and %d more rows\n", len(records)-maxItemsToShow))
		}
	}

	p.printBox("SKILL EXTRACTION", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintPrediction shows one salary estimate and any ignored skills.
func (p *Printer) PrintPrediction(rating float64, skills []string, res prediction.Result) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Rating:  %.2f\n", rating))
	if len(skills) > 0 {
		sb.WriteString(fmt.Sprintf("Skills:  %s\n", strings.Join(skills, ", ")))
	} else {
		sb.WriteString("Skills:  (none)\n")
	}
	if len(res.UnmatchedSkills) > 0 {
		sb.WriteString(fmt.Sprintf("Ignored: %s\n", strings.Join(res.UnmatchedSkills, ", ")))
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Predicted salary: %.2fK", res.PredictedSalaryK))

	p.printBox("SALARY PREDICTION", sb.String())
}
