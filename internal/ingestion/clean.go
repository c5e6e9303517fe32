package ingestion

import (
	"errors"
	"strconv"
	"strings"

	"github.com/jonathan/hr-pulse/internal/dataset"
	"go.uber.org/zap"
)

// CleanReport summarizes one CleanDataset run.
type CleanReport struct {
	InputRows       int
	OutputRows      int
	Duplicates      int
	MissingSalaries int
	BadSalaries     int
	HourlySalaries  int
}

// CleanOptions configures CleanDataset.
type CleanOptions struct {
	Logger *zap.Logger
}

// derived columns appended when absent
var derivedColumns = []string{
	dataset.ColJobTitle,
	dataset.ColMinSalary,
	dataset.ColMaxSalary,
	dataset.ColAverageSalary,
}

// CleanDataset converts a raw export into the cleaned dataset. Exact duplicate
// rows are dropped, salary estimates become Min/Max/Average_Salary in
// thousands, descriptions lose their markup and company names lose the
// appended rating. Rows whose salary cannot be parsed are kept with empty
// salary cells.
func CleanDataset(raw *dataset.Table, opts CleanOptions) (*dataset.Table, CleanReport, error) {
	if err := raw.Require(dataset.ColRawJobTitle, dataset.ColSalaryEstimate); err != nil {
		return nil, CleanReport{}, err
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	header := make([]string, 0, len(raw.Header)+len(derivedColumns))
	for _, h := range raw.Header {
		// pandas writes its index as an unnamed first column
		if h == "" || strings.HasPrefix(h, "Unnamed:") {
			continue
		}
		header = append(header, h)
	}
	keep := make([]int, 0, len(header))
	for i, h := range raw.Header {
		if h == "" || strings.HasPrefix(h, "Unnamed:") {
			continue
		}
		keep = append(keep, i)
	}
	for _, c := range derivedColumns {
		if !raw.Has(c) {
			header = append(header, c)
		}
	}
	out := dataset.NewTable(header, nil)
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[h] = i
	}

	report := CleanReport{InputRows: raw.Len()}
	seen := make(map[string]struct{}, raw.Len())

	for i, src := range raw.Rows {
		row := make([]string, len(header))
		for j, k := range keep {
			if k < len(src) {
				row[j] = src[k]
			}
		}

		key := strings.Join(row, "\x1f")
		if _, dup := seen[key]; dup {
			report.Duplicates++
			continue
		}
		seen[key] = struct{}{}

		row[col[dataset.ColJobTitle]] = strings.TrimSpace(raw.Get(i, dataset.ColRawJobTitle))

		if c, ok := col[dataset.ColCompanyName]; ok {
			row[c] = CleanCompanyName(row[c])
		}
		if c, ok := col[dataset.ColDescription]; ok {
			text, err := HTMLToText(row[c])
			if err != nil {
				log.Warn("failed to strip description markup", zap.Int("row", i+1), zap.Error(err))
			} else {
				row[c] = text
			}
		}

		salary, err := ParseSalaryEstimate(raw.Get(i, dataset.ColSalaryEstimate))
		switch {
		case errors.Is(err, ErrNoSalary):
			report.MissingSalaries++
			setSalary(row, col, "", "", "")
		case err != nil:
			report.BadSalaries++
			log.Debug("unparseable salary estimate", zap.Int("row", i+1), zap.Error(err))
			setSalary(row, col, "", "", "")
		default:
			if salary.Hourly {
				report.HourlySalaries++
			}
			setSalary(row, col, formatK(salary.Min), formatK(salary.Max), formatK(salary.Average()))
		}

		out.Rows = append(out.Rows, row)
	}

	report.OutputRows = out.Len()
	log.Info("dataset cleaned",
		zap.Int("input_rows", report.InputRows),
		zap.Int("output_rows", report.OutputRows),
		zap.Int("duplicates", report.Duplicates),
		zap.Int("missing_salaries", report.MissingSalaries),
		zap.Int("bad_salaries", report.BadSalaries),
	)
	return out, report, nil
}

func setSalary(row []string, col map[string]int, lo, hi, avg string) {
	row[col[dataset.ColMinSalary]] = lo
	row[col[dataset.ColMaxSalary]] = hi
	row[col[dataset.ColAverageSalary]] = avg
}

func formatK(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
