package dataset

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strconv"
	"strings"
)

// Column names of the cleaned job-postings dataset.
const (
	ColJobTitle       = "job_title"
	ColRawJobTitle    = "Job Title"
	ColRating         = "Rating"
	ColCompanyName    = "Company Name"
	ColLocation       = "Location"
	ColSalaryEstimate = "Salary Estimate"
	ColDescription    = "Job Description"
	ColMinSalary      = "Min_Salary"
	ColMaxSalary      = "Max_Salary"
	ColAverageSalary  = "Average_Salary"
)

// MissingRating is the sentinel the source data uses for an unknown rating.
const MissingRating = -1

// Posting is one row of the cleaned dataset. ID is the 1-based row position.
type Posting struct {
	ID             int
	JobTitle       string
	Company        string
	Location       string
	SalaryEstimate string
	Description    string
	Rating         float64
	AverageSalary  *float64
}

// RatingMissing reports whether the rating must be imputed.
func (p Posting) RatingMissing() bool {
	return p.Rating == MissingRating || math.IsNaN(p.Rating)
}

// PostingsFromTable converts table rows. Unparseable ratings become MissingRating
// and unparseable salaries become nil.
func PostingsFromTable(t *Table) []Posting {
	postings := make([]Posting, 0, t.Len())
	for i := range t.Rows {
		title := t.Get(i, ColJobTitle)
		if title == "" {
			title = t.Get(i, ColRawJobTitle)
		}
		postings = append(postings, Posting{
			ID:             i + 1,
			JobTitle:       title,
			Company:        t.Get(i, ColCompanyName),
			Location:       t.Get(i, ColLocation),
			SalaryEstimate: t.Get(i, ColSalaryEstimate),
			Description:    t.Get(i, ColDescription),
			Rating:         parseRating(t.Get(i, ColRating)),
			AverageSalary:  parseOptionalFloat(t.Get(i, ColAverageSalary)),
		})
	}
	return postings
}

// LoadPostings reads a cleaned dataset and checks the training columns exist.
func LoadPostings(path string) ([]Posting, error) {
	t, err := LoadTable(path)
	if err != nil {
		return nil, err
	}
	if err := t.Require(ColRating, ColDescription, ColAverageSalary); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return PostingsFromTable(t), nil
}

// LoadDescriptions reads the postings the skill-extraction job needs. Only the
// title and description columns are required.
func LoadDescriptions(path string) ([]Posting, error) {
	t, err := LoadTable(path)
	if err != nil {
		return nil, err
	}
	if err := t.Require(ColJobTitle, ColDescription); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	postings := make([]Posting, 0, t.Len())
	for i := range t.Rows {
		postings = append(postings, Posting{
			ID:          i + 1,
			JobTitle:    t.Get(i, ColJobTitle),
			Description: t.Get(i, ColDescription),
		})
	}
	return postings, nil
}

func parseRating(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return MissingRating
	}
	return v
}

func parseOptionalFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// ErrNoRatings is returned when no posting has a usable rating to impute from.
var ErrNoRatings = errors.New("no rated postings to compute a median from")

// ImputeRatings replaces missing ratings with the median of the known ones,
// computed over every posting passed in. It returns the median used.
func ImputeRatings(postings []Posting) (float64, error) {
	known := make([]float64, 0, len(postings))
	for _, p := range postings {
		if !p.RatingMissing() {
			known = append(known, p.Rating)
		}
	}
	if len(known) == 0 {
		return 0, ErrNoRatings
	}

	median := Median(known)
	for i := range postings {
		if postings[i].RatingMissing() {
			postings[i].Rating = median
		}
	}
	return median, nil
}

// DropMissingSalary returns the postings that have a target value.
func DropMissingSalary(postings []Posting) []Posting {
	kept := make([]Posting, 0, len(postings))
	for _, p := range postings {
		if p.AverageSalary != nil {
			kept = append(kept, p)
		}
	}
	return kept
}

// Median returns the median of values without reordering the input.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// Split shuffles the indices 0..n-1 with seed and assigns ceil(n*testRatio) of
// them to the test partition. Both partitions must end up non-empty.
func Split(n int, testRatio float64, seed int64) (train, test []int, err error) {
	if testRatio <= 0 || testRatio >= 1 {
		return nil, nil, fmt.Errorf("test ratio must be in (0, 1), got %v", testRatio)
	}
	nTest := int(math.Ceil(float64(n) * testRatio))
	if nTest < 1 || n-nTest < 1 {
		return nil, nil, fmt.Errorf("cannot split %d rows with test ratio %v", n, testRatio)
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)
	return perm[nTest:], perm[:nTest], nil
}
