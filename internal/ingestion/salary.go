package ingestion

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// HourlyToAnnualK converts an hourly wage to thousands per year, assuming
// 2000 working hours.
const HourlyToAnnualK = 2

// ErrNoSalary is returned for the "-1" placeholder and empty estimates.
var ErrNoSalary = errors.New("no salary estimate")

var salaryRange = regexp.MustCompile(`\$\s*(\d+(?:\.\d+)?)\s*[kK]?\s*-\s*\$\s*(\d+(?:\.\d+)?)\s*[kK]?`)

// SalaryRange is a parsed estimate in thousands per year.
type SalaryRange struct {
	Min    float64
	Max    float64
	Hourly bool
}

// Average returns the midpoint of the range.
func (r SalaryRange) Average() float64 {
	return (r.Min + r.Max) / 2
}

// SalaryParseError reports an estimate that does not contain a range.
type SalaryParseError struct {
	Value string
}

func (e *SalaryParseError) Error() string {
	return fmt.Sprintf("unrecognized salary estimate %q", e.Value)
}

// ParseSalaryEstimate reads estimates such as "$53K-$91K (Glassdoor est.)",
// "Employer Provided Salary:$120K-$160K" and "$17-$24 Per Hour(Glassdoor est.)".
func ParseSalaryEstimate(value string) (SalaryRange, error) {
	v := strings.TrimSpace(value)
	if v == "" || v == "-1" {
		return SalaryRange{}, ErrNoSalary
	}

	m := salaryRange.FindStringSubmatch(v)
	if m == nil {
		return SalaryRange{}, &SalaryParseError{Value: value}
	}
	lo, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return SalaryRange{}, &SalaryParseError{Value: value}
	}
	hi, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return SalaryRange{}, &SalaryParseError{Value: value}
	}
	if lo > hi {
		lo, hi = hi, lo
	}

	r := SalaryRange{Min: lo, Max: hi}
	if strings.Contains(strings.ToLower(v), "per hour") {
		r.Hourly = true
		r.Min *= HourlyToAnnualK
		r.Max *= HourlyToAnnualK
	}
	return r, nil
}

var trailingRating = regexp.MustCompile(`\s*\n\s*\d(?:\.\d)?\s*$`)

// CleanCompanyName removes the rating Glassdoor appends on a new line, as in
// "Healthfirst\n3.1".
func CleanCompanyName(name string) string {
	return strings.TrimSpace(trailingRating.ReplaceAllString(name, ""))
}
