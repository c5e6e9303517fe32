package dataset

import (
	"fmt"
	"strconv"
	"strings"
)

// Column names of the extracted-skills dataset.
const (
	ColID              = "id"
	ColSkillsExtracted = "skills_extracted"
)

// SkillRecord is one row of the extracted-skills dataset. SkillsExtracted holds
// a JSON array of lowercased skill names.
type SkillRecord struct {
	ID              int
	JobTitle        string
	SkillsExtracted string
}

// JobDetails is a SkillRecord enriched with company data from the cleaned dataset.
// Nil fields had no matching posting.
type JobDetails struct {
	SkillRecord
	CompanyName    *string
	Location       *string
	SalaryEstimate *string
}

// SkillRecordsFromTable parses the id, job_title and skills_extracted columns.
func SkillRecordsFromTable(t *Table) ([]SkillRecord, error) {
	if err := t.Require(ColID, ColJobTitle, ColSkillsExtracted); err != nil {
		return nil, err
	}
	records := make([]SkillRecord, 0, t.Len())
	for i := range t.Rows {
		id, err := strconv.Atoi(strings.TrimSpace(t.Get(i, ColID)))
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid id %q", i+1, t.Get(i, ColID))
		}
		skills := t.Get(i, ColSkillsExtracted)
		if skills == "" {
			skills = "[]"
		}
		records = append(records, SkillRecord{
			ID:              id,
			JobTitle:        t.Get(i, ColJobTitle),
			SkillsExtracted: skills,
		})
	}
	return records, nil
}

// LoadSkillRecords reads an extracted-skills CSV.
func LoadSkillRecords(path string) ([]SkillRecord, error) {
	t, err := LoadTable(path)
	if err != nil {
		return nil, err
	}
	records, err := SkillRecordsFromTable(t)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// SkillRecordsTable lays records out with the columns id, job_title, skills_extracted.
func SkillRecordsTable(records []SkillRecord) *Table {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{strconv.Itoa(r.ID), r.JobTitle, r.SkillsExtracted})
	}
	return NewTable([]string{ColID, ColJobTitle, ColSkillsExtracted}, rows)
}

// MergeDetails left-joins postings onto records by ID. Every record is kept.
func MergeDetails(records []SkillRecord, postings []Posting) []JobDetails {
	byID := make(map[int]Posting, len(postings))
	for _, p := range postings {
		byID[p.ID] = p
	}

	merged := make([]JobDetails, 0, len(records))
	for _, r := range records {
		d := JobDetails{SkillRecord: r}
		if p, ok := byID[r.ID]; ok {
			d.CompanyName = stringPtr(p.Company)
			d.Location = stringPtr(p.Location)
			d.SalaryEstimate = stringPtr(p.SalaryEstimate)
		}
		merged = append(merged, d)
	}
	return merged
}

func stringPtr(s string) *string {
	return &s
}
