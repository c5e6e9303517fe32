package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jonathan/hr-pulse/internal/dataset"
)

// JobsTable is the table the API reads and the seed commands replace.
const JobsTable = "jobs"

var jobColumns = []string{"id", "job_title", "skills_extracted", "company_name", "location", "salary_estimate"}

const createJobsTable = `CREATE TABLE jobs (
	id               BIGINT PRIMARY KEY,
	job_title        TEXT NOT NULL DEFAULT '',
	skills_extracted TEXT NOT NULL DEFAULT '[]',
	company_name     TEXT,
	location         TEXT,
	salary_estimate  TEXT
)`

// Job is one row of the jobs table. The detail columns are nil until update-db
// has merged them in.
type Job struct {
	ID              int64   `json:"id"`
	JobTitle        string  `json:"job_title"`
	SkillsExtracted string  `json:"skills_extracted"`
	CompanyName     *string `json:"company_name"`
	Location        *string `json:"location"`
	SalaryEstimate  *string `json:"salary_estimate"`
}

// JobFilter selects rows for ListJobs. Skill is matched case-insensitively
// as a substring of skills_extracted.
type JobFilter struct {
	Limit int
	Skill string
}

// JobsFromRecords converts extracted-skills rows.
func JobsFromRecords(records []dataset.SkillRecord) []Job {
	jobs := make([]Job, len(records))
	for i, r := range records {
		jobs[i] = Job{ID: int64(r.ID), JobTitle: r.JobTitle, SkillsExtracted: r.SkillsExtracted}
	}
	return jobs
}

// JobsFromDetails converts merged rows.
func JobsFromDetails(details []dataset.JobDetails) []Job {
	jobs := make([]Job, len(details))
	for i, d := range details {
		jobs[i] = Job{
			ID:              int64(d.ID),
			JobTitle:        d.JobTitle,
			SkillsExtracted: d.SkillsExtracted,
			CompanyName:     d.CompanyName,
			Location:        d.Location,
			SalaryEstimate:  d.SalaryEstimate,
		}
	}
	return jobs
}

// ListJobs returns up to filter.Limit rows ordered by id. The skill filter is
// applied before the limit.
func (db *DB) ListJobs(ctx context.Context, filter JobFilter) ([]Job, error) {
	query, args := buildListQuery(filter)
	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	jobs := []Job{}
	for rows.Next() {
		var j Job
		if err := rows.Scan(&j.ID, &j.JobTitle, &j.SkillsExtracted, &j.CompanyName, &j.Location, &j.SalaryEstimate); err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate jobs: %w", err)
	}
	return jobs, nil
}

func buildListQuery(filter JobFilter) (string, []any) {
	var sb strings.Builder
	sb.WriteString("SELECT " + strings.Join(jobColumns, ", ") + " FROM " + JobsTable)

	var args []any
	if filter.Skill != "" {
		args = append(args, "%"+escapeLike(filter.Skill)+"%")
		fmt.Fprintf(&sb, " WHERE skills_extracted ILIKE $%d", len(args))
	}
	sb.WriteString(" ORDER BY id")
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}
	return sb.String(), args
}

// escapeLike makes s match literally inside a LIKE pattern.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// ReplaceJobs drops and recreates the jobs table and bulk-loads jobs, all in
// one transaction. It returns the number of rows copied.
func (db *DB) ReplaceJobs(ctx context.Context, jobs []Job) (int64, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if rErr := tx.Rollback(ctx); rErr != nil && !errors.Is(rErr, pgx.ErrTxClosed) {
			fmt.Printf("Rollback error: %v\n", rErr)
		}
	}()

	if _, err := tx.Exec(ctx, "DROP TABLE IF EXISTS "+JobsTable); err != nil {
		return 0, fmt.Errorf("failed to drop jobs table: %w", err)
	}
	if _, err := tx.Exec(ctx, createJobsTable); err != nil {
		return 0, fmt.Errorf("failed to create jobs table: %w", err)
	}

	n, err := tx.CopyFrom(ctx, pgx.Identifier{JobsTable}, jobColumns,
		pgx.CopyFromSlice(len(jobs), func(i int) ([]any, error) {
			j := jobs[i]
			return []any{j.ID, j.JobTitle, j.SkillsExtracted, j.CompanyName, j.Location, j.SalaryEstimate}, nil
		}),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to copy jobs: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit jobs: %w", err)
	}
	return n, nil
}
