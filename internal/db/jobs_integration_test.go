//go:build integration

package db

import (
	"context"
	"fmt"
	"os"
	"testing"
)

func getTestDB(t *testing.T) *DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	db, err := Connect(context.Background(), dsn)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	return db
}

func seedJobs(t *testing.T, db *DB) []Job {
	t.Helper()
	var jobs []Job
	for i := 1; i <= 10; i++ {
		skills := `["sql"]`
		if i%5 != 0 && i <= 7 {
			skills = `["Python","sql"]`
		}
		location := fmt.Sprintf("City %d", i)
		jobs = append(jobs, Job{ID: int64(i), JobTitle: fmt.Sprintf("Job %d", i), SkillsExtracted: skills, Location: &location})
	}
	n, err := db.ReplaceJobs(context.Background(), jobs)
	if err != nil {
		t.Fatalf("ReplaceJobs failed: %v", err)
	}
	if n != 10 {
		t.Fatalf("ReplaceJobs copied %d rows, want 10", n)
	}
	return jobs
}

func TestIntegration_ListJobs(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()
	ctx := context.Background()
	seedJobs(t, db)

	t.Run("skill filter before limit", func(t *testing.T) {
		jobs, err := db.ListJobs(ctx, JobFilter{Limit: 5, Skill: "python"})
		if err != nil {
			t.Fatalf("ListJobs failed: %v", err)
		}
		if len(jobs) != 5 {
			t.Fatalf("got %d jobs, want 5", len(jobs))
		}
		for i := 1; i < len(jobs); i++ {
			if jobs[i-1].ID >= jobs[i].ID {
				t.Errorf("jobs not ordered by id: %d before %d", jobs[i-1].ID, jobs[i].ID)
			}
		}
	})

	t.Run("all matches", func(t *testing.T) {
		jobs, err := db.ListJobs(ctx, JobFilter{Limit: 100, Skill: "PYTHON"})
		if err != nil {
			t.Fatalf("ListJobs failed: %v", err)
		}
		if len(jobs) != 6 {
			t.Errorf("got %d jobs, want 6", len(jobs))
		}
	})

	t.Run("default order and nullable columns", func(t *testing.T) {
		jobs, err := db.ListJobs(ctx, JobFilter{Limit: 3})
		if err != nil {
			t.Fatalf("ListJobs failed: %v", err)
		}
		if len(jobs) != 3 || jobs[0].ID != 1 {
			t.Fatalf("unexpected jobs: %+v", jobs)
		}
		if jobs[0].Location == nil || *jobs[0].Location != "City 1" {
			t.Errorf("Location = %v, want City 1", jobs[0].Location)
		}
		if jobs[0].CompanyName != nil {
			t.Errorf("CompanyName = %v, want nil", *jobs[0].CompanyName)
		}
	})

	t.Run("no matches", func(t *testing.T) {
		jobs, err := db.ListJobs(ctx, JobFilter{Limit: 10, Skill: "cobol"})
		if err != nil {
			t.Fatalf("ListJobs failed: %v", err)
		}
		if jobs == nil || len(jobs) != 0 {
			t.Errorf("got %v, want empty non-nil slice", jobs)
		}
	})
}

func TestIntegration_ReplaceJobs_Replaces(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()
	ctx := context.Background()
	seedJobs(t, db)

	if _, err := db.ReplaceJobs(ctx, []Job{{ID: 42, JobTitle: "Only", SkillsExtracted: "[]"}}); err != nil {
		t.Fatalf("ReplaceJobs failed: %v", err)
	}
	jobs, err := db.ListJobs(ctx, JobFilter{Limit: 100})
	if err != nil {
		t.Fatalf("ListJobs failed: %v", err)
	}
	if len(jobs) != 1 || jobs[0].ID != 42 {
		t.Errorf("got %+v, want only job 42", jobs)
	}
}

func TestIntegration_ReplaceJobs_RollsBackOnDuplicateID(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()
	ctx := context.Background()
	seedJobs(t, db)

	_, err := db.ReplaceJobs(ctx, []Job{{ID: 1, SkillsExtracted: "[]"}, {ID: 1, SkillsExtracted: "[]"}})
	if err == nil {
		t.Fatal("expected duplicate id error")
	}
	jobs, err := db.ListJobs(ctx, JobFilter{Limit: 100})
	if err != nil {
		t.Fatalf("ListJobs failed: %v", err)
	}
	if len(jobs) != 10 {
		t.Errorf("got %d jobs after failed replace, want the original 10", len(jobs))
	}
}
