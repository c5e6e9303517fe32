package main

import (
	"context"
	"fmt"

	"github.com/jonathan/hr-pulse/internal/dataset"
	"github.com/jonathan/hr-pulse/internal/db"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// jobWriter is the part of *db.DB the load commands use.
type jobWriter interface {
	ReplaceJobs(ctx context.Context, jobs []db.Job) (int64, error)
	Close()
}

// openJobWriter connects to the jobs database. Tests replace it.
var openJobWriter = func(ctx context.Context, url string) (jobWriter, error) {
	return db.Connect(ctx, url)
}

var seedDBCmd = &cobra.Command{
	Use:   "seed-db",
	Short: "Replace the jobs table with the extracted-skills CSV",
	RunE:  runSeedDB,
}

var (
	seedInput string
	seedDBURL string
)

func init() {
	seedDBCmd.Flags().StringVarP(&seedInput, "input", "i", "", "Extracted-skills CSV (required)")
	seedDBCmd.Flags().StringVar(&seedDBURL, "db-url", "", "Database URL (overrides DATABASE_URL)")
	_ = seedDBCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(seedDBCmd)
}

func runSeedDB(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup(cmd, flagOverride{flag: "db-url", key: "database.url"})
	if err != nil {
		return err
	}
	defer func() {
		_ = log.Sync()
	}()

	records, err := dataset.LoadSkillRecords(seedInput)
	if err != nil {
		return fmt.Errorf("failed to load skills: %w", err)
	}

	return replaceJobs(cmd, cfg.Database.URL, db.JobsFromRecords(records), log)
}

// replaceJobs writes jobs through a fresh connection and reports the count.
func replaceJobs(cmd *cobra.Command, url string, jobs []db.Job, log *zap.Logger) error {
	if url == "" {
		return errRequired("database URL", "--db-url", "DATABASE_URL")
	}

	store, err := openJobWriter(cmd.Context(), url)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer store.Close()

	n, err := store.ReplaceJobs(cmd.Context(), jobs)
	if err != nil {
		return fmt.Errorf("failed to replace jobs: %w", err)
	}

	log.Info("jobs table replaced", zap.String("table", db.JobsTable), zap.Int64("rows", n))
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d rows into %s\n", n, db.JobsTable)
	return nil
}
