package main

import (
	"fmt"

	"github.com/jonathan/hr-pulse/internal/dataset"
	"github.com/jonathan/hr-pulse/internal/db"
	"github.com/spf13/cobra"
)

var updateDBCmd = &cobra.Command{
	Use:   "update-db",
	Short: "Replace the jobs table with extracted skills joined to company data",
	Long: `Left-join the extracted-skills CSV with the cleaned dataset on id (row
order, starting at 1), adding Company Name, Location and Salary Estimate, then
replace the jobs table.`,
	RunE: runUpdateDB,
}

var (
	updateCleaned string
	updateSkills  string
	updateDBURL   string
)

func init() {
	updateDBCmd.Flags().StringVar(&updateCleaned, "cleaned", "", "Cleaned dataset CSV (default: training.input)")
	updateDBCmd.Flags().StringVar(&updateSkills, "skills", "", "Extracted-skills CSV (required)")
	updateDBCmd.Flags().StringVar(&updateDBURL, "db-url", "", "Database URL (overrides DATABASE_URL)")
	_ = updateDBCmd.MarkFlagRequired("skills")

	rootCmd.AddCommand(updateDBCmd)
}

func runUpdateDB(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup(cmd,
		flagOverride{flag: "cleaned", key: "training.input"},
		flagOverride{flag: "db-url", key: "database.url"},
	)
	if err != nil {
		return err
	}
	defer func() {
		_ = log.Sync()
	}()

	records, err := dataset.LoadSkillRecords(updateSkills)
	if err != nil {
		return fmt.Errorf("failed to load skills: %w", err)
	}

	table, err := dataset.LoadTable(cfg.Training.Input)
	if err != nil {
		return fmt.Errorf("failed to load cleaned dataset: %w", err)
	}
	postings := dataset.PostingsFromTable(table)

	details := dataset.MergeDetails(records, postings)
	return replaceJobs(cmd, cfg.Database.URL, db.JobsFromDetails(details), log)
}
