package main

import (
	"fmt"

	"github.com/jonathan/hr-pulse/internal/dataset"
	"github.com/jonathan/hr-pulse/internal/ingestion"
	"github.com/jonathan/hr-pulse/internal/observability"
	"github.com/spf13/cobra"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clean a raw job-postings export into the training dataset",
	Long: `Parse Salary Estimate into Min/Max/Average_Salary (hourly ranges are
converted to annual), strip HTML from descriptions, remove the trailing rating
from company names, derive job_title and drop exact duplicate rows.`,
	RunE: runClean,
}

var (
	cleanInput  string
	cleanOutput string
)

func init() {
	cleanCmd.Flags().StringVarP(&cleanInput, "input", "i", "", "Raw CSV export (required)")
	cleanCmd.Flags().StringVarP(&cleanOutput, "out", "o", "", "Cleaned CSV output (required)")
	_ = cleanCmd.MarkFlagRequired("input")
	_ = cleanCmd.MarkFlagRequired("out")

	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, _ []string) error {
	_, log, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() {
		_ = log.Sync()
	}()

	raw, err := dataset.LoadTable(cleanInput)
	if err != nil {
		return fmt.Errorf("failed to load raw dataset: %w", err)
	}

	cleaned, report, err := ingestion.CleanDataset(raw, ingestion.CleanOptions{Logger: log})
	if err != nil {
		return fmt.Errorf("failed to clean dataset: %w", err)
	}

	if err := dataset.SaveTable(cleanOutput, cleaned); err != nil {
		return fmt.Errorf("failed to write cleaned dataset: %w", err)
	}

	observability.NewPrinter(cmd.OutOrStdout()).PrintCleanReport(report, cleanOutput)
	return nil
}
