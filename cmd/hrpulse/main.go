// Package main provides the hrpulse command: the salary prediction API server
// and the offline data and training jobs that feed it.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configFile string
	logDebug   bool
	logJSON    bool
)

var rootCmd = &cobra.Command{
	Use:   "hrpulse",
	Short: "HR-Pulse salary prediction service",
	Long: "HR-Pulse cleans job-posting datasets, extracts skills with an LLM, trains a random forest " +
		"salary model and serves predictions and job listings over HTTP.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to config file (default: ./hrpulse.yaml if present)")
	rootCmd.PersistentFlags().BoolVar(&logDebug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "json", false, "Log as JSON")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
