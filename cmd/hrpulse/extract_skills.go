package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/jonathan/hr-pulse/internal/config"
	"github.com/jonathan/hr-pulse/internal/dataset"
	"github.com/jonathan/hr-pulse/internal/logger"
	"github.com/jonathan/hr-pulse/internal/nlp"
	"github.com/jonathan/hr-pulse/internal/observability"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var extractSkillsCmd = &cobra.Command{
	Use:   "extract-skills",
	Short: "Extract skills from job descriptions with the LLM",
	Long: `Run entity recognition over the first --limit postings of the cleaned
dataset, one request per posting with --delay between requests, and write
id, job_title, skills_extracted. A posting whose request fails gets "[]".
On interrupt the rows finished so far are written before exiting.`,
	RunE: runExtractSkills,
}

var (
	extractInput    string
	extractOutput   string
	extractLimit    int
	extractDelay    time.Duration
	extractMaxChars int
	extractAPIKey   string
	extractModel    string
)

// newRecognizer builds the entity recognizer. Tests replace it.
var newRecognizer = func(ctx context.Context, cfg config.NLPConfig) (nlp.EntityRecognizer, func() error, error) {
	if cfg.APIKey == "" {
		return nil, nil, errRequired("API key", "--api-key", "GEMINI_API_KEY")
	}
	client, err := nlp.NewGeminiClient(ctx, nlp.Config{APIKey: cfg.APIKey, Model: cfg.Model})
	if err != nil {
		return nil, nil, err
	}
	return nlp.NewLLMRecognizer(client, cfg.Timeout), client.Close, nil
}

func init() {
	extractSkillsCmd.Flags().StringVarP(&extractInput, "input", "i", "", "Cleaned dataset CSV (default: training.input)")
	extractSkillsCmd.Flags().StringVarP(&extractOutput, "out", "o", "", "Output CSV (required)")
	extractSkillsCmd.Flags().IntVar(&extractLimit, "limit", nlp.DefaultLimit, "Number of postings to process (0 = all)")
	extractSkillsCmd.Flags().DurationVar(&extractDelay, "delay", nlp.DefaultDelay, "Pause between requests")
	extractSkillsCmd.Flags().IntVar(&extractMaxChars, "max-chars", nlp.DefaultMaxChars, "Description characters sent per posting")
	extractSkillsCmd.Flags().StringVar(&extractAPIKey, "api-key", "", "Gemini API key (overrides GEMINI_API_KEY env var)")
	extractSkillsCmd.Flags().StringVar(&extractModel, "llm-model", "", "Gemini model name (default: nlp.model)")
	_ = extractSkillsCmd.MarkFlagRequired("out")

	rootCmd.AddCommand(extractSkillsCmd)
}

func runExtractSkills(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup(cmd,
		flagOverride{flag: "input", key: "training.input"},
		flagOverride{flag: "limit", key: "nlp.limit"},
		flagOverride{flag: "delay", key: "nlp.delay"},
		flagOverride{flag: "max-chars", key: "nlp.max-chars"},
		flagOverride{flag: "api-key", key: "nlp.api-key"},
		flagOverride{flag: "llm-model", key: "nlp.model"},
	)
	if err != nil {
		return err
	}
	defer func() {
		_ = log.Sync()
	}()

	postings, err := dataset.LoadDescriptions(cfg.Training.Input)
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	rec, closeFn, err := newRecognizer(ctx, cfg.NLP)
	if err != nil {
		return err
	}
	if closeFn != nil {
		defer func() {
			_ = closeFn()
		}()
	}

	records, report, runErr := nlp.ExtractSkills(ctx, postings, rec, nlp.BatchOptions{
		Limit:    cfg.NLP.Limit,
		MaxChars: cfg.NLP.MaxChars,
		Delay:    cfg.NLP.Delay,
		Logger:   log,
	})
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return fmt.Errorf("skill extraction failed: %w", runErr)
	}

	if err := dataset.SaveTable(extractOutput, dataset.SkillRecordsTable(records)); err != nil {
		return fmt.Errorf("failed to write skills: %w", err)
	}
	log.Info("skills written", zap.String(logger.FieldPath, extractOutput), zap.Int("rows", len(records)))

	observability.NewPrinter(cmd.OutOrStdout()).PrintExtractionReport(report, records)
	if runErr != nil {
		return fmt.Errorf("skill extraction interrupted after %d rows: %w", len(records), runErr)
	}
	return nil
}
