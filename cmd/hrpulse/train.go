package main

import (
	"fmt"

	"github.com/jonathan/hr-pulse/internal/logger"
	"github.com/jonathan/hr-pulse/internal/observability"
	"github.com/jonathan/hr-pulse/internal/training"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the salary model and write the model bundle",
	Long: `Train a random forest on the cleaned dataset: missing ratings are filled
with the median, rows without Average_Salary are dropped, descriptions are
turned into skill indicators and the model is evaluated on a held-out split.
The bundle (schema + model + metrics) is written to --out.`,
	RunE: runTrain,
}

var (
	trainInput     string
	trainOutput    string
	trainTrees     int
	trainMaxDepth  int
	trainSeed      int64
	trainTestRatio float64
)

func init() {
	trainCmd.Flags().StringVarP(&trainInput, "input", "i", "", "Cleaned dataset CSV (default: training.input)")
	trainCmd.Flags().StringVarP(&trainOutput, "out", "o", "", "Model bundle output path (default: model.path)")
	trainCmd.Flags().IntVar(&trainTrees, "trees", training.DefaultTrees, "Number of trees")
	trainCmd.Flags().IntVar(&trainMaxDepth, "max-depth", 0, "Maximum tree depth (0 = unlimited)")
	trainCmd.Flags().Int64Var(&trainSeed, "seed", training.DefaultSeed, "Random seed for the split and the forest")
	trainCmd.Flags().Float64Var(&trainTestRatio, "test-ratio", training.DefaultTestRatio, "Fraction of rows held out for evaluation")

	rootCmd.AddCommand(trainCmd)
}

func runTrain(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup(cmd,
		flagOverride{flag: "input", key: "training.input"},
		flagOverride{flag: "out", key: "model.path"},
		flagOverride{flag: "trees", key: "training.trees"},
		flagOverride{flag: "max-depth", key: "training.max-depth"},
		flagOverride{flag: "seed", key: "training.seed"},
		flagOverride{flag: "test-ratio", key: "training.test-ratio"},
	)
	if err != nil {
		return err
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("training started",
		zap.String(logger.FieldPath, cfg.Training.Input),
		zap.Int("trees", cfg.Training.Trees),
		zap.Int64("seed", cfg.Training.Seed),
	)

	res, err := training.Run(cmd.Context(), training.Options{
		Input:     cfg.Training.Input,
		Output:    cfg.Model.Path,
		Trees:     cfg.Training.Trees,
		MaxDepth:  cfg.Training.MaxDepth,
		Seed:      cfg.Training.Seed,
		TestRatio: cfg.Training.TestRatio,
		Logger:    log,
	})
	if err != nil {
		return fmt.Errorf("training failed: %w", err)
	}

	observability.NewPrinter(cmd.OutOrStdout()).PrintTrainingResult(res)
	return nil
}
