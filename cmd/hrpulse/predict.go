package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/hr-pulse/internal/observability"
	"github.com/jonathan/hr-pulse/internal/prediction"
	"github.com/spf13/cobra"
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict a salary from a model bundle",
	Long:  "Load a model bundle and print the predicted salary (in thousands) for a company rating and a comma-separated skill list.",
	RunE:  runPredict,
}

var (
	predictModelPath string
	predictRating    float64
	predictSkills    string
	predictJSON      bool
)

func init() {
	predictCmd.Flags().StringVarP(&predictModelPath, "model", "m", "", "Path to the model bundle (default: model.path)")
	predictCmd.Flags().Float64Var(&predictRating, "rating", 0, "Company rating")
	predictCmd.Flags().StringVar(&predictSkills, "skills", "", "Comma-separated skills, e.g. python,sql")
	predictCmd.Flags().BoolVar(&predictJSON, "output-json", false, "Print the result as JSON")
	_ = predictCmd.MarkFlagRequired("rating")

	rootCmd.AddCommand(predictCmd)
}

func runPredict(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd, flagOverride{flag: "model", key: "model.path"})
	if err != nil {
		return err
	}

	predictor, err := prediction.Load(cfg.Model.Path)
	if err != nil {
		return err
	}

	skills := splitSkills(predictSkills)
	res, err := predictor.PredictSalary(predictRating, skills)
	if err != nil {
		return err
	}

	if predictJSON {
		out, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	}

	observability.NewPrinter(cmd.OutOrStdout()).PrintPrediction(predictRating, skills, res)
	return nil
}

// splitSkills splits a comma-separated list, dropping blank entries.
func splitSkills(s string) []string {
	skills := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			skills = append(skills, part)
		}
	}
	return skills
}
