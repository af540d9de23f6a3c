package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/churn-cli/internal/pipeline"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train a churn model on a labeled customer batch",
	Long: `Train validates a labeled customer batch, engineers features, splits it
into train/eval partitions, fits a random-forest classifier, and persists the
run with its evaluation report.

Examples:
  # Train on a CSV export with defaults
  churn-cli train --input customers.csv

  # Larger ensemble, explicit seed, YAML report to file
  churn-cli train --input customers.xlsx --estimators 200 --seed 7 --format yaml --output report.yaml`,
	RunE: runTrain,
}

func init() {
	f := trainCmd.Flags()
	f.String("input", "", "customer batch file (.csv or .xlsx)")
	f.Int("estimators", 0, "number of trees in the ensemble (overrides config)")
	f.Int64("seed", -1, "training seed (overrides config)")
	f.Float64("eval-fraction", 0, "evaluation split fraction (overrides config)")
	f.String("format", "table", "report format: table, json, or yaml")
	f.String("output", "", "report file path (default: stdout)")
	_ = trainCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(trainCmd)
}

func runTrain(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	input, _ := cmd.Flags().GetString("input")
	format, _ := cmd.Flags().GetString("format")
	outputPath, _ := cmd.Flags().GetString("output")

	if format != "table" && format != "json" && format != "yaml" {
		return eris.Errorf("train: --format must be table, json, or yaml (got %q)", format)
	}

	if n, _ := cmd.Flags().GetInt("estimators"); n > 0 {
		cfg.Forest.Estimators = n
	}
	if seed, _ := cmd.Flags().GetInt64("seed"); seed >= 0 {
		cfg.Forest.Seed = seed
		cfg.Split.Seed = seed
	}
	if frac, _ := cmd.Flags().GetFloat64("eval-fraction"); frac > 0 {
		cfg.Split.EvalFraction = frac
	}

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	rows, err := pipeline.LoadBatch(input)
	if err != nil {
		return eris.Wrapf(err, "train: load %s", input)
	}
	zap.L().Info("batch loaded", zap.String("input", input), zap.Int("rows", len(rows)))

	result, err := pipeline.New(cfg, st).Train(ctx, rows)
	if err != nil {
		return err
	}

	return writeReport(result, format, outputPath)
}
