package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/churn-cli/internal/pipeline"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Re-evaluate a stored model against a labeled batch",
	Long: `Evaluate applies a stored model to a labeled customer batch and reports
the confusion matrix and per-class precision/recall/F1.

Examples:
  churn-cli evaluate --input holdout.csv
  churn-cli evaluate --input holdout.csv --model 2f1c... --format yaml`,
	RunE: runEvaluate,
}

func init() {
	f := evaluateCmd.Flags()
	f.String("input", "", "labeled customer batch file (.csv or .xlsx)")
	f.String("model", "", "model ID to evaluate (default: latest run's model)")
	f.String("format", "table", "report format: table, json, or yaml")
	f.String("output", "", "report file path (default: stdout)")
	_ = evaluateCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(evaluateCmd)
}

func runEvaluate(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	input, _ := cmd.Flags().GetString("input")
	modelID, _ := cmd.Flags().GetString("model")
	format, _ := cmd.Flags().GetString("format")
	outputPath, _ := cmd.Flags().GetString("output")

	if format != "table" && format != "json" && format != "yaml" {
		return eris.Errorf("evaluate: --format must be table, json, or yaml (got %q)", format)
	}

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	p := pipeline.New(cfg, st)

	if modelID == "" {
		run, err := st.LatestRun(ctx)
		if err != nil {
			return eris.Wrap(err, "evaluate: no model specified and no runs found")
		}
		modelID = run.ModelID
	}
	tm, err := p.LoadModel(ctx, modelID)
	if err != nil {
		return err
	}

	rows, err := pipeline.LoadBatch(input)
	if err != nil {
		return eris.Wrapf(err, "evaluate: load %s", input)
	}

	report, err := p.Evaluate(ctx, tm, rows)
	if err != nil {
		return err
	}

	return writeEvaluation(report, format, outputPath)
}
