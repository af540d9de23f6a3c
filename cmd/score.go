package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/churn-cli/internal/pipeline"
	"github.com/sells-group/churn-cli/internal/scorer"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score unlabeled customers with a trained model",
	Long: `Score validates an unlabeled customer batch, applies a stored model using
the category encoding it was trained with, and emits one row per customer:
customer_id, churn_probability, predicted_label. Output preserves input order
unless --sort is given.

Examples:
  # Score with the most recent trained model
  churn-cli score --input new_customers.csv

  # Score with a specific model, highest risk first, CSV to file
  churn-cli score --input new_customers.csv --model 2f1c... --sort --format csv --output scores.csv`,
	RunE: runScore,
}

func init() {
	f := scoreCmd.Flags()
	f.String("input", "", "customer batch file (.csv or .xlsx)")
	f.String("model", "", "model ID to score with (default: latest run's model)")
	f.Bool("sort", false, "sort output by descending churn probability")
	f.String("format", "table", "output format: table or csv")
	f.String("output", "", "output file path (default: stdout)")
	_ = scoreCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	input, _ := cmd.Flags().GetString("input")
	modelID, _ := cmd.Flags().GetString("model")
	sortScores, _ := cmd.Flags().GetBool("sort")
	format, _ := cmd.Flags().GetString("format")
	outputPath, _ := cmd.Flags().GetString("output")

	if format != "table" && format != "csv" {
		return eris.Errorf("score: --format must be table or csv (got %q)", format)
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
			return eris.Wrap(err, "score: no model specified and no runs found")
		}
		modelID = run.ModelID
	}
	tm, err := p.LoadModel(ctx, modelID)
	if err != nil {
		return err
	}

	rows, err := pipeline.LoadBatch(input)
	if err != nil {
		return eris.Wrapf(err, "score: load %s", input)
	}
	zap.L().Info("batch loaded", zap.String("input", input), zap.Int("rows", len(rows)))

	scores, err := p.Score(ctx, tm, rows, scorer.Options{SortByProbability: sortScores})
	if err != nil {
		return err
	}

	return writeScores(scores, format, outputPath)
}
