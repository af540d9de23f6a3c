package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/churn-cli/internal/model"
	"github.com/sells-group/churn-cli/internal/pipeline"
)

// outWriter opens the output destination: a file when path is set, stdout
// otherwise. The returned closer is a no-op for stdout.
func outWriter(path string) (io.Writer, func() error, error) {
	if path == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "output: create %s", path)
	}
	return f, f.Close, nil
}

// writeReport prints a training result in the requested format.
func writeReport(result *pipeline.TrainResult, format, path string) error {
	w, closeFn, err := outWriter(path)
	if err != nil {
		return err
	}
	defer closeFn() //nolint:errcheck

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(result.Run), "output: encode json")
	case "yaml":
		return eris.Wrap(yaml.NewEncoder(w).Encode(result.Run), "output: encode yaml")
	}

	p := message.NewPrinter(language.English)
	fmt.Fprintf(w, "Run:        %s\n", result.Run.ID)
	fmt.Fprintf(w, "Model:      %s\n", result.Run.ModelID)
	fmt.Fprintf(w, "Seed:       %d   Estimators: %d\n", result.Run.Seed, result.Run.Estimators)
	p.Fprintf(w, "Rows:       %d (train %d / eval %d)\n", result.Run.Rows, result.Run.TrainRows, result.Run.EvalRows)
	fmt.Fprintln(w)
	return printEvaluation(w, result.Report)
}

// writeEvaluation prints a standalone evaluation report.
func writeEvaluation(report *model.EvaluationReport, format, path string) error {
	w, closeFn, err := outWriter(path)
	if err != nil {
		return err
	}
	defer closeFn() //nolint:errcheck

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(report), "output: encode json")
	case "yaml":
		return eris.Wrap(yaml.NewEncoder(w).Encode(report), "output: encode yaml")
	}
	return printEvaluation(w, report)
}

func printEvaluation(w io.Writer, report *model.EvaluationReport) error {
	p := message.NewPrinter(language.English)
	p.Fprintf(w, "Evaluated %d rows (model %s, seed %d)\n", report.EvalSize, shortID(report.ModelID), report.Seed)
	fmt.Fprintf(w, "Accuracy: %.3f\n\n", report.Accuracy)

	cm := report.Confusion
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\tPRED YES\tPRED NO")
	p.Fprintf(tw, "ACTUAL YES\t%d\t%d\n", cm.TruePositives, cm.FalseNegatives)
	p.Fprintf(tw, "ACTUAL NO\t%d\t%d\n", cm.FalsePositives, cm.TrueNegatives)
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "CLASS\tPRECISION\tRECALL\tF1")
	fmt.Fprintf(tw, "Yes\t%.3f\t%.3f\t%.3f\n", report.Churned.Precision, report.Churned.Recall, report.Churned.F1)
	fmt.Fprintf(tw, "No\t%.3f\t%.3f\t%.3f\n", report.Retained.Precision, report.Retained.Recall, report.Retained.F1)
	return tw.Flush()
}

// writeScores prints the scoring output table.
func writeScores(scores []model.CustomerScore, format, path string) error {
	w, closeFn, err := outWriter(path)
	if err != nil {
		return err
	}
	defer closeFn() //nolint:errcheck

	if format == "csv" {
		cw := csv.NewWriter(w)
		if err := cw.Write([]string{"customer_id", "churn_probability", "predicted_label"}); err != nil {
			return eris.Wrap(err, "output: write csv header")
		}
		for _, sc := range scores {
			row := []string{sc.CustomerID, strconv.FormatFloat(sc.ChurnProbability, 'f', 4, 64), sc.PredictedLabel}
			if err := cw.Write(row); err != nil {
				return eris.Wrapf(err, "output: write csv row for %s", sc.CustomerID)
			}
		}
		cw.Flush()
		return eris.Wrap(cw.Error(), "output: flush csv")
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CUSTOMER\tCHURN PROBABILITY\tPREDICTED")
	for _, sc := range scores {
		fmt.Fprintf(tw, "%s\t%.4f\t%s\n", sc.CustomerID, sc.ChurnProbability, sc.PredictedLabel)
	}
	return tw.Flush()
}
