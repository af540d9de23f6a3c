// Package eval computes the evaluation report for a trained churn model:
// confusion matrix against the churn-positive class and per-class
// precision/recall/F1. Recomputing with the same inputs is bit-for-bit
// reproducible.
package eval

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/churn-cli/internal/dataset"
	"github.com/sells-group/churn-cli/internal/forest"
	"github.com/sells-group/churn-cli/internal/model"
)

// Evaluate runs the model over the evaluation split and builds the report.
func Evaluate(tm *forest.TrainedModel, m *dataset.Matrix, labels []int) (*model.EvaluationReport, error) {
	if m.Len() != len(labels) {
		return nil, eris.Errorf("eval: %d rows but %d labels", m.Len(), len(labels))
	}
	preds, err := tm.Predict(m)
	if err != nil {
		return nil, eris.Wrap(err, "eval: predict")
	}

	var cm model.ConfusionMatrix
	for i, y := range labels {
		switch {
		case preds[i] == 1 && y == 1:
			cm.TruePositives++
		case preds[i] == 1 && y == 0:
			cm.FalsePositives++
		case preds[i] == 0 && y == 0:
			cm.TrueNegatives++
		default:
			cm.FalseNegatives++
		}
	}

	correct := cm.TruePositives + cm.TrueNegatives
	report := &model.EvaluationReport{
		ModelID:   tm.ID,
		Seed:      tm.Seed,
		EvalSize:  len(labels),
		Confusion: cm,
		Churned:   classMetrics(cm.TruePositives, cm.FalsePositives, cm.FalseNegatives),
		Retained:  classMetrics(cm.TrueNegatives, cm.FalseNegatives, cm.FalsePositives),
		Accuracy:  ratio(correct, len(labels)),
	}
	return report, nil
}

// classMetrics derives precision/recall/F1 from the counts for one class.
// Each metric is 0 when its denominator is 0; division by zero must not
// propagate NaN into the report.
func classMetrics(tp, fp, fn int) model.ClassMetrics {
	precision := ratio(tp, tp+fp)
	recall := ratio(tp, tp+fn)
	f1 := 0.0
	if precision+recall > 0 {
		f1 = 2 * precision * recall / (precision + recall)
	}
	return model.ClassMetrics{Precision: precision, Recall: recall, F1: f1}
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
