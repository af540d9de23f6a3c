// Package scorer applies a fitted churn model to new, unlabeled customer
// batches and emits the scoring output table.
package scorer

import (
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/churn-cli/internal/feature"
	"github.com/sells-group/churn-cli/internal/forest"
	"github.com/sells-group/churn-cli/internal/model"
)

// ChurnThreshold is the probability at or above which a customer is
// predicted to churn.
const ChurnThreshold = 0.5

// Options control the shape of the scoring output.
type Options struct {
	// SortByProbability orders results by descending churn probability
	// instead of preserving input order.
	SortByProbability bool
}

// Score runs the model over validated records using the model's stored
// encoding map, never an encoding re-derived from the scoring batch. Output
// order matches input order unless SortByProbability is set. An unseen
// category fails the whole batch with UnknownCategoryError; no partial or
// defaulted scores are emitted.
func Score(tm *forest.TrainedModel, records []model.CustomerRecord, opts Options) ([]model.CustomerScore, error) {
	m, err := feature.Transform(records, tm.Encoding)
	if err != nil {
		return nil, err
	}
	probs, err := tm.PredictProba(m)
	if err != nil {
		return nil, eris.Wrap(err, "scorer: predict")
	}

	scores := make([]model.CustomerScore, len(records))
	churned := 0
	for i, rec := range records {
		label := model.ChurnNo
		if probs[i] >= ChurnThreshold {
			label = model.ChurnYes
			churned++
		}
		scores[i] = model.CustomerScore{
			CustomerID:       rec.CustomerID,
			ChurnProbability: probs[i],
			PredictedLabel:   label,
		}
	}

	if opts.SortByProbability {
		sort.SliceStable(scores, func(a, b int) bool {
			return scores[a].ChurnProbability > scores[b].ChurnProbability
		})
	}

	zap.L().Info("scorer: batch scored",
		zap.String("model_id", tm.ID),
		zap.Int("customers", len(scores)),
		zap.Int("predicted_churn", churned),
	)
	return scores, nil
}
