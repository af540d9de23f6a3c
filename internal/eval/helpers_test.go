package eval

import (
	"testing"

	"github.com/sells-group/churn-cli/internal/forest"
)

// fixedModel is a one-tree model predicting churn exactly when feature 0 is
// above 0.5, so tests control predictions directly through the input rows.
func fixedModel(t *testing.T) *forest.TrainedModel {
	t.Helper()
	tree := &forest.Tree{Root: &forest.Node{
		Feature:   0,
		Threshold: 0.5,
		Left:      &forest.Node{Leaf: true, N: 1, Proba: 0},
		Right:     &forest.Node{Leaf: true, N: 1, Proba: 1},
	}}
	return &forest.TrainedModel{
		ID:         "model-fixed",
		Seed:       42,
		Estimators: 1,
		Features:   []string{"f0"},
		Trees:      []*forest.Tree{tree},
	}
}
