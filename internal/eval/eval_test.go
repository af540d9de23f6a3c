package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/churn-cli/internal/dataset"
	"github.com/sells-group/churn-cli/internal/model"
)

func TestClassMetrics_ZeroDenominators(t *testing.T) {
	// No predicted positives and no actual positives: precision, recall and
	// F1 must all be 0, never NaN.
	m := classMetrics(0, 0, 0)
	assert.Equal(t, 0.0, m.Precision)
	assert.Equal(t, 0.0, m.Recall)
	assert.Equal(t, 0.0, m.F1)

	m = classMetrics(0, 5, 0) // no actual positives
	assert.Equal(t, 0.0, m.Precision)
	assert.Equal(t, 0.0, m.Recall)
	assert.Equal(t, 0.0, m.F1)
}

func TestClassMetrics_KnownValues(t *testing.T) {
	m := classMetrics(8, 2, 2)
	assert.InDelta(t, 0.8, m.Precision, 1e-9)
	assert.InDelta(t, 0.8, m.Recall, 1e-9)
	assert.InDelta(t, 0.8, m.F1, 1e-9)
}

// constModel predicts churn whenever feature 0 is positive, one tree.
func constEvalInputs(t *testing.T, preds, labels []int) (*dataset.Matrix, []int) {
	t.Helper()
	rows := make([][]float64, len(preds))
	for i, p := range preds {
		rows[i] = []float64{float64(p)}
	}
	m, err := dataset.NewMatrix([]string{"f0"}, rows)
	require.NoError(t, err)
	return m, labels
}

func TestEvaluate_ConfusionCountsSumToEvalSize(t *testing.T) {
	tm := fixedModel(t)

	m, labels := constEvalInputs(t,
		[]int{1, 1, 0, 0, 1, 0},
		[]int{1, 0, 0, 1, 1, 0},
	)

	report, err := Evaluate(tm, m, labels)
	require.NoError(t, err)

	assert.Equal(t, 6, report.EvalSize)
	assert.Equal(t, 6, report.Confusion.Total())
	assert.Equal(t, 2, report.Confusion.TruePositives)
	assert.Equal(t, 1, report.Confusion.FalsePositives)
	assert.Equal(t, 2, report.Confusion.TrueNegatives)
	assert.Equal(t, 1, report.Confusion.FalseNegatives)

	assert.InDelta(t, 2.0/3.0, report.Churned.Precision, 1e-9)
	assert.InDelta(t, 2.0/3.0, report.Churned.Recall, 1e-9)
	assert.InDelta(t, 4.0/6.0, report.Accuracy, 1e-9)
	assert.Equal(t, tm.ID, report.ModelID)
}

func TestEvaluate_LengthMismatch(t *testing.T) {
	tm := fixedModel(t)
	m, _ := constEvalInputs(t, []int{1, 0}, nil)

	_, err := Evaluate(tm, m, []int{1})
	require.Error(t, err)
}

func TestEvaluate_Reproducible(t *testing.T) {
	tm := fixedModel(t)
	m, labels := constEvalInputs(t, []int{1, 0, 1, 1}, []int{1, 0, 0, 1})

	a, err := Evaluate(tm, m, labels)
	require.NoError(t, err)
	b, err := Evaluate(tm, m, labels)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestEvaluate_AllWrongStillDefined(t *testing.T) {
	tm := fixedModel(t)
	// Model predicts churn for none of the actual churners.
	m, labels := constEvalInputs(t, []int{0, 0, 0}, []int{1, 1, 1})

	report, err := Evaluate(tm, m, labels)
	require.NoError(t, err)
	assert.Equal(t, 0.0, report.Churned.Precision)
	assert.Equal(t, 0.0, report.Churned.Recall)
	assert.Equal(t, 0.0, report.Churned.F1)
	assert.Equal(t, model.ClassMetrics{}, report.Churned)
}
