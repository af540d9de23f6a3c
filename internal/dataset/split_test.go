package dataset

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMatrix(t *testing.T, n int) (*Matrix, []int) {
	t.Helper()
	rows := make([][]float64, n)
	labels := make([]int, n)
	for i := range rows {
		rows[i] = []float64{float64(i)}
		if i%4 == 0 {
			labels[i] = 1
		}
	}
	m, err := NewMatrix([]string{"x"}, rows)
	require.NoError(t, err)
	return m, labels
}

func TestTrainEvalSplit_PartitionsAreDisjointAndComplete(t *testing.T) {
	m, labels := testMatrix(t, 100)

	split, err := TrainEvalSplit(m, labels, 0.2, 42)
	require.NoError(t, err)

	seen := map[int]bool{}
	for _, i := range split.TrainIdx {
		assert.False(t, seen[i])
		seen[i] = true
	}
	for _, i := range split.EvalIdx {
		assert.False(t, seen[i])
		seen[i] = true
	}
	assert.Len(t, seen, 100)
}

func TestTrainEvalSplit_EvalSize(t *testing.T) {
	for _, frac := range []float64{0.1, 0.2, 0.3, 0.5} {
		m, labels := testMatrix(t, 200)
		split, err := TrainEvalSplit(m, labels, frac, 42)
		require.NoError(t, err)

		want := math.Round(frac * 200)
		// Per-class rounding can drift by at most one row per class.
		assert.InDelta(t, want, float64(len(split.EvalIdx)), 2, "fraction %g", frac)
	}
}

func TestTrainEvalSplit_Reproducible(t *testing.T) {
	m, labels := testMatrix(t, 80)

	a, err := TrainEvalSplit(m, labels, 0.25, 7)
	require.NoError(t, err)
	b, err := TrainEvalSplit(m, labels, 0.25, 7)
	require.NoError(t, err)

	assert.Equal(t, a.TrainIdx, b.TrainIdx)
	assert.Equal(t, a.EvalIdx, b.EvalIdx)
	assert.Equal(t, a.EvalY, b.EvalY)
}

func TestTrainEvalSplit_DifferentSeedsDiffer(t *testing.T) {
	m, labels := testMatrix(t, 80)

	a, err := TrainEvalSplit(m, labels, 0.25, 1)
	require.NoError(t, err)
	b, err := TrainEvalSplit(m, labels, 0.25, 2)
	require.NoError(t, err)

	assert.NotEqual(t, a.EvalIdx, b.EvalIdx)
}

func TestTrainEvalSplit_Stratified(t *testing.T) {
	m, labels := testMatrix(t, 400) // 25% positive

	split, err := TrainEvalSplit(m, labels, 0.2, 42)
	require.NoError(t, err)

	evalPos := 0
	for _, y := range split.EvalY {
		evalPos += y
	}
	// Eval keeps the 25% positive share exactly under stratification.
	assert.Equal(t, 20, evalPos)
	assert.Len(t, split.EvalY, 80)
}

func TestTrainEvalSplit_InvalidFraction(t *testing.T) {
	m, labels := testMatrix(t, 10)

	for _, frac := range []float64{0, 1, -0.5, 1.5} {
		_, err := TrainEvalSplit(m, labels, frac, 42)
		var splitErr *InvalidSplitError
		require.ErrorAs(t, err, &splitErr, "fraction %g", frac)
	}
}

func TestTrainEvalSplit_EmptyPartition(t *testing.T) {
	// 3 rows at 1% eval: rounding leaves the eval partition empty.
	rows := [][]float64{{1}, {2}, {3}}
	m, err := NewMatrix([]string{"x"}, rows)
	require.NoError(t, err)

	_, err = TrainEvalSplit(m, []int{0, 1, 0}, 0.01, 42)
	var splitErr *InvalidSplitError
	require.ErrorAs(t, err, &splitErr)
	assert.Equal(t, 3, splitErr.Rows)
}
