package dataset

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// DefaultEvalFraction is the evaluation share used when the caller does not
// override it.
const DefaultEvalFraction = 0.2

// DefaultSeed is the fixed seed used for reproducible splits by default.
const DefaultSeed = 42

// InvalidSplitError reports a split configuration that would leave either
// partition empty.
type InvalidSplitError struct {
	Fraction float64
	Rows     int
}

func (e *InvalidSplitError) Error() string {
	return fmt.Sprintf("dataset: eval fraction %g of %d rows leaves an empty partition", e.Fraction, e.Rows)
}

// SplitResult holds the train/eval partitions and the source indices that
// produced them. TrainIdx and EvalIdx are disjoint and together cover every
// row of the input exactly once.
type SplitResult struct {
	TrainX   *Matrix
	TrainY   []int
	EvalX    *Matrix
	EvalY    []int
	TrainIdx []int
	EvalIdx  []int
}

// TrainEvalSplit partitions the matrix and labels into training and
// evaluation subsets, stratified by label so each class keeps its proportion
// in both subsets. The partition is a pure function of (labels, fraction,
// seed): the same inputs always produce the same index sets.
func TrainEvalSplit(m *Matrix, labels []int, fraction float64, seed int64) (*SplitResult, error) {
	n := m.Len()
	if len(labels) != n {
		return nil, fmt.Errorf("dataset: %d rows but %d labels", n, len(labels))
	}
	if fraction <= 0 || fraction >= 1 {
		return nil, &InvalidSplitError{Fraction: fraction, Rows: n}
	}

	// Group row indices per class, in ascending order for determinism.
	byClass := map[int][]int{}
	for i, y := range labels {
		byClass[y] = append(byClass[y], i)
	}
	classes := make([]int, 0, len(byClass))
	for c := range byClass {
		classes = append(classes, c)
	}
	sort.Ints(classes)

	rnd := rand.New(rand.NewSource(seed))

	var trainIdx, evalIdx []int
	for _, c := range classes {
		idx := byClass[c]
		rnd.Shuffle(len(idx), func(a, b int) { idx[a], idx[b] = idx[b], idx[a] })

		nEval := int(math.Round(fraction * float64(len(idx))))
		evalIdx = append(evalIdx, idx[:nEval]...)
		trainIdx = append(trainIdx, idx[nEval:]...)
	}

	if len(evalIdx) == 0 || len(trainIdx) == 0 {
		return nil, &InvalidSplitError{Fraction: fraction, Rows: n}
	}

	sort.Ints(trainIdx)
	sort.Ints(evalIdx)

	return &SplitResult{
		TrainX:   m.Select(trainIdx),
		TrainY:   selectInts(labels, trainIdx),
		EvalX:    m.Select(evalIdx),
		EvalY:    selectInts(labels, evalIdx),
		TrainIdx: trainIdx,
		EvalIdx:  evalIdx,
	}, nil
}

func selectInts(v []int, idx []int) []int {
	out := make([]int, len(idx))
	for i, j := range idx {
		out[i] = v[j]
	}
	return out
}
