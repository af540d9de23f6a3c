// Package dataset holds the numeric feature matrix and the train/eval
// splitter used by the churn pipeline.
package dataset

import "github.com/rotisserie/eris"

// Matrix is a numeric feature matrix with a fixed column order. Rows are
// never mutated after construction.
type Matrix struct {
	Features []string
	Rows     [][]float64
}

// NewMatrix validates row widths against the feature list.
func NewMatrix(features []string, rows [][]float64) (*Matrix, error) {
	for i, r := range rows {
		if len(r) != len(features) {
			return nil, eris.Errorf("dataset: row %d has %d values, want %d", i, len(r), len(features))
		}
	}
	return &Matrix{Features: features, Rows: rows}, nil
}

// Select returns a new Matrix sharing the rows at the given indices.
func (m *Matrix) Select(idx []int) *Matrix {
	rows := make([][]float64, len(idx))
	for i, j := range idx {
		rows[i] = m.Rows[j]
	}
	return &Matrix{Features: m.Features, Rows: rows}
}

// Len returns the number of rows.
func (m *Matrix) Len() int { return len(m.Rows) }
