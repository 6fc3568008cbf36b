package dtm

import (
	"fmt"
	"slices"
	"sort"

	"gonum.org/v1/gonum/mat"

	apperrors "github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/pkg/errors"
)

// Triple is one (row, column, value) contribution to a matrix. Triples with
// the same row and column are summed on assembly.
type Triple struct {
	Row   int
	Col   int
	Value int32
}

// Matrix is an immutable sparse count matrix in compressed sparse row form.
// Column indices are strictly increasing within each row and every stored
// value is non-zero. Matrix satisfies gonum's mat.Matrix interface.
type Matrix struct {
	rows, cols int
	indptr     []int
	indices    []int
	data       []int32
}

var _ mat.Matrix = (*Matrix)(nil)

// FromTriples assembles a rows×cols matrix from triples given in any order.
// It panics if a triple lies outside the matrix.
func FromTriples(rows, cols int, triples []Triple) *Matrix {
	type entry struct {
		col int
		val int32
	}

	start := make([]int, rows+1)
	for _, t := range triples {
		if t.Row < 0 || t.Row >= rows || t.Col < 0 || t.Col >= cols {
			panic(fmt.Errorf("%w: triple (%d, %d) outside %dx%d matrix",
				apperrors.ErrDimensionMismatch, t.Row, t.Col, rows, cols))
		}
		start[t.Row+1]++
	}
	for r := 0; r < rows; r++ {
		start[r+1] += start[r]
	}

	entries := make([]entry, len(triples))
	next := slices.Clone(start[:rows])
	for _, t := range triples {
		entries[next[t.Row]] = entry{col: t.Col, val: t.Value}
		next[t.Row]++
	}

	m := &Matrix{
		rows:    rows,
		cols:    cols,
		indptr:  make([]int, rows+1),
		indices: make([]int, 0, len(triples)),
		data:    make([]int32, 0, len(triples)),
	}
	for r := 0; r < rows; r++ {
		seg := entries[start[r]:start[r+1]]
		slices.SortFunc(seg, func(a, b entry) int { return a.col - b.col })
		for i := 0; i < len(seg); {
			col, sum := seg[i].col, int32(0)
			for ; i < len(seg) && seg[i].col == col; i++ {
				sum += seg[i].val
			}
			if sum != 0 {
				m.indices = append(m.indices, col)
				m.data = append(m.data, sum)
			}
		}
		m.indptr[r+1] = len(m.indices)
	}
	return m
}

// Dims returns the number of documents and vocabulary tokens.
func (m *Matrix) Dims() (r, c int) {
	return m.rows, m.cols
}

// At returns the count stored at row i, column j.
func (m *Matrix) At(i, j int) float64 {
	if i < 0 || i >= m.rows || j < 0 || j >= m.cols {
		panic(mat.ErrIndexOutOfRange)
	}
	cols := m.indices[m.indptr[i]:m.indptr[i+1]]
	k := sort.SearchInts(cols, j)
	if k < len(cols) && cols[k] == j {
		return float64(m.data[m.indptr[i]+k])
	}
	return 0
}

// T returns the implicit transpose of the matrix.
func (m *Matrix) T() mat.Matrix {
	return mat.Transpose{Matrix: m}
}

// NNZ returns the number of stored entries.
func (m *Matrix) NNZ() int {
	return len(m.data)
}

// Row returns the column indices and counts of row i. The slices alias the
// matrix storage and must not be modified.
func (m *Matrix) Row(i int) ([]int, []int32) {
	lo, hi := m.indptr[i], m.indptr[i+1]
	return m.indices[lo:hi], m.data[lo:hi]
}

// MulVec returns M·v for a binary column vector v, one value per row. A
// vector whose length differs from the column count is an invariant
// violation and panics.
func (m *Matrix) MulVec(v []uint8) []int {
	if len(v) != m.cols {
		panic(fmt.Errorf("%w: matrix has %d columns, vector has %d entries",
			apperrors.ErrDimensionMismatch, m.cols, len(v)))
	}
	out := make([]int, m.rows)
	for r := 0; r < m.rows; r++ {
		sum := 0
		for k := m.indptr[r]; k < m.indptr[r+1]; k++ {
			if v[m.indices[k]] != 0 {
				sum += int(m.data[k])
			}
		}
		out[r] = sum
	}
	return out
}

// ColumnSums returns the total count of every column across all rows.
func (m *Matrix) ColumnSums() []int64 {
	sums := make([]int64, m.cols)
	for k, col := range m.indices {
		sums[col] += int64(m.data[k])
	}
	return sums
}
