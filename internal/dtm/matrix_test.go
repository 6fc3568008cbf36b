package dtm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestFromTriplesSumsDuplicates(t *testing.T) {
	m := FromTriples(3, 4, []Triple{
		{Row: 2, Col: 1, Value: 1},
		{Row: 0, Col: 3, Value: 1},
		{Row: 0, Col: 0, Value: 2},
		{Row: 2, Col: 1, Value: 1},
		{Row: 0, Col: 3, Value: 1},
	})

	r, c := m.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 4, c)
	assert.Equal(t, 3, m.NNZ())

	want := mat.NewDense(3, 4, []float64{
		2, 0, 0, 2,
		0, 0, 0, 0,
		0, 2, 0, 0,
	})
	assert.True(t, mat.Equal(want, m), "got\n%v", mat.Formatted(m))
	assert.True(t, mat.Equal(want.T(), m.T()))

	cols, vals := m.Row(0)
	assert.Equal(t, []int{0, 3}, cols)
	assert.Equal(t, []int32{2, 2}, vals)
	cols, _ = m.Row(1)
	assert.Empty(t, cols)
}

func TestFromTriplesOutOfRangePanics(t *testing.T) {
	assert.Panics(t, func() { FromTriples(2, 2, []Triple{{Row: 2, Col: 0, Value: 1}}) })
	assert.Panics(t, func() { FromTriples(2, 2, []Triple{{Row: 0, Col: -1, Value: 1}}) })
}

func TestAtOutOfRangePanics(t *testing.T) {
	m := FromTriples(1, 1, nil)
	assert.Equal(t, 0.0, m.At(0, 0))
	assert.Panics(t, func() { m.At(1, 0) })
}

func TestMulVecMatchesDenseProduct(t *testing.T) {
	triples := []Triple{
		{0, 0, 1}, {0, 2, 3}, {1, 1, 1}, {1, 2, 1}, {3, 0, 2}, {3, 3, 5},
	}
	m := FromTriples(4, 4, triples)
	e := []uint8{1, 0, 1, 0}

	got := m.MulVec(e)

	var want mat.VecDense
	want.MulVec(mat.DenseCopyOf(m), mat.NewVecDense(4, []float64{1, 0, 1, 0}))
	require.Equal(t, 4, want.Len())
	for i, v := range got {
		assert.Equal(t, int(want.AtVec(i)), v, "row %d", i)
	}
	assert.Equal(t, []int{4, 1, 0, 2}, got)
}

func TestMulVecDimensionMismatchPanics(t *testing.T) {
	m := FromTriples(2, 3, nil)
	assert.Panics(t, func() { m.MulVec([]uint8{1, 0}) })
}

func TestColumnSums(t *testing.T) {
	m := FromTriples(2, 3, []Triple{{0, 0, 1}, {1, 0, 2}, {1, 2, 4}})
	assert.Equal(t, []int64{3, 0, 4}, m.ColumnSums())
}
