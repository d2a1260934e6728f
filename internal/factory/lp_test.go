package factory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

func TestReduceRows_KeepsIndependent(t *testing.T) {
	a := [][]float64{{2, 1}, {1, 3}}
	b := []float64{4, 7}

	kept, keptB, ok := reduceRows(a, b, 1e-9)

	require.True(t, ok)
	assert.Len(t, kept, 2)
	assert.Len(t, keptB, 2)
}

func TestReduceRows_DropsDependent(t *testing.T) {
	// The second row doubles the first; the third is independent.
	a := [][]float64{{1, 2}, {2, 4}, {0, 1}}
	b := []float64{3, 6, 1}

	kept, keptB, ok := reduceRows(a, b, 1e-9)

	require.True(t, ok)
	assert.Len(t, kept, 2)
	assert.Len(t, keptB, 2)
}

func TestReduceRows_Inconsistent(t *testing.T) {
	// Same left-hand sides, different right-hand sides.
	a := [][]float64{{1, 2}, {2, 4}}
	b := []float64{3, 7}

	_, _, ok := reduceRows(a, b, 1e-9)

	assert.False(t, ok)
}

func TestReduceRows_DropsZeroRows(t *testing.T) {
	a := [][]float64{{0, 0}, {3, 1}}
	b := []float64{0, 6}

	kept, keptB, ok := reduceRows(a, b, 1e-9)

	require.True(t, ok)
	require.Len(t, kept, 1)
	assert.Equal(t, []float64{3, 1}, kept[0])
	assert.Equal(t, []float64{6}, keptB)
}

func TestReduceRows_ZeroRowNonzeroRHS(t *testing.T) {
	a := [][]float64{{0, 0}}
	b := []float64{5}

	_, _, ok := reduceRows(a, b, 1e-9)

	assert.False(t, ok)
}

func TestReduceRows_Empty(t *testing.T) {
	kept, keptB, ok := reduceRows(nil, nil, 1e-9)

	require.True(t, ok)
	assert.Empty(t, kept)
	assert.Empty(t, keptB)
}

func TestSolveStandard_Equality(t *testing.T) {
	x, err := solveStandard(
		[]float64{1},
		[][]float64{{2}}, []float64{4},
		nil, 1,
	)

	require.NoError(t, err)
	assert.InDelta(t, 2, x[0], 1e-9)
}

func TestSolveStandard_PinsUntouchedColumns(t *testing.T) {
	x, err := solveStandard(
		[]float64{1, 5},
		[][]float64{{2, 0}}, []float64{4},
		nil, 2,
	)

	require.NoError(t, err)
	assert.InDelta(t, 2, x[0], 1e-9)
	assert.Zero(t, x[1])
}

func TestSolveStandard_SlackRows(t *testing.T) {
	ineq := []ineqRow{{coeffs: []float64{1}, bound: 5}}

	// Minimizing leaves the bound slack, maximizing saturates it.
	x, err := solveStandard([]float64{1}, nil, nil, ineq, 1)
	require.NoError(t, err)
	assert.InDelta(t, 0, x[0], 1e-9)

	x, err = solveStandard([]float64{-1}, nil, nil, ineq, 1)
	require.NoError(t, err)
	assert.InDelta(t, 5, x[0], 1e-9)
}

func TestSolveStandard_NoRows(t *testing.T) {
	x, err := solveStandard([]float64{1, 1}, nil, nil, nil, 2)

	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0}, x)
}

func TestSolveStandard_Infeasible(t *testing.T) {
	_, err := solveStandard(
		[]float64{1},
		[][]float64{{1}}, []float64{-3},
		nil, 1,
	)

	assert.ErrorIs(t, err, lp.ErrInfeasible)
}
