package factory

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// simplexTol is the convergence tolerance handed to gonum's Simplex.
const simplexTol = 1e-10

// ineqRow is one "Ax <= b" constraint over the recipe variables, together
// with the hint reported when the optimum presses against it. Rows that
// never become hints carry an empty one.
type ineqRow struct {
	coeffs []float64
	bound  float64
	hint   string
}

// reduceRows removes linearly dependent rows from an equality block by
// Gaussian elimination with partial pivoting. Simplex requires a matrix of
// full row rank with no more rows than columns; redundant balance rows
// violate both. Mutates its arguments and returns the independent prefix.
// Reports ok=false when a dependent row carries a right-hand side the
// independent rows contradict, which makes the block unsatisfiable.
func reduceRows(a [][]float64, b []float64, tol float64) ([][]float64, []float64, bool) {
	if len(a) == 0 {
		return a, b, true
	}
	cols := len(a[0])

	r := 0
	for c := 0; c < cols && r < len(a); c++ {
		pivot := r
		for i := r + 1; i < len(a); i++ {
			if math.Abs(a[i][c]) > math.Abs(a[pivot][c]) {
				pivot = i
			}
		}
		if math.Abs(a[pivot][c]) <= tol {
			continue
		}
		a[r], a[pivot] = a[pivot], a[r]
		b[r], b[pivot] = b[pivot], b[r]

		for i := r + 1; i < len(a); i++ {
			if a[i][c] == 0 {
				continue
			}
			f := a[i][c] / a[r][c]
			for j := c + 1; j < cols; j++ {
				a[i][j] -= f * a[r][j]
			}
			a[i][c] = 0
			b[i] -= f * b[r]
		}
		r++
	}

	// Everything below the last pivot is numerically zero; a nonzero
	// right-hand side down there has no solution.
	for i := r; i < len(a); i++ {
		if math.Abs(b[i]) > tol {
			return nil, nil, false
		}
	}
	return a[:r], b[:r], true
}

// solveStandard minimizes cost over the equality rows, the inequality rows
// (each granted a slack variable), and x >= 0, returning the x-block of the
// optimum. All coefficient slices are nx wide. Columns no row touches are
// pinned to zero and bypass the solver; Simplex rejects all-zero columns.
func solveStandard(cost []float64, eqA [][]float64, eqB []float64, ineq []ineqRow, nx int) ([]float64, error) {
	full := make([]float64, nx)
	rows := len(eqA) + len(ineq)
	if rows == 0 {
		// Only phase 1 can drain every row, and its costs are
		// non-negative, so the zero assignment is optimal.
		return full, nil
	}

	kept := make([]int, 0, nx)
	for j := 0; j < nx; j++ {
		if columnUsed(j, eqA, ineq) {
			kept = append(kept, j)
		}
	}

	cols := len(kept) + len(ineq)
	c := make([]float64, cols)
	for k, j := range kept {
		c[k] = cost[j]
	}

	a := mat.NewDense(rows, cols, nil)
	b := make([]float64, rows)
	for i, row := range eqA {
		for k, j := range kept {
			a.Set(i, k, row[j])
		}
		b[i] = eqB[i]
	}
	for s, row := range ineq {
		i := len(eqA) + s
		for k, j := range kept {
			a.Set(i, k, row.coeffs[j])
		}
		a.Set(i, len(kept)+s, 1)
		b[i] = row.bound
	}

	_, optX, err := lp.Simplex(c, a, b, simplexTol, nil)
	if err != nil {
		return nil, err
	}
	for k, j := range kept {
		full[j] = optX[k]
	}
	return full, nil
}

func columnUsed(j int, eqA [][]float64, ineq []ineqRow) bool {
	for _, row := range eqA {
		if row[j] != 0 {
			return true
		}
	}
	for _, row := range ineq {
		if row.coeffs[j] != 0 {
			return true
		}
	}
	return false
}
