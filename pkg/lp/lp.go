// Package lp implements the incremental separation LP used by
// ContractingWorker: given a shortcut candidate's cost vector and a
// growing set of witness-path cost vectors, find a weighting under
// which none of the witnesses is cheaper than the candidate, or prove
// none exists.
package lp

import (
	"multich/pkg/costvec"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// SeparationLP is the incremental separation LP contract. One instance
// is owned by exactly one worker goroutine and reused across pairs;
// each pair begins with a Reset.
type SeparationLP interface {
	// Reset clears all accumulated constraint rows.
	Reset()
	// AddConstraint appends the row "row . w >= 0" to the program.
	AddConstraint(row costvec.CostVec)
	// Solve returns a feasible weighting in the simplex, or ok=false if
	// the current constraint set is infeasible.
	Solve() (w costvec.Weighting, ok bool)
	// VariableValues returns the last weighting returned by Solve.
	VariableValues() costvec.Weighting
}

// GonumSimplex backs SeparationLP with gonum's revised-simplex solver.
// The feasibility program
//
//	find w >= 0, sum(w) = 1, for every row r: r.w >= 0
//
// is encoded in gonum's required standard form (Ax = b, x >= 0) by
// introducing one non-negative slack variable per constraint row
// (r.w - s = 0) alongside the simplex row (sum(w) = 1), and minimizing
// the zero vector — any vertex gonum returns answers the feasibility
// question, since we only care whether one exists.
type GonumSimplex struct {
	rows []costvec.CostVec
	last costvec.Weighting
}

// NewGonumSimplex creates a SeparationLP backed by gonum.
func NewGonumSimplex() *GonumSimplex {
	return &GonumSimplex{}
}

// Reset clears accumulated constraint rows. The backing mat.Dense
// scratch buffer is reallocated per Solve call rather than pooled —
// gonum's Simplex takes ownership of the matrix it's given and mutates
// it internally, so pooling would require copying anyway.
func (g *GonumSimplex) Reset() {
	g.rows = g.rows[:0]
}

// AddConstraint appends a row.
func (g *GonumSimplex) AddConstraint(row costvec.CostVec) {
	g.rows = append(g.rows, row)
}

// Solve runs the simplex method and returns a feasible weighting, or
// ok=false if the LP is infeasible.
func (g *GonumSimplex) Solve() (costvec.Weighting, bool) {
	d := costvec.Dim()
	m := len(g.rows)
	n := d + m

	data := make([]float64, (1+m)*n)
	for i := 0; i < d; i++ {
		data[i] = 1
	}
	b := make([]float64, 1+m)
	b[0] = 1

	for j, row := range g.rows {
		off := (1 + j) * n
		for i := 0; i < d; i++ {
			data[off+i] = row.At(i)
		}
		data[off+d+j] = -1
		b[1+j] = 0
	}

	A := mat.NewDense(1+m, n, data)
	c := make([]float64, n) // zero objective: any feasible vertex decides the question

	const tol = 1e-10
	_, x, err := lp.Simplex(c, A, b, tol, nil)
	if err != nil {
		return costvec.Weighting{}, false
	}

	w := costvec.NewWeighting(x[:d])
	g.last = w
	return w, true
}

// VariableValues returns the last solution found by Solve.
func (g *GonumSimplex) VariableValues() costvec.Weighting {
	return g.last
}
