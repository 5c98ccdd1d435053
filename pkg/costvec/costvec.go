// Package costvec implements fixed-arity non-negative cost vector
// arithmetic used throughout the multi-criteria contraction engine.
package costvec

import "fmt"

// dim is the process-wide number of criteria. Set once via SetDim before
// any CostVec is constructed; reading it is safe from multiple goroutines
// once set, since LevelDriver publishes the graph (and therefore the
// dimension) before any worker starts.
var dim int

// SetDim fixes the process-wide dimension D. It must be called exactly
// once, before any CostVec is built, and panics on a second call with a
// different value.
func SetDim(d int) {
	if d <= 0 {
		panic("costvec: dimension must be positive")
	}
	if dim != 0 && dim != d {
		panic(fmt.Sprintf("costvec: dimension already set to %d, cannot change to %d", dim, d))
	}
	dim = d
}

// Dim returns the process-wide dimension. Panics if SetDim was never called.
func Dim() int {
	if dim == 0 {
		panic("costvec: dimension not set, call SetDim first")
	}
	return dim
}

// CostVec is a D-dimensional vector of non-negative reals.
type CostVec struct {
	v []float64
}

// Zero returns the zero vector of the process-wide dimension.
func Zero() CostVec {
	return CostVec{v: make([]float64, Dim())}
}

// New builds a CostVec from literal values. Panics if len(values) != Dim().
func New(values ...float64) CostVec {
	if len(values) != Dim() {
		panic(fmt.Sprintf("costvec: expected %d values, got %d", Dim(), len(values)))
	}
	v := make([]float64, len(values))
	copy(v, values)
	return CostVec{v: v}
}

// At returns the i-th component.
func (c CostVec) At(i int) float64 { return c.v[i] }

// Len returns the number of components (equal to Dim()).
func (c CostVec) Len() int { return len(c.v) }

// Add returns the componentwise sum c+other.
func (c CostVec) Add(other CostVec) CostVec {
	out := make([]float64, len(c.v))
	for i := range c.v {
		out[i] = c.v[i] + other.v[i]
	}
	return CostVec{v: out}
}

// Sub returns the componentwise difference c-other.
func (c CostVec) Sub(other CostVec) CostVec {
	out := make([]float64, len(c.v))
	for i := range c.v {
		out[i] = c.v[i] - other.v[i]
	}
	return CostVec{v: out}
}

// Dot returns the scalar projection of c onto weighting w.
func (c CostVec) Dot(w Weighting) float64 {
	var sum float64
	for i := range c.v {
		sum += c.v[i] * w.v[i]
	}
	return sum
}

// Equal reports componentwise exact equality.
func (c CostVec) Equal(other CostVec) bool {
	for i := range c.v {
		if c.v[i] != other.v[i] {
			return false
		}
	}
	return true
}

// EqualEps reports componentwise equality within absolute tolerance eps.
func (c CostVec) EqualEps(other CostVec, eps float64) bool {
	for i := range c.v {
		d := c.v[i] - other.v[i]
		if d > eps || d < -eps {
			return false
		}
	}
	return true
}

// Less reports lexicographic ordering, used to sort CostVec sets for
// deduplication.
func (c CostVec) Less(other CostVec) bool {
	for i := range c.v {
		if c.v[i] != other.v[i] {
			return c.v[i] < other.v[i]
		}
	}
	return false
}

// Dominates reports whether c weakly dominates other componentwise
// (c[i] <= other[i] for all i) and strictly in at least one component.
// Callers evaluate this with c as a witness path cost and other as the
// shortcut candidate cost.
func (c CostVec) Dominates(other CostVec) bool {
	strict := false
	for i := range c.v {
		if c.v[i] > other.v[i] {
			return false
		}
		if c.v[i] != other.v[i] {
			strict = true
		}
	}
	return strict
}

// Values returns a copy of the underlying slice, for callers (LP rows,
// serialization) that need a plain []float64.
func (c CostVec) Values() []float64 {
	out := make([]float64, len(c.v))
	copy(out, c.v)
	return out
}

// Weighting is a probability vector in R^D: non-negative, summing to 1.
type Weighting struct {
	v []float64
}

// UniformWeighting returns the weighting (1/D, ..., 1/D).
func UniformWeighting() Weighting {
	d := Dim()
	v := make([]float64, d)
	for i := range v {
		v[i] = 1.0 / float64(d)
	}
	return Weighting{v: v}
}

// AxisWeighting returns the unit weighting e_i (1 at component i, 0 elsewhere).
func AxisWeighting(i int) Weighting {
	v := make([]float64, Dim())
	v[i] = 1
	return Weighting{v: v}
}

// NewWeighting builds a Weighting from raw values without normalizing.
// Callers (the LP solver) are responsible for producing a valid simplex
// point; this constructor only fixes the slice length.
func NewWeighting(values []float64) Weighting {
	if len(values) != Dim() {
		panic(fmt.Sprintf("costvec: expected %d weighting values, got %d", Dim(), len(values)))
	}
	v := make([]float64, len(values))
	copy(v, values)
	return Weighting{v: v}
}

// At returns the i-th component.
func (w Weighting) At(i int) float64 { return w.v[i] }

// Equal reports exact bit-for-bit equality, used for the LP fixed-point test.
func (w Weighting) Equal(other Weighting) bool {
	for i := range w.v {
		if w.v[i] != other.v[i] {
			return false
		}
	}
	return true
}

// Values returns a copy of the underlying slice.
func (w Weighting) Values() []float64 {
	out := make([]float64, len(w.v))
	copy(out, w.v)
	return out
}
