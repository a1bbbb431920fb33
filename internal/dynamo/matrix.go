package dynamo

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// DefaultSymmetryTol is the relative tolerance used by AsSymmetric.
const DefaultSymmetryTol = 1e-9

// AsSymmetric checks that m is square and symmetric to a relative tolerance
// and returns it as a SymDense. Symmetric inputs are copied without a check.
func AsSymmetric(name string, m mat.Matrix, tol float64) (*mat.SymDense, error) {
	if s, ok := m.(mat.Symmetric); ok {
		n := s.SymmetricDim()
		out := mat.NewSymDense(n, nil)
		out.CopySym(s)
		return out, nil
	}

	r, c := m.Dims()
	if r != c {
		return nil, Shape(name, []int{r, c}, []int{r, r})
	}

	scale := 0.0
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			scale = math.Max(scale, math.Abs(m.At(i, j)))
		}
	}

	out := mat.NewSymDense(r, nil)
	for i := 0; i < r; i++ {
		for j := i; j < r; j++ {
			a, b := m.At(i, j), m.At(j, i)
			if math.Abs(a-b) > tol*scale {
				return nil, fmt.Errorf("%w: %s not symmetric at (%d,%d): %g != %g", ErrNonPhysical, name, i, j, a, b)
			}
			out.SetSym(i, j, 0.5*(a+b))
		}
	}
	return out, nil
}

// Dim returns the order of a square matrix, or -1 when m is nil.
func Dim(m mat.Matrix) int {
	if m == nil {
		return -1
	}
	r, _ := m.Dims()
	return r
}
