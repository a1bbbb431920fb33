package assembly

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/framedyn/internal/dynamo"
)

// Reduce deletes the rows and columns of the fixed DOF of m. A matrix that is
// already of reduced order is returned as an equal copy, so reducing twice is
// the same as reducing once.
func Reduce(m mat.Symmetric, dofs *DOFMap) (*mat.SymDense, error) {
	if dofs.NumFree() == 0 {
		return nil, fmt.Errorf("%w: no free DOF", dynamo.ErrDegenerateModel)
	}

	n := m.SymmetricDim()
	free := dofs.free
	switch n {
	case len(free):
		out := mat.NewSymDense(n, nil)
		out.CopySym(m)
		return out, nil
	case dofs.Total():
	default:
		return nil, dynamo.Shape("matrix", []int{n, n}, []int{dofs.Total(), dofs.Total()})
	}

	out := mat.NewSymDense(len(free), nil)
	for i, I := range free {
		for j := i; j < len(free); j++ {
			out.SetSym(i, j, m.At(I, free[j]))
		}
	}
	return out, nil
}

// ReduceVector drops the fixed entries of a full-length vector.
func ReduceVector(v []float64, dofs *DOFMap) ([]float64, error) {
	switch len(v) {
	case dofs.NumFree():
		return dynamo.Clone(v), nil
	case dofs.Total():
	default:
		return nil, dynamo.Shape("vector", []int{len(v)}, []int{dofs.Total()})
	}

	out := make([]float64, len(dofs.free))
	for i, I := range dofs.free {
		out[i] = v[I]
	}
	return out, nil
}

// Expand maps a reduced vector to full length with zeros at fixed DOF.
func Expand(v []float64, dofs *DOFMap) ([]float64, error) {
	if len(v) != dofs.NumFree() {
		return nil, dynamo.Shape("vector", []int{len(v)}, []int{dofs.NumFree()})
	}
	out := make([]float64, dofs.Total())
	for i, I := range dofs.free {
		out[I] = v[i]
	}
	return out, nil
}
