package assembly

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/framedyn/internal/dynamo"
	"github.com/san-kum/framedyn/internal/structure"
)

// SolveStatic solves K·u = f for a reduced stiffness matrix.
func SolveStatic(k mat.Symmetric, f []float64) ([]float64, error) {
	n := k.SymmetricDim()
	if len(f) != n {
		return nil, dynamo.Shape("load", []int{len(f)}, []int{n})
	}

	var chol mat.Cholesky
	if !chol.Factorize(k) {
		return nil, fmt.Errorf("%w: stiffness matrix is not positive definite (unanchored structure?)", dynamo.ErrSingularSystem)
	}

	u := mat.NewVecDense(n, nil)
	if err := chol.SolveVecTo(u, mat.NewVecDense(n, dynamo.Clone(f))); err != nil {
		return nil, fmt.Errorf("%w: %v", dynamo.ErrSingularSystem, err)
	}
	return u.RawVector().Data, nil
}

// NodalLoad returns a reduced load vector with forces fx, fy and moment mz at
// node n. Components on fixed DOF are reactions and are dropped.
func NodalLoad(dofs *DOFMap, n structure.Node, fx, fy, mz float64) []float64 {
	f := make([]float64, dofs.NumFree())
	for i, v := range []float64{fx, fy, mz} {
		if r, ok := dofs.NodeDOF(n, structure.DOF(i)); ok {
			f[r] += v
		}
	}
	return f
}
