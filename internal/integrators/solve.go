package integrators

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/framedyn/internal/dynamo"
)

// maxCondition is the largest condition number accepted for an LU factor.
const maxCondition = 1e15

// epsilon is the spacing of float64 values at 1.
const epsilon = 0x1p-52

// roundoffFactor multiplies n·ε·scale to give the smallest acceptable
// singular value estimate of a factorized matrix.
const roundoffFactor = 32

type linearSolver func(dst *mat.VecDense, b mat.Vector) error

// factorize prepares repeated solves with a symmetric matrix: Cholesky when
// it is positive definite, LU otherwise.
//
// scale is the magnitude of the terms a was summed from. When the terms
// cancel, a can be well conditioned and still be round-off, so a smallest
// singular value estimate below roundoffFactor·n·ε·scale is rejected as
// singular. A zero scale disables that check.
func factorize(name string, a *mat.SymDense, scale float64) (linearSolver, error) {
	var (
		solve linearSolver
		cond  float64
	)
	var chol mat.Cholesky
	if chol.Factorize(a) {
		cond = chol.Cond()
		solve = func(dst *mat.VecDense, b mat.Vector) error {
			return chol.SolveVecTo(dst, b)
		}
	} else {
		var lu mat.LU
		lu.Factorize(a)
		cond = lu.Cond()
		if math.IsInf(cond, 1) || math.IsNaN(cond) || cond > maxCondition {
			return nil, fmt.Errorf("%w: %s is singular (condition number %g)", dynamo.ErrSingularSystem, name, cond)
		}
		solve = func(dst *mat.VecDense, b mat.Vector) error {
			return lu.SolveVecTo(dst, false, b)
		}
	}

	if scale > 0 {
		n := a.SymmetricDim()
		smallest := mat.Norm(a, 1) / cond
		if tol := roundoffFactor * float64(n) * epsilon * scale; !(smallest >= tol) {
			return nil, fmt.Errorf("%w: %s cancels to round-off (smallest singular value ~%g against term scale %g)",
				dynamo.ErrSingularSystem, name, smallest, scale)
		}
	}
	return solve, nil
}
