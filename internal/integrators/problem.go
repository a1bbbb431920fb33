package integrators

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/framedyn/internal/dynamo"
)

// Problem is one forced-response simulation on reduced system matrices.
type Problem struct {
	K, M mat.Matrix
	C    mat.Matrix // optional, zero when nil

	// Time is a uniform grid; the result has one column per sample.
	Time []float64

	// Loads has one row per DOF and one column per time sample. Nil means
	// no loading.
	Loads mat.Matrix

	X0, V0 []float64 // optional, zero when nil

	// HighestOmega, when set, is used to warn about a Δt above the stability
	// limit of conditionally stable schemes.
	HighestOmega float64
}

// timeGridTol is the relative tolerance on the spacing of the time grid.
const timeGridTol = 1e-6

func checkTimeGrid(t []float64) (float64, error) {
	if len(t) == 0 {
		return 0, dynamo.Shape("time", []int{0}, []int{1})
	}
	if !dynamo.Finite(t) {
		return 0, dynamo.Invalid("time grid contains non-finite values")
	}
	if len(t) == 1 {
		return 0, nil
	}

	dt := t[1] - t[0]
	if !(dt > 0) {
		return 0, dynamo.Invalid("time grid must be increasing, got Δt=%g", dt)
	}
	for i := 2; i < len(t); i++ {
		if math.Abs((t[i]-t[i-1])-dt) > timeGridTol*dt {
			return 0, dynamo.Invalid("time grid is not uniform at sample %d (Δt=%g, expected %g)", i, t[i]-t[i-1], dt)
		}
	}
	return dt, nil
}

func vectorOrZero(name string, v []float64, n int) (*mat.VecDense, error) {
	if v == nil {
		return mat.NewVecDense(n, nil), nil
	}
	if len(v) != n {
		return nil, dynamo.Shape(name, []int{len(v)}, []int{n})
	}
	return mat.NewVecDense(n, dynamo.Clone(v)), nil
}
