package integrators

import (
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/framedyn/internal/dynamo"
)

// Result holds the response series of a completed run, one row per DOF and
// one column per time sample.
type Result struct {
	Scheme      string
	Beta, Gamma float64
	Dt          float64

	Time         []float64
	Displacement *mat.Dense
	Velocity     *mat.Dense
	Acceleration *mat.Dense

	Warnings dynamo.Warnings
}

// Steps returns the number of time samples.
func (r *Result) Steps() int { return len(r.Time) }

// DOFs returns the number of degrees of freedom.
func (r *Result) DOFs() int {
	n, _ := r.Displacement.Dims()
	return n
}

// History returns the displacement, velocity and acceleration of one DOF over
// time.
func (r *Result) History(dof int) (x, v, a []float64) {
	return mat.Row(nil, dof, r.Displacement), mat.Row(nil, dof, r.Velocity), mat.Row(nil, dof, r.Acceleration)
}

// At returns the state at one time sample.
func (r *Result) At(step int) (x, v, a []float64) {
	return mat.Col(nil, step, r.Displacement), mat.Col(nil, step, r.Velocity), mat.Col(nil, step, r.Acceleration)
}
