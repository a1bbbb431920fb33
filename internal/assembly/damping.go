package assembly

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/framedyn/internal/dynamo"
)

// Rayleigh returns C = α·M + β·K.
func Rayleigh(m, k mat.Symmetric, alpha, beta float64) (*mat.SymDense, error) {
	if m.SymmetricDim() != k.SymmetricDim() {
		return nil, dynamo.Shape("stiffness", []int{k.SymmetricDim(), k.SymmetricDim()}, []int{m.SymmetricDim(), m.SymmetricDim()})
	}

	var am, bk mat.SymDense
	am.ScaleSym(alpha, m)
	bk.ScaleSym(beta, k)

	c := mat.NewSymDense(m.SymmetricDim(), nil)
	c.AddSym(&am, &bk)
	return c, nil
}

// RayleighFromRatios returns the α and β that give damping ratio ζ1 at ω1 and
// ζ2 at ω2, from ζ(ω) = α/(2ω) + βω/2.
func RayleighFromRatios(omega1, omega2, zeta1, zeta2 float64) (alpha, beta float64, err error) {
	if !(omega1 > 0) || !(omega2 > 0) {
		return 0, 0, dynamo.Invalid("rayleigh frequencies must be positive, got %g and %g", omega1, omega2)
	}
	if math.Abs(omega1-omega2) <= 1e-12*math.Max(omega1, omega2) {
		return 0, 0, fmt.Errorf("%w: rayleigh frequencies must differ, got %g twice", dynamo.ErrValidation, omega1)
	}

	d := omega2*omega2 - omega1*omega1
	alpha = 2 * omega1 * omega2 * (zeta1*omega2 - zeta2*omega1) / d
	beta = 2 * (zeta2*omega2 - zeta1*omega1) / d
	return alpha, beta, nil
}
