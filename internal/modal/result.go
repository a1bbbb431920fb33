package modal

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/framedyn/internal/dynamo"
)

// Result holds the modes of a system, ascending by angular frequency.
type Result struct {
	Omegas        []float64  // angular frequencies, rad per unit time
	Shapes        *mat.Dense // one mode shape per column
	Normalization Normalization
	Warnings      dynamo.Warnings
}

func (r *Result) NumModes() int { return len(r.Omegas) }

// Mode returns a copy of mode shape i.
func (r *Result) Mode(i int) []float64 {
	return mat.Col(nil, i, r.Shapes)
}

// Frequencies returns the eigenfrequencies in cycles per unit time.
func (r *Result) Frequencies() []float64 {
	out := make([]float64, len(r.Omegas))
	for i, w := range r.Omegas {
		out[i] = w / (2 * math.Pi)
	}
	return out
}

// Periods returns 2π/ω for every mode; rigid-body modes give +Inf.
func (r *Result) Periods() []float64 {
	out := make([]float64, len(r.Omegas))
	for i, w := range r.Omegas {
		out[i] = 2 * math.Pi / w
	}
	return out
}

// HighestOmega returns the largest angular frequency.
func (r *Result) HighestOmega() float64 {
	if len(r.Omegas) == 0 {
		return 0
	}
	return r.Omegas[len(r.Omegas)-1]
}

// DampingRatios returns the modal damping ratios of Rayleigh damping
// C = α·M + β·K: ζ = α/(2ω) + β·ω/2.
func (r *Result) DampingRatios(alpha, beta float64) []float64 {
	out := make([]float64, len(r.Omegas))
	for i, w := range r.Omegas {
		if w == 0 {
			out[i] = math.Inf(1)
			continue
		}
		out[i] = alpha/(2*w) + beta*w/2
	}
	return out
}

// Generalized returns Φᵗ·A·Φ for a system matrix A, e.g. the modal mass or
// modal stiffness.
func (r *Result) Generalized(a mat.Matrix) *mat.Dense {
	var tmp, out mat.Dense
	tmp.Mul(r.Shapes.T(), a)
	out.Mul(&tmp, r.Shapes)
	return &out
}
