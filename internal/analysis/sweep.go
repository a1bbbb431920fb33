package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/framedyn/internal/dynamo"
	"github.com/san-kum/framedyn/internal/integrators"
	"github.com/san-kum/framedyn/internal/loads"
)

// SweepPoint is the steady-state response amplitude at one forcing
// frequency.
type SweepPoint struct {
	Omega     float64
	Amplitude float64
}

// Sweep describes a harmonic frequency sweep on reduced system matrices.
type Sweep struct {
	K, M, C mat.Matrix

	// Scheme must not carry observers; runs share it across goroutines.
	Scheme *integrators.Newmark
	Time   []float64

	LoadDOF     int
	ResponseDOF int
	Force       float64

	// Transient is the leading fraction of samples ignored when measuring
	// the amplitude.
	Transient float64
}

// FrequencySweep drives LoadDOF with Force·sin(ωt) for each omega and records
// the peak |x| of ResponseDOF after the transient. Runs are spread over
// workers goroutines.
func FrequencySweep(s Sweep, omegas []float64, workers int) ([]SweepPoint, error) {
	if s.Scheme == nil {
		s.Scheme = integrators.AverageAcceleration()
	}
	if s.Transient < 0 || s.Transient >= 1 {
		return nil, dynamo.Invalid("transient fraction %g outside [0,1)", s.Transient)
	}
	if len(s.Time) < 2 {
		return nil, dynamo.Invalid("sweep needs at least two time samples")
	}
	if s.K == nil {
		return nil, dynamo.Invalid("sweep needs a stiffness matrix")
	}
	n, _ := s.K.Dims()
	if s.ResponseDOF < 0 || s.ResponseDOF >= n {
		return nil, dynamo.Invalid("response DOF %d outside [0,%d)", s.ResponseDOF, n)
	}

	skip := int(s.Transient * float64(len(s.Time)))
	points := make([]SweepPoint, len(omegas))
	errs := make([]error, len(omegas))

	dynamo.ParallelFor(len(omegas), workers, 1, func(_, start, end int) {
		for i := start; i < end; i++ {
			f, err := loads.Matrix(n, s.Time, loads.Applied{
				DOF:  s.LoadDOF,
				Load: loads.Harmonic{Amplitude: s.Force, Omega: omegas[i]},
			})
			if err != nil {
				errs[i] = err
				continue
			}
			res, err := s.Scheme.Integrate(integrators.Problem{K: s.K, M: s.M, C: s.C, Time: s.Time, Loads: f})
			if err != nil {
				errs[i] = fmt.Errorf("omega %g: %w", omegas[i], err)
				continue
			}
			x, _, _ := res.History(s.ResponseDOF)
			tail := x[skip:]
			points[i] = SweepPoint{
				Omega:     omegas[i],
				Amplitude: math.Max(floats.Max(tail), -floats.Min(tail)),
			}
		}
	})

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return points, nil
}

// Resonance returns the sweep point with the largest amplitude.
func Resonance(points []SweepPoint) (SweepPoint, bool) {
	if len(points) == 0 {
		return SweepPoint{}, false
	}
	best := points[0]
	for _, p := range points[1:] {
		if p.Amplitude > best.Amplitude {
			best = p
		}
	}
	return best, true
}
