package loads

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/framedyn/internal/dynamo"
)

// Applied places a load on one reduced DOF. Several loads on the same DOF
// add up.
type Applied struct {
	DOF  int
	Load Load
}

// Linspace returns n evenly spaced samples from t0 to t1 inclusive.
func Linspace(t0, t1 float64, n int) ([]float64, error) {
	if n < 1 {
		return nil, dynamo.Invalid("time grid needs at least one sample, got %d", n)
	}
	if n == 1 {
		return []float64{t0}, nil
	}
	if !(t1 > t0) {
		return nil, dynamo.Invalid("time grid end %g must be after start %g", t1, t0)
	}
	return floats.Span(make([]float64, n), t0, t1), nil
}

// Grid returns the samples 0, dt, 2dt, ... up to duration.
func Grid(dt, duration float64) ([]float64, error) {
	if !(dt > 0) || !(duration >= 0) {
		return nil, dynamo.Invalid("time step %g and duration %g must be positive", dt, duration)
	}
	steps := int(duration/dt + 0.5)
	return Linspace(0, float64(steps)*dt, steps+1)
}

// Matrix samples the applied loads on the time grid into a dofs × len(time)
// matrix. A nil result means no loading.
func Matrix(dofs int, time []float64, applied ...Applied) (*mat.Dense, error) {
	if len(applied) == 0 {
		return nil, nil
	}
	if dofs < 1 || len(time) == 0 {
		return nil, dynamo.Shape("loads", []int{dofs, len(time)}, []int{max(dofs, 1), max(len(time), 1)})
	}

	f := mat.NewDense(dofs, len(time), nil)
	row := make([]float64, len(time))
	for _, a := range applied {
		if a.DOF < 0 || a.DOF >= dofs {
			return nil, dynamo.Invalid("load applied to DOF %d outside [0,%d)", a.DOF, dofs)
		}
		if a.Load == nil {
			return nil, dynamo.Invalid("nil load on DOF %d", a.DOF)
		}
		for j, t := range time {
			row[j] = a.Load.At(t)
		}
		if !dynamo.Finite(row) {
			return nil, dynamo.Invalid("load on DOF %d is not finite", a.DOF)
		}
		floats.Add(row, f.RawRowView(a.DOF))
		f.SetRow(a.DOF, row)
	}
	return f, nil
}

// Peak returns the largest absolute value of a load matrix.
func Peak(f mat.Matrix) float64 {
	if f == nil {
		return 0
	}
	r, _ := f.Dims()
	peak := 0.0
	for i := 0; i < r; i++ {
		row := mat.Row(nil, i, f)
		if len(row) == 0 {
			continue
		}
		peak = max(peak, floats.Max(row), -floats.Min(row))
	}
	return peak
}
