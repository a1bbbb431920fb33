package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Stability is the fraction of samples whose displacements all stay within
// threshold.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) OnStep(step int, t float64, x, v, a []float64) {
	s.samples++
	for _, val := range x {
		if !(math.Abs(val) <= s.threshold) {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}

// PeakDisplacement tracks the largest absolute displacement of any DOF.
type PeakDisplacement struct {
	name string
	peak float64
	dof  int
	step int
	time float64
}

func NewPeakDisplacement() *PeakDisplacement {
	return &PeakDisplacement{name: "peak_displacement", dof: -1}
}

func (p *PeakDisplacement) Name() string { return p.name }

func (p *PeakDisplacement) OnStep(step int, t float64, x, v, a []float64) {
	if len(x) == 0 {
		return
	}
	hi, lo := floats.MaxIdx(x), floats.MinIdx(x)
	i := hi
	if -x[lo] > x[hi] {
		i = lo
	}
	if abs := math.Abs(x[i]); abs > p.peak || p.dof < 0 {
		p.peak, p.dof, p.step, p.time = abs, i, step, t
	}
}

func (p *PeakDisplacement) Value() float64 { return p.peak }

// Where returns the DOF, step and time of the peak. dof is -1 before any
// sample.
func (p *PeakDisplacement) Where() (dof, step int, t float64) {
	return p.dof, p.step, p.time
}

func (p *PeakDisplacement) Reset() {
	p.peak, p.dof, p.step, p.time = 0, -1, 0, 0
}
