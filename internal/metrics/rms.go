package metrics

import (
	"fmt"
	"math"
)

// RMS is the root-mean-square displacement of one DOF.
type RMS struct {
	name    string
	dof     int
	sum     float64
	samples int
}

func NewRMS(dof int) *RMS {
	return &RMS{
		name: fmt.Sprintf("rms_dof_%d", dof),
		dof:  dof,
	}
}

func (r *RMS) Name() string {
	return r.name
}

func (r *RMS) OnStep(step int, t float64, x, v, a []float64) {
	if r.dof < 0 || r.dof >= len(x) {
		return
	}
	r.sum += x[r.dof] * x[r.dof]
	r.samples++
}

func (r *RMS) Value() float64 {
	if r.samples == 0 {
		return 0
	}
	return math.Sqrt(r.sum / float64(r.samples))
}

func (r *RMS) Reset() {
	r.sum = 0
	r.samples = 0
}
