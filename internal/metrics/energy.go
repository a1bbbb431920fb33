package metrics

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// mechanical returns ½vᵗMv + ½xᵗKx.
func mechanical(k, m mat.Symmetric, x, v []float64) float64 {
	xv := mat.NewVecDense(len(x), x)
	vv := mat.NewVecDense(len(v), v)
	return 0.5*mat.Inner(vv, m, vv) + 0.5*mat.Inner(xv, k, xv)
}

// Energy is the mean total mechanical energy over a run.
type Energy struct {
	name        string
	k, m        mat.Symmetric
	samples     int
	totalEnergy float64
}

func NewEnergy(k, m mat.Symmetric) *Energy {
	return &Energy{
		name: "energy",
		k:    k,
		m:    m,
	}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) OnStep(step int, t float64, x, v, a []float64) {
	e.totalEnergy += mechanical(e.k, e.m, x, v)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// EnergyDrift is the largest relative change of the mechanical energy from
// its initial value. It stays near zero for undamped, unloaded runs with an
// energy-conserving scheme.
type EnergyDrift struct {
	name          string
	k, m          mat.Symmetric
	initialEnergy float64
	currentEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift(k, m mat.Symmetric) *EnergyDrift {
	return &EnergyDrift{
		name: "energy_drift",
		k:    k,
		m:    m,
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) OnStep(step int, t float64, x, v, a []float64) {
	energy := mechanical(e.k, e.m, x, v)

	if e.samples == 0 {
		e.initialEnergy = energy
	}

	e.currentEnergy = energy
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

// Current returns the energy of the latest sample.
func (e *EnergyDrift) Current() float64 {
	return e.currentEnergy
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.currentEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
