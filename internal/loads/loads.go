package loads

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/framedyn/internal/dynamo"
)

// Load is a force (or moment) history.
type Load interface {
	At(t float64) float64
}

// Func adapts a plain function to Load.
type Func func(t float64) float64

func (f Func) At(t float64) float64 { return f(t) }

type Constant struct {
	Value float64
}

func (c Constant) At(float64) float64 { return c.Value }

// Harmonic is Amplitude·sin(Omega·t + Phase), zero before Start.
type Harmonic struct {
	Amplitude float64
	Omega     float64
	Phase     float64
	Start     float64
}

func (h Harmonic) At(t float64) float64 {
	if t < h.Start {
		return 0
	}
	return h.Amplitude * math.Sin(h.Omega*(t-h.Start)+h.Phase)
}

// Step switches from zero to Value at Start.
type Step struct {
	Value float64
	Start float64
}

func (s Step) At(t float64) float64 {
	if t < s.Start {
		return 0
	}
	return s.Value
}

// Impulse is a rectangular pulse of height Value on [Start, Start+Duration).
type Impulse struct {
	Value    float64
	Start    float64
	Duration float64
}

func (p Impulse) At(t float64) float64 {
	if t < p.Start || t >= p.Start+p.Duration {
		return 0
	}
	return p.Value
}

// Ramp rises linearly from zero at Start to Value at Start+Duration and
// holds.
type Ramp struct {
	Value    float64
	Start    float64
	Duration float64
}

func (r Ramp) At(t float64) float64 {
	switch {
	case t <= r.Start:
		return 0
	case r.Duration <= 0 || t >= r.Start+r.Duration:
		return r.Value
	default:
		return r.Value * (t - r.Start) / r.Duration
	}
}

// Params describes a load by kind, as read from model files.
type Params struct {
	Kind      string
	Amplitude float64
	Omega     float64
	Phase     float64
	Start     float64
	Duration  float64
}

// Kinds lists the load kinds New accepts.
var Kinds = []string{"constant", "harmonic", "step", "impulse", "ramp"}

// New returns the load a Params describes.
func New(p Params) (Load, error) {
	if !dynamo.Finite([]float64{p.Amplitude, p.Omega, p.Phase, p.Start, p.Duration}) {
		return nil, dynamo.Invalid("load %q has non-finite parameters", p.Kind)
	}
	if p.Duration < 0 {
		return nil, dynamo.Invalid("load %q has negative duration %g", p.Kind, p.Duration)
	}

	switch strings.ToLower(p.Kind) {
	case "constant":
		return Constant{Value: p.Amplitude}, nil
	case "harmonic", "sine":
		return Harmonic{Amplitude: p.Amplitude, Omega: p.Omega, Phase: p.Phase, Start: p.Start}, nil
	case "step":
		return Step{Value: p.Amplitude, Start: p.Start}, nil
	case "impulse", "pulse":
		if p.Duration == 0 {
			return nil, dynamo.Invalid("impulse load needs a positive duration")
		}
		return Impulse{Value: p.Amplitude, Start: p.Start, Duration: p.Duration}, nil
	case "ramp":
		return Ramp{Value: p.Amplitude, Start: p.Start, Duration: p.Duration}, nil
	default:
		return nil, fmt.Errorf("%w: unknown load kind %q (want one of %s)", dynamo.ErrValidation, p.Kind, strings.Join(Kinds, ", "))
	}
}
