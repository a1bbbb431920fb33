package dynamo

import (
	"fmt"
	"log/slog"
	"math"
)

// Observer receives every sample an integration run produces, including the
// initial one at step 0.
//
// x, v and a are the run's working buffers. They are only valid during the
// call and are overwritten by the next step; an observer that keeps a state
// must copy it.
type Observer interface {
	OnStep(step int, t float64, x, v, a []float64)
}

// Metric is an Observer that reduces a run to one number.
type Metric interface {
	Observer
	Name() string
	Value() float64
	Reset()
}

// Warnings collects non-fatal diagnostics for a result object.
type Warnings []string

func (w *Warnings) Addf(format string, args ...any) {
	*w = append(*w, fmt.Sprintf(format, args...))
}

// Finite reports whether every entry of v is neither NaN nor Inf.
func Finite(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// NopLogger returns a logger that drops every record.
func NopLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// Clone returns a copy of v.
func Clone(v []float64) []float64 {
	c := make([]float64, len(v))
	copy(c, v)
	return c
}
