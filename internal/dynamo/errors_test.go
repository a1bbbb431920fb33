package dynamo

import (
	"errors"
	"math"
	"sync/atomic"
	"testing"
)

func TestShapeErrorUnwrap(t *testing.T) {
	err := Shape("loads", []int{2, 5}, []int{2, 6})

	if !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("expected ErrShapeMismatch, got %v", err)
	}

	var se *ShapeError
	if !errors.As(err, &se) {
		t.Fatal("expected *ShapeError")
	}
	if se.Got[1] != 5 || se.Want[1] != 6 {
		t.Errorf("unexpected shapes: got %v want %v", se.Got, se.Want)
	}
}

func TestStepErrorUnwrap(t *testing.T) {
	err := &StepError{Step: 3, Time: 0.3, Wrapped: ErrUnstable}
	if !errors.Is(err, ErrUnstable) {
		t.Errorf("expected ErrUnstable, got %v", err)
	}
}

func TestInvalid(t *testing.T) {
	err := Invalid("element %d has zero length", 4)
	if !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestFinite(t *testing.T) {
	tests := []struct {
		name string
		v    []float64
		want bool
	}{
		{"empty", nil, true},
		{"finite", []float64{1, -2, 3}, true},
		{"nan", []float64{1, math.NaN()}, false},
		{"inf", []float64{math.Inf(-1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Finite(tt.v); got != tt.want {
				t.Errorf("Finite(%v) = %v, want %v", tt.v, got, tt.want)
			}
		})
	}
}

func TestWarnings(t *testing.T) {
	var w Warnings
	w.Addf("dt %.2f too large", 0.5)
	if len(w) != 1 || w[0] != "dt 0.50 too large" {
		t.Errorf("unexpected warnings %v", w)
	}
}

func TestParallelForCoversRange(t *testing.T) {
	for _, workers := range []int{1, 2, 4, 7} {
		var sum atomic.Int64
		ParallelFor(100, workers, 3, func(_, start, end int) {
			for i := start; i < end; i++ {
				sum.Add(int64(i))
			}
		})
		if sum.Load() != 4950 {
			t.Errorf("workers=%d: expected sum 4950, got %d", workers, sum.Load())
		}
	}
}
