package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for model building and solving. Every error returned by the
// solver packages wraps exactly one of these, so callers match with errors.Is.
var (
	// ErrValidation indicates malformed model geometry or parameters, e.g. a
	// zero-length element.
	ErrValidation = errors.New("dynamo: invalid model")

	// ErrDegenerateModel indicates a model with no free DOF or with free DOF
	// that no element connects.
	ErrDegenerateModel = errors.New("dynamo: degenerate model")

	// ErrNonPhysical indicates assembled matrices that fail the symmetry or
	// definiteness checks.
	ErrNonPhysical = errors.New("dynamo: non-physical system matrices")

	// ErrSingularSystem indicates a linear system that cannot be solved.
	ErrSingularSystem = errors.New("dynamo: singular system")

	// ErrShapeMismatch indicates caller supplied arrays inconsistent with the
	// model's DOF count or time grid.
	ErrShapeMismatch = errors.New("dynamo: shape mismatch")

	// ErrUnstable indicates the integration produced a non-finite state.
	ErrUnstable = errors.New("dynamo: integration unstable (state diverged)")

	// ErrRunComplete indicates a step was requested after the last sample.
	ErrRunComplete = errors.New("dynamo: integration already complete")
)

// ShapeError reports the offending shapes of a ShapeMismatch.
type ShapeError struct {
	What string
	Got  []int
	Want []int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: %s has shape %v, want %v", ErrShapeMismatch, e.What, e.Got, e.Want)
}

func (e *ShapeError) Unwrap() error {
	return ErrShapeMismatch
}

// Shape returns a ShapeError for the named array.
func Shape(what string, got, want []int) error {
	return &ShapeError{What: what, Got: got, Want: want}
}

// StepError wraps an error with integration context.
type StepError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.6g): %v", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}

// Invalid wraps ErrValidation with a formatted detail.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
