// Package dynamo provides the primitives shared by the framedyn solver
// packages.
//
// The package defines:
//
//   - the error taxonomy ([ErrValidation], [ErrDegenerateModel],
//     [ErrNonPhysical], [ErrSingularSystem], [ErrShapeMismatch]) and the
//     context-carrying wrappers [ShapeError] and [StepError]
//   - the [Observer] and [Metric] interfaces used by integration runs
//   - [Warnings], the diagnostic sink carried by result objects
//   - [ParallelFor], a chunked worker helper
//
// # Errors
//
// Every solver error wraps one sentinel:
//
//	if errors.Is(err, dynamo.ErrShapeMismatch) {
//	    var se *dynamo.ShapeError
//	    errors.As(err, &se)
//	}
package dynamo
