package beam

import (
	"errors"
	"fmt"
)

// Domain errors for equilibrium runs.
var (
	// ErrInvalidState indicates a seed with non-positive or non-finite values.
	ErrInvalidState = errors.New("beam: invalid state (non-positive, NaN or Inf)")

	// ErrNonPhysical indicates the integration produced a non-physical sample.
	ErrNonPhysical = errors.New("beam: non-physical beam size in trajectory")

	// ErrParameterBounds indicates a run parameter outside its valid range.
	ErrParameterBounds = errors.New("beam: parameter out of valid bounds")
)

// SimulationError wraps an error with the step it occurred at.
type SimulationError struct {
	Step    int
	Time    float64
	Point   Point
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4g s): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
