package chainbinom

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Domain errors for chain binomial simulation.
var (
	// ErrDimensionMismatch indicates incompatible shapes between state,
	// stoichiometry, update or hazard output.
	ErrDimensionMismatch = errors.New("chainbinom: dimension mismatch")

	// ErrInvalidHazard indicates a hazard function returned negative or
	// non-finite rates, or a source index outside the compartments.
	ErrInvalidHazard = errors.New("chainbinom: invalid hazard output")

	// ErrInvalidState indicates negative, fractional or non-finite counts.
	ErrInvalidState = errors.New("chainbinom: invalid state")

	// ErrInvalidStoichiometry indicates non-integer stoichiometry entries.
	ErrInvalidStoichiometry = errors.New("chainbinom: invalid stoichiometry")

	// ErrInvalidTimeStep indicates a non-positive or non-finite time step.
	ErrInvalidTimeStep = errors.New("chainbinom: time step must be positive")

	// ErrInvalidTimeRange indicates a non-finite start or end time.
	ErrInvalidTimeRange = errors.New("chainbinom: invalid time range")
)

// SimulationError wraps a failure raised while advancing from a recorded step.
type SimulationError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}

func dimErr(what string, m mat.Matrix, want string) error {
	r, c := m.Dims()
	return fmt.Errorf("%w: %s is %dx%d, want %s", ErrDimensionMismatch, what, r, c, want)
}
