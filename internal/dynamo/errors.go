package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidState indicates a particle state containing NaN or Inf.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrRunStarted indicates a setup operation attempted after the first tick.
	ErrRunStarted = errors.New("dynamo: simulation already started")

	// ErrRescaled indicates a second call to Rescale.
	ErrRescaled = errors.New("dynamo: simulation already rescaled")

	// ErrUnknownIntegrator indicates an integrator name with no registration.
	ErrUnknownIntegrator = errors.New("dynamo: unknown integrator")
)

// SimulationError wraps an error with the tick and particle that produced it.
type SimulationError struct {
	Step     int
	Time     float64
	Particle int
	State    Electron
	Wrapped  error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4e) particle %d: %v", e.Step, e.Time, e.Particle, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
