package integrators

import (
	"github.com/san-kum/cuspsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// Euler is the explicit first-order method. Position advances with the
// velocity from the start of the step.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(dyn dynamo.Dynamics, x dynamo.Electron, dt float64) dynamo.Electron {
	a := dyn.Accel(x.Position, x.Velocity)
	return dynamo.Electron{
		Position: r3.Add(x.Position, r3.Scale(dt, x.Velocity)),
		Velocity: r3.Add(x.Velocity, r3.Scale(dt, a)),
	}
}
