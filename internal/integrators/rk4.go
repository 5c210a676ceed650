package integrators

import (
	"github.com/san-kum/cuspsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// RK4 integrates the coupled system dp/dt = v, dv/dt = a(p, v) with the
// classical fourth-order Runge-Kutta scheme. Every stage perturbs position
// and velocity together from the previous stage's slopes.
type RK4 struct{}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Step(dyn dynamo.Dynamics, x dynamo.Electron, dt float64) dynamo.Electron {
	p, v := x.Position, x.Velocity
	h := 0.5 * dt

	k1p := v
	k1v := dyn.Accel(p, v)

	k2p := r3.Add(v, r3.Scale(h, k1v))
	k2v := dyn.Accel(r3.Add(p, r3.Scale(h, k1p)), k2p)

	k3p := r3.Add(v, r3.Scale(h, k2v))
	k3v := dyn.Accel(r3.Add(p, r3.Scale(h, k2p)), k3p)

	k4p := r3.Add(v, r3.Scale(dt, k3v))
	k4v := dyn.Accel(r3.Add(p, r3.Scale(dt, k3p)), k4p)

	dt6 := dt / 6.0
	return dynamo.Electron{
		Position: r3.Add(p, r3.Scale(dt6, weigh(k1p, k2p, k3p, k4p))),
		Velocity: r3.Add(v, r3.Scale(dt6, weigh(k1v, k2v, k3v, k4v))),
	}
}

// weigh returns k1 + 2*k2 + 2*k3 + k4.
func weigh(k1, k2, k3, k4 r3.Vec) r3.Vec {
	return r3.Add(r3.Add(k1, k4), r3.Scale(2, r3.Add(k2, k3)))
}
