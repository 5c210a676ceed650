package integrators

import (
	"github.com/san-kum/cuspsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// Boris is the rotation pusher for charged particles in a magnetic field, in
// its synchronised drift-rotate-drift form. The rotation preserves |v|
// exactly. Dynamics that do not expose a magnetic field are advanced with
// kick-drift-kick leapfrog instead.
type Boris struct{}

func NewBoris() *Boris {
	return &Boris{}
}

func (b *Boris) Step(dyn dynamo.Dynamics, x dynamo.Electron, dt float64) dynamo.Electron {
	mag, ok := dyn.(dynamo.MagneticDynamics)
	if !ok {
		return leapfrog(dyn, x, dt)
	}

	h := 0.5 * dt
	mid := r3.Add(x.Position, r3.Scale(h, x.Velocity))

	t := r3.Scale(mag.ChargeToMass()*h, mag.Field(mid))
	s := r3.Scale(2/(1+r3.Dot(t, t)), t)

	v := x.Velocity
	vPrime := r3.Add(v, r3.Cross(v, t))
	vNew := r3.Add(v, r3.Cross(vPrime, s))

	return dynamo.Electron{
		Position: r3.Add(mid, r3.Scale(h, vNew)),
		Velocity: vNew,
	}
}

func leapfrog(dyn dynamo.Dynamics, x dynamo.Electron, dt float64) dynamo.Electron {
	h := 0.5 * dt

	vHalf := r3.Add(x.Velocity, r3.Scale(h, dyn.Accel(x.Position, x.Velocity)))
	pos := r3.Add(x.Position, r3.Scale(dt, vHalf))
	vel := r3.Add(vHalf, r3.Scale(h, dyn.Accel(pos, vHalf)))

	return dynamo.Electron{Position: pos, Velocity: vel}
}
