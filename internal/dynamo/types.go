package dynamo

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Electron is a single test charge. It is a value type; copying an Electron
// copies its whole state.
type Electron struct {
	Position r3.Vec `json:"position" yaml:"position"`
	Velocity r3.Vec `json:"velocity" yaml:"velocity"`
}

// IsValid reports whether every component is finite.
func (e Electron) IsValid() bool {
	return finite(e.Position) && finite(e.Velocity)
}

// Speed returns |v|.
func (e Electron) Speed() float64 {
	return r3.Norm(e.Velocity)
}

// Radius returns the distance from the z axis.
func (e Electron) Radius() float64 {
	return math.Hypot(e.Position.X, e.Position.Y)
}

func finite(v r3.Vec) bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Dynamics returns the acceleration of a particle at pos moving with vel.
type Dynamics interface {
	Accel(pos, vel r3.Vec) r3.Vec
}

// MagneticDynamics is implemented by dynamics driven only by a magnetic
// field, so integrators can rotate velocity about B directly.
type MagneticDynamics interface {
	Dynamics
	Field(pos r3.Vec) r3.Vec
	ChargeToMass() float64
}

// Integrator advances e by dt under dyn and returns the new state.
type Integrator interface {
	Step(dyn Dynamics, e Electron, dt float64) Electron
}

// Snapshot is the full particle array recorded after a macro-step.
type Snapshot struct {
	Step      int        `json:"step"`
	Time      float64    `json:"time"`
	Particles []Electron `json:"particles"`
}

// NewSnapshot copies particles into a snapshot that shares no memory with
// the caller's slice.
func NewSnapshot(step int, t float64, particles []Electron) Snapshot {
	c := make([]Electron, len(particles))
	copy(c, particles)
	return Snapshot{Step: step, Time: t, Particles: c}
}

// Observer receives every recorded snapshot.
type Observer interface {
	OnSnapshot(s Snapshot)
}

// Metric accumulates a scalar diagnostic over recorded snapshots.
type Metric interface {
	Name() string
	Observe(s Snapshot)
	Value() float64
	Reset()
}
