// Package dynamo provides the shared primitives of the particle engine.
//
// The package defines the types every other layer agrees on:
//
//   - [Electron]: position and velocity of one test charge
//   - [Dynamics]: acceleration as a function of position and velocity
//   - [MagneticDynamics]: dynamics that can also report the magnetic field
//   - [Integrator]: advances one electron by a fixed timestep
//
// # Example
//
//	s := sim.New()
//	s.AddField(loop)
//	s.AddParticle(dynamo.Electron{Velocity: r3.Vec{Z: 1e3}})
//	err := s.TickRK4(2e-13)
//
// # Thread Safety
//
// Values in this package are plain data. A Simulation that implements
// Dynamics is owned by a single goroutine; see sim.Ensemble for concurrent
// runs.
package dynamo
