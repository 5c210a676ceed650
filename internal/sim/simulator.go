package sim

import (
	"fmt"
	"math"

	"github.com/san-kum/cuspsim/internal/dynamo"
	"github.com/san-kum/cuspsim/internal/field"
	"github.com/san-kum/cuspsim/internal/integrators"
	"gonum.org/v1/gonum/spatial/r3"
)

// Simulation owns a set of coils and the electrons moving through them.
// Coils and particles are added before the first tick; after that only the
// particle states change.
type Simulation struct {
	scaleFactor    float64
	electronMass   float64
	electronCharge float64
	evaluator      field.Evaluator

	fields    field.Coils
	particles []dynamo.Electron
	next      []dynamo.Electron
	history   []dynamo.Snapshot

	ticks    int
	time     float64
	rescaled bool

	metrics   []dynamo.Metric
	observers []dynamo.Observer
}

// New returns an empty simulation with the default electron constants.
func New() *Simulation {
	return &Simulation{
		scaleFactor:    DefaultScaleFactor,
		electronMass:   ElectronMass,
		electronCharge: ElectronCharge,
		evaluator:      field.Tabulated,
		fields:         make(field.Coils, 0),
		particles:      make([]dynamo.Electron, 0),
		history:        make([]dynamo.Snapshot, 0),
	}
}

func (s *Simulation) AddMetric(m dynamo.Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulation) AddObserver(o dynamo.Observer) { s.observers = append(s.observers, o) }

func (s *Simulation) started() bool { return s.ticks > 0 }

// AddField appends a coil. It fails once the simulation has ticked.
func (s *Simulation) AddField(l field.Loop) error {
	if s.started() {
		return fmt.Errorf("add field: %w", dynamo.ErrRunStarted)
	}
	if err := l.Validate(); err != nil {
		return fmt.Errorf("add field: %w", err)
	}
	s.fields = append(s.fields, l)
	return nil
}

// AddParticle appends an electron. It fails once the simulation has ticked.
func (s *Simulation) AddParticle(e dynamo.Electron) error {
	if s.started() {
		return fmt.Errorf("add particle: %w", dynamo.ErrRunStarted)
	}
	if !e.IsValid() {
		return fmt.Errorf("add particle: %w", dynamo.ErrInvalidState)
	}
	s.particles = append(s.particles, e)
	return nil
}

// SetEvaluator chooses how loops obtain K and E. It fails once the
// simulation has ticked.
func (s *Simulation) SetEvaluator(ev field.Evaluator) error {
	if s.started() {
		return fmt.Errorf("set evaluator: %w", dynamo.ErrRunStarted)
	}
	s.evaluator = ev
	return nil
}

// Rescale multiplies charge and mass by factor. The charge-to-mass ratio,
// and therefore every trajectory, is unchanged. It may be called once and
// only before the first tick.
func (s *Simulation) Rescale(factor float64) error {
	if s.started() {
		return fmt.Errorf("rescale: %w", dynamo.ErrRunStarted)
	}
	if s.rescaled {
		return fmt.Errorf("rescale: %w", dynamo.ErrRescaled)
	}
	if !(factor > 0) || math.IsInf(factor, 0) {
		return fmt.Errorf("rescale factor %g: %w", factor, dynamo.ErrParameterBounds)
	}

	s.scaleFactor = factor
	s.electronCharge *= factor
	s.electronMass *= factor
	s.rescaled = true
	return nil
}

func (s *Simulation) ScaleFactor() float64         { return s.scaleFactor }
func (s *Simulation) Mass() float64                { return s.electronMass }
func (s *Simulation) Charge() float64              { return s.electronCharge }
func (s *Simulation) Evaluator() field.Evaluator   { return s.evaluator }
func (s *Simulation) Ticks() int                   { return s.ticks }
func (s *Simulation) Time() float64                { return s.time }
func (s *Simulation) ChargeToMass() float64        { return s.electronCharge / s.electronMass }
func (s *Simulation) Field(pos r3.Vec) r3.Vec      { return s.fields.NetWith(pos, s.evaluator) }
func (s *Simulation) Accel(pos, vel r3.Vec) r3.Vec { return s.lorentz(s.Field(pos), vel) }

// NetAccel returns the acceleration of e evaluated at e.Position+offset.
func (s *Simulation) NetAccel(e dynamo.Electron, offset r3.Vec) r3.Vec {
	return s.Accel(r3.Add(e.Position, offset), e.Velocity)
}

// lorentz returns F/m with F = q v x B.
func (s *Simulation) lorentz(b, vel r3.Vec) r3.Vec {
	force := r3.Scale(s.electronCharge, r3.Cross(vel, b))
	return r3.Scale(1/s.electronMass, force)
}

// Fields returns a copy of the coils.
func (s *Simulation) Fields() field.Coils {
	c := make(field.Coils, len(s.fields))
	copy(c, s.fields)
	return c
}

// Particles returns a copy of the live particle states.
func (s *Simulation) Particles() []dynamo.Electron {
	c := make([]dynamo.Electron, len(s.particles))
	copy(c, s.particles)
	return c
}

// History returns the recorded snapshots in order. Snapshot particle slices
// are never written after recording and must be treated as read-only.
func (s *Simulation) History() []dynamo.Snapshot {
	c := make([]dynamo.Snapshot, len(s.history))
	copy(c, s.history)
	return c
}

// Reserve grows history capacity for n more snapshots.
func (s *Simulation) Reserve(n int) {
	if n <= 0 || cap(s.history)-len(s.history) >= n {
		return
	}
	grown := make([]dynamo.Snapshot, len(s.history), len(s.history)+n)
	copy(grown, s.history)
	s.history = grown
}

// Metrics returns the current value of every registered metric.
func (s *Simulation) Metrics() map[string]float64 {
	out := make(map[string]float64, len(s.metrics))
	for _, m := range s.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}

// Tick advances every particle by dt with integ.
//
// A particle whose new state is not finite aborts the tick with a
// *dynamo.SimulationError. New states are committed only when every particle
// is valid, so a failed tick leaves all particles, the clock and the tick
// count as they were.
func (s *Simulation) Tick(integ dynamo.Integrator, dt float64) error {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return fmt.Errorf("dt must be positive, got %g", dt)
	}

	if cap(s.next) < len(s.particles) {
		s.next = make([]dynamo.Electron, len(s.particles))
	}
	next := s.next[:len(s.particles)]
	for i, p := range s.particles {
		next[i] = integ.Step(s, p, dt)
		if !next[i].IsValid() {
			return &dynamo.SimulationError{
				Step:     s.ticks,
				Time:     s.time,
				Particle: i,
				State:    p,
				Wrapped:  dynamo.ErrInvalidState,
			}
		}
	}
	copy(s.particles, next)

	s.ticks++
	s.time += dt
	return nil
}

// TickEuler advances every particle by one explicit Euler step.
func (s *Simulation) TickEuler(dt float64) error {
	return s.Tick(integrators.NewEuler(), dt)
}

// TickRK4 advances every particle by one classical Runge-Kutta step.
func (s *Simulation) TickRK4(dt float64) error {
	return s.Tick(integrators.NewRK4(), dt)
}

// MacroStep runs micro ticks and records one snapshot.
func (s *Simulation) MacroStep(integ dynamo.Integrator, dt float64, micro int) error {
	if micro <= 0 {
		return fmt.Errorf("micro steps must be positive, got %d", micro)
	}
	for i := 0; i < micro; i++ {
		if err := s.Tick(integ, dt); err != nil {
			return err
		}
	}
	s.record()
	return nil
}

func (s *Simulation) record() {
	snap := dynamo.NewSnapshot(len(s.history), s.time, s.particles)
	s.history = append(s.history, snap)

	for _, m := range s.metrics {
		m.Observe(snap)
	}
	for _, o := range s.observers {
		o.OnSnapshot(snap)
	}
}

// Run executes cfg.Steps macro-steps. Metrics are reset first.
func (s *Simulation) Run(cfg RunConfig) error {
	return s.run(cfg, nil)
}

// run is Run with an optional check between macro-steps.
func (s *Simulation) run(cfg RunConfig, stop func() error) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	integ, err := integrators.Get(cfg.Integrator)
	if err != nil {
		return err
	}

	for _, m := range s.metrics {
		m.Reset()
	}
	s.Reserve(cfg.Steps)

	for i := 0; i < cfg.Steps; i++ {
		if stop != nil {
			if err := stop(); err != nil {
				return err
			}
		}
		if err := s.MacroStep(integ, cfg.Dt, cfg.MicroSteps); err != nil {
			return err
		}
	}
	return nil
}
