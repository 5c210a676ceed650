package sim

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/cuspsim/internal/dynamo"
	"github.com/san-kum/cuspsim/internal/field"
	"github.com/san-kum/cuspsim/internal/integrators"
	"gonum.org/v1/gonum/spatial/r3"
)

// cuspSim is the biconic cusp of two 0.5 m loops one metre apart.
func cuspSim() *Simulation {
	s := New()
	for _, l := range field.Cusp(0.5, 0.5, 1000) {
		Expect(s.AddField(l)).To(Succeed())
	}
	Expect(s.AddParticle(dynamo.Electron{
		Position: r3.Vec{X: 1e-4, Y: 1e-4, Z: -0.6},
		Velocity: r3.Vec{Z: 1e3},
	})).To(Succeed())
	return s
}

type countingObserver struct{ steps []int }

func (c *countingObserver) OnSnapshot(s dynamo.Snapshot) { c.steps = append(c.steps, s.Step) }

var _ = Describe("Simulation", func() {
	var s *Simulation

	BeforeEach(func() {
		s = New()
	})

	Describe("defaults", func() {
		It("starts with electron constants and no state", func() {
			Expect(s.Mass()).To(Equal(ElectronMass))
			Expect(s.Charge()).To(Equal(ElectronCharge))
			Expect(s.ScaleFactor()).To(Equal(DefaultScaleFactor))
			Expect(s.Evaluator()).To(Equal(field.Tabulated))
			Expect(s.Fields()).To(BeEmpty())
			Expect(s.Particles()).To(BeEmpty())
			Expect(s.History()).To(BeEmpty())
		})
	})

	Describe("free motion", func() {
		It("moves in a straight line under Euler with no fields", func() {
			x0 := dynamo.Electron{
				Position: r3.Vec{X: 1, Y: -0.5, Z: 2},
				Velocity: r3.Vec{X: 4, Y: 0.25, Z: -8},
			}
			Expect(s.AddParticle(x0)).To(Succeed())

			dt, n := 0.125, 64
			for i := 0; i < n; i++ {
				Expect(s.TickEuler(dt)).To(Succeed())
			}

			got := s.Particles()[0]
			Expect(got.Position).To(Equal(r3.Add(x0.Position, r3.Scale(float64(n)*dt, x0.Velocity))))
			Expect(got.Velocity).To(Equal(x0.Velocity))
			Expect(s.Ticks()).To(Equal(n))
			Expect(s.Time()).To(Equal(float64(n) * dt))
		})

		It("feels no force travelling along the cusp axis", func() {
			for _, l := range field.Cusp(0.5, 0.5, 1000) {
				Expect(s.AddField(l)).To(Succeed())
			}
			Expect(s.AddParticle(dynamo.Electron{
				Position: r3.Vec{Z: -0.6},
				Velocity: r3.Vec{Z: 1e3},
			})).To(Succeed())

			for i := 0; i < 100; i++ {
				Expect(s.TickRK4(2e-13)).To(Succeed())
			}

			got := s.Particles()[0]
			Expect(got.Position.X).To(BeZero())
			Expect(got.Position.Y).To(BeZero())
			Expect(got.Position.Z).To(BeNumerically("~", -0.6+100*2e-13*1e3, 1e-13))
			Expect(got.Velocity).To(Equal(r3.Vec{Z: 1e3}))
		})
	})

	Describe("magnetic motion", func() {
		It("conserves speed in the cusp under RK4", func() {
			s = cuspSim()
			Expect(s.SetEvaluator(field.Exact)).To(Succeed())
			Expect(s.Rescale(DefaultScaleFactor)).To(Succeed())

			cfg := RunConfig{Dt: 2e-13, Steps: 10, MicroSteps: 200, Integrator: "rk4"}
			Expect(s.Run(cfg)).To(Succeed())

			Expect(s.History()).To(HaveLen(10))
			for _, snap := range s.History() {
				Expect(snap.Particles[0].Speed()).To(BeNumerically("~", 1e3, 1e-5))
			}
			Expect(s.Particles()[0].Position.Z).To(BeNumerically(">", -0.6))
		})

		It("agrees between RK4 and Boris over a short run", func() {
			rk := cuspSim()
			bo := cuspSim()
			for _, sim := range []*Simulation{rk, bo} {
				Expect(sim.SetEvaluator(field.Exact)).To(Succeed())
			}

			for i := 0; i < 2000; i++ {
				Expect(rk.Tick(integrators.NewRK4(), 2e-13)).To(Succeed())
				Expect(bo.Tick(integrators.NewBoris(), 2e-13)).To(Succeed())
			}

			d := r3.Norm(r3.Sub(rk.Particles()[0].Position, bo.Particles()[0].Position))
			Expect(d).To(BeNumerically("<", 1e-9))
		})

		It("computes the Lorentz acceleration from the net field", func() {
			s = cuspSim()
			e := s.Particles()[0]
			offset := r3.Vec{X: 0.01}

			b := s.Fields().Net(r3.Add(e.Position, offset))
			want := r3.Scale(ElectronCharge/ElectronMass, r3.Cross(e.Velocity, b))
			got := s.NetAccel(e, offset)

			Expect(r3.Norm(r3.Sub(got, want)) / r3.Norm(want)).To(BeNumerically("<", 1e-14))
		})
	})

	Describe("Rescale", func() {
		It("leaves the acceleration unchanged", func() {
			s = cuspSim()
			e := dynamo.Electron{Position: r3.Vec{X: 0.1, Y: -0.05, Z: -0.3}, Velocity: r3.Vec{X: 2e5, Z: 1e6}}
			before := s.NetAccel(e, r3.Vec{})

			Expect(s.Rescale(1e20)).To(Succeed())
			after := s.NetAccel(e, r3.Vec{})

			Expect(s.Mass()).To(BeNumerically("~", ElectronMass*1e20, 1e-24))
			Expect(s.Charge()).To(BeNumerically("~", ElectronCharge*1e20, 1e-12))
			Expect(s.ChargeToMass()).To(BeNumerically("~", ElectronCharge/ElectronMass, 1e-3))
			Expect(r3.Norm(r3.Sub(after, before)) / r3.Norm(before)).To(BeNumerically("<", 1e-14))
			Expect(s.Particles()[0].Position).To(Equal(r3.Vec{X: 1e-4, Y: 1e-4, Z: -0.6}))
		})

		It("may only be applied once", func() {
			Expect(s.Rescale(10)).To(Succeed())
			Expect(errors.Is(s.Rescale(10), dynamo.ErrRescaled)).To(BeTrue())
			Expect(s.Mass()).To(Equal(ElectronMass * 10))
		})

		It("is rejected after the first tick", func() {
			Expect(s.AddParticle(dynamo.Electron{})).To(Succeed())
			Expect(s.TickEuler(1e-12)).To(Succeed())
			Expect(errors.Is(s.Rescale(10), dynamo.ErrRunStarted)).To(BeTrue())
		})

		It("rejects non-positive factors", func() {
			for _, f := range []float64{0, -1, math.NaN(), math.Inf(1)} {
				Expect(errors.Is(s.Rescale(f), dynamo.ErrParameterBounds)).To(BeTrue())
			}
		})
	})

	Describe("setup", func() {
		It("rejects additions after the first tick", func() {
			Expect(s.AddParticle(dynamo.Electron{})).To(Succeed())
			Expect(s.TickEuler(1e-12)).To(Succeed())

			Expect(errors.Is(s.AddParticle(dynamo.Electron{}), dynamo.ErrRunStarted)).To(BeTrue())
			Expect(errors.Is(s.AddField(field.Loop{Radius: 1, Current: 1}), dynamo.ErrRunStarted)).To(BeTrue())
			Expect(errors.Is(s.SetEvaluator(field.Exact), dynamo.ErrRunStarted)).To(BeTrue())
		})

		It("rejects invalid fields and particles", func() {
			Expect(errors.Is(s.AddField(field.Loop{Radius: 0}), dynamo.ErrParameterBounds)).To(BeTrue())
			Expect(errors.Is(s.AddParticle(dynamo.Electron{Velocity: r3.Vec{X: math.NaN()}}), dynamo.ErrInvalidState)).To(BeTrue())
		})

		It("hands out copies of its coils and particles", func() {
			s = cuspSim()
			s.Fields()[0].Current = 0
			s.Particles()[0].Position.Z = 10

			Expect(s.Fields()[0].Current).To(Equal(1000.0))
			Expect(s.Particles()[0].Position.Z).To(Equal(-0.6))
		})

		It("rejects non-positive timesteps", func() {
			Expect(s.TickEuler(0)).NotTo(Succeed())
			Expect(s.TickRK4(-1)).NotTo(Succeed())
			Expect(s.Ticks()).To(BeZero())
		})
	})

	Describe("history", func() {
		It("records independent snapshots once per macro-step", func() {
			s = cuspSim()
			obs := &countingObserver{}
			s.AddObserver(obs)

			Expect(s.MacroStep(integrators.NewRK4(), 2e-13, 50)).To(Succeed())
			first := s.History()[0]
			recorded := first.Particles[0]

			Expect(s.MacroStep(integrators.NewRK4(), 2e-13, 50)).To(Succeed())
			Expect(s.MacroStep(integrators.NewRK4(), 2e-13, 50)).To(Succeed())

			history := s.History()
			Expect(history).To(HaveLen(3))
			Expect(history[0].Particles[0]).To(Equal(recorded))
			Expect(history[2].Particles[0]).To(Equal(s.Particles()[0]))
			Expect(history[2].Particles[0]).NotTo(Equal(recorded))
			Expect(history[1].Time).To(BeNumerically("~", 100*2e-13, 1e-22))
			Expect(obs.steps).To(Equal([]int{0, 1, 2}))
		})

		It("reserves capacity", func() {
			s.Reserve(128)
			Expect(cap(s.history)).To(BeNumerically(">=", 128))
			Expect(s.History()).To(BeEmpty())
		})
	})

	Describe("Run", func() {
		It("validates the config before touching state", func() {
			s = cuspSim()
			bad := []RunConfig{
				{Dt: 0, Steps: 1, MicroSteps: 1, Integrator: "rk4"},
				{Dt: 1e-13, Steps: 0, MicroSteps: 1, Integrator: "rk4"},
				{Dt: 1e-13, Steps: 1, MicroSteps: 0, Integrator: "rk4"},
				{Dt: 1e-13, Steps: 1, MicroSteps: 1, Integrator: "rk45"},
			}
			for _, cfg := range bad {
				Expect(s.Run(cfg)).NotTo(Succeed())
			}
			Expect(s.Ticks()).To(BeZero())
			Expect(s.History()).To(BeEmpty())
		})

		It("fails loudly when a particle reaches the wire", func() {
			Expect(s.AddField(field.Loop{Radius: 0.5, Current: 1000})).To(Succeed())
			moving := dynamo.Electron{Position: r3.Vec{Z: 0.2}, Velocity: r3.Vec{Z: 1e3}}
			Expect(s.AddParticle(moving)).To(Succeed())
			onWire := dynamo.Electron{Position: r3.Vec{X: 0.5}, Velocity: r3.Vec{Y: 1e3}}
			Expect(s.AddParticle(onWire)).To(Succeed())

			err := s.Run(RunConfig{Dt: 1e-13, Steps: 1, MicroSteps: 1, Integrator: "euler"})
			Expect(errors.Is(err, dynamo.ErrInvalidState)).To(BeTrue())

			var simErr *dynamo.SimulationError
			Expect(errors.As(err, &simErr)).To(BeTrue())
			Expect(simErr.Particle).To(Equal(1))
			Expect(s.Particles()[0]).To(Equal(moving))
			Expect(s.Particles()[1]).To(Equal(onWire))
			Expect(s.Ticks()).To(BeZero())
			Expect(s.Time()).To(BeZero())
			Expect(s.History()).To(BeEmpty())
		})

		It("leaves earlier particles untouched when a later one fails", func() {
			Expect(s.AddField(field.Loop{Radius: 0.5, Current: 1000})).To(Succeed())
			moving := dynamo.Electron{Position: r3.Vec{Z: 0.2}, Velocity: r3.Vec{Z: 1e3}}
			Expect(s.AddParticle(moving)).To(Succeed())
			Expect(s.AddParticle(dynamo.Electron{Position: r3.Vec{X: 0.5}})).To(Succeed())

			for i := 0; i < 3; i++ {
				Expect(s.TickEuler(1e-9)).NotTo(Succeed())
			}
			Expect(s.Particles()[0]).To(Equal(moving))
			Expect(s.Ticks()).To(BeZero())
		})
	})
})
