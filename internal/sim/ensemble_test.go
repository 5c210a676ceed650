package sim

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/cuspsim/internal/dynamo"
	"github.com/san-kum/cuspsim/internal/field"
	"gonum.org/v1/gonum/spatial/r3"
)

var _ = Describe("Ensemble", func() {
	cfg := RunConfig{Dt: 2e-13, Steps: 4, MicroSteps: 25, Integrator: "rk4"}

	seeded := func(i int) *Simulation {
		s := cuspSim()
		Expect(s.AddParticle(dynamo.Electron{
			Position: r3.Vec{X: 0.01 * float64(i), Z: -0.55},
			Velocity: r3.Vec{Y: 1e4, Z: 1e5},
		})).To(Succeed())
		return s
	}

	It("matches serial runs", func() {
		const n = 8
		jobs := make([]Job, n)
		for i := range jobs {
			jobs[i] = Job{Name: "j", Sim: seeded(i), Config: cfg}
		}

		Expect(NewEnsemble(3).Run(context.Background(), jobs)).To(Succeed())

		for i, job := range jobs {
			serial := seeded(i)
			Expect(serial.Run(cfg)).To(Succeed())
			Expect(job.Sim.Particles()).To(Equal(serial.Particles()))
			Expect(job.Sim.History()).To(HaveLen(cfg.Steps))
		}
	})

	It("reports the failing job", func() {
		bad := New()
		Expect(bad.AddField(field.Loop{Radius: 0.5, Current: 1000})).To(Succeed())
		Expect(bad.AddParticle(dynamo.Electron{Position: r3.Vec{X: 0.5}, Velocity: r3.Vec{Y: 1}})).To(Succeed())

		jobs := []Job{
			{Name: "good", Sim: seeded(1), Config: cfg},
			{Name: "wire", Sim: bad, Config: cfg},
		}
		err := NewEnsemble(0).Run(context.Background(), jobs)
		Expect(errors.Is(err, dynamo.ErrInvalidState)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("job wire"))
	})

	It("stops on a cancelled context", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		s := seeded(0)
		err := NewEnsemble(1).Run(ctx, []Job{{Name: "c", Sim: s, Config: cfg}})
		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
		Expect(s.Ticks()).To(BeZero())
	})
})
