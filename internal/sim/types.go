package sim

import (
	"fmt"
	"math"

	"github.com/san-kum/cuspsim/internal/integrators"
)

// Physical defaults in SI units.
const (
	ElectronMass       = 9.10938291e-31
	ElectronCharge     = 1.6021766208e-19
	DefaultScaleFactor = 1e20
)

// RunConfig describes a sequence of macro-steps. Each macro-step runs
// MicroSteps ticks of Dt and then records one snapshot.
type RunConfig struct {
	Dt         float64
	Steps      int
	MicroSteps int
	Integrator string
}

func DefaultRunConfig() RunConfig {
	return RunConfig{
		Dt:         2e-13,
		Steps:      100,
		MicroSteps: 5000,
		Integrator: "rk4",
	}
}

// Validate rejects configs that cannot run.
func (c RunConfig) Validate() error {
	if !(c.Dt > 0) || math.IsInf(c.Dt, 0) {
		return fmt.Errorf("dt must be positive, got %g", c.Dt)
	}
	if c.Steps <= 0 {
		return fmt.Errorf("steps must be positive, got %d", c.Steps)
	}
	if c.MicroSteps <= 0 {
		return fmt.Errorf("micro steps must be positive, got %d", c.MicroSteps)
	}
	if _, err := integrators.Get(c.Integrator); err != nil {
		return err
	}
	return nil
}

// Duration is the simulated time covered by the config.
func (c RunConfig) Duration() float64 {
	return c.Dt * float64(c.Steps) * float64(c.MicroSteps)
}
