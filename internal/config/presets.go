package config

import (
	"sort"

	"github.com/san-kum/cuspsim/internal/dynamo"
	"github.com/san-kum/cuspsim/internal/field"
	"github.com/san-kum/cuspsim/internal/sim"
	"gonum.org/v1/gonum/spatial/r3"
)

func electron(x, y, z, vx, vy, vz float64) dynamo.Electron {
	return dynamo.Electron{
		Position: r3.Vec{X: x, Y: y, Z: z},
		Velocity: r3.Vec{X: vx, Y: vy, Z: vz},
	}
}

var Presets = map[string]*Config{
	"cusp": DefaultConfig(),
	"mirror": {
		Name: "mirror", Integrator: "boris", Evaluator: "interpolated",
		Dt: 2e-13, Steps: 200, MicroSteps: 2000, Scale: sim.DefaultScaleFactor,
		Coils: field.Mirror(0.5, 0.5, 1000),
		Particles: []dynamo.Electron{
			electron(0.02, 0, 0, 0, 2e5, 5e4),
			electron(0, 0.05, 0.1, 1e5, 0, -1e5),
		},
		Confinement: ConfinementConfig{Radius: 0.5, HalfLength: 0.5},
	},
	"loop": {
		Name: "loop", Integrator: "rk4", Evaluator: "table",
		Dt: 2e-13, Steps: 100, MicroSteps: 1000, Scale: sim.DefaultScaleFactor,
		Coils: field.Coils{{Radius: 0.5, Current: 1000}},
		Particles: []dynamo.Electron{
			electron(0.1, 0, -0.3, 0, 1e4, 1e5),
		},
		Confinement: ConfinementConfig{Radius: 0.5, HalfLength: 1},
	},
	// Helmholtz pair: nearly uniform field at the centre.
	"uniform-gyration": {
		Name: "uniform-gyration", Integrator: "rk4", Evaluator: "exact",
		Dt: 2e-13, Steps: 1000, MicroSteps: 500, Scale: sim.DefaultScaleFactor,
		Coils: field.Mirror(0.5, 0.25, 1000),
		Particles: []dynamo.Electron{
			electron(1e-3, 0, 0, 0, 1e5, 0),
		},
		Confinement: ConfinementConfig{Radius: 0.01, HalfLength: 0.01},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
