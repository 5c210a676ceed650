package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/san-kum/cuspsim/internal/dynamo"
	"github.com/san-kum/cuspsim/internal/field"
	"github.com/san-kum/cuspsim/internal/sim"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDt         = 2e-13
	DefaultSteps      = 100
	DefaultMicroSteps = 5000
	DefaultRadius     = 0.5
	DefaultHalfGap    = 0.5
	DefaultCurrent    = 1000.0
)

// Config is a complete scenario: coils, electrons and how to run them.
type Config struct {
	Name        string            `yaml:"name"`
	Integrator  string            `yaml:"integrator"`
	Evaluator   string            `yaml:"evaluator"`
	Dt          float64           `yaml:"dt"`
	Steps       int               `yaml:"steps"`
	MicroSteps  int               `yaml:"micro_steps"`
	Scale       float64           `yaml:"scale"`
	Coils       []field.Loop      `yaml:"coils"`
	Particles   []dynamo.Electron `yaml:"particles"`
	Confinement ConfinementConfig `yaml:"confinement"`
}

// ConfinementConfig bounds the cylinder used by the confinement metric.
type ConfinementConfig struct {
	Radius     float64 `yaml:"radius"`
	HalfLength float64 `yaml:"half_length"`
}

// DefaultConfig is the biconic cusp with a single near-axis electron.
func DefaultConfig() *Config {
	return &Config{
		Name:       "cusp",
		Integrator: "rk4",
		Evaluator:  field.Interpolated.String(),
		Dt:         DefaultDt,
		Steps:      DefaultSteps,
		MicroSteps: DefaultMicroSteps,
		Scale:      sim.DefaultScaleFactor,
		Coils:      field.Cusp(DefaultRadius, DefaultHalfGap, DefaultCurrent),
		Particles: []dynamo.Electron{
			electron(1e-4, 1e-4, -0.6, 0, 0, 1e3),
		},
		Confinement: ConfinementConfig{
			Radius:     DefaultRadius,
			HalfLength: 2 * DefaultHalfGap,
		},
	}
}

// Load reads a YAML scenario. Keys missing from the file keep their
// DefaultConfig values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// RunConfig returns the run parameters of the scenario.
func (c *Config) RunConfig() sim.RunConfig {
	return sim.RunConfig{
		Dt:         c.Dt,
		Steps:      c.Steps,
		MicroSteps: c.MicroSteps,
		Integrator: c.Integrator,
	}
}

// Validate reports every problem with the scenario at once.
func (c *Config) Validate() error {
	var errs []error

	if err := c.RunConfig().Validate(); err != nil {
		errs = append(errs, err)
	}
	if _, err := field.ParseEvaluator(c.Evaluator); err != nil {
		errs = append(errs, err)
	}
	if !(c.Scale > 0) {
		errs = append(errs, fmt.Errorf("scale %g: %w", c.Scale, dynamo.ErrParameterBounds))
	}
	if err := field.Coils(c.Coils).Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(c.Particles) == 0 {
		errs = append(errs, errors.New("scenario has no particles"))
	}
	for i, p := range c.Particles {
		if !p.IsValid() {
			errs = append(errs, fmt.Errorf("particle %d: %w", i, dynamo.ErrInvalidState))
		}
	}

	return errors.Join(errs...)
}

// Build constructs a ready-to-run simulation from the scenario.
func (c *Config) Build() (*sim.Simulation, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	ev, _ := field.ParseEvaluator(c.Evaluator)

	s := sim.New()
	if err := s.SetEvaluator(ev); err != nil {
		return nil, err
	}
	if err := s.Rescale(c.Scale); err != nil {
		return nil, err
	}
	for _, l := range c.Coils {
		if err := s.AddField(l); err != nil {
			return nil, err
		}
	}
	for _, p := range c.Particles {
		if err := s.AddParticle(p); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Coils = append([]field.Loop(nil), c.Coils...)
	out.Particles = append([]dynamo.Electron(nil), c.Particles...)
	return &out
}
