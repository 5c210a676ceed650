package experiment

import (
	"context"
	"fmt"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/san-kum/cuspsim/internal/config"
	"github.com/san-kum/cuspsim/internal/dynamo"
	"github.com/san-kum/cuspsim/internal/sim"
)

// Result is what a finished experiment hands back to the caller.
type Result struct {
	Scenario string
	Config   sim.RunConfig
	History  []dynamo.Snapshot
	Metrics  map[string]float64
	Elapsed  time.Duration
}

type Experiment struct {
	cfg       *config.Config
	logger    log.Logger
	simulator *sim.Simulation
}

func New(cfg *config.Config, logger log.Logger) *Experiment {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Experiment{
		cfg:    cfg,
		logger: log.With(logger, "component", "experiment", "scenario", cfg.Name, "integrator", cfg.Integrator),
	}
}

// Setup builds the simulation and attaches the registry's metrics.
func (e *Experiment) Setup(reg *Registry) error {
	s, err := e.cfg.Build()
	if err != nil {
		e.logger.Log("level", "error", "stage", "setup", "err", err)
		return fmt.Errorf("scenario %s: %w", e.cfg.Name, err)
	}
	for _, m := range reg.DefaultMetrics(e.cfg, s) {
		s.AddMetric(m)
	}
	s.AddObserver(newProgress(e.logger, e.cfg.Steps))

	e.simulator = s
	e.logger.Log("level", "info", "stage", "setup",
		"coils", len(s.Fields()), "particles", len(s.Particles()),
		"evaluator", s.Evaluator(), "scale", s.ScaleFactor())
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}

	runCfg := e.cfg.RunConfig()
	e.logger.Log("level", "info", "stage", "run", "dt", runCfg.Dt, "steps", runCfg.Steps,
		"micro", runCfg.MicroSteps, "duration", runCfg.Duration())

	start := time.Now()
	job := sim.Job{Name: e.cfg.Name, Sim: e.simulator, Config: runCfg}
	if err := sim.NewEnsemble(1).Run(ctx, []sim.Job{job}); err != nil {
		e.logger.Log("level", "error", "stage", "run", "ticks", e.simulator.Ticks(), "err", err)
		return nil, err
	}
	elapsed := time.Since(start)

	res := &Result{
		Scenario: e.cfg.Name,
		Config:   runCfg,
		History:  e.simulator.History(),
		Metrics:  e.simulator.Metrics(),
		Elapsed:  elapsed,
	}
	e.logger.Log("level", "info", "stage", "done", "elapsed", elapsed, "snapshots", len(res.History))
	return res, nil
}

// GetSimulator returns the underlying simulation for adding observers.
func (e *Experiment) GetSimulator() *sim.Simulation {
	return e.simulator
}

// progress logs every tenth of the run.
type progress struct {
	logger log.Logger
	every  int
}

func newProgress(logger log.Logger, steps int) *progress {
	every := steps / 10
	if every < 1 {
		every = 1
	}
	return &progress{logger: logger, every: every}
}

func (p *progress) OnSnapshot(s dynamo.Snapshot) {
	if (s.Step+1)%p.every != 0 {
		return
	}
	p.logger.Log("level", "debug", "stage", "progress", "step", s.Step+1, "t", s.Time)
}
