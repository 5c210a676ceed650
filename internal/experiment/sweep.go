package experiment

import (
	"context"
	"fmt"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/san-kum/cuspsim/internal/config"
	"github.com/san-kum/cuspsim/internal/sim"
)

// Sweep runs cfg once per integrator concurrently, at most limit at a time.
// Results are returned in the order of names.
func Sweep(ctx context.Context, cfg *config.Config, names []string, limit int, logger log.Logger) ([]*Result, error) {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	logger = log.With(logger, "component", "sweep", "scenario", cfg.Name)

	reg := NewRegistry()
	jobs := make([]sim.Job, len(names))
	for i, name := range names {
		c := cfg.Clone()
		c.Integrator = name

		s, err := c.Build()
		if err != nil {
			return nil, fmt.Errorf("sweep %s: %w", name, err)
		}
		for _, m := range reg.DefaultMetrics(c, s) {
			s.AddMetric(m)
		}
		jobs[i] = sim.Job{Name: name, Sim: s, Config: c.RunConfig()}
	}

	logger.Log("level", "info", "stage", "run", "jobs", len(jobs), "limit", limit)
	start := time.Now()
	if err := sim.NewEnsemble(limit).Run(ctx, jobs); err != nil {
		logger.Log("level", "error", "stage", "run", "err", err)
		return nil, err
	}
	elapsed := time.Since(start)

	results := make([]*Result, len(jobs))
	for i, job := range jobs {
		results[i] = &Result{
			Scenario: cfg.Name,
			Config:   job.Config,
			History:  job.Sim.History(),
			Metrics:  job.Sim.Metrics(),
			Elapsed:  elapsed,
		}
	}
	logger.Log("level", "info", "stage", "done", "elapsed", elapsed)
	return results, nil
}
