package sim

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Job pairs a simulation with the config it runs.
type Job struct {
	Name   string
	Sim    *Simulation
	Config RunConfig
}

// Ensemble runs independent simulations concurrently. Each simulation is
// touched by exactly one goroutine; the lookup table is the only shared
// state.
type Ensemble struct {
	limit int
}

// NewEnsemble returns an ensemble running at most limit simulations at once.
// A non-positive limit means no limit.
func NewEnsemble(limit int) *Ensemble {
	return &Ensemble{limit: limit}
}

// Run executes every job. The first failure cancels the rest; cancellation
// is observed between macro-steps.
func (e *Ensemble) Run(ctx context.Context, jobs []Job) error {
	g, ctx := errgroup.WithContext(ctx)
	if e.limit > 0 {
		g.SetLimit(e.limit)
	}

	for _, job := range jobs {
		g.Go(func() error {
			if err := job.Sim.run(job.Config, ctx.Err); err != nil {
				return fmt.Errorf("job %s: %w", job.Name, err)
			}
			return nil
		})
	}

	return g.Wait()
}
