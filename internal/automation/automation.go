// Package automation runs batches of perturbed scenarios.
package automation

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/san-kum/cuspsim/internal/config"
	"github.com/san-kum/cuspsim/internal/dynamo"
	"github.com/san-kum/cuspsim/internal/metrics"
	"github.com/san-kum/cuspsim/internal/sim"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"
)

// MonteCarloConfig perturbs every particle of Base uniformly by up to
// PositionJitter metres per axis and VelocityJitter as a fraction of its
// speed per axis.
type MonteCarloConfig struct {
	Base           *config.Config
	NumTrials      int
	PositionJitter float64
	VelocityJitter float64
	Seed           int64
	Limit          int
}

// MonteCarloResult is the outcome of one trial.
type MonteCarloResult struct {
	TrialID     int
	Initial     []dynamo.Electron
	Final       []dynamo.Electron
	Confinement float64
	MaxRadius   float64
}

// Stable reports whether the trial stayed inside the confinement cylinder
// for every snapshot.
func (r MonteCarloResult) Stable() bool { return r.Confinement == 1 }

func jitter(rng *rand.Rand, amount float64) r3.Vec {
	return r3.Vec{
		X: (rng.Float64() - 0.5) * 2 * amount,
		Y: (rng.Float64() - 0.5) * 2 * amount,
		Z: (rng.Float64() - 0.5) * 2 * amount,
	}
}

// RunMonteCarlo executes the trials concurrently. Results are in trial order.
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig, logger log.Logger) ([]MonteCarloResult, error) {
	if cfg.NumTrials <= 0 {
		return nil, fmt.Errorf("trials must be positive, got %d", cfg.NumTrials)
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	logger = log.With(logger, "component", "montecarlo", "scenario", cfg.Base.Name)

	rng := rand.New(rand.NewSource(cfg.Seed))
	if cfg.Seed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	jobs := make([]sim.Job, cfg.NumTrials)
	results := make([]MonteCarloResult, cfg.NumTrials)
	confinement := make([]*metrics.Confinement, cfg.NumTrials)
	maxRadius := make([]*metrics.MaxRadius, cfg.NumTrials)

	for trial := range jobs {
		c := cfg.Base.Clone()
		for i, p := range c.Particles {
			p.Position = r3.Add(p.Position, jitter(rng, cfg.PositionJitter))
			p.Velocity = r3.Add(p.Velocity, jitter(rng, cfg.VelocityJitter*p.Speed()))
			c.Particles[i] = p
		}

		s, err := c.Build()
		if err != nil {
			return nil, fmt.Errorf("trial %d: %w", trial, err)
		}
		confinement[trial] = metrics.NewConfinement(c.Confinement.Radius, c.Confinement.HalfLength)
		maxRadius[trial] = metrics.NewMaxRadius()
		s.AddMetric(confinement[trial])
		s.AddMetric(maxRadius[trial])

		jobs[trial] = sim.Job{Name: fmt.Sprintf("trial-%d", trial), Sim: s, Config: c.RunConfig()}
		results[trial] = MonteCarloResult{TrialID: trial, Initial: c.Particles}
	}

	logger.Log("level", "info", "stage", "run", "trials", cfg.NumTrials, "seed", cfg.Seed)
	if err := sim.NewEnsemble(cfg.Limit).Run(ctx, jobs); err != nil {
		logger.Log("level", "error", "stage", "run", "err", err)
		return nil, err
	}

	for trial, job := range jobs {
		results[trial].Final = job.Sim.Particles()
		results[trial].Confinement = confinement[trial].Value()
		results[trial].MaxRadius = maxRadius[trial].Value()
	}

	stable, unstable := MonteCarloStats(results)
	logger.Log("level", "info", "stage", "done", "stable", stable, "unstable", unstable)
	return results, nil
}

// MonteCarloStats counts stable and unstable trials.
func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable() {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}

// RadiusStats returns the mean and standard deviation of the trials' maximum
// radii.
func RadiusStats(results []MonteCarloResult) (mean, std float64) {
	radii := make([]float64, len(results))
	for i, r := range results {
		radii[i] = r.MaxRadius
	}
	return stat.MeanStdDev(radii, nil)
}
