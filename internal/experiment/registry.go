package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/cuspsim/internal/config"
	"github.com/san-kum/cuspsim/internal/dynamo"
	"github.com/san-kum/cuspsim/internal/metrics"
	"github.com/san-kum/cuspsim/internal/sim"
)

// MetricFactory builds a metric for a scenario about to run on s.
type MetricFactory func(cfg *config.Config, s *sim.Simulation) dynamo.Metric

type Registry struct {
	metrics map[string]MetricFactory
}

func NewRegistry() *Registry {
	r := &Registry{
		metrics: make(map[string]MetricFactory),
	}

	// Energies are reported in joules, so they use the physical mass rather
	// than the rescaled one the simulation integrates with.
	r.metrics["energy"] = func(_ *config.Config, _ *sim.Simulation) dynamo.Metric {
		return metrics.NewEnergy(sim.ElectronMass)
	}
	r.metrics["energy_drift"] = func(_ *config.Config, _ *sim.Simulation) dynamo.Metric {
		return metrics.NewEnergyDrift(sim.ElectronMass)
	}
	r.metrics["confinement"] = func(cfg *config.Config, _ *sim.Simulation) dynamo.Metric {
		return metrics.NewConfinement(cfg.Confinement.Radius, cfg.Confinement.HalfLength)
	}
	r.metrics["max_radius"] = func(_ *config.Config, _ *sim.Simulation) dynamo.Metric {
		return metrics.NewMaxRadius()
	}

	return r
}

func (r *Registry) GetMetric(name string, cfg *config.Config, s *sim.Simulation) (dynamo.Metric, error) {
	fn, ok := r.metrics[name]
	if !ok {
		return nil, fmt.Errorf("unknown metric: %s", name)
	}
	return fn(cfg, s), nil
}

func (r *Registry) ListMetrics() []string {
	names := make([]string, 0, len(r.metrics))
	for name := range r.metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics returns one instance of every registered metric.
func (r *Registry) DefaultMetrics(cfg *config.Config, s *sim.Simulation) []dynamo.Metric {
	out := make([]dynamo.Metric, 0, len(r.metrics))
	for _, name := range r.ListMetrics() {
		out = append(out, r.metrics[name](cfg, s))
	}
	return out
}
