package optim

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/cuspsim/internal/config"
	"github.com/san-kum/cuspsim/internal/experiment"
	"github.com/san-kum/cuspsim/internal/field"
	"gonum.org/v1/gonum/spatial/r3"
)

// Param writes one searched value into a scenario.
type Param func(cfg *config.Config, v float64) error

// Params are the scenario knobs a grid search can vary.
var Params = map[string]Param{
	// current sets every coil's current magnitude, keeping its sign.
	"current": func(cfg *config.Config, v float64) error {
		for i := range cfg.Coils {
			cfg.Coils[i].Current = math.Copysign(v, cfg.Coils[i].Current)
		}
		return nil
	},
	// half_gap places each coil at +-v along z, keeping the side it was on.
	// Only coil sets mirrored about z = 0 have a gap to vary.
	"half_gap": func(cfg *config.Config, v float64) error {
		if !(v > 0) {
			return fmt.Errorf("half gap must be positive, got %g", v)
		}
		if err := mirrored(cfg.Coils); err != nil {
			return err
		}
		for i := range cfg.Coils {
			cfg.Coils[i].Position.Z = math.Copysign(v, cfg.Coils[i].Position.Z)
		}
		return nil
	},
	// speed rescales every particle's velocity to magnitude v.
	"speed": func(cfg *config.Config, v float64) error {
		for i := range cfg.Particles {
			vel := cfg.Particles[i].Velocity
			if n := r3.Norm(vel); n > 0 {
				cfg.Particles[i].Velocity = r3.Scale(v/n, vel)
			}
		}
		return nil
	},
	"dt": func(cfg *config.Config, v float64) error {
		cfg.Dt = v
		return nil
	},
}

// mirrored reports an error unless every coil sits at the same |z| > 0 with
// as many coils above the midplane as below it.
func mirrored(coils field.Coils) error {
	if len(coils) == 0 {
		return fmt.Errorf("no coils")
	}
	h := math.Abs(coils[0].Position.Z)
	above := 0
	for _, c := range coils {
		if c.Position.Z == 0 || math.Abs(c.Position.Z) != h {
			return fmt.Errorf("coils are not mirrored about z = 0")
		}
		if c.Position.Z > 0 {
			above++
		}
	}
	if 2*above != len(coils) {
		return fmt.Errorf("coils are not mirrored about z = 0")
	}
	return nil
}

func ParamNames() []string {
	names := make([]string, 0, len(Params))
	for name := range Params {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	maximise   bool
}

// NewGridSearch searches the cartesian product of ranges. Every name must be
// a key of Params.
func NewGridSearch(params []string, ranges [][]float64, maximise bool) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("got %d params and %d ranges", len(params), len(ranges))
	}
	for i, name := range params {
		if _, ok := Params[name]; !ok {
			return nil, fmt.Errorf("unknown param: %s (available: %v)", name, ParamNames())
		}
		if len(ranges[i]) == 0 {
			return nil, fmt.Errorf("param %s has no values", name)
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges, maximise: maximise}, nil
}

// Search runs base once per grid point and returns the point with the best
// value of metricName. Grid points whose scenario fails to build or run are
// skipped and counted.
func (g *GridSearch) Search(
	ctx context.Context,
	base *config.Config,
	metricName string,
) (bestParams map[string]float64, best float64, failed int, err error) {
	best = math.Inf(1)
	if g.maximise {
		best = math.Inf(-1)
	}

	err = g.searchRecursive(ctx, 0, make(map[string]float64), base, metricName, &best, &bestParams, &failed)
	if err == nil && bestParams == nil {
		err = fmt.Errorf("no grid point produced metric %s", metricName)
	}
	return bestParams, best, failed, err
}

func (g *GridSearch) better(v, best float64) bool {
	if g.maximise {
		return v > best
	}
	return v < best
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	base *config.Config,
	metricName string,
	best *float64,
	bestParams *map[string]float64,
	failed *int,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		cfg := base.Clone()
		for _, name := range g.paramNames {
			if err := Params[name](cfg, current[name]); err != nil {
				return fmt.Errorf("param %s: %w", name, err)
			}
		}

		exp := experiment.New(cfg, nil)
		if err := exp.Setup(experiment.NewRegistry()); err != nil {
			*failed++
			return nil
		}
		result, err := exp.Run(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			*failed++
			return nil
		}

		val, ok := result.Metrics[metricName]
		if ok && (*bestParams == nil || g.better(val, *best)) {
			*best = val
			*bestParams = make(map[string]float64)
			for k, v := range current {
				(*bestParams)[k] = v
			}
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, base, metricName, best, bestParams, failed); err != nil {
			return err
		}
	}
	return nil
}
