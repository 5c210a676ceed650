package optim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/cuspsim/internal/config"
)

func shortGyration() *config.Config {
	cfg := config.GetPreset("uniform-gyration")
	cfg.Steps = 4
	cfg.MicroSteps = 10
	return cfg
}

func TestParams(t *testing.T) {
	cfg := config.DefaultConfig()

	if err := Params["current"](cfg, 250); err != nil {
		t.Fatalf("current: %v", err)
	}
	if cfg.Coils[0].Current != 250 || cfg.Coils[1].Current != -250 {
		t.Errorf("current got %v, %v", cfg.Coils[0].Current, cfg.Coils[1].Current)
	}

	if err := Params["half_gap"](cfg, 0.3); err != nil {
		t.Fatalf("half_gap: %v", err)
	}
	if cfg.Coils[0].Position.Z != -0.3 || cfg.Coils[1].Position.Z != 0.3 {
		t.Errorf("half gap got %v, %v", cfg.Coils[0].Position.Z, cfg.Coils[1].Position.Z)
	}

	if err := Params["speed"](cfg, 5e3); err != nil {
		t.Fatalf("speed: %v", err)
	}
	if s := cfg.Particles[0].Speed(); math.Abs(s-5e3) > 1e-9 {
		t.Errorf("speed got %v", s)
	}

	if err := Params["dt"](cfg, 1e-12); err != nil {
		t.Fatalf("dt: %v", err)
	}
	if cfg.Dt != 1e-12 {
		t.Errorf("dt got %v", cfg.Dt)
	}
}

func TestHalfGapNeedsMirroredCoils(t *testing.T) {
	for _, name := range []string{"loop", "uniform-gyration"} {
		cfg := config.GetPreset(name)
		before := cfg.Coils[0].Position
		err := Params["half_gap"](cfg, 0.4)
		if name == "loop" {
			if err == nil {
				t.Errorf("%s: single coil at z = 0 should be rejected", name)
			}
			if cfg.Coils[0].Position != before {
				t.Errorf("%s: rejected gap moved the coil to %v", name, cfg.Coils[0].Position)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}

	if err := Params["half_gap"](config.DefaultConfig(), 0); err == nil {
		t.Error("zero half gap should be rejected")
	}
}

func TestGridSearchRejectsHalfGapOnSingleCoil(t *testing.T) {
	g, err := NewGridSearch([]string{"half_gap"}, [][]float64{{0.2, 0.4}}, false)
	if err != nil {
		t.Fatal(err)
	}

	cfg := config.GetPreset("loop")
	cfg.Steps = 1
	cfg.MicroSteps = 1
	if _, _, _, err := g.Search(context.Background(), cfg, "energy_drift"); err == nil {
		t.Error("expected half_gap to be rejected for the loop preset")
	}
}

func TestNewGridSearchValidation(t *testing.T) {
	if _, err := NewGridSearch([]string{"current"}, nil, false); err == nil {
		t.Error("expected error for mismatched ranges")
	}
	if _, err := NewGridSearch([]string{"seed"}, [][]float64{{1}}, false); err == nil {
		t.Error("expected error for unknown param")
	}
	if _, err := NewGridSearch([]string{"dt"}, [][]float64{{}}, false); err == nil {
		t.Error("expected error for empty range")
	}
}

func TestGridSearchFindsSmallestDrift(t *testing.T) {
	g, err := NewGridSearch([]string{"dt"}, [][]float64{{8e-13, 2e-13, 4e-13}}, false)
	if err != nil {
		t.Fatal(err)
	}

	cfg := shortGyration()
	cfg.Integrator = "euler"
	params, best, failed, err := g.Search(context.Background(), cfg, "energy_drift")
	if err != nil {
		t.Fatal(err)
	}

	if params["dt"] != 2e-13 {
		t.Errorf("euler drift should be smallest at the smallest dt, got %v", params)
	}
	if !(best > 0) || failed != 0 {
		t.Errorf("best %g, failed %d", best, failed)
	}
}

func TestGridSearchMaximiseAndFailures(t *testing.T) {
	g, err := NewGridSearch([]string{"current", "speed"}, [][]float64{{500, 2000}, {1e4, 0, 1e5}}, true)
	if err != nil {
		t.Fatal(err)
	}

	cfg := shortGyration()
	params, best, failed, err := g.Search(context.Background(), cfg, "max_radius")
	if err != nil {
		t.Fatal(err)
	}

	if failed != 0 {
		t.Errorf("expected no failures, got %d", failed)
	}
	// Over a small arc the outward push q v B dominates, so the strongest
	// field and fastest electron reach furthest.
	if params["current"] != 2000 || params["speed"] != 1e5 {
		t.Errorf("expected current 2000 and speed 1e5, got %v", params)
	}
	if !(best > 1e-3) {
		t.Errorf("max radius got %g", best)
	}
}

func TestGridSearchCancelled(t *testing.T) {
	g, err := NewGridSearch([]string{"dt"}, [][]float64{{2e-13}}, false)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, _, err := g.Search(ctx, shortGyration(), "energy_drift"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected cancellation, got %v", err)
	}
}

func TestGridSearchCountsFailures(t *testing.T) {
	g, err := NewGridSearch([]string{"dt"}, [][]float64{{-1, 2e-13}}, false)
	if err != nil {
		t.Fatal(err)
	}

	params, _, failed, err := g.Search(context.Background(), shortGyration(), "energy_drift")
	if err != nil {
		t.Fatal(err)
	}
	if failed != 1 || params["dt"] != 2e-13 {
		t.Errorf("expected one failure and dt 2e-13, got %d, %v", failed, params)
	}
}
