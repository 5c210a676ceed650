package metrics

import (
	"math"

	"github.com/san-kum/cuspsim/internal/dynamo"
	"gonum.org/v1/gonum/floats"
)

// kinetic returns the per-particle kinetic energies 0.5 m v^2.
func kinetic(mass float64, s dynamo.Snapshot) []float64 {
	ke := make([]float64, len(s.Particles))
	for i, p := range s.Particles {
		v := p.Speed()
		ke[i] = 0.5 * mass * v * v
	}
	return ke
}

// Energy is the mean total kinetic energy over observed snapshots.
type Energy struct {
	name    string
	mass    float64
	samples int
	total   float64
}

func NewEnergy(mass float64) *Energy {
	return &Energy{
		name: "energy",
		mass: mass,
	}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(s dynamo.Snapshot) {
	e.total += floats.Sum(kinetic(e.mass, s))
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.total / float64(e.samples)
}

func (e *Energy) Reset() {
	e.total = 0
	e.samples = 0
}

// EnergyDrift is the largest relative change of any particle's kinetic
// energy from its first observed value. A magnetic field does no work, so
// any drift is integration error.
type EnergyDrift struct {
	name     string
	mass     float64
	initial  []float64
	maxDrift float64
}

func NewEnergyDrift(mass float64) *EnergyDrift {
	return &EnergyDrift{
		name: "energy_drift",
		mass: mass,
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(s dynamo.Snapshot) {
	ke := kinetic(e.mass, s)
	if e.initial == nil {
		e.initial = ke
		return
	}

	for i := 0; i < len(ke) && i < len(e.initial); i++ {
		if e.initial[i] == 0 {
			continue
		}
		drift := math.Abs(ke[i]-e.initial[i]) / e.initial[i]
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initial = nil
	e.maxDrift = 0
}
