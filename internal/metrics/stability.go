package metrics

import (
	"math"

	"github.com/san-kum/cuspsim/internal/dynamo"
)

// Confinement is the fraction of snapshots in which every particle lies
// inside the cylinder r <= radius, |z| <= halfLength.
type Confinement struct {
	name       string
	radius     float64
	halfLength float64
	violations int
	samples    int
}

func NewConfinement(radius, halfLength float64) *Confinement {
	return &Confinement{
		name:       "confinement",
		radius:     radius,
		halfLength: halfLength,
	}
}

func (c *Confinement) Name() string {
	return c.name
}

func (c *Confinement) Observe(s dynamo.Snapshot) {
	c.samples++
	for _, p := range s.Particles {
		if p.Radius() > c.radius || math.Abs(p.Position.Z) > c.halfLength {
			c.violations++
			break
		}
	}
}

func (c *Confinement) Value() float64 {
	if c.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(c.violations)/float64(c.samples)
}

func (c *Confinement) Reset() {
	c.violations = 0
	c.samples = 0
}

// MaxRadius is the largest distance from the z axis reached by any particle.
type MaxRadius struct {
	name string
	max  float64
}

func NewMaxRadius() *MaxRadius {
	return &MaxRadius{name: "max_radius"}
}

func (m *MaxRadius) Name() string { return m.name }

func (m *MaxRadius) Observe(s dynamo.Snapshot) {
	for _, p := range s.Particles {
		m.max = math.Max(m.max, p.Radius())
	}
}

func (m *MaxRadius) Value() float64 { return m.max }

func (m *MaxRadius) Reset() { m.max = 0 }
