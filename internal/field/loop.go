// Package field computes the magnetic flux density of circular current loops
// whose axes are parallel to z.
//
// The off-axis closed form follows the standard elliptic-integral solution
// for a single loop. B0 = mu0*I/(2a) is the field at the loop centre; all
// component formulas are scaled from it.
package field

import (
	"fmt"
	"math"

	"github.com/san-kum/cuspsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// Mu0 is the vacuum permeability in T*m/A.
const Mu0 = 4e-7 * math.Pi

// AxisEpsilon is the radial offset, relative to the loop radius, below which
// a point is treated as lying on the loop axis.
const AxisEpsilon = 1e-12

// Loop is a circular current loop in a plane of constant z. A positive
// current circulates counter-clockwise seen from +z and produces a field
// along +z at the centre.
type Loop struct {
	Radius   float64 `json:"radius" yaml:"radius"`
	Position r3.Vec  `json:"position" yaml:"position"`
	Current  float64 `json:"current" yaml:"current"`
}

// NewLoop validates the loop geometry.
func NewLoop(radius float64, position r3.Vec, current float64) (Loop, error) {
	l := Loop{Radius: radius, Position: position, Current: current}
	if err := l.Validate(); err != nil {
		return Loop{}, err
	}
	return l, nil
}

// Validate checks that the radius is positive and every value is finite.
func (l Loop) Validate() error {
	if !(l.Radius > 0) || math.IsInf(l.Radius, 0) {
		return fmt.Errorf("loop radius %v: %w", l.Radius, dynamo.ErrParameterBounds)
	}
	if math.IsNaN(l.Current) || math.IsInf(l.Current, 0) {
		return fmt.Errorf("loop current %v: %w", l.Current, dynamo.ErrParameterBounds)
	}
	if !(dynamo.Electron{Position: l.Position}).IsValid() {
		return fmt.Errorf("loop position %v: %w", l.Position, dynamo.ErrParameterBounds)
	}
	return nil
}

// CentreField returns mu0*I/(2a).
func (l Loop) CentreField() float64 {
	return l.Current * Mu0 / (2 * l.Radius)
}

// BField returns B at point using the shared lookup table.
func (l Loop) BField(point r3.Vec) r3.Vec {
	return l.Eval(point, Tabulated)
}

// BFieldExact returns B at point evaluating K and E directly.
func (l Loop) BFieldExact(point r3.Vec) r3.Vec {
	return l.Eval(point, Exact)
}

// Eval returns B at point with the integrals supplied by ev.
//
// Points on the wire itself (r == a, z == 0 relative to the loop) have no
// finite field and yield a non-finite vector.
func (l Loop) Eval(point r3.Vec, ev Evaluator) r3.Vec {
	a := l.Radius
	d := r3.Sub(point, l.Position)
	x := d.Z
	r := math.Hypot(d.X, d.Y)

	b0 := l.CentreField()
	alpha := r / a
	beta := x / a

	if r <= AxisEpsilon*a {
		q := 1 + beta*beta
		return r3.Vec{Z: b0 / (q * math.Sqrt(q))}
	}

	gamma := x / r
	q := (1+alpha)*(1+alpha) + beta*beta
	// q - 4*alpha, written without the cancellation near the wire.
	den := (1-alpha)*(1-alpha) + beta*beta

	// Complementary parameter 1 - k^2 with k^2 = 4*alpha/q.
	k, e := ev.integrals(den / q)

	c := 1 / (math.Pi * math.Sqrt(q))
	bAxial := b0 * c * (e*(1-alpha*alpha-beta*beta)/den + k)
	bRadial := b0 * gamma * c * (e*(1+alpha*alpha+beta*beta)/den - k)

	return r3.Vec{
		X: d.X / r * bRadial,
		Y: d.Y / r * bRadial,
		Z: bAxial,
	}
}
