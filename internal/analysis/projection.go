package analysis

import (
	"math"
	"strings"

	"github.com/san-kum/cuspsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// Projection holds a trajectory projected onto two coordinates.
type Projection struct {
	Points []r2.Vec
}

// NewProjection projects particle i of every snapshot onto (h, v).
func NewProjection(history []dynamo.Snapshot, i int, h, v func(dynamo.Electron) float64) *Projection {
	p := &Projection{Points: make([]r2.Vec, 0, len(history))}
	for _, s := range history {
		if i >= len(s.Particles) {
			continue
		}
		e := s.Particles[i]
		p.Points = append(p.Points, r2.Vec{X: h(e), Y: v(e)})
	}
	return p
}

// MidplaneCrossings returns the (x, y) positions where particle i crosses
// z = 0 in either direction, interpolated between snapshots.
func MidplaneCrossings(history []dynamo.Snapshot, i int) *Projection {
	p := &Projection{Points: make([]r2.Vec, 0)}

	var prev dynamo.Electron
	havePrev := false
	for _, s := range history {
		if i >= len(s.Particles) {
			continue
		}
		cur := s.Particles[i]
		if havePrev && (prev.Position.Z < 0) != (cur.Position.Z < 0) {
			frac := prev.Position.Z / (prev.Position.Z - cur.Position.Z)
			if math.IsNaN(frac) || math.IsInf(frac, 0) {
				frac = 0.5
			}
			p.Points = append(p.Points, r2.Vec{
				X: prev.Position.X + frac*(cur.Position.X-prev.Position.X),
				Y: prev.Position.Y + frac*(cur.Position.Y-prev.Position.Y),
			})
		}
		prev, havePrev = cur, true
	}
	return p
}

// ASCII renders the projection on a width x height character grid.
func (p *Projection) ASCII(width, height int) string {
	if p == nil || len(p.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	lo, hi := p.Points[0], p.Points[0]
	for _, pt := range p.Points {
		lo.X, hi.X = math.Min(lo.X, pt.X), math.Max(hi.X, pt.X)
		lo.Y, hi.Y = math.Min(lo.Y, pt.Y), math.Max(hi.Y, pt.Y)
	}

	span := r2.Sub(hi, lo)
	if span.X == 0 {
		span.X = 1
	}
	if span.Y == 0 {
		span.Y = 1
	}
	// 10% padding on every side
	lo = r2.Sub(lo, r2.Scale(0.1, span))
	span = r2.Scale(1.2, span)

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	cell := func(pt r2.Vec) (row, col int) {
		col = int((pt.X - lo.X) / span.X * float64(width-1))
		row = height - 1 - int((pt.Y-lo.Y)/span.Y*float64(height-1))
		return row, col
	}

	// axes first so points draw over them
	if origin := (r2.Vec{}); lo.X <= 0 && lo.X+span.X >= 0 {
		_, col := cell(origin)
		for row := range canvas {
			canvas[row][col] = '│'
		}
	}
	if origin := (r2.Vec{}); lo.Y <= 0 && lo.Y+span.Y >= 0 {
		row, _ := cell(origin)
		for col := range canvas[row] {
			canvas[row][col] = '─'
		}
	}

	for _, pt := range p.Points {
		row, col := cell(pt)
		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
