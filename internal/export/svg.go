package export

import (
	"fmt"
	"io"
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"
)

// Marker is a labelled point drawn over the trajectory, such as a coil
// cross-section.
type Marker struct {
	At    r2.Vec
	Label string
}

// TrajectoryToSVG draws points as a single polyline on a dark background.
// Markers share the trajectory's coordinate frame.
func TrajectoryToSVG(w io.Writer, points []r2.Vec, markers []Marker, width, height int, strokeColor string) error {
	if len(points) < 2 {
		return fmt.Errorf("need at least 2 points, got %d", len(points))
	}

	lo, hi := points[0], points[0]
	extend := func(p r2.Vec) {
		lo.X, hi.X = math.Min(lo.X, p.X), math.Max(hi.X, p.X)
		lo.Y, hi.Y = math.Min(lo.Y, p.Y), math.Max(hi.Y, p.Y)
	}
	for _, p := range points {
		extend(p)
	}
	for _, m := range markers {
		extend(m.At)
	}

	span := r2.Sub(hi, lo)
	if span.X == 0 {
		span.X = 1
	}
	if span.Y == 0 {
		span.Y = 1
	}
	lo = r2.Sub(lo, r2.Scale(0.1, span))
	span = r2.Scale(1.2, span)

	project := func(p r2.Vec) (x, y float64) {
		x = (p.X - lo.X) / span.X * float64(width)
		y = float64(height) - (p.Y-lo.Y)/span.Y*float64(height)
		return x, y
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor)

	for i, p := range points {
		x, y := project(p)
		if i > 0 {
			sb.WriteString(" L")
		}
		fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
	}
	sb.WriteString("\"/>\n")

	for _, m := range markers {
		x, y := project(m.At)
		fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="4" fill="#ffaa00"/>
<text x="%.1f" y="%.1f" fill="#888899" font-size="10">%s</text>
`, x, y, x+6, y-6, m.Label)
	}

	sb.WriteString("</svg>\n")
	_, err := io.WriteString(w, sb.String())
	return err
}
