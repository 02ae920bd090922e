// Package shape computes the geometry of display primitives: lines,
// ellipses, polygons, arrows, vector fields, coordinate grids and text
// anchors. It never draws; callers turn the results into draw commands.
package shape

import (
	"errors"
	"fmt"
	"math"

	"github.com/inamate/graphpad/internal/vec"
)

// LineExtent is how far, in math units, an infinite line is extended past
// its defining points. Far enough to leave any sane viewport.
const LineExtent = 100000

var ErrCoincidentPoints = errors.New("shape: line needs two distinct points")

// Segment is a straight line piece from A to B.
type Segment struct {
	A vec.Vector2 `json:"a"`
	B vec.Vector2 `json:"b"`
}

// Transform maps both ends through m.
func (s Segment) Transform(m vec.Matrix) Segment {
	return Segment{A: vec.Transform(s.A, m), B: vec.Transform(s.B, m)}
}

// Midpoint returns the middle of the segment.
func (s Segment) Midpoint() vec.Vector2 { return s.A.Midpoint(s.B) }

// ThroughPoints returns the line through p1 and p2, extended by
// LineExtent on both sides.
func ThroughPoints(p1, p2 vec.Vector2) (Segment, error) {
	dir, err := p2.Sub(p1).Normalize()
	if err != nil {
		return Segment{}, fmt.Errorf("%w: %s and %s: %w", ErrCoincidentPoints, p1, p2, err)
	}
	ext := dir.Scale(LineExtent)
	return Segment{A: p1.Sub(ext), B: p2.Add(ext)}, nil
}

// PointAngle returns the line through p at angle radians from the x axis.
func PointAngle(p vec.Vector2, angle float64) Segment {
	dir := vec.V(1, 0).Rotate(angle)
	ext := dir.Scale(LineExtent)
	return Segment{A: p.Sub(ext), B: p.Add(dir).Add(ext)}
}

// PointSlope returns the line through p with the given slope. An
// infinite slope gives a vertical line.
func PointSlope(p vec.Vector2, slope float64) Segment {
	return PointAngle(p, math.Atan(slope))
}

// Polygon maps the vertices through m.
func Polygon(points []vec.Vector2, m vec.Matrix) []vec.Vector2 {
	out := make([]vec.Vector2, len(points))
	for i, p := range points {
		out[i] = vec.Transform(p, m)
	}
	return out
}
