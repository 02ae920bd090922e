package shape

import (
	"fmt"
	"math"
	"strconv"

	"github.com/inamate/graphpad/internal/vec"
	"github.com/inamate/graphpad/internal/viewport"
)

// LabelFunc formats an axis label.
type LabelFunc func(v float64) string

// LabelNumber prints v without float noise.
func LabelNumber(v float64) string {
	return strconv.FormatFloat(roundTo(v, 10), 'f', -1, 64)
}

// LabelPi prints v as a multiple of π.
func LabelPi(v float64) string {
	switch {
	case v == 0:
		return "0"
	case math.Abs(math.Pi-v) < 0.001:
		return "π"
	case math.Abs(-math.Pi-v) < 0.001:
		return "-π"
	}
	return strconv.FormatFloat(roundTo(v/math.Pi, 5), 'f', -1, 64) + "π"
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	r := math.Round(v*p) / p
	if r == 0 {
		return 0
	}
	return r
}

// AxisOptions configures one axis of a cartesian grid.
type AxisOptions struct {
	// Axis draws the axis line through the origin.
	Axis bool
	// Lines is the math distance between major grid lines; zero hides them.
	Lines float64
	// Subdivisions splits each major cell into this many minor cells.
	Subdivisions int
	// Labels formats the labels; nil hides them.
	Labels LabelFunc
}

// DefaultAxis draws the axis, a line every unit and numeric labels.
func DefaultAxis() AxisOptions {
	return AxisOptions{Axis: true, Lines: 1, Labels: LabelNumber}
}

// Label is a piece of axis text in pixel space.
type Label struct {
	At       vec.Vector2 `json:"at"`
	Text     string      `json:"text"`
	Anchor   string      `json:"anchor"`
	Baseline string      `json:"baseline"`
}

// Grid is the pixel-space geometry of a cartesian coordinate plane.
type Grid struct {
	Minor  []Segment `json:"minor"`
	Major  []Segment `json:"major"`
	Axes   []Segment `json:"axes"`
	Labels []Label   `json:"labels"`
}

// labelOffset is the pixel gap between an axis and its labels.
const labelOffset = 5

// maxGridLines bounds the lines per axis and kind.
const maxGridLines = 4096

// CartesianGrid lays out grid lines, axes and labels across the pane
// range of vp. Both axes are drawn through the origin.
func CartesianGrid(vp viewport.Viewport, x, y AxisOptions) (Grid, error) {
	var g Grid
	xr, yr := vp.XPaneRange, vp.YPaneRange
	origin := vp.ToPixel(vec.V(0, 0))

	vertical := func(at float64) Segment {
		return Segment{A: vec.V(at, yr.Lo), B: vec.V(at, yr.Hi)}.Transform(vp.View)
	}
	horizontal := func(at float64) Segment {
		return Segment{A: vec.V(xr.Lo, at), B: vec.V(xr.Hi, at)}.Transform(vp.View)
	}

	if err := lines(&g, xr, x, vertical); err != nil {
		return Grid{}, fmt.Errorf("x axis: %w", err)
	}
	if err := lines(&g, yr, y, horizontal); err != nil {
		return Grid{}, fmt.Errorf("y axis: %w", err)
	}

	if x.Axis {
		g.Axes = append(g.Axes, horizontal(0))
	}
	if y.Axis {
		g.Axes = append(g.Axes, vertical(0))
	}

	if x.Labels != nil {
		sep := labelSeparation(x)
		for _, v := range SnappedRange(xr.Lo-sep, xr.Hi+sep, sep) {
			px := vp.ToPixel(vec.V(v, 0)).X
			if math.Abs(px-origin.X) <= 1 {
				continue
			}
			g.Labels = append(g.Labels, Label{
				At: vec.V(px, origin.Y+labelOffset), Text: x.Labels(v),
				Anchor: "middle", Baseline: "hanging",
			})
		}
	}
	if y.Labels != nil {
		sep := labelSeparation(y)
		for _, v := range SnappedRange(yr.Lo-sep, yr.Hi+sep, sep) {
			py := vp.ToPixel(vec.V(0, v)).Y
			if math.Abs(py-origin.Y) <= 1 {
				continue
			}
			g.Labels = append(g.Labels, Label{
				At: vec.V(origin.X+labelOffset, py), Text: y.Labels(v),
				Anchor: "start", Baseline: "central",
			})
		}
	}
	return g, nil
}

func labelSeparation(a AxisOptions) float64 {
	if a.Lines > 0 {
		return a.Lines
	}
	return 1
}

func lines(g *Grid, r viewport.Interval, a AxisOptions, at func(float64) Segment) error {
	if !(a.Lines > 0) {
		return nil
	}
	if r.Span()/a.Lines > maxGridLines {
		return fmt.Errorf("%w: line spacing %g over span %g", ErrInvalidStep, a.Lines, r.Span())
	}
	majors := SnappedRange(r.Lo, r.Hi, a.Lines)
	for _, v := range majors {
		g.Major = append(g.Major, at(v))
	}
	if a.Subdivisions > 1 {
		minor := a.Lines / float64(a.Subdivisions)
		for _, v := range majors {
			for k := 1; k < a.Subdivisions; k++ {
				g.Minor = append(g.Minor, at(v+float64(k)*minor))
			}
		}
	}
	return nil
}

// SnappedRange returns the multiples of step from floor(lo/step)*step up
// to, but excluding, ceil(hi/step)*step.
func SnappedRange(lo, hi, step float64) []float64 {
	if !(step > 0) {
		return nil
	}
	first := math.Floor(lo / step)
	last := math.Ceil(hi / step)
	out := make([]float64, 0, int(math.Max(0, last-first)))
	for k := first; k < last; k++ {
		out = append(out, k*step)
	}
	return out
}
