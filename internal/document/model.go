package document

import (
	"encoding/json"

	"github.com/inamate/graphpad/internal/transform"
	"github.com/inamate/graphpad/internal/vec"
	"github.com/inamate/graphpad/internal/viewport"
)

const (
	DefaultWidth  = 500
	DefaultHeight = 500
)

type Diagram struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Width      float64          `json:"width"`
	Height     float64          `json:"height"`
	ViewBox    viewport.ViewBox `json:"viewBox"`
	Preserve   viewport.Policy  `json:"preserve"`
	Pan        bool             `json:"pan"`
	Background string           `json:"background"`
	Clock      *ClockData       `json:"clock,omitempty"`
	Elements   []Element        `json:"elements"`
}

// ClockData bounds the diagram's stopwatch, in seconds. A nil End runs
// forever.
type ClockData struct {
	Start float64  `json:"start"`
	End   *float64 `json:"end,omitempty"`
}

type ElementType string

const (
	ElementGroup             ElementType = "group"
	ElementCoordinates       ElementType = "coordinates"
	ElementPlotOfX           ElementType = "plot.ofX"
	ElementPlotOfY           ElementType = "plot.ofY"
	ElementPlotParametric    ElementType = "plot.parametric"
	ElementPlotVectorField   ElementType = "plot.vectorField"
	ElementPoint             ElementType = "point"
	ElementMovablePoint      ElementType = "movablePoint"
	ElementLineThroughPoints ElementType = "line.throughPoints"
	ElementLinePointSlope    ElementType = "line.pointSlope"
	ElementLinePointAngle    ElementType = "line.pointAngle"
	ElementLineSegment       ElementType = "line.segment"
	ElementCircle            ElementType = "circle"
	ElementEllipse           ElementType = "ellipse"
	ElementPolygon           ElementType = "polygon"
	ElementVector            ElementType = "vector"
	ElementText              ElementType = "text"
)

const (
	LineSolid  = "solid"
	LineDashed = "dashed"
)

type Style struct {
	Color       string  `json:"color,omitempty"`
	Weight      float64 `json:"weight,omitempty"`
	Opacity     float64 `json:"opacity,omitempty"`
	FillOpacity float64 `json:"fillOpacity,omitempty"`
	LineStyle   string  `json:"lineStyle,omitempty"`
}

type Element struct {
	ID        string           `json:"id"`
	Type      ElementType      `json:"type"`
	Name      string           `json:"name,omitempty"`
	Transform *transform.Local `json:"transform,omitempty"`
	Style     Style            `json:"style"`
	Hidden    bool             `json:"hidden,omitempty"`
	Children  []Element        `json:"children,omitempty"`
	Data      json.RawMessage  `json:"data,omitempty"`
}

// PointRef is either a literal position or the name of a movable point.
type PointRef struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Point string  `json:"point,omitempty"`
}

func At(x, y float64) PointRef      { return PointRef{X: x, Y: y} }
func Ref(name string) PointRef      { return PointRef{Point: name} }
func (r PointRef) Vec() vec.Vector2 { return vec.V(r.X, r.Y) }

// Labels selects the axis label format.
const (
	LabelsNumber = "number"
	LabelsPi     = "pi"
	LabelsNone   = "none"
)

type AxisData struct {
	Hidden       bool     `json:"hidden,omitempty"`
	Axis         *bool    `json:"axis,omitempty"`
	Lines        *float64 `json:"lines,omitempty"`
	Subdivisions int      `json:"subdivisions,omitempty"`
	Labels       string   `json:"labels,omitempty"`
}

type CoordinatesData struct {
	XAxis        AxisData `json:"xAxis"`
	YAxis        AxisData `json:"yAxis"`
	Subdivisions int      `json:"subdivisions,omitempty"`
}

// SamplingData overrides the sampler depths of a plot.
type SamplingData struct {
	MinDepth int `json:"minDepth,omitempty"`
	MaxDepth int `json:"maxDepth,omitempty"`
}

type PlotData struct {
	Expr string `json:"expr"`
	SamplingData
}

type ParametricData struct {
	X string     `json:"x"`
	Y string     `json:"y"`
	T [2]float64 `json:"t"`
	SamplingData
}

type VectorFieldData struct {
	DX          string  `json:"dx"`
	DY          string  `json:"dy"`
	Step        float64 `json:"step"`
	Opacity     string  `json:"opacity,omitempty"`
	OpacityStep float64 `json:"opacityStep,omitempty"`
}

type PointData struct {
	At PointRef `json:"at"`
}

// MovablePointData places a draggable point. Constrain is "",
// "horizontal", "vertical" or "snap"; Snap is the grid step for "snap".
type MovablePointData struct {
	At        vec.Vector2 `json:"at"`
	Constrain string      `json:"constrain,omitempty"`
	Snap      float64     `json:"snap,omitempty"`
}

type TwoPointData struct {
	P1 PointRef `json:"p1"`
	P2 PointRef `json:"p2"`
}

type PointSlopeData struct {
	At    PointRef `json:"at"`
	Slope float64  `json:"slope"`
}

type PointAngleData struct {
	At    PointRef `json:"at"`
	Angle float64  `json:"angle"`
}

type CircleData struct {
	Center PointRef `json:"center"`
	Radius float64  `json:"radius"`
}

type EllipseData struct {
	Center PointRef    `json:"center"`
	Radius vec.Vector2 `json:"radius"`
	Angle  float64     `json:"angle,omitempty"`
}

type PolygonData struct {
	Points []PointRef `json:"points"`
}

type VectorData struct {
	Tail PointRef `json:"tail"`
	Tip  PointRef `json:"tip"`
}

type TextData struct {
	At             PointRef `json:"at"`
	Text           string   `json:"text"`
	Attach         string   `json:"attach,omitempty"`
	AttachDistance float64  `json:"attachDistance,omitempty"`
	Size           float64  `json:"size,omitempty"`
}

// Walk visits elements depth first in document order. Returning false
// from fn skips the element's children.
func Walk(elements []Element, fn func(e *Element, depth int) bool) {
	walk(elements, 0, fn)
}

func walk(elements []Element, depth int, fn func(e *Element, depth int) bool) {
	for i := range elements {
		e := &elements[i]
		if fn(e, depth) {
			walk(e.Children, depth+1, fn)
		}
	}
}
