package document

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/inamate/graphpad/internal/transform"
	"github.com/inamate/graphpad/internal/typeid"
	"github.com/inamate/graphpad/internal/vec"
	"github.com/inamate/graphpad/internal/viewport"
)

func mustData(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("marshal element data: %v", err))
	}
	return data
}

// NewSampleDiagram builds a demo: a grid, a sine wave, a spiral, a line
// through two draggable points, and a rotated group holding a vertically
// constrained point and a vector.
func NewSampleDiagram() *Diagram {
	angle := math.Pi / 6
	two := 2.0

	return &Diagram{
		ID:         typeid.NewDiagramID(),
		Name:       "Untitled",
		Width:      800,
		Height:     600,
		ViewBox:    viewport.ViewBox{X: [2]float64{-5, 5}, Y: [2]float64{-4, 4}, Padding: viewport.DefaultPadding},
		Preserve:   viewport.PolicyContain,
		Pan:        true,
		Background: ColorBackground,
		Elements: []Element{
			{
				ID:    "grid",
				Type:  ElementCoordinates,
				Style: Style{},
				Data: mustData(CoordinatesData{
					XAxis:        AxisData{Lines: &two, Labels: LabelsNumber},
					YAxis:        AxisData{Labels: LabelsNumber},
					Subdivisions: 2,
				}),
			},
			{
				ID:    "wave",
				Type:  ElementPlotOfX,
				Style: Style{Color: "blue", Weight: 3},
				Data:  mustData(PlotData{Expr: "sin(x - a.x) + a.y"}),
			},
			{
				ID:    "spiral",
				Type:  ElementPlotParametric,
				Style: Style{Color: "violet", Weight: 2, LineStyle: LineDashed},
				Data:  mustData(ParametricData{X: "t / 4 * cos(t)", Y: "t / 4 * sin(t)", T: [2]float64{0, 6 * math.Pi}}),
			},
			{
				ID:    "secant",
				Type:  ElementLineThroughPoints,
				Style: Style{Color: "orange", Weight: 2},
				Data:  mustData(TwoPointData{P1: Ref("a"), P2: Ref("b")}),
			},
			{
				ID:    "a",
				Type:  ElementMovablePoint,
				Name:  "a",
				Style: Style{Color: "pink"},
				Data:  mustData(MovablePointData{At: vec.V(-1, 1)}),
			},
			{
				ID:    "b",
				Type:  ElementMovablePoint,
				Name:  "b",
				Style: Style{Color: "green"},
				Data:  mustData(MovablePointData{At: vec.V(2, 0), Constrain: "horizontal"}),
			},
			{
				ID:        "rotated",
				Type:      ElementGroup,
				Transform: &transform.Local{Translate: &vec.Vector2{X: 2, Y: 2}, Rotate: &angle},
				Children: []Element{
					{
						ID:    "box",
						Type:  ElementPolygon,
						Style: Style{Color: "yellow", FillOpacity: 0.15},
						Data:  mustData(PolygonData{Points: []PointRef{At(0, 0), At(1, 0), At(1, 1), At(0, 1)}}),
					},
					{
						ID:    "arrow",
						Type:  ElementVector,
						Style: Style{Color: "red"},
						Data:  mustData(VectorData{Tail: At(0, 0), Tip: Ref("c")}),
					},
					{
						ID:    "c",
						Type:  ElementMovablePoint,
						Name:  "c",
						Style: Style{Color: "red"},
						Data:  mustData(MovablePointData{At: vec.V(0, 1), Constrain: "vertical"}),
					},
				},
			},
			{
				ID:    "label",
				Type:  ElementText,
				Style: Style{Color: "foreground"},
				Data:  mustData(TextData{At: Ref("a"), Text: "a", Attach: "ne", AttachDistance: 12}),
			},
		},
	}
}
