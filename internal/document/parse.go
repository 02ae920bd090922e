package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/inamate/graphpad/internal/formula"
	"github.com/inamate/graphpad/internal/viewport"
)

var ErrInvalid = errors.New("document: invalid diagram")

// MaxDepth bounds group nesting.
const MaxDepth = 32

// Parse decodes a diagram, applies defaults and validates it.
func Parse(data []byte) (*Diagram, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var d Diagram
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	d.ApplyDefaults()
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// ApplyDefaults fills unset diagram-level fields.
func (d *Diagram) ApplyDefaults() {
	if d.Width == 0 {
		d.Width = DefaultWidth
	}
	if d.Height == 0 {
		d.Height = DefaultHeight
	}
	if d.ViewBox.X == [2]float64{} && d.ViewBox.Y == [2]float64{} {
		d.ViewBox = viewport.DefaultViewBox()
	}
	if d.Preserve == "" {
		d.Preserve = viewport.PolicyContain
	}
	if d.Background == "" {
		d.Background = ColorBackground
	}
}

// Validate checks structure, element data and point names.
func (d *Diagram) Validate() error {
	if !(d.Width > 0) || !(d.Height > 0) || math.IsInf(d.Width, 0) || math.IsInf(d.Height, 0) {
		return fmt.Errorf("%w: size %gx%g", ErrInvalid, d.Width, d.Height)
	}
	switch d.Preserve {
	case viewport.PolicyContain, viewport.PolicyStretch:
	default:
		return fmt.Errorf("%w: preserve %q", ErrInvalid, d.Preserve)
	}
	if c := d.Clock; c != nil && c.End != nil && !(*c.End >= c.Start) {
		return fmt.Errorf("%w: clock ends at %g before it starts at %g", ErrInvalid, *c.End, c.Start)
	}

	ids := make(map[string]bool)
	points := make(map[string]bool)
	var err error
	Walk(d.Elements, func(e *Element, depth int) bool {
		if err != nil {
			return false
		}
		if depth >= MaxDepth {
			err = fmt.Errorf("%w: groups nested deeper than %d", ErrInvalid, MaxDepth)
			return false
		}
		if e.ID != "" {
			if ids[e.ID] {
				err = fmt.Errorf("%w: duplicate element id %q", ErrInvalid, e.ID)
				return false
			}
			ids[e.ID] = true
		}
		if e.Type == ElementMovablePoint {
			if e.Name == "" {
				err = fmt.Errorf("%w: movable point %q needs a name", ErrInvalid, e.ID)
				return false
			}
			if points[e.Name] || formula.Reserved(e.Name) {
				err = fmt.Errorf("%w: movable point name %q is taken", ErrInvalid, e.Name)
				return false
			}
			points[e.Name] = true
		}
		if e.Type != ElementGroup && len(e.Children) > 0 {
			err = fmt.Errorf("%w: %s element %q cannot have children", ErrInvalid, e.Type, e.ID)
			return false
		}
		if _, derr := e.DecodeData(); derr != nil {
			err = derr
			return false
		}
		return true
	})
	if err != nil {
		return err
	}

	// References are checked once every point name is known, so a line
	// may refer to a point declared after it.
	Walk(d.Elements, func(e *Element, _ int) bool {
		if err != nil {
			return false
		}
		data, _ := e.DecodeData()
		for _, r := range refs(data) {
			if r.Point != "" && !points[r.Point] {
				err = fmt.Errorf("%w: %s element %q refers to unknown point %q", ErrInvalid, e.Type, e.ID, r.Point)
				return false
			}
		}
		return true
	})
	return err
}

// PointNames returns the names of every movable point in document order.
func (d *Diagram) PointNames() []string {
	var names []string
	Walk(d.Elements, func(e *Element, _ int) bool {
		if e.Type == ElementMovablePoint {
			names = append(names, e.Name)
		}
		return true
	})
	return names
}

// DecodeData decodes the element's data into the struct for its type.
// Groups have no data and decode to nil.
func (e *Element) DecodeData() (any, error) {
	var v any
	switch e.Type {
	case ElementGroup:
		return nil, nil
	case ElementCoordinates:
		v = &CoordinatesData{}
	case ElementPlotOfX, ElementPlotOfY:
		v = &PlotData{}
	case ElementPlotParametric:
		v = &ParametricData{}
	case ElementPlotVectorField:
		v = &VectorFieldData{}
	case ElementPoint:
		v = &PointData{}
	case ElementMovablePoint:
		v = &MovablePointData{}
	case ElementLineThroughPoints, ElementLineSegment:
		v = &TwoPointData{}
	case ElementLinePointSlope:
		v = &PointSlopeData{}
	case ElementLinePointAngle:
		v = &PointAngleData{}
	case ElementCircle:
		v = &CircleData{}
	case ElementEllipse:
		v = &EllipseData{}
	case ElementPolygon:
		v = &PolygonData{}
	case ElementVector:
		v = &VectorData{}
	case ElementText:
		v = &TextData{}
	default:
		return nil, fmt.Errorf("%w: element %q has unknown type %q", ErrInvalid, e.ID, e.Type)
	}

	if len(e.Data) > 0 {
		if err := json.Unmarshal(e.Data, v); err != nil {
			return nil, fmt.Errorf("%w: %s element %q: %w", ErrInvalid, e.Type, e.ID, err)
		}
	}
	if err := checkData(v); err != nil {
		return nil, fmt.Errorf("%w: %s element %q: %w", ErrInvalid, e.Type, e.ID, err)
	}
	return v, nil
}

func checkData(v any) error {
	switch d := v.(type) {
	case *PlotData:
		if d.Expr == "" {
			return errors.New("expr is required")
		}
		return checkSampling(d.SamplingData)
	case *ParametricData:
		if d.X == "" || d.Y == "" {
			return errors.New("x and y are required")
		}
		if d.T[0] == d.T[1] {
			return errors.New("t range is empty")
		}
		return checkSampling(d.SamplingData)
	case *VectorFieldData:
		if d.DX == "" || d.DY == "" {
			return errors.New("dx and dy are required")
		}
		if d.Step < 0 {
			return fmt.Errorf("step %g is negative", d.Step)
		}
	case *MovablePointData:
		switch d.Constrain {
		case "", "horizontal", "vertical":
		case "snap":
			if !(d.Snap > 0) {
				return fmt.Errorf("snap step %g must be positive", d.Snap)
			}
		default:
			return fmt.Errorf("unknown constraint %q", d.Constrain)
		}
	case *CircleData:
		if d.Radius < 0 {
			return fmt.Errorf("radius %g is negative", d.Radius)
		}
	case *PolygonData:
		if len(d.Points) < 3 {
			return fmt.Errorf("polygon needs at least 3 points, got %d", len(d.Points))
		}
	}
	return nil
}

func checkSampling(s SamplingData) error {
	if s.MinDepth < 0 || s.MaxDepth < 0 || (s.MaxDepth > 0 && s.MinDepth > s.MaxDepth) {
		return fmt.Errorf("sampling depths min=%d max=%d", s.MinDepth, s.MaxDepth)
	}
	return nil
}

func refs(data any) []PointRef {
	switch d := data.(type) {
	case *PointData:
		return []PointRef{d.At}
	case *TwoPointData:
		return []PointRef{d.P1, d.P2}
	case *PointSlopeData:
		return []PointRef{d.At}
	case *PointAngleData:
		return []PointRef{d.At}
	case *CircleData:
		return []PointRef{d.Center}
	case *EllipseData:
		return []PointRef{d.Center}
	case *PolygonData:
		return d.Points
	case *VectorData:
		return []PointRef{d.Tail, d.Tip}
	case *TextData:
		return []PointRef{d.At}
	}
	return nil
}
