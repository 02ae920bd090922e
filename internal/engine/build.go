package engine

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/inamate/graphpad/internal/document"
	"github.com/inamate/graphpad/internal/formula"
	"github.com/inamate/graphpad/internal/sample"
	"github.com/inamate/graphpad/internal/shape"
	"github.com/inamate/graphpad/internal/transform"
	"github.com/inamate/graphpad/internal/vec"
	"github.com/inamate/graphpad/internal/viewport"
)

// Pixel sizes of markers, strokes and text.
const (
	PointRadius      = 6
	DefaultWeight    = 2
	DefaultTextSize  = 16
	DefaultFillAlpha = 0.15

	gridLabelSize    = 12
	gridLineWeight   = 1
	originLineWeight = 2
	defaultFieldStep = 1
)

// builder walks a diagram and produces its scene graph. Every element is
// drawn inside a transform.Stack scope, so leaves only ever read the
// scope's composed pixel transform.
type builder struct {
	e     *Engine
	vp    viewport.Viewport
	stack *transform.Stack
	env   *formula.Env
	envID string
	sg    *SceneGraph
}

func (e *Engine) buildSceneGraph() (*SceneGraph, error) {
	b := &builder{
		e:     e,
		vp:    e.vp,
		stack: transform.NewStack(e.vp.View),
		sg:    NewSceneGraph(),
	}
	b.env, b.envID = e.formulaEnv()

	root := &SceneNode{ID: e.doc.ID, Type: document.ElementGroup, Scope: b.stack.Current()}
	b.sg.Root = root
	if err := b.children(root, e.doc.Elements); err != nil {
		return nil, err
	}
	return b.sg, nil
}

// formulaEnv binds the clock and every point position. The returned
// string identifies the bindings for cache keys.
func (e *Engine) formulaEnv() (*formula.Env, string) {
	env := formula.NewEnv().Set(formula.VarTime, e.clock.Time())
	var id strings.Builder
	id.WriteString(strconv.FormatFloat(e.clock.Time(), 'g', -1, 64))
	for _, p := range e.order {
		pos := p.Position()
		env.SetPoint(p.name, pos)
		fmt.Fprintf(&id, ";%s=%g,%g", p.name, pos.X, pos.Y)
	}
	return env, id.String()
}

func (b *builder) children(parent *SceneNode, elements []document.Element) error {
	for i := range elements {
		el := &elements[i]
		if el.Hidden {
			continue
		}
		err := b.stack.Within(localMatrix(el), func(scope transform.Scope) error {
			node := &SceneNode{ID: el.ID, Type: el.Type, Scope: scope, Parent: parent}
			b.sg.add(node)

			if el.Type == document.ElementGroup {
				if err := b.children(node, el.Children); err != nil {
					return err
				}
				for _, child := range node.Children {
					node.Bounds = node.Bounds.Union(child.Bounds)
				}
				return nil
			}
			if err := b.leaf(node, el); err != nil {
				return fmt.Errorf("%s %q: %w", el.Type, el.ID, err)
			}
			node.Bounds = commandBounds(node.Commands)
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// style is an element style with theme colours and defaults resolved.
type style struct {
	color       string
	weight      float64
	opacity     float64
	fillOpacity float64
	dashed      bool
}

func resolveStyle(s document.Style, fallback string) style {
	r := style{
		color:       document.Color(s.Color, fallback),
		weight:      s.Weight,
		opacity:     s.Opacity,
		fillOpacity: s.FillOpacity,
		dashed:      s.LineStyle == document.LineDashed,
	}
	if r.weight <= 0 {
		r.weight = DefaultWeight
	}
	if r.opacity <= 0 {
		r.opacity = 1
	}
	if r.fillOpacity <= 0 {
		r.fillOpacity = DefaultFillAlpha
	}
	return r
}

func (s style) stroke(id string, path []PathCommand) DrawCommand {
	return DrawCommand{
		Op:          OpPath,
		ObjectID:    id,
		Path:        path,
		Stroke:      s.color,
		StrokeWidth: s.weight,
		Opacity:     s.opacity,
		Dashed:      s.dashed,
	}
}

func (s style) filled(id string, path []PathCommand) DrawCommand {
	cmd := s.stroke(id, path)
	cmd.Fill = s.color
	cmd.FillOpacity = s.fillOpacity
	return cmd
}

func (b *builder) leaf(node *SceneNode, el *document.Element) error {
	data, err := el.DecodeData()
	if err != nil {
		return err
	}
	st := resolveStyle(el.Style, document.ColorForeground)
	pixel := node.Scope.Pixel()

	switch d := data.(type) {
	case *document.CoordinatesData:
		return b.coordinates(node, d)

	case *document.PlotData:
		path, err := b.explicit(el, d)
		if err != nil {
			return err
		}
		node.Commands = append(node.Commands, st.stroke(el.ID, runsPath(path.Transform(pixel), false)))

	case *document.ParametricData:
		x, y := b.expr(el.ID, "x"), b.expr(el.ID, "y")
		path, err := b.sample(el, x.String()+";"+y.String(), formula.Parametric(x, y, b.env), d.T, d.SamplingData)
		if err != nil {
			return err
		}
		node.Commands = append(node.Commands, st.stroke(el.ID, runsPath(path.Transform(pixel), false)))

	case *document.VectorFieldData:
		return b.vectorField(node, el, d, st)

	case *document.PointData:
		node.Anchor = vec.Transform(b.resolve(d.At), pixel)
		node.Commands = append(node.Commands, DrawCommand{
			Op:       OpPoint,
			ObjectID: el.ID,
			Fill:     st.color,
			Opacity:  st.opacity,
			X:        node.Anchor.X,
			Y:        node.Anchor.Y,
			Radius:   PointRadius,
		})

	case *document.MovablePointData:
		p := b.e.points[el.ID]
		node.Anchor = vec.Transform(p.Position(), pixel)
		node.Commands = append(node.Commands, DrawCommand{
			Op:        OpPoint,
			ObjectID:  el.ID,
			Fill:      st.color,
			Opacity:   st.opacity,
			Marker:    MarkerMovable,
			X:         node.Anchor.X,
			Y:         node.Anchor.Y,
			Radius:    PointRadius,
			Transform: pixel.Slice(),
		})

	case *document.TwoPointData:
		p1, p2 := b.resolve(d.P1), b.resolve(d.P2)
		seg := shape.Segment{A: p1, B: p2}
		if el.Type == document.ElementLineThroughPoints {
			if seg, err = shape.ThroughPoints(p1, p2); err != nil {
				// Coincident points define no line.
				return nil
			}
		}
		node.Commands = append(node.Commands, st.stroke(el.ID, segmentPath(seg.Transform(pixel))))

	case *document.PointSlopeData:
		seg := shape.PointSlope(b.resolve(d.At), d.Slope)
		node.Commands = append(node.Commands, st.stroke(el.ID, segmentPath(seg.Transform(pixel))))

	case *document.PointAngleData:
		seg := shape.PointAngle(b.resolve(d.At), d.Angle)
		node.Commands = append(node.Commands, st.stroke(el.ID, segmentPath(seg.Transform(pixel))))

	case *document.CircleData:
		center := b.resolve(d.Center)
		source := fmt.Sprintf("%g,%g,%g", center.X, center.Y, d.Radius)
		path, err := b.sample(el, source, shape.Circle(center, d.Radius), shape.FullTurn, document.SamplingData{})
		if err != nil {
			return err
		}
		node.Commands = append(node.Commands, st.filled(el.ID, runsPath(path.Transform(pixel), true)))

	case *document.EllipseData:
		center := b.resolve(d.Center)
		source := fmt.Sprintf("%g,%g,%g,%g,%g", center.X, center.Y, d.Radius.X, d.Radius.Y, d.Angle)
		path, err := b.sample(el, source, shape.Ellipse(center, d.Radius, d.Angle), shape.FullTurn, document.SamplingData{})
		if err != nil {
			return err
		}
		node.Commands = append(node.Commands, st.filled(el.ID, runsPath(path.Transform(pixel), true)))

	case *document.PolygonData:
		pts := make([]vec.Vector2, len(d.Points))
		for i, r := range d.Points {
			pts[i] = b.resolve(r)
		}
		outline := shape.Polygon(pts, pixel)
		node.Commands = append(node.Commands, st.filled(el.ID, runsPath([][]vec.Vector2{outline}, true)))

	case *document.VectorData:
		arrow := shape.NewArrow(b.resolve(d.Tail), b.resolve(d.Tip), pixel, shape.VectorHeadSize)
		head := st.filled(el.ID, runsPath([][]vec.Vector2{arrow.Head[:]}, true))
		head.FillOpacity = 1
		head.Marker = MarkerArrow
		head.Dashed = false
		node.Commands = append(node.Commands,
			st.stroke(el.ID, segmentPath(shape.Segment{A: arrow.Tail, B: arrow.Tip})),
			head,
		)

	case *document.TextData:
		return b.text(node, el, d, st)
	}
	return nil
}

// resolve reads a literal position or the current position of a named
// point.
func (b *builder) resolve(r document.PointRef) vec.Vector2 {
	if r.Point == "" {
		return r.Vec()
	}
	for _, p := range b.e.order {
		if p.name == r.Point {
			return p.Position()
		}
	}
	return vec.V(math.NaN(), math.NaN())
}

func (b *builder) expr(id, field string) *formula.Expr {
	return b.e.exprs[formulaKey(id, field)]
}

// samplingOptions resolves per-plot depths against the defaults and the
// engine's depth cap.
func (b *builder) samplingOptions(s document.SamplingData) sample.Options {
	maxDepth := s.MaxDepth
	if maxDepth == 0 {
		maxDepth = sample.DefaultMaxDepth
	}
	maxDepth = min(maxDepth, b.e.maxDepth)
	minDepth := s.MinDepth
	if minDepth == 0 {
		minDepth = sample.DefaultMinDepth
	}
	return sample.Options{
		MinDepth:       min(minDepth, maxDepth),
		MaxDepth:       maxDepth,
		ErrorThreshold: b.vp.ErrorThreshold(),
	}
}

// cacheKey scopes a sampled path to this diagram and element, the source
// of the curve, the point layout, the clock time and the viewport.
func (b *builder) cacheKey(el *document.Element, source string, domain [2]float64, opts sample.Options) string {
	id := b.e.doc.ID + "/" + el.ID + "/" + string(el.Type) + ":" + source + "@" + b.envID
	return sample.Key(id, domain, opts)
}

func (b *builder) sample(el *document.Element, source string, xy sample.Func, domain [2]float64, s document.SamplingData) (sample.Path, error) {
	opts := b.samplingOptions(s)
	return b.e.cache.Get(b.cacheKey(el, source, domain, opts), func() (sample.Path, error) {
		return sample.Parametric(xy, domain, opts)
	})
}

func (b *builder) explicit(el *document.Element, d *document.PlotData) (sample.Path, error) {
	opts := b.samplingOptions(d.SamplingData)
	ex := b.expr(el.ID, "expr")

	if el.Type == document.ElementPlotOfY {
		r := b.vp.YPaneRange
		return b.e.cache.Get(b.cacheKey(el, ex.String(), [2]float64{r.Lo, r.Hi}, opts), func() (sample.Path, error) {
			return sample.OfY(formula.OfY(ex, b.env), b.vp, opts)
		})
	}
	r := b.vp.XPaneRange
	return b.e.cache.Get(b.cacheKey(el, ex.String(), [2]float64{r.Lo, r.Hi}, opts), func() (sample.Path, error) {
		return sample.OfX(formula.OfX(ex, b.env), b.vp, opts)
	})
}

func (b *builder) vectorField(node *SceneNode, el *document.Element, d *document.VectorFieldData, st style) error {
	opts := shape.FieldOptions{Step: d.Step, OpacityStep: d.OpacityStep}
	if opts.Step == 0 {
		opts.Step = defaultFieldStep
	}
	if op := b.expr(el.ID, "opacity"); op != nil {
		opts.Opacity = formula.Scalar(op, b.env)
	}
	field := formula.Field(b.expr(el.ID, "dx"), b.expr(el.ID, "dy"), b.env)

	layers, err := shape.VectorField(field, opts, b.vp, node.Scope.Pixel())
	if err != nil {
		return err
	}
	for _, layer := range layers {
		if len(layer.Arrows) == 0 {
			continue
		}
		var path []PathCommand
		for _, a := range layer.Arrows {
			path = append(path, moveTo(a.Tail), lineTo(a.Tip))
			path = append(path, moveTo(a.Head[1]), lineTo(a.Head[0]), lineTo(a.Head[2]))
		}
		cmd := st.stroke(el.ID, path)
		cmd.Opacity = st.opacity * layer.Opacity
		node.Commands = append(node.Commands, cmd)
	}
	return nil
}

func (b *builder) coordinates(node *SceneNode, d *document.CoordinatesData) error {
	x := axisOptions(d.XAxis, d.Subdivisions)
	y := axisOptions(d.YAxis, d.Subdivisions)

	grid, err := shape.CartesianGrid(b.vp, x, y)
	if err != nil {
		return err
	}

	lines := func(segs []shape.Segment, color string, weight float64) {
		if len(segs) == 0 {
			return
		}
		var path []PathCommand
		for _, s := range segs {
			path = append(path, segmentPath(s)...)
		}
		node.Commands = append(node.Commands, DrawCommand{
			Op:          OpPath,
			ObjectID:    node.ID,
			Path:        path,
			Stroke:      color,
			StrokeWidth: weight,
			Opacity:     1,
		})
	}
	lines(grid.Minor, document.ColorSubgrid, gridLineWeight)
	lines(grid.Major, document.ColorGrid, gridLineWeight)
	lines(grid.Axes, document.ColorOrigin, originLineWeight)

	for _, l := range grid.Labels {
		node.Commands = append(node.Commands, DrawCommand{
			Op:       OpText,
			ObjectID: node.ID,
			Fill:     document.ColorForeground,
			Opacity:  1,
			Text:     l.Text,
			Align:    l.Anchor,
			Baseline: l.Baseline,
			Size:     gridLabelSize,
			X:        l.At.X,
			Y:        l.At.Y,
		})
	}
	return nil
}

func axisOptions(a document.AxisData, subdivisions int) shape.AxisOptions {
	if a.Hidden {
		return shape.AxisOptions{}
	}
	opts := shape.DefaultAxis()
	if a.Axis != nil {
		opts.Axis = *a.Axis
	}
	if a.Lines != nil {
		opts.Lines = *a.Lines
	}
	opts.Subdivisions = subdivisions
	if a.Subdivisions > 0 {
		opts.Subdivisions = a.Subdivisions
	}
	switch a.Labels {
	case document.LabelsPi:
		opts.Labels = shape.LabelPi
	case document.LabelsNone:
		opts.Labels = nil
	}
	return opts
}

func (b *builder) text(node *SceneNode, el *document.Element, d *document.TextData, st style) error {
	anchor, err := shape.TextAnchor(d.Attach, d.AttachDistance)
	if err != nil {
		return err
	}
	size := d.Size
	if size <= 0 {
		size = DefaultTextSize
	}
	node.Anchor = vec.Transform(b.resolve(d.At), node.Scope.Pixel()).Add(anchor.Offset)
	node.Commands = append(node.Commands, DrawCommand{
		Op:       OpText,
		ObjectID: el.ID,
		Fill:     st.color,
		Opacity:  st.opacity,
		Text:     d.Text,
		Align:    anchor.Align,
		Baseline: anchor.Baseline,
		Size:     size,
		X:        node.Anchor.X,
		Y:        node.Anchor.Y,
	})
	return nil
}

func segmentPath(s shape.Segment) []PathCommand {
	return []PathCommand{moveTo(s.A), lineTo(s.B)}
}

// runsPath strokes each run as its own subpath. A run of one vertex is
// an isolated sample and draws nothing.
func runsPath(runs [][]vec.Vector2, closed bool) []PathCommand {
	var path []PathCommand
	for _, run := range runs {
		if len(run) < 2 {
			continue
		}
		path = append(path, moveTo(run[0]))
		for _, p := range run[1:] {
			path = append(path, lineTo(p))
		}
		if closed {
			path = append(path, closePath())
		}
	}
	return path
}
