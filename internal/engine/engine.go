package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/inamate/graphpad/internal/document"
	"github.com/inamate/graphpad/internal/formula"
	"github.com/inamate/graphpad/internal/interact"
	"github.com/inamate/graphpad/internal/sample"
	"github.com/inamate/graphpad/internal/transform"
	"github.com/inamate/graphpad/internal/typeid"
	"github.com/inamate/graphpad/internal/vec"
	"github.com/inamate/graphpad/internal/viewport"
)

var (
	ErrNoDiagram    = errors.New("engine: no diagram loaded")
	ErrUnknownPoint = errors.New("engine: unknown point")
	ErrNoDrag       = errors.New("engine: no drag in progress")
	ErrUnknownKey   = errors.New("engine: unknown nudge key")
	ErrPanDisabled  = errors.New("engine: panning is disabled for this diagram")
)

// Engine owns one diagram and everything needed to render and interact
// with it. It is not safe for concurrent use; each session owns one.
type Engine struct {
	// Document state
	doc   *document.Diagram
	exprs map[string]*formula.Expr
	ids   *typeid.Generator

	// Viewport inputs and the viewport derived from them
	size    viewport.Size
	pan     vec.Vector2
	panBase vec.Vector2
	panning bool
	vp      viewport.Viewport

	// Movable points by element ID, and the active drag
	points map[string]*point
	order  []*point
	drag   *drag

	clock *Clock

	cache    *sample.Cache
	maxDepth int

	// Retained scene graph, rebuilt when dirty
	sceneGraph *SceneGraph
	dirty      bool
}

type point struct {
	id   string
	name string
	user vec.Matrix
	*interact.MovablePoint
}

type drag struct {
	point   *point
	session *interact.DragSession
}

// PointState describes a movable point for clients.
type PointState struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Position vec.Vector2 `json:"position"`
	State    string      `json:"state"`
}

// Option configures an Engine.
type Option func(*Engine)

// WithCache shares a sample cache between engines.
func WithCache(c *sample.Cache) Option {
	return func(e *Engine) { e.cache = c }
}

// WithMaxDepth caps the sampling depth any plot may request.
func WithMaxDepth(depth int) Option {
	return func(e *Engine) { e.maxDepth = depth }
}

// NewEngine creates an engine with no diagram loaded.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		cache:      sample.NewCache(256),
		maxDepth:   sample.MaxDepthCeiling,
		sceneGraph: NewSceneGraph(),
		clock:      NewClock(0, 0),
		dirty:      true,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.maxDepth = min(max(e.maxDepth, 1), sample.MaxDepthCeiling)
	return e
}

// --- Commands ---

// LoadDiagram parses a diagram from JSON and makes it current.
func (e *Engine) LoadDiagram(data []byte) error {
	doc, err := document.Parse(data)
	if err != nil {
		return err
	}
	return e.load(doc)
}

// LoadSample loads the built-in sample diagram.
func (e *Engine) LoadSample() error {
	return e.load(document.NewSampleDiagram())
}

// SetDiagram makes an already validated diagram current.
func (e *Engine) SetDiagram(doc *document.Diagram) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	return e.load(doc)
}

func (e *Engine) load(doc *document.Diagram) error {
	if doc.ID == "" {
		doc.ID = typeid.NewDiagramID()
	}
	ids := typeid.NewGenerator()
	assignIDs(doc, ids)

	exprs, err := compileFormulas(doc)
	if err != nil {
		return err
	}
	points, err := indexPoints(doc)
	if err != nil {
		return err
	}
	size := viewport.Size{Width: doc.Width, Height: doc.Height}
	vp, err := viewport.Compute(doc.ViewBox, size, vec.Vector2{}, doc.Preserve)
	if err != nil {
		return err
	}

	e.Release()
	e.doc = doc
	e.exprs = exprs
	e.ids = ids
	e.size = size
	e.pan = vec.Vector2{}
	e.panning = false
	e.vp = vp
	e.order = points
	e.points = make(map[string]*point, len(points))
	for _, p := range points {
		e.points[p.id] = p
	}
	e.drag = nil
	e.clock = clockFor(doc.Clock)
	e.dirty = true
	return nil
}

// Release drops the sampled paths of the current diagram from the cache.
func (e *Engine) Release() {
	if e.doc != nil {
		e.cache.Invalidate(e.doc.ID + "/")
	}
}

// assignIDs gives every element without an ID a generated one.
func assignIDs(doc *document.Diagram, ids *typeid.Generator) {
	taken := make(map[string]bool)
	document.Walk(doc.Elements, func(el *document.Element, _ int) bool {
		taken[el.ID] = true
		return true
	})
	document.Walk(doc.Elements, func(el *document.Element, _ int) bool {
		if el.ID != "" {
			return true
		}
		id := ids.Next(string(el.Type))
		for taken[id] {
			id = ids.Next(string(el.Type))
		}
		el.ID = id
		taken[id] = true
		return true
	})
}

// formulaKey names the compiled expression for one field of an element.
func formulaKey(id, field string) string { return id + "." + field }

func compileFormulas(doc *document.Diagram) (map[string]*formula.Expr, error) {
	names := doc.PointNames()
	exprs := make(map[string]*formula.Expr)

	compile := func(id, field, src string) error {
		if src == "" {
			return nil
		}
		ex, err := formula.Compile(src, names...)
		if err != nil {
			return fmt.Errorf("element %q %s: %w", id, field, err)
		}
		exprs[formulaKey(id, field)] = ex
		return nil
	}

	var err error
	document.Walk(doc.Elements, func(el *document.Element, _ int) bool {
		if err != nil {
			return false
		}
		data, derr := el.DecodeData()
		if derr != nil {
			err = derr
			return false
		}
		switch d := data.(type) {
		case *document.PlotData:
			err = compile(el.ID, "expr", d.Expr)
		case *document.ParametricData:
			err = errors.Join(compile(el.ID, "x", d.X), compile(el.ID, "y", d.Y))
		case *document.VectorFieldData:
			err = errors.Join(
				compile(el.ID, "dx", d.DX),
				compile(el.ID, "dy", d.DY),
				compile(el.ID, "opacity", d.Opacity),
			)
		}
		return err == nil
	})
	return exprs, err
}

// indexPoints creates the movable points and records the user transform
// of the scope each one lives in.
func indexPoints(doc *document.Diagram) ([]*point, error) {
	var points []*point
	stack := transform.NewStack(vec.Identity())

	var visit func(elements []document.Element) error
	visit = func(elements []document.Element) error {
		for i := range elements {
			el := &elements[i]
			err := stack.Within(localMatrix(el), func(scope transform.Scope) error {
				if el.Type == document.ElementGroup {
					return visit(el.Children)
				}
				if el.Type != document.ElementMovablePoint {
					return nil
				}
				data, err := el.DecodeData()
				if err != nil {
					return err
				}
				d := data.(*document.MovablePointData)
				c, err := constraintFor(d)
				if err != nil {
					return fmt.Errorf("point %q: %w", el.ID, err)
				}
				points = append(points, &point{
					id:           el.ID,
					name:         el.Name,
					user:         scope.User,
					MovablePoint: interact.NewMovablePoint(d.At, c),
				})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}
	return points, visit(doc.Elements)
}

func constraintFor(d *document.MovablePointData) (interact.Constraint, error) {
	if d.Constrain == "snap" {
		return interact.Snap(d.Snap), nil
	}
	return interact.ForKind(d.Constrain, d.At)
}

func localMatrix(el *document.Element) vec.Matrix {
	if el.Transform == nil {
		return vec.Identity()
	}
	return el.Transform.Build()
}

// Resize changes the viewport size in pixels.
func (e *Engine) Resize(width, height float64) error {
	if e.doc == nil {
		return ErrNoDiagram
	}
	size := viewport.Size{Width: width, Height: height}
	if err := e.updateViewport(size, e.pan); err != nil {
		return err
	}
	return nil
}

// SetPan sets the math-space pan offset.
func (e *Engine) SetPan(offset vec.Vector2) error {
	if e.doc == nil {
		return ErrNoDiagram
	}
	if !e.doc.Pan {
		return ErrPanDisabled
	}
	e.panning = false
	return e.updateViewport(e.size, offset)
}

// PanBy applies a pan gesture. The offset is the total pixel movement
// since the gesture began; EndPan finishes the gesture.
func (e *Engine) PanBy(pixelOffset vec.Vector2) error {
	if e.doc == nil {
		return ErrNoDiagram
	}
	if !e.doc.Pan {
		return ErrPanDisabled
	}
	if !e.panning {
		e.panBase = e.pan
		e.panning = true
	}
	return e.updateViewport(e.size, e.panBase.Add(viewport.PanFromDrag(pixelOffset, e.vp)))
}

// EndPan finishes the current pan gesture.
func (e *Engine) EndPan() {
	e.panning = false
}

func (e *Engine) updateViewport(size viewport.Size, pan vec.Vector2) error {
	vp, err := viewport.Compute(e.doc.ViewBox, size, pan, e.doc.Preserve)
	if err != nil {
		return err
	}
	e.size, e.pan, e.vp = size, pan, vp
	e.dirty = true
	return nil
}

// BeginDrag starts dragging the movable point with the given ID.
func (e *Engine) BeginDrag(pointID string) error {
	p, err := e.point(pointID)
	if err != nil {
		return err
	}
	if e.drag != nil {
		return fmt.Errorf("%w: %q", interact.ErrBusy, e.drag.point.id)
	}
	session, err := p.BeginDrag(p.user, e.vp.View)
	if err != nil {
		return fmt.Errorf("point %q: %w", pointID, err)
	}
	e.drag = &drag{point: p, session: session}
	return nil
}

// UpdateDrag moves the dragged point by the total pixel movement since
// the drag began and returns its new position.
func (e *Engine) UpdateDrag(pixelMovement vec.Vector2) (vec.Vector2, error) {
	if e.drag == nil {
		return vec.Vector2{}, ErrNoDrag
	}
	before := e.drag.point.Position()
	pos, err := e.drag.session.Update(pixelMovement)
	if err != nil {
		return pos, fmt.Errorf("point %q: %w", e.drag.point.id, err)
	}
	if pos != before {
		e.dirty = true
	}
	return pos, nil
}

// EndDrag finishes the active drag and returns the final position.
func (e *Engine) EndDrag() (vec.Vector2, error) {
	if e.drag == nil {
		return vec.Vector2{}, ErrNoDrag
	}
	pos := e.drag.session.End()
	e.drag = nil
	return pos, nil
}

// Nudge moves a point one keyboard step. key is an arrow key name such
// as "ArrowLeft".
func (e *Engine) Nudge(pointID, key string, mods interact.Modifiers) (vec.Vector2, error) {
	p, err := e.point(pointID)
	if err != nil {
		return vec.Vector2{}, err
	}
	dir, ok := interact.DirectionFromKey(key)
	if !ok {
		return p.Position(), fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	before := p.Position()
	span := interact.SpanFor(dir, e.vp.XSpan, e.vp.YSpan)
	pos, err := p.Nudge(dir, mods, p.user, span)
	if err != nil {
		return pos, fmt.Errorf("point %q: %w", pointID, err)
	}
	if pos != before {
		e.dirty = true
	}
	return pos, nil
}

// SetPoint moves a point to pos, given in the point's own coordinates,
// through its constraint. A point being dragged cannot be moved.
func (e *Engine) SetPoint(pointID string, pos vec.Vector2) (vec.Vector2, error) {
	p, err := e.point(pointID)
	if err != nil {
		return vec.Vector2{}, err
	}
	if e.drag != nil && e.drag.point == p {
		return p.Position(), fmt.Errorf("%w: %q", interact.ErrBusy, pointID)
	}
	before := p.Position()
	next, err := p.SetPosition(pos)
	if err != nil {
		return next, fmt.Errorf("point %q: %w", pointID, err)
	}
	if next != before {
		e.dirty = true
	}
	return next, nil
}

// Start runs the clock.
func (e *Engine) Start() { e.clock.Start() }

// Stop halts the clock and rewinds it.
func (e *Engine) Stop() {
	e.clock.Stop()
	e.dirty = true
}

// SetTime jumps the clock to t seconds.
func (e *Engine) SetTime(t float64) error {
	if err := e.clock.SetTime(t); err != nil {
		return err
	}
	e.dirty = true
	return nil
}

// Tick advances a running clock by dt seconds.
func (e *Engine) Tick(dt float64) {
	if e.clock.Tick(dt) {
		e.dirty = true
	}
}

// --- Queries ---

// Diagram returns the loaded diagram, or nil.
func (e *Engine) Diagram() *document.Diagram { return e.doc }

// Viewport returns the current viewport.
func (e *Engine) Viewport() viewport.Viewport { return e.vp }

// Time returns the clock time in seconds.
func (e *Engine) Time() float64 { return e.clock.Time() }

// Running reports whether the clock is running.
func (e *Engine) Running() bool { return e.clock.Running() }

// Dragging returns the ID of the point being dragged, if any.
func (e *Engine) Dragging() string {
	if e.drag == nil {
		return ""
	}
	return e.drag.point.id
}

// Point returns the position of a movable point.
func (e *Engine) Point(id string) (vec.Vector2, error) {
	p, err := e.point(id)
	if err != nil {
		return vec.Vector2{}, err
	}
	return p.Position(), nil
}

// Points lists the movable points in document order.
func (e *Engine) Points() []PointState {
	out := make([]PointState, 0, len(e.order))
	for _, p := range e.order {
		out = append(out, PointState{ID: p.id, Name: p.name, Position: p.Position(), State: p.State().String()})
	}
	return out
}

func (e *Engine) point(id string) (*point, error) {
	if e.doc == nil {
		return nil, ErrNoDiagram
	}
	p, ok := e.points[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPoint, id)
	}
	return p, nil
}

// Render returns the draw commands for the current state.
func (e *Engine) Render() ([]DrawCommand, error) {
	if e.doc == nil {
		return nil, ErrNoDiagram
	}
	if err := e.rebuild(); err != nil {
		return nil, err
	}
	return CompileDrawCommands(e.sceneGraph), nil
}

// RenderJSON returns the draw commands as JSON.
func (e *Engine) RenderJSON() (string, error) {
	commands, err := e.Render()
	if err != nil {
		return "[]", err
	}
	return DrawCommandsToJSON(commands)
}

func (e *Engine) rebuild() error {
	if !e.dirty {
		return nil
	}
	sg, err := e.buildSceneGraph()
	if err != nil {
		return err
	}
	e.sceneGraph = sg
	e.dirty = false
	return nil
}

// HitTest returns the ID of the movable point under pixel (x, y), or the
// empty string.
func (e *Engine) HitTest(x, y float64) string {
	if e.doc == nil || e.rebuild() != nil {
		return ""
	}
	return HitTest(e.sceneGraph, x, y)
}

// Bounds returns the pixel bounding box of the given elements.
func (e *Engine) Bounds(ids ...string) Rect {
	if e.doc == nil || e.rebuild() != nil {
		return Rect{}
	}
	return GetBounds(e.sceneGraph, ids)
}

// GetDocument returns the diagram as JSON, with point positions as they
// are now.
func (e *Engine) GetDocument() ([]byte, error) {
	if e.doc == nil {
		return nil, ErrNoDiagram
	}
	doc := *e.doc
	doc.Elements = slices.Clone(doc.Elements)
	if err := e.snapshotPoints(doc.Elements); err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}

// snapshotPoints writes current positions into a copy of the elements.
func (e *Engine) snapshotPoints(elements []document.Element) error {
	for i := range elements {
		el := &elements[i]
		if len(el.Children) > 0 {
			el.Children = slices.Clone(el.Children)
			if err := e.snapshotPoints(el.Children); err != nil {
				return err
			}
		}
		p, ok := e.points[el.ID]
		if !ok || el.Type != document.ElementMovablePoint {
			continue
		}
		data, err := el.DecodeData()
		if err != nil {
			return err
		}
		d := data.(*document.MovablePointData)
		d.At = p.Position()
		if el.Data, err = json.Marshal(d); err != nil {
			return err
		}
	}
	return nil
}
