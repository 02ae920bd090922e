package engine

import (
	"math"

	"github.com/inamate/graphpad/internal/document"
	"github.com/inamate/graphpad/internal/transform"
	"github.com/inamate/graphpad/internal/vec"
)

// SceneGraph is the resolved, render-ready state of a diagram for one
// viewport, point layout and clock time.
type SceneGraph struct {
	Root      *SceneNode
	NodesByID map[string]*SceneNode
}

// SceneNode is one element with its scope resolved and its draw commands
// already in pixel space.
type SceneNode struct {
	ID   string
	Type document.ElementType

	// Scope is the transform state the element was drawn in.
	Scope transform.Scope

	Parent   *SceneNode
	Children []*SceneNode

	Commands []DrawCommand

	// Anchor is the pixel position of point-like elements.
	Anchor vec.Vector2

	// Hit testing
	Bounds Rect
}

// PathCommand is a single path segment: ["M", x, y], ["L", x, y] or ["Z"].
type PathCommand []any

func moveTo(p vec.Vector2) PathCommand { return PathCommand{"M", p.X, p.Y} }
func lineTo(p vec.Vector2) PathCommand { return PathCommand{"L", p.X, p.Y} }
func closePath() PathCommand           { return PathCommand{"Z"} }

// Rect is an axis-aligned pixel-space box.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewSceneGraph creates an empty scene graph.
func NewSceneGraph() *SceneGraph {
	return &SceneGraph{
		NodesByID: make(map[string]*SceneNode),
	}
}

func (sg *SceneGraph) add(node *SceneNode) {
	if node.Parent != nil {
		node.Parent.Children = append(node.Parent.Children, node)
	}
	sg.NodesByID[node.ID] = node
}

// Contains checks if a point is inside the rect.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width && y >= r.Y && y <= r.Y+r.Height
}

// IsEmpty reports whether the rect has no area.
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Union returns the smallest rect containing both rects.
func (r Rect) Union(other Rect) Rect {
	if r.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return r
	}

	minX := min(r.X, other.X)
	minY := min(r.Y, other.Y)
	maxX := max(r.X+r.Width, other.X+other.Width)
	maxY := max(r.Y+r.Height, other.Y+other.Height)

	return Rect{
		X:      minX,
		Y:      minY,
		Width:  maxX - minX,
		Height: maxY - minY,
	}
}

// Center returns the center point of the rect.
func (r Rect) Center() (float64, float64) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// commandBounds is the box around every finite path vertex and point
// marker in cmds. Lines reaching far outside the viewport give huge
// boxes; callers clip as they need.
func commandBounds(cmds []DrawCommand) Rect {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	grow := func(x, y, r float64) {
		if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
			return
		}
		minX, minY = min(minX, x-r), min(minY, y-r)
		maxX, maxY = max(maxX, x+r), max(maxY, y+r)
	}

	for _, cmd := range cmds {
		switch cmd.Op {
		case OpPath:
			for _, pc := range cmd.Path {
				if len(pc) == 3 {
					x, _ := pc[1].(float64)
					y, _ := pc[2].(float64)
					grow(x, y, cmd.StrokeWidth/2)
				}
			}
		case OpPoint:
			grow(cmd.X, cmd.Y, cmd.Radius)
		case OpText:
			grow(cmd.X, cmd.Y, 0)
		}
	}

	if minX > maxX {
		return Rect{}
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}
