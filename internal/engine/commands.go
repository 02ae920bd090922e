package engine

import (
	"encoding/json"

	"github.com/inamate/graphpad/internal/document"
)

// Draw operations.
const (
	OpPath  = "path"
	OpPoint = "point"
	OpText  = "text"
)

// Markers decorate commands the client draws specially.
const (
	MarkerMovable = "movable"
	MarkerArrow   = "arrowhead"
)

// DrawCommand is a single drawing operation in pixel space. The frontend
// receives a list of these and executes them on a Canvas2D context.
type DrawCommand struct {
	Op          string        `json:"op"`                    // "path", "point", "text"
	ObjectID    string        `json:"objectId,omitempty"`    // For hit correlation
	Path        []PathCommand `json:"path,omitempty"`        // Path data for "path" ops
	Fill        string        `json:"fill,omitempty"`        // Fill color
	Stroke      string        `json:"stroke,omitempty"`      // Stroke color
	StrokeWidth float64       `json:"strokeWidth,omitempty"` // Stroke width
	Opacity     float64       `json:"opacity,omitempty"`     // Global alpha
	FillOpacity float64       `json:"fillOpacity,omitempty"` // Alpha applied to Fill only
	Dashed      bool          `json:"dashed,omitempty"`
	Marker      string        `json:"marker,omitempty"`
	Text        string        `json:"text,omitempty"`
	Align       string        `json:"align,omitempty"`    // textAlign for "text"
	Baseline    string        `json:"baseline,omitempty"` // textBaseline for "text"
	Size        float64       `json:"size,omitempty"`     // Font size for "text"
	X           float64       `json:"x,omitempty"`
	Y           float64       `json:"y,omitempty"`
	Radius      float64       `json:"radius,omitempty"`
	Transform   []float64     `json:"transform,omitempty"` // [a, b, c, d, e, f] math-to-pixel matrix of the scope
}

// CompileDrawCommands flattens a scene graph into a draw command buffer.
// Commands are in painter's order (back to front).
func CompileDrawCommands(sg *SceneGraph) []DrawCommand {
	if sg == nil || sg.Root == nil {
		return nil
	}

	var commands []DrawCommand
	compileNode(sg.Root, &commands)
	return commands
}

func compileNode(node *SceneNode, commands *[]DrawCommand) {
	if node == nil {
		return
	}
	*commands = append(*commands, node.Commands...)
	for _, child := range node.Children {
		compileNode(child, commands)
	}
}

// DrawCommandsToJSON serializes draw commands to JSON.
func DrawCommandsToJSON(commands []DrawCommand) (string, error) {
	if commands == nil {
		commands = []DrawCommand{}
	}
	data, err := json.Marshal(commands)
	if err != nil {
		return "[]", err
	}
	return string(data), nil
}

// HitRadius is the pixel distance within which a movable point can be
// grabbed.
const HitRadius = 30

// HitTest returns the ID of the topmost movable point within HitRadius
// pixels of (x, y), or the empty string.
func HitTest(sg *SceneGraph, x, y float64) string {
	if sg == nil || sg.Root == nil {
		return ""
	}
	return hitTestNode(sg.Root, x, y)
}

// Children are tested first and in reverse, matching painter's order.
func hitTestNode(node *SceneNode, x, y float64) string {
	for i := len(node.Children) - 1; i >= 0; i-- {
		if hit := hitTestNode(node.Children[i], x, y); hit != "" {
			return hit
		}
	}

	if node.Type == document.ElementMovablePoint {
		dx, dy := node.Anchor.X-x, node.Anchor.Y-y
		if dx*dx+dy*dy <= HitRadius*HitRadius {
			return node.ID
		}
	}
	return ""
}

// GetBounds returns the combined pixel bounding box of the given elements.
func GetBounds(sg *SceneGraph, ids []string) Rect {
	if sg == nil || len(ids) == 0 {
		return Rect{}
	}

	var result Rect
	for _, id := range ids {
		node, ok := sg.NodesByID[id]
		if !ok {
			continue
		}
		result = result.Union(node.Bounds)
	}
	return result
}
