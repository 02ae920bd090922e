package session

import (
	"encoding/json"

	"github.com/inamate/graphpad/internal/engine"
	"github.com/inamate/graphpad/internal/vec"
	"github.com/inamate/graphpad/internal/viewport"
)

// Message is the envelope for every websocket frame in both directions.
// Replies carry the Seq of the request they answer.
type Message struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId,omitempty"`
	ClientID  string          `json:"clientId,omitempty"`
	Seq       int64           `json:"seq,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

const (
	// Connection
	TypeWelcome = "welcome"
	TypeError   = "error"

	// Client requests
	TypeDiagramLoad    = "diagram.load"
	TypeViewportResize = "viewport.resize"
	TypeViewportPan    = "viewport.pan"
	TypeDragStart      = "drag.start"
	TypeDragMove       = "drag.move"
	TypeDragEnd        = "drag.end"
	TypePointNudge     = "point.nudge"
	TypeClockStart     = "clock.start"
	TypeClockStop      = "clock.stop"
	TypeClockSet       = "clock.set"
	TypeClockTick      = "clock.tick"
	TypeRender         = "render"

	// Server replies
	TypeFrame = "frame"
)

type WelcomePayload struct {
	SessionID string `json:"sessionId"`
	ClientID  string `json:"clientId"`
}

// LoadPayload carries a diagram document, or asks for the sample when
// Diagram is empty.
type LoadPayload struct {
	Diagram json.RawMessage `json:"diagram,omitempty"`
}

type ResizePayload struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// PanPayload either sets the math-space Offset or reports the total
// Pixels moved by the current gesture. End finishes the gesture.
type PanPayload struct {
	Offset *vec.Vector2 `json:"offset,omitempty"`
	Pixels *vec.Vector2 `json:"pixels,omitempty"`
	End    bool         `json:"end,omitempty"`
}

// DragStartPayload names the point to drag, or gives a pixel position to
// hit test when PointID is empty.
type DragStartPayload struct {
	PointID string  `json:"pointId,omitempty"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
}

// DragMovePayload is the total pixel movement since the drag started.
type DragMovePayload struct {
	Movement vec.Vector2 `json:"movement"`
}

type NudgePayload struct {
	PointID string `json:"pointId"`
	Key     string `json:"key"`
	Fine    bool   `json:"fine,omitempty"`
	Coarse  bool   `json:"coarse,omitempty"`
}

type ClockSetPayload struct {
	Time float64 `json:"time"`
}

type ClockTickPayload struct {
	DT float64 `json:"dt"`
}

// FramePayload is the full render state after a request.
type FramePayload struct {
	Viewport viewport.Viewport    `json:"viewport"`
	Commands []engine.DrawCommand `json:"commands"`
	Points   []engine.PointState  `json:"points"`
	Dragging string               `json:"dragging,omitempty"`
	Time     float64              `json:"time"`
	Running  bool                 `json:"running"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes sent in ErrorPayload.Code.
const (
	CodeBadRequest          = "bad_request"
	CodeUnknownType         = "unknown_type"
	CodeInvalidDiagram      = "invalid_diagram"
	CodeNoDiagram           = "no_diagram"
	CodeUnknownPoint        = "unknown_point"
	CodeNoDrag              = "no_drag"
	CodeBusy                = "busy"
	CodeNotInvertible       = "not_invertible"
	CodeConstraintViolation = "constraint_violation"
	CodeInvalidViewport     = "invalid_viewport"
	CodeOutOfRange          = "out_of_range"
	CodeInternal            = "internal"
)
