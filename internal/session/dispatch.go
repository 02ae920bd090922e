package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/inamate/graphpad/internal/document"
	"github.com/inamate/graphpad/internal/engine"
	"github.com/inamate/graphpad/internal/formula"
	"github.com/inamate/graphpad/internal/interact"
	"github.com/inamate/graphpad/internal/vec"
	"github.com/inamate/graphpad/internal/viewport"
)

var (
	errBadPayload  = errors.New("session: bad payload")
	errUnknownType = errors.New("session: unknown message type")
)

// handle applies one request to the client's engine and answers with a
// frame, or with an error sent to this client only.
func (c *Client) handle(msg *Message) {
	if err := c.apply(msg); err != nil {
		code := errorCode(err)
		if code == CodeInternal {
			slog.Error("request failed", "error", err, "type", msg.Type, "session", c.SessionID)
		} else {
			slog.Debug("request rejected", "error", err, "type", msg.Type, "session", c.SessionID)
		}
		c.reply(msg.Seq, TypeError, ErrorPayload{Code: code, Message: err.Error()})
		return
	}

	frame, err := c.frame()
	if err != nil {
		c.reply(msg.Seq, TypeError, ErrorPayload{Code: errorCode(err), Message: err.Error()})
		return
	}
	c.reply(msg.Seq, TypeFrame, frame)
}

func (c *Client) apply(msg *Message) error {
	e := c.engine

	switch msg.Type {
	case TypeDiagramLoad:
		var p LoadPayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		if len(p.Diagram) == 0 {
			return e.LoadSample()
		}
		return e.LoadDiagram(p.Diagram)

	case TypeViewportResize:
		var p ResizePayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		return e.Resize(p.Width, p.Height)

	case TypeViewportPan:
		var p PanPayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		var err error
		switch {
		case p.Offset != nil:
			err = e.SetPan(*p.Offset)
		case p.Pixels != nil:
			err = e.PanBy(*p.Pixels)
		}
		if p.End {
			e.EndPan()
		}
		return err

	case TypeDragStart:
		var p DragStartPayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		id := p.PointID
		if id == "" {
			if id = e.HitTest(p.X, p.Y); id == "" {
				return fmt.Errorf("%w: nothing at (%g, %g)", engine.ErrUnknownPoint, p.X, p.Y)
			}
		}
		return e.BeginDrag(id)

	case TypeDragMove:
		var p DragMovePayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		_, err := e.UpdateDrag(p.Movement)
		return err

	case TypeDragEnd:
		_, err := e.EndDrag()
		return err

	case TypePointNudge:
		var p NudgePayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		_, err := e.Nudge(p.PointID, p.Key, interact.Modifiers{Fine: p.Fine, Coarse: p.Coarse})
		return err

	case TypeClockStart:
		e.Start()
	case TypeClockStop:
		e.Stop()
	case TypeClockSet:
		var p ClockSetPayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		return e.SetTime(p.Time)
	case TypeClockTick:
		var p ClockTickPayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		e.Tick(p.DT)

	case TypeRender:
		// Nothing to apply; the frame is the answer.

	default:
		return fmt.Errorf("%w: %q", errUnknownType, msg.Type)
	}
	return nil
}

func decode(msg *Message, v any) error {
	if len(msg.Payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(msg.Payload, v); err != nil {
		return fmt.Errorf("%w: %s: %w", errBadPayload, msg.Type, err)
	}
	return nil
}

func (c *Client) frame() (FramePayload, error) {
	e := c.engine
	commands, err := e.Render()
	if err != nil {
		return FramePayload{}, err
	}
	if commands == nil {
		commands = []engine.DrawCommand{}
	}
	return FramePayload{
		Viewport: e.Viewport(),
		Commands: commands,
		Points:   e.Points(),
		Dragging: e.Dragging(),
		Time:     e.Time(),
		Running:  e.Running(),
	}, nil
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, errBadPayload):
		return CodeBadRequest
	case errors.Is(err, errUnknownType):
		return CodeUnknownType
	case errors.Is(err, document.ErrInvalid), errors.Is(err, formula.ErrCompile):
		return CodeInvalidDiagram
	case errors.Is(err, engine.ErrNoDiagram):
		return CodeNoDiagram
	case errors.Is(err, engine.ErrUnknownPoint):
		return CodeUnknownPoint
	case errors.Is(err, engine.ErrNoDrag):
		return CodeNoDrag
	case errors.Is(err, interact.ErrBusy):
		return CodeBusy
	case errors.Is(err, vec.ErrNotInvertible):
		return CodeNotInvertible
	case errors.Is(err, interact.ErrConstraintViolation):
		return CodeConstraintViolation
	case errors.Is(err, viewport.ErrInvalidSize), errors.Is(err, viewport.ErrEmptyBounds),
		errors.Is(err, engine.ErrPanDisabled):
		return CodeInvalidViewport
	case errors.Is(err, engine.ErrTimeOutOfRange):
		return CodeOutOfRange
	case errors.Is(err, engine.ErrUnknownKey):
		return CodeBadRequest
	}
	return CodeInternal
}
