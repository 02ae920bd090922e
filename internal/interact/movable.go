// Package interact turns pointer drags and keyboard nudges into
// math-space movement of draggable points, under an arbitrary user
// transform and an optional constraint.
package interact

import (
	"errors"
	"fmt"

	"github.com/inamate/graphpad/internal/vec"
)

var (
	ErrBusy      = errors.New("interact: point is being dragged")
	ErrDragEnded = errors.New("interact: drag session has ended")
)

// State is the controller state of a movable point.
type State int

const (
	StateIdle State = iota
	StateDragging
	// StateKeyboardNudging only exists while Nudge runs.
	StateKeyboardNudging
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDragging:
		return "dragging"
	case StateKeyboardNudging:
		return "nudging"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// MovablePoint is a draggable point. Its position is expressed in the
// coordinate space of the scope it lives in, before the user transform.
type MovablePoint struct {
	position   vec.Vector2
	constraint Constraint
	state      State
}

// NewMovablePoint returns an idle point at p. A nil constraint means
// unconstrained.
func NewMovablePoint(p vec.Vector2, c Constraint) *MovablePoint {
	if c == nil {
		c = Unconstrained()
	}
	return &MovablePoint{position: p, constraint: c}
}

// NewConstrainedPoint returns a point using the built-in constraint kind
// resolved against p.
func NewConstrainedPoint(p vec.Vector2, kind string) (*MovablePoint, error) {
	c, err := ForKind(kind, p)
	if err != nil {
		return nil, err
	}
	return NewMovablePoint(p, c), nil
}

func (m *MovablePoint) Position() vec.Vector2  { return m.position }
func (m *MovablePoint) State() State           { return m.state }
func (m *MovablePoint) Constraint() Constraint { return m.constraint }

// SetPosition moves the point programmatically through its constraint.
func (m *MovablePoint) SetPosition(p vec.Vector2) (vec.Vector2, error) {
	next, err := constrain(m.constraint, p)
	if err != nil {
		return m.position, err
	}
	m.position = next
	return next, nil
}

// DragSession is one pointer gesture on a movable point.
type DragSession struct {
	point   *MovablePoint
	pickup  vec.Vector2
	invView vec.Matrix
	invUser vec.Matrix
	ended   bool
}

// BeginDrag starts a drag under the given user and view transforms. Both
// are inverted up front; if either is singular the error wraps
// vec.ErrNotInvertible and the point is left untouched.
func (m *MovablePoint) BeginDrag(user, view vec.Matrix) (*DragSession, error) {
	if m.state == StateDragging {
		return nil, ErrBusy
	}
	invView, err := vec.Invert(view)
	if err != nil {
		return nil, fmt.Errorf("invert view transform: %w", err)
	}
	invUser, err := vec.Invert(user)
	if err != nil {
		return nil, fmt.Errorf("invert user transform: %w", err)
	}

	m.state = StateDragging
	return &DragSession{
		point:   m,
		pickup:  vec.Transform(m.position, user),
		invView: invView,
		invUser: invUser,
	}, nil
}

// Pickup returns the position where the drag started, in the frame of
// the user transform.
func (d *DragSession) Pickup() vec.Vector2 { return d.pickup }

func (d *DragSession) Point() *MovablePoint { return d.point }

// Update applies the pixel movement accumulated since the drag started
// and returns the new position. Zero movement leaves the point where it
// is. On a constraint violation the point keeps its last position.
func (d *DragSession) Update(pixelMovement vec.Vector2) (vec.Vector2, error) {
	if d.ended {
		return d.point.position, ErrDragEnded
	}
	if pixelMovement.Mag() == 0 {
		return d.point.position, nil
	}

	movement := vec.TransformVector(pixelMovement, d.invView)
	target := vec.Transform(d.pickup.Add(movement), d.invUser)
	next, err := constrain(d.point.constraint, target)
	if err != nil {
		return d.point.position, err
	}
	d.point.position = next
	return next, nil
}

// End finishes the drag. Calling it more than once is harmless.
func (d *DragSession) End() vec.Vector2 {
	if !d.ended {
		d.ended = true
		d.point.state = StateIdle
	}
	return d.point.position
}

// Active reports whether the session is still accepting updates.
func (d *DragSession) Active() bool { return !d.ended }
