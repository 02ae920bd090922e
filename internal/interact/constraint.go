package interact

import (
	"errors"
	"fmt"
	"math"

	"github.com/inamate/graphpad/internal/vec"
)

var (
	ErrConstraintViolation = errors.New("interact: constraint violation")
	ErrUnknownConstraint   = errors.New("interact: unknown constraint kind")
)

// Constraint restricts the positions a movable point can reach. It maps
// any candidate position to the position the point should snap to.
type Constraint interface {
	Constrain(p vec.Vector2) (vec.Vector2, error)
}

// ConstraintFunc adapts a function to Constraint.
type ConstraintFunc func(p vec.Vector2) (vec.Vector2, error)

func (f ConstraintFunc) Constrain(p vec.Vector2) (vec.Vector2, error) { return f(p) }

type unconstrained struct{}

func (unconstrained) Constrain(p vec.Vector2) (vec.Vector2, error) { return p, nil }

// Unconstrained returns the identity constraint.
func Unconstrained() Constraint { return unconstrained{} }

type horizontal struct{ y float64 }

func (h horizontal) Constrain(p vec.Vector2) (vec.Vector2, error) { return vec.V(p.X, h.y), nil }

// Horizontal pins y, allowing movement along x only.
func Horizontal(y float64) Constraint { return horizontal{y: y} }

type vertical struct{ x float64 }

func (v vertical) Constrain(p vec.Vector2) (vec.Vector2, error) { return vec.V(v.x, p.Y), nil }

// Vertical pins x, allowing movement along y only.
func Vertical(x float64) Constraint { return vertical{x: x} }

// Snap rounds both coordinates to the nearest multiple of step.
func Snap(step float64) Constraint {
	return ConstraintFunc(func(p vec.Vector2) (vec.Vector2, error) {
		if !(step > 0) {
			return vec.Vector2{}, fmt.Errorf("snap step %g must be positive", step)
		}
		return vec.V(math.Round(p.X/step)*step, math.Round(p.Y/step)*step), nil
	})
}

// Kind names the built-in constraints selectable from a document.
const (
	KindNone       = ""
	KindHorizontal = "horizontal"
	KindVertical   = "vertical"
)

// ForKind resolves a built-in constraint against the point's initial
// position: horizontal keeps the initial y, vertical the initial x.
func ForKind(kind string, initial vec.Vector2) (Constraint, error) {
	switch kind {
	case KindNone, "none":
		return Unconstrained(), nil
	case KindHorizontal:
		return Horizontal(initial.Y), nil
	case KindVertical:
		return Vertical(initial.X), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownConstraint, kind)
}

// constrain applies c to p. Errors, panics and non-finite results from c
// all surface as ErrConstraintViolation.
func constrain(c Constraint, p vec.Vector2) (out vec.Vector2, err error) {
	if c == nil {
		return p, nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", ErrConstraintViolation, r)
		}
	}()
	out, err = c.Constrain(p)
	if err != nil {
		return vec.Vector2{}, fmt.Errorf("%w: %w", ErrConstraintViolation, err)
	}
	if !out.IsFinite() {
		return vec.Vector2{}, fmt.Errorf("%w: non-finite result %s", ErrConstraintViolation, out)
	}
	return out, nil
}
