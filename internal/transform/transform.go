// Package transform composes the user transforms of nested diagram scopes
// with the viewport's fixed view transform.
//
// Every scope carries two matrices. View maps math space to pixel space
// and is the same for the whole diagram. User is the accumulated product
// of all enclosing transform scopes and starts at the identity at the
// diagram root. Leaf renderers read Scope.Pixel and never build their own
// view transform.
package transform

import (
	"github.com/inamate/graphpad/internal/vec"
)

// Local describes the operations of one transform scope. Unset fields
// are skipped. Steps apply in the fixed order Matrix, Translate, Scale,
// Rotate, Shear.
type Local struct {
	Matrix    *vec.Matrix  `json:"matrix,omitempty"`
	Translate *vec.Vector2 `json:"translate,omitempty"`
	Scale     *vec.Vector2 `json:"scale,omitempty"`
	Rotate    *float64     `json:"rotate,omitempty"`
	Shear     *vec.Vector2 `json:"shear,omitempty"`
}

// UniformScale returns a scale vector with equal components.
func UniformScale(s float64) *vec.Vector2 {
	return &vec.Vector2{X: s, Y: s}
}

// IsZero reports whether no operation is set.
func (l Local) IsZero() bool {
	return l.Matrix == nil && l.Translate == nil && l.Scale == nil &&
		l.Rotate == nil && l.Shear == nil
}

// Build returns the matrix described by l.
func (l Local) Build() vec.Matrix {
	b := vec.NewBuilder()
	if l.Matrix != nil {
		b = b.Mult(*l.Matrix)
	}
	if l.Translate != nil {
		b = b.Translate(l.Translate.X, l.Translate.Y)
	}
	if l.Scale != nil {
		b = b.Scale(l.Scale.X, l.Scale.Y)
	}
	if l.Rotate != nil {
		b = b.Rotate(*l.Rotate)
	}
	if l.Shear != nil {
		b = b.Shear(l.Shear.X, l.Shear.Y)
	}
	return b.Build()
}

// Compose returns the user transform of a child scope: local is applied
// to the point first, then the parent's user transform.
func Compose(parentUser, local vec.Matrix) vec.Matrix {
	return vec.Mult(parentUser, local)
}

// Scope is the transform state visible inside one nesting level.
type Scope struct {
	View vec.Matrix
	User vec.Matrix
}

// Root returns the scope at the top of a diagram.
func Root(view vec.Matrix) Scope {
	return Scope{View: view, User: vec.Identity()}
}

// Child returns the scope nested inside s with the given local transform.
func (s Scope) Child(local vec.Matrix) Scope {
	return Scope{View: s.View, User: Compose(s.User, local)}
}

// Pixel is the composed math-to-pixel transform for leaves in this scope.
func (s Scope) Pixel() vec.Matrix {
	return vec.Mult(s.View, s.User)
}

// InversePixel maps pixel coordinates back into this scope's local space.
func (s Scope) InversePixel() (vec.Matrix, error) {
	return vec.Invert(s.Pixel())
}

// ToPixel transforms a point in this scope's local space to pixels.
func (s Scope) ToPixel(p vec.Vector2) vec.Vector2 {
	return vec.Transform(p, s.Pixel())
}
