package vec

import (
	"fmt"
	"math"
)

// Vector2 is a point or displacement in the plane.
type Vector2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// V is shorthand for Vector2{X: x, Y: y}.
func V(x, y float64) Vector2 {
	return Vector2{X: x, Y: y}
}

// Add returns v + w.
func (v Vector2) Add(w Vector2) Vector2 {
	return Vector2{X: v.X + w.X, Y: v.Y + w.Y}
}

// Sub returns v - w.
func (v Vector2) Sub(w Vector2) Vector2 {
	return Vector2{X: v.X - w.X, Y: v.Y - w.Y}
}

// Scale returns v multiplied by s.
func (v Vector2) Scale(s float64) Vector2 {
	return Vector2{X: v.X * s, Y: v.Y * s}
}

// Lerp interpolates between v (t=0) and w (t=1).
func (v Vector2) Lerp(w Vector2, t float64) Vector2 {
	return Vector2{X: v.X + (w.X-v.X)*t, Y: v.Y + (w.Y-v.Y)*t}
}

// Midpoint returns the point halfway between v and w.
func (v Vector2) Midpoint(w Vector2) Vector2 {
	return v.Lerp(w, 0.5)
}

// Dot returns the dot product.
func (v Vector2) Dot(w Vector2) float64 {
	return v.X*w.X + v.Y*w.Y
}

// Det returns the determinant of the 2x2 matrix with columns v and w,
// i.e. the z component of the 3D cross product.
func (v Vector2) Det(w Vector2) float64 {
	return v.X*w.Y - v.Y*w.X
}

// Mag returns the Euclidean length.
func (v Vector2) Mag() float64 {
	return math.Hypot(v.X, v.Y)
}

// SquareDist returns the squared distance between v and w.
func (v Vector2) SquareDist(w Vector2) float64 {
	dx, dy := v.X-w.X, v.Y-w.Y
	return dx*dx + dy*dy
}

// Dist returns the distance between v and w.
func (v Vector2) Dist(w Vector2) float64 {
	return math.Hypot(v.X-w.X, v.Y-w.Y)
}

// Normalize returns the unit vector pointing along v.
// The zero vector has no direction and yields ErrDegenerateVector.
func (v Vector2) Normalize() (Vector2, error) {
	m := v.Mag()
	if m == 0 || math.IsNaN(m) {
		return Vector2{}, fmt.Errorf("normalize %v: %w", v, ErrDegenerateVector)
	}
	return Vector2{X: v.X / m, Y: v.Y / m}, nil
}

// WithMag returns a vector along v with length m.
func (v Vector2) WithMag(m float64) (Vector2, error) {
	n, err := v.Normalize()
	if err != nil {
		return Vector2{}, err
	}
	return n.Scale(m), nil
}

// Rotate rotates v counter-clockwise (y up) by angle radians about the origin.
func (v Vector2) Rotate(angle float64) Vector2 {
	sin, cos := math.Sincos(angle)
	return Vector2{
		X: v.X*cos - v.Y*sin,
		Y: v.X*sin + v.Y*cos,
	}
}

// IsFinite reports whether both coordinates are finite numbers.
func (v Vector2) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) &&
		!math.IsNaN(v.Y) && !math.IsInf(v.Y, 0)
}

// Approx reports whether v and w agree within eps on both axes.
func (v Vector2) Approx(w Vector2, eps float64) bool {
	return math.Abs(v.X-w.X) <= eps && math.Abs(v.Y-w.Y) <= eps
}

// String formats the vector as "(x, y)".
func (v Vector2) String() string {
	return fmt.Sprintf("(%g, %g)", v.X, v.Y)
}

// Package-level forms of the vector operations, for call sites that read
// better as functions.

func Add(a, b Vector2) Vector2                { return a.Add(b) }
func Sub(a, b Vector2) Vector2                { return a.Sub(b) }
func Scale(a Vector2, s float64) Vector2      { return a.Scale(s) }
func Lerp(a, b Vector2, t float64) Vector2    { return a.Lerp(b, t) }
func Dist(a, b Vector2) float64               { return a.Dist(b) }
func SquareDist(a, b Vector2) float64         { return a.SquareDist(b) }
func Mag(a Vector2) float64                   { return a.Mag() }
func Dot(a, b Vector2) float64                { return a.Dot(b) }
func Det(a, b Vector2) float64                { return a.Det(b) }
func Rotate(a Vector2, angle float64) Vector2 { return a.Rotate(angle) }
func Normalize(a Vector2) (Vector2, error)    { return a.Normalize() }
