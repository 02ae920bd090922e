package vec

import (
	"fmt"
	"math"

	"golang.org/x/image/math/f64"
)

// InvertEpsilon is the smallest determinant magnitude Invert accepts.
const InvertEpsilon = 1e-12

// Matrix represents a 2D affine transformation matrix.
// Layout: [a, b, c, d, e, f] representing:
// | a  c  e |
// | b  d  f |
// | 0  0  1 |
//
// Where:
// - a, d = scale
// - b, c = skew/rotation
// - e, f = translation
//
// A Matrix may be singular; that only matters when it is inverted.
type Matrix [6]float64

// Identity returns the identity matrix.
func Identity() Matrix {
	return Matrix{1, 0, 0, 1, 0, 0}
}

// Translate returns a translation matrix.
func Translate(tx, ty float64) Matrix {
	return Matrix{1, 0, 0, 1, tx, ty}
}

// ScaleMatrix returns a scale matrix.
func ScaleMatrix(sx, sy float64) Matrix {
	return Matrix{sx, 0, 0, sy, 0, 0}
}

// RotateMatrix returns a counter-clockwise (y up) rotation matrix.
func RotateMatrix(radians float64) Matrix {
	sin, cos := math.Sincos(radians)
	return Matrix{cos, sin, -sin, cos, 0, 0}
}

// Shear returns a shear matrix: x' = x + sx*y, y' = sy*x + y.
func Shear(sx, sy float64) Matrix {
	return Matrix{1, sy, sx, 1, 0, 0}
}

// Multiply multiplies this matrix by another: result = m * other
// This applies 'other' first, then 'm'.
func (m Matrix) Multiply(other Matrix) Matrix {
	return Matrix{
		m[0]*other[0] + m[2]*other[1],        // a
		m[1]*other[0] + m[3]*other[1],        // b
		m[0]*other[2] + m[2]*other[3],        // c
		m[1]*other[2] + m[3]*other[3],        // d
		m[0]*other[4] + m[2]*other[5] + m[4], // e
		m[1]*other[4] + m[3]*other[5] + m[5], // f
	}
}

// Mult composes two matrices; inner is applied first, then outer.
func Mult(outer, inner Matrix) Matrix {
	return outer.Multiply(inner)
}

// Transform applies m to the point p.
func Transform(p Vector2, m Matrix) Vector2 {
	return Vector2{
		X: m[0]*p.X + m[2]*p.Y + m[4],
		Y: m[1]*p.X + m[3]*p.Y + m[5],
	}
}

// TransformVector applies only the linear part of m, for displacements.
func TransformVector(v Vector2, m Matrix) Vector2 {
	return Vector2{
		X: m[0]*v.X + m[2]*v.Y,
		Y: m[1]*v.X + m[3]*v.Y,
	}
}

// TransformPoint applies the matrix to a point.
func (m Matrix) TransformPoint(x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// Determinant returns the determinant of the linear part.
func (m Matrix) Determinant() float64 {
	return m[0]*m[3] - m[1]*m[2]
}

// Invert returns the inverse of m, or ErrNotInvertible when m collapses
// the plane onto a line or a point.
func Invert(m Matrix) (Matrix, error) {
	det := m.Determinant()
	if math.Abs(det) < InvertEpsilon || math.IsNaN(det) {
		return Matrix{}, fmt.Errorf("invert matrix (det=%g): %w", det, ErrNotInvertible)
	}

	invDet := 1.0 / det
	return Matrix{
		m[3] * invDet,
		-m[1] * invDet,
		-m[2] * invDet,
		m[0] * invDet,
		(m[2]*m[5] - m[3]*m[4]) * invDet,
		(m[1]*m[4] - m[0]*m[5]) * invDet,
	}, nil
}

// Invert is the method form of Invert.
func (m Matrix) Invert() (Matrix, error) {
	return Invert(m)
}

// Slice returns the matrix as a float64 slice for JSON serialization.
func (m Matrix) Slice() []float64 {
	return []float64{m[0], m[1], m[2], m[3], m[4], m[5]}
}

// CSS renders m as a CSS/SVG matrix() transform.
func (m Matrix) CSS() string {
	return fmt.Sprintf("matrix(%g, %g, %g, %g, %g, %g)", m[0], m[1], m[2], m[3], m[4], m[5])
}

// Aff3 converts m to the row-major layout used by golang.org/x/image.
func (m Matrix) Aff3() f64.Aff3 {
	return f64.Aff3{
		m[0], m[2], m[4],
		m[1], m[3], m[5],
	}
}

// FromAff3 is the inverse of Matrix.Aff3.
func FromAff3(a f64.Aff3) Matrix {
	return Matrix{a[0], a[3], a[1], a[4], a[2], a[5]}
}

// Approx reports whether every coefficient agrees within eps.
func (m Matrix) Approx(other Matrix, eps float64) bool {
	for i := range m {
		if math.Abs(m[i]-other[i]) > eps {
			return false
		}
	}
	return true
}

// IsIdentity checks if this is the identity matrix (within epsilon).
func (m Matrix) IsIdentity() bool {
	return m.Approx(Identity(), 1e-10)
}

// IsTranslationOnly reports whether the linear part is the identity.
func (m Matrix) IsTranslationOnly() bool {
	return m[0] == 1 && m[1] == 0 && m[2] == 0 && m[3] == 1
}
