package vec_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/graphpad/internal/vec"
)

func invertibleMatrices() map[string]vec.Matrix {
	return map[string]vec.Matrix{
		"identity":    vec.Identity(),
		"translate":   vec.Translate(10, -3),
		"scale":       vec.ScaleMatrix(2, -0.5),
		"rotate":      vec.RotateMatrix(math.Pi / 7),
		"shear":       vec.Shear(0.3, -1.2),
		"view-like":   vec.NewBuilder().Translate(3, -3).Scale(83.3333, -83.3333).Build(),
		"composed":    vec.NewBuilder().Rotate(1).Scale(3, 0.25).Shear(0.5, 0).Translate(-7, 2).Build(),
		"large-small": vec.ScaleMatrix(1e6, 1e-3),
	}
}

func TestInvertRoundTrip(t *testing.T) {
	points := []vec.Vector2{
		vec.V(0, 0), vec.V(1, 2), vec.V(-3.5, 7.25), vec.V(1e3, -1e3),
	}
	for name, m := range invertibleMatrices() {
		t.Run(name, func(t *testing.T) {
			inv, err := vec.Invert(m)
			require.NoError(t, err)

			assert.True(t, vec.Mult(inv, m).Approx(vec.Identity(), 1e-9), "inv*m = %v", vec.Mult(inv, m))
			assert.True(t, vec.Mult(m, inv).Approx(vec.Identity(), 1e-9), "m*inv = %v", vec.Mult(m, inv))

			for _, p := range points {
				back := vec.Transform(vec.Transform(p, m), inv)
				assert.InDelta(t, p.X, back.X, 1e-9)
				assert.InDelta(t, p.Y, back.Y, 1e-9)
			}
		})
	}
}

func TestInvertSingular(t *testing.T) {
	tests := []struct {
		name string
		m    vec.Matrix
	}{
		{"zero", vec.Matrix{}},
		{"collapse x", vec.ScaleMatrix(0, 1)},
		{"collapse y", vec.ScaleMatrix(1, 0)},
		{"rank one", vec.Matrix{1, 2, 2, 4, 5, 5}},
		{"nearly singular", vec.ScaleMatrix(1e-7, 1e-7)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := vec.Invert(tt.m)
			require.ErrorIs(t, err, vec.ErrNotInvertible)
		})
	}
}

func TestIdentityIsNeutral(t *testing.T) {
	for name, m := range invertibleMatrices() {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, m, vec.Mult(vec.NewBuilder().Build(), m))
			assert.Equal(t, m, vec.Mult(m, vec.Identity()))
		})
	}
}

func TestMultOrder(t *testing.T) {
	// Scale first, then translate.
	m := vec.Mult(vec.Translate(1, 0), vec.ScaleMatrix(2, 2))
	got := vec.Transform(vec.V(1, 1), m)
	assert.Equal(t, vec.V(3, 2), got)

	// Translate first, then scale.
	m = vec.Mult(vec.ScaleMatrix(2, 2), vec.Translate(1, 0))
	got = vec.Transform(vec.V(1, 1), m)
	assert.Equal(t, vec.V(4, 2), got)
}

func TestMultAssociative(t *testing.T) {
	a := vec.RotateMatrix(0.4)
	b := vec.NewBuilder().Scale(2, 3).Translate(1, 1).Build()
	c := vec.Shear(0.2, 0.1)
	left := vec.Mult(vec.Mult(a, b), c)
	right := vec.Mult(a, vec.Mult(b, c))
	assert.True(t, left.Approx(right, 1e-12))
}

func TestRotateMatrixCounterClockwise(t *testing.T) {
	p := vec.Transform(vec.V(1, 0), vec.RotateMatrix(math.Pi/2))
	assert.InDelta(t, 0, p.X, 1e-12)
	assert.InDelta(t, 1, p.Y, 1e-12)
}

func TestTransformVectorIgnoresTranslation(t *testing.T) {
	m := vec.NewBuilder().Scale(2, -4).Translate(100, 50).Build()
	assert.Equal(t, vec.V(2, -4), vec.TransformVector(vec.V(1, 1), m))
	assert.Equal(t, vec.V(102, 46), vec.Transform(vec.V(1, 1), m))
}

func TestShear(t *testing.T) {
	p := vec.Transform(vec.V(1, 2), vec.Shear(0.5, 3))
	assert.Equal(t, vec.V(2, 5), p)
}

func TestAff3RoundTrip(t *testing.T) {
	m := vec.NewBuilder().Rotate(0.3).Translate(4, 5).Build()
	a := m.Aff3()
	// x' = a[0]*x + a[1]*y + a[2]
	p := vec.V(2, -1)
	want := vec.Transform(p, m)
	assert.InDelta(t, want.X, a[0]*p.X+a[1]*p.Y+a[2], 1e-12)
	assert.InDelta(t, want.Y, a[3]*p.X+a[4]*p.Y+a[5], 1e-12)
	assert.Equal(t, m, vec.FromAff3(a))
}

func TestSliceAndCSS(t *testing.T) {
	m := vec.Matrix{1, 2, 3, 4, 5, 6}
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, m.Slice())
	assert.Equal(t, "matrix(1, 2, 3, 4, 5, 6)", m.CSS())
}
