package vec_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/graphpad/internal/vec"
)

func TestVectorArithmetic(t *testing.T) {
	a, b := vec.V(1, 2), vec.V(4, 6)

	assert.Equal(t, vec.V(5, 8), vec.Add(a, b))
	assert.Equal(t, vec.V(-3, -4), vec.Sub(a, b))
	assert.Equal(t, vec.V(2, 4), vec.Scale(a, 2))
	assert.Equal(t, vec.V(2.5, 4), vec.Lerp(a, b, 0.5))
	assert.Equal(t, 5.0, vec.Dist(a, b))
	assert.Equal(t, 25.0, vec.SquareDist(a, b))
	assert.Equal(t, 5.0, vec.Mag(vec.V(3, 4)))
	assert.Equal(t, 16.0, vec.Dot(a, b))
	assert.Equal(t, -2.0, vec.Det(a, b))
}

func TestNormalize(t *testing.T) {
	n, err := vec.Normalize(vec.V(3, 4))
	require.NoError(t, err)
	assert.InDelta(t, 0.6, n.X, 1e-12)
	assert.InDelta(t, 0.8, n.Y, 1e-12)

	_, err = vec.Normalize(vec.V(0, 0))
	require.ErrorIs(t, err, vec.ErrDegenerateVector)

	_, err = vec.V(0, 0).WithMag(3)
	require.ErrorIs(t, err, vec.ErrDegenerateVector)

	w, err := vec.V(0, -2).WithMag(5)
	require.NoError(t, err)
	assert.Equal(t, vec.V(0, -5), w)
}

func TestRotate(t *testing.T) {
	r := vec.Rotate(vec.V(1, 0), math.Pi/2)
	assert.InDelta(t, 0, r.X, 1e-12)
	assert.InDelta(t, 1, r.Y, 1e-12)

	r = vec.Rotate(vec.V(2, 3), 2*math.Pi)
	assert.True(t, r.Approx(vec.V(2, 3), 1e-12))
}

func TestIsFinite(t *testing.T) {
	assert.True(t, vec.V(1, -1).IsFinite())
	assert.False(t, vec.V(math.NaN(), 0).IsFinite())
	assert.False(t, vec.V(0, math.Inf(-1)).IsFinite())
}
