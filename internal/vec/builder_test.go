package vec_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/inamate/graphpad/internal/vec"
)

func TestBuilderZeroValueIsIdentity(t *testing.T) {
	var b vec.Builder
	assert.Equal(t, vec.Identity(), b.Build())
	assert.Equal(t, vec.Identity(), vec.NewBuilder().Build())
}

func TestBuilderAppliesStepsInOrder(t *testing.T) {
	// translate then scale: (1,0) -> (2,0) -> (4,0)
	m := vec.NewBuilder().Translate(1, 0).Scale(2, 2).Build()
	assert.Equal(t, vec.V(4, 0), vec.Transform(vec.V(1, 0), m))

	// scale then translate: (1,0) -> (2,0) -> (3,0)
	m = vec.NewBuilder().Scale(2, 2).Translate(1, 0).Build()
	assert.Equal(t, vec.V(3, 0), vec.Transform(vec.V(1, 0), m))
}

func TestBuilderIsImmutable(t *testing.T) {
	base := vec.NewBuilder().Translate(5, 5)
	a := base.Scale(2, 2).Build()
	b := base.Rotate(math.Pi).Build()

	assert.Equal(t, vec.Translate(5, 5), base.Build())
	assert.NotEqual(t, a, b)
}

func TestBuilderMatchesExplicitComposition(t *testing.T) {
	seed := vec.Matrix{2, 0.5, -1, 1, 3, 4}
	got := vec.BuilderFrom(seed).Rotate(0.7).Shear(0.1, 0.2).Build()
	want := vec.Mult(vec.Shear(0.1, 0.2), vec.Mult(vec.RotateMatrix(0.7), seed))
	assert.True(t, got.Approx(want, 1e-12))

	got = vec.NewBuilder().Mult(seed).Translate(1, 2).Build()
	want = vec.Mult(vec.Translate(1, 2), seed)
	assert.True(t, got.Approx(want, 1e-12))
}
