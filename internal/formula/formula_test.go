package formula_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/graphpad/internal/formula"
	"github.com/inamate/graphpad/internal/sample"
	"github.com/inamate/graphpad/internal/vec"
)

func TestEval(t *testing.T) {
	tests := []struct {
		src  string
		x    float64
		want float64
	}{
		{"x * x", 3, 9},
		{"sin(x)", math.Pi / 2, 1},
		{"pow(x, 2.0) + 1", 2, 5},
		{"abs(x)", -4, 4},
		{"atan2(1.0, x)", 1, math.Pi / 4},
		{"2", 0, 2},
		{"pi * x", 2, 2 * math.Pi},
		{"sign(x)", -0.5, -1},
		{"x > 0 ? x : -x", -2, 2},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			e, err := formula.Compile(tt.src)
			require.NoError(t, err)
			got := e.Eval(formula.NewEnv().Set(formula.VarX, tt.x))
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		src    string
		points []string
	}{
		{"", nil},
		{"x +", nil},
		{"unknown(x)", nil},
		{"q.x", nil},
		{"x > 1", nil},
		{"'text'", nil},
		{"x", []string{"sin"}},
		{"x", []string{"t"}},
	}
	for _, tt := range tests {
		_, err := formula.Compile(tt.src, tt.points...)
		require.ErrorIs(t, err, formula.ErrCompile, "%q", tt.src)
	}
}

func TestNamedPoints(t *testing.T) {
	e, err := formula.Compile("(x - a.x) * (x - a.x) + a.y", "a")
	require.NoError(t, err)

	env := formula.NewEnv().SetPoint("a", vec.V(1, 2)).Set(formula.VarX, 3)
	assert.Equal(t, 6.0, e.Eval(env))
	assert.Equal(t, []string{"a"}, env.Points())

	// A point missing at run time is a gap, not a crash.
	assert.True(t, math.IsNaN(e.Eval(formula.NewEnv())))
}

func TestRuntimeErrorsAreNaN(t *testing.T) {
	e, err := formula.Compile("sqrt(x)")
	require.NoError(t, err)
	assert.True(t, math.IsNaN(e.Eval(formula.NewEnv().Set(formula.VarX, -1))))

	div, err := formula.Compile("1 / x")
	require.NoError(t, err)
	assert.True(t, math.IsInf(div.Eval(formula.NewEnv()), 1))
}

func TestAdaptersSampleCleanly(t *testing.T) {
	x := formula.MustCompile("cos(t)")
	y := formula.MustCompile("sin(t) * time")
	env := formula.NewEnv().Set(formula.VarTime, 2)

	p, err := sample.Parametric(formula.Parametric(x, y, env), [2]float64{0, math.Pi}, sample.DefaultOptions())
	require.NoError(t, err)
	require.Len(t, p.Runs, 1)
	last := p.Runs[0][len(p.Runs[0])-1]
	assert.InDelta(t, -1, last.X, 1e-12)
	assert.InDelta(t, 0, last.Y, 1e-12)

	f := formula.OfX(formula.MustCompile("x * time"), env)
	assert.Equal(t, 6.0, f(3))
	g := formula.OfY(formula.MustCompile("y + 1"), env)
	assert.Equal(t, 4.0, g(3))

	field := formula.Field(formula.MustCompile("-y"), formula.MustCompile("x"), env)
	assert.Equal(t, vec.V(-2, 1), field(1, 2))

	scalar := formula.Scalar(formula.MustCompile("x * y"), env)
	assert.Equal(t, 6.0, scalar(2, 3))
}

func TestAdaptersOwnTheirEnv(t *testing.T) {
	env := formula.NewEnv().Set(formula.VarTime, 1)
	f := formula.OfX(formula.MustCompile("x + time"), env)

	env.Set(formula.VarTime, 100)
	assert.Equal(t, 2.0, f(1))
}

func TestMustCompilePanics(t *testing.T) {
	assert.Panics(t, func() { formula.MustCompile("x +") })
}
