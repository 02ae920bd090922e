package shape_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/graphpad/internal/sample"
	"github.com/inamate/graphpad/internal/shape"
	"github.com/inamate/graphpad/internal/vec"
	"github.com/inamate/graphpad/internal/viewport"
)

func square(t *testing.T, px float64) viewport.Viewport {
	t.Helper()
	vp, err := viewport.Compute(viewport.DefaultViewBox(), viewport.Size{Width: px, Height: px}, vec.V(0, 0), viewport.PolicyContain)
	require.NoError(t, err)
	return vp
}

func TestThroughPointsExtendsBothWays(t *testing.T) {
	s, err := shape.ThroughPoints(vec.V(0, 0), vec.V(1, 0))
	require.NoError(t, err)
	assert.Equal(t, vec.V(-shape.LineExtent, 0), s.A)
	assert.Equal(t, vec.V(1+shape.LineExtent, 0), s.B)

	_, err = shape.ThroughPoints(vec.V(2, 3), vec.V(2, 3))
	require.ErrorIs(t, err, shape.ErrCoincidentPoints)
	require.ErrorIs(t, err, vec.ErrDegenerateVector)
}

func TestPointSlopeAndAngle(t *testing.T) {
	s := shape.PointSlope(vec.V(1, 1), 1)
	dir, err := s.B.Sub(s.A).Normalize()
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt2/2, dir.X, 1e-9)
	assert.InDelta(t, math.Sqrt2/2, dir.Y, 1e-9)

	vertical := shape.PointSlope(vec.V(2, 0), math.Inf(1))
	assert.InDelta(t, 2, vertical.A.X, 1e-6)
	assert.InDelta(t, 2, vertical.B.X, 1e-6)
	assert.Less(t, vertical.A.Y, -1000.0)

	a := shape.PointAngle(vec.V(0, 0), 0)
	assert.Equal(t, 0.0, a.A.Y)
	assert.Equal(t, -float64(shape.LineExtent), a.A.X)
}

func TestEllipseOutline(t *testing.T) {
	f := shape.Ellipse(vec.V(1, 2), vec.V(3, 1), math.Pi/2)
	// Rotated a quarter turn, the long axis points along y.
	assert.True(t, f(0).Approx(vec.V(1, 5), 1e-12))
	assert.True(t, f(math.Pi/2).Approx(vec.V(0, 2), 1e-12))

	p, err := sample.Parametric(shape.Circle(vec.V(0, 0), 2), shape.FullTurn, sample.DefaultOptions())
	require.NoError(t, err)
	require.Len(t, p.Runs, 1)
	for _, pt := range p.Points() {
		assert.InDelta(t, 2, pt.Mag(), 1e-9)
	}
	run := p.Runs[0]
	assert.True(t, run[0].Approx(run[len(run)-1].Vector2, 1e-9), "outline closes")
}

func TestPolygonTransforms(t *testing.T) {
	pts := shape.Polygon([]vec.Vector2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}}, vec.ScaleMatrix(2, -2))
	assert.Equal(t, []vec.Vector2{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 0, Y: -2}}, pts)
}

func TestArrowHead(t *testing.T) {
	a := shape.NewArrow(vec.V(0, 0), vec.V(100, 0), vec.Identity(), shape.VectorHeadSize)
	assert.Equal(t, vec.V(100, 0), a.Head[0])
	for _, barb := range a.Head[1:] {
		assert.InDelta(t, shape.VectorHeadSize, barb.Dist(a.Tip), 1e-9)
		assert.Less(t, barb.X, a.Tip.X, "barbs point back along the shaft")
	}
	assert.InDelta(t, -a.Head[1].Y, a.Head[2].Y, 1e-9)

	short := shape.NewArrow(vec.V(0, 0), vec.V(2, 0), vec.Identity(), shape.VectorHeadSize)
	assert.InDelta(t, 2, short.Head[1].Dist(short.Tip), 1e-9, "head never outgrows the shaft")

	zero := shape.NewArrow(vec.V(1, 1), vec.V(1, 1), vec.Identity(), shape.VectorHeadSize)
	assert.Equal(t, [3]vec.Vector2{{X: 1, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 1}}, zero.Head)
}

func TestVectorFieldCapsLengthAndHead(t *testing.T) {
	vp := square(t, 500)
	field := func(x, y float64) vec.Vector2 { return vec.V(10, 0) }

	layers, err := shape.VectorField(field, shape.FieldOptions{Step: 1}, vp, vp.View)
	require.NoError(t, err)
	require.Len(t, layers, 1)
	assert.Equal(t, 1.0, layers[0].Opacity)
	require.NotEmpty(t, layers[0].Arrows)

	for _, a := range layers[0].Arrows {
		assert.InDelta(t, 0.75*vp.ScaleX, a.Tip.Sub(a.Tail).Mag(), 1e-6)
		assert.InDelta(t, shape.FieldHeadSize, a.Head[1].Dist(a.Tip), 1e-6)
	}
}

func TestVectorFieldOpacityLayers(t *testing.T) {
	vp := square(t, 500)
	field := func(x, y float64) vec.Vector2 { return vec.V(0, 1) }
	opacity := func(x, y float64) float64 {
		if x < 0 {
			return 0
		}
		return 1
	}

	layers, err := shape.VectorField(field, shape.FieldOptions{Step: 1, Opacity: opacity}, vp, vp.View)
	require.NoError(t, err)
	require.Len(t, layers, 5)
	assert.Equal(t, 1.0, layers[0].Opacity)
	assert.InDelta(t, 0.2, layers[4].Opacity, 1e-12)
	assert.NotEmpty(t, layers[0].Arrows)
	assert.NotEmpty(t, layers[4].Arrows)
	for _, l := range layers[1:4] {
		assert.Empty(t, l.Arrows)
	}
}

func TestVectorFieldSkipsZeroAndUndefined(t *testing.T) {
	vp := square(t, 500)
	field := func(x, y float64) vec.Vector2 {
		if x == 0 {
			return vec.V(0, 0)
		}
		if y == 0 {
			return vec.V(math.NaN(), 1)
		}
		return vec.V(1, 1)
	}
	layers, err := shape.VectorField(field, shape.FieldOptions{Step: 1}, vp, vp.View)
	require.NoError(t, err)
	for _, a := range layers[0].Arrows {
		tail := vp.ToMath(a.Tail)
		assert.Greater(t, math.Abs(tail.X), 0.5)
		assert.Greater(t, math.Abs(tail.Y), 0.5)
	}
}

func TestVectorFieldRejectsBadSteps(t *testing.T) {
	vp := square(t, 500)
	field := func(x, y float64) vec.Vector2 { return vec.V(1, 0) }

	_, err := shape.VectorField(field, shape.FieldOptions{Step: 0}, vp, vp.View)
	require.ErrorIs(t, err, shape.ErrInvalidStep)
	_, err = shape.VectorField(field, shape.FieldOptions{Step: 1e-4}, vp, vp.View)
	require.ErrorIs(t, err, shape.ErrFieldTooDense)
}

func TestCartesianGrid(t *testing.T) {
	vp := square(t, 700)
	x := shape.DefaultAxis()
	x.Subdivisions = 2
	g, err := shape.CartesianGrid(vp, x, shape.DefaultAxis())
	require.NoError(t, err)

	// Pane range is [-8, 8) on both axes: 16 majors each way.
	assert.Len(t, g.Major, 32)
	assert.Len(t, g.Minor, 16)
	assert.Len(t, g.Axes, 2)

	for _, l := range g.Labels {
		assert.NotEqual(t, "0", l.Text, "no label at the origin")
	}
	// Labels run from -9 to 8 on each axis, minus the origin.
	assert.Len(t, g.Labels, 2*17)

	xAxis := g.Axes[0]
	assert.InDelta(t, 350, xAxis.A.Y, 1e-9)
	assert.InDelta(t, 350, xAxis.B.Y, 1e-9)
}

func TestCartesianGridHiddenParts(t *testing.T) {
	vp := square(t, 700)
	g, err := shape.CartesianGrid(vp, shape.AxisOptions{}, shape.AxisOptions{Axis: true})
	require.NoError(t, err)
	assert.Empty(t, g.Major)
	assert.Empty(t, g.Labels)
	assert.Len(t, g.Axes, 1)
}

func TestLabels(t *testing.T) {
	tests := []struct {
		in   float64
		pi   string
		plan string
	}{
		{0, "0", "0"},
		{math.Pi, "π", "3.1415926536"},
		{-math.Pi, "-π", "-3.1415926536"},
		{math.Pi / 2, "0.5π", "1.5707963268"},
		{2 * math.Pi, "2π", "6.2831853072"},
		{0.1 + 0.2, "0.09549π", "0.3"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.pi, shape.LabelPi(tt.in))
		assert.Equal(t, tt.plan, shape.LabelNumber(tt.in))
	}
}

func TestSnappedRange(t *testing.T) {
	assert.Equal(t, []float64{-4, -2, 0, 2}, shape.SnappedRange(-3, 3, 2))
	assert.Equal(t, []float64{0, 0.5}, shape.SnappedRange(0.1, 0.9, 0.5))
	assert.Nil(t, shape.SnappedRange(0, 1, 0))
}

func TestTextAnchor(t *testing.T) {
	tests := []struct {
		attach   string
		offset   vec.Vector2
		align    string
		baseline string
	}{
		{"", vec.V(0, 0), "middle", "middle"},
		{"e", vec.V(10, 0), "start", "middle"},
		{"n", vec.V(0, -10), "middle", "baseline"},
		{"sw", vec.V(-10/math.Sqrt2, 10/math.Sqrt2), "end", "hanging"},
	}
	for _, tt := range tests {
		t.Run(tt.attach, func(t *testing.T) {
			a, err := shape.TextAnchor(tt.attach, 10)
			require.NoError(t, err)
			assert.True(t, a.Offset.Approx(tt.offset, 1e-9), "%v", a.Offset)
			assert.Equal(t, tt.align, a.Align)
			assert.Equal(t, tt.baseline, a.Baseline)
		})
	}

	_, err := shape.TextAnchor("up", 10)
	require.Error(t, err)
}
