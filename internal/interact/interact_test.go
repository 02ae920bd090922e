package interact_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/graphpad/internal/interact"
	"github.com/inamate/graphpad/internal/vec"
	"github.com/inamate/graphpad/internal/viewport"
)

func view(t *testing.T) viewport.Viewport {
	t.Helper()
	vp, err := viewport.Compute(viewport.DefaultViewBox(), viewport.Size{Width: 700, Height: 500}, vec.V(0, 0), viewport.PolicyStretch)
	require.NoError(t, err)
	return vp
}

func TestDragUnderTranslationMovesByScaledDelta(t *testing.T) {
	vp := view(t)
	starts := []vec.Vector2{vec.V(0, 0), vec.V(1.5, -2), vec.V(-40, 12.25)}
	users := map[string]vec.Matrix{
		"identity":    vec.Identity(),
		"translation": vec.Translate(3, -1),
	}

	for name, user := range users {
		for _, start := range starts {
			t.Run(name+"/"+start.String(), func(t *testing.T) {
				p := interact.NewMovablePoint(start, nil)
				drag, err := p.BeginDrag(user, vp.View)
				require.NoError(t, err)
				assert.Equal(t, interact.StateDragging, p.State())

				got, err := drag.Update(vec.V(35, -20))
				require.NoError(t, err)
				assert.InDelta(t, start.X+35/vp.ScaleX, got.X, 1e-9)
				assert.InDelta(t, start.Y-20/vp.ScaleY, got.Y, 1e-9)

				drag.End()
				assert.Equal(t, interact.StateIdle, p.State())
				assert.Equal(t, got, p.Position())
			})
		}
	}
}

func TestDragMovementIsCumulative(t *testing.T) {
	vp := view(t)
	p := interact.NewMovablePoint(vec.V(1, 1), nil)
	drag, err := p.BeginDrag(vec.Identity(), vp.View)
	require.NoError(t, err)

	_, err = drag.Update(vec.V(10, 0))
	require.NoError(t, err)
	got, err := drag.Update(vec.V(20, 0))
	require.NoError(t, err)
	assert.InDelta(t, 1+20/vp.ScaleX, got.X, 1e-9)

	// Zero movement is a no-op, not a return to the pickup.
	same, err := drag.Update(vec.V(0, 0))
	require.NoError(t, err)
	assert.Equal(t, got, same)
}

func TestDragUnderRotatedScope(t *testing.T) {
	vp := view(t)
	user := vec.RotateMatrix(math.Pi / 2)
	p := interact.NewMovablePoint(vec.V(1, 0), nil)
	drag, err := p.BeginDrag(user, vp.View)
	require.NoError(t, err)
	assert.True(t, drag.Pickup().Approx(vec.V(0, 1), 1e-12))

	// One math unit to the right on screen is one unit down in the
	// rotated scope's local frame.
	got, err := drag.Update(vec.V(vp.ScaleX, 0))
	require.NoError(t, err)
	assert.InDelta(t, 1, got.X, 1e-9)
	assert.InDelta(t, -1, got.Y, 1e-9)
}

func TestHorizontalConstraintKeepsY(t *testing.T) {
	vp := view(t)
	p, err := interact.NewConstrainedPoint(vec.V(0.5, 2), interact.KindHorizontal)
	require.NoError(t, err)

	drag, err := p.BeginDrag(vec.Translate(1, 1), vp.View)
	require.NoError(t, err)
	for _, m := range []vec.Vector2{{X: 10, Y: 0}, {X: -30, Y: 80}, {X: 3, Y: -200}} {
		got, err := drag.Update(m)
		require.NoError(t, err)
		assert.Equal(t, 2.0, got.Y)
	}
	drag.End()

	for _, dir := range []interact.Direction{interact.Left, interact.Right, interact.Up, interact.Down} {
		got, err := p.Nudge(dir, interact.Modifiers{}, vec.Identity(), interact.SpanFor(dir, vp.XSpan, vp.YSpan))
		require.NoError(t, err)
		assert.Equal(t, 2.0, got.Y)
	}
}

func TestVerticalConstraintKeepsX(t *testing.T) {
	p, err := interact.NewConstrainedPoint(vec.V(-1, 0), interact.KindVertical)
	require.NoError(t, err)
	got, err := p.Nudge(interact.Right, interact.Modifiers{}, vec.Identity(), 7)
	require.NoError(t, err)
	assert.Equal(t, vec.V(-1, 0), got)

	got, err = p.Nudge(interact.Up, interact.Modifiers{}, vec.Identity(), 7)
	require.NoError(t, err)
	assert.Equal(t, -1.0, got.X)
	assert.InDelta(t, 7.0/50, got.Y, 1e-12)
}

func TestSingularTransformRejectsDrag(t *testing.T) {
	vp := view(t)
	start := vec.V(1, 2)
	p := interact.NewMovablePoint(start, nil)

	_, err := p.BeginDrag(vec.ScaleMatrix(0, 1), vp.View)
	require.ErrorIs(t, err, vec.ErrNotInvertible)
	assert.Equal(t, start, p.Position())
	assert.Equal(t, interact.StateIdle, p.State())

	_, err = p.BeginDrag(vec.Identity(), vec.Matrix{})
	require.ErrorIs(t, err, vec.ErrNotInvertible)

	_, err = p.Nudge(interact.Left, interact.Modifiers{}, vec.Shear(1, 1), 7)
	require.ErrorIs(t, err, vec.ErrNotInvertible)
	assert.Equal(t, start, p.Position())
}

func TestConstraintFailureLeavesPosition(t *testing.T) {
	vp := view(t)
	boom := errors.New("off curve")
	constraints := map[string]interact.Constraint{
		"error": interact.ConstraintFunc(func(vec.Vector2) (vec.Vector2, error) { return vec.Vector2{}, boom }),
		"nan": interact.ConstraintFunc(func(vec.Vector2) (vec.Vector2, error) {
			return vec.V(math.NaN(), 0), nil
		}),
		"panic": interact.ConstraintFunc(func(vec.Vector2) (vec.Vector2, error) { panic("bad") }),
	}

	for name, c := range constraints {
		t.Run(name, func(t *testing.T) {
			start := vec.V(0.25, 0.75)
			p := interact.NewMovablePoint(start, c)
			drag, err := p.BeginDrag(vec.Identity(), vp.View)
			require.NoError(t, err)

			got, err := drag.Update(vec.V(5, 5))
			require.ErrorIs(t, err, interact.ErrConstraintViolation)
			assert.Equal(t, start, got)
			assert.Equal(t, start, p.Position())

			drag.End()
			_, err = p.Nudge(interact.Up, interact.Modifiers{}, vec.Identity(), 7)
			require.ErrorIs(t, err, interact.ErrConstraintViolation)
			assert.Equal(t, start, p.Position())
		})
	}
}

func TestNudgeStepSizes(t *testing.T) {
	tests := []struct {
		name string
		mods interact.Modifiers
		want float64
	}{
		{"default", interact.Modifiers{}, 10.0 / 50},
		{"fine", interact.Modifiers{Fine: true}, 10.0 / 200},
		{"coarse", interact.Modifiers{Coarse: true}, 10.0 / 10},
		{"coarse wins", interact.Modifiers{Fine: true, Coarse: true}, 10.0 / 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := interact.NewMovablePoint(vec.V(0, 0), nil)
			got, err := p.Nudge(interact.Left, tt.mods, vec.Identity(), 10)
			require.NoError(t, err)
			assert.InDelta(t, -tt.want, got.X, 1e-12)
			assert.Equal(t, 0.0, got.Y)
			assert.Equal(t, interact.StateIdle, p.State())
		})
	}
}

func TestNudgeSkipsCandidatesTheConstraintSwallows(t *testing.T) {
	// Snapping to whole units swallows the small steps; the nudge keeps
	// growing until the snapped candidate actually moves.
	p := interact.NewMovablePoint(vec.V(0, 0), interact.Snap(1))
	got, err := p.Nudge(interact.Right, interact.Modifiers{}, vec.Identity(), 10)
	require.NoError(t, err)
	assert.Equal(t, vec.V(1, 0), got)
}

func TestNudgeGivesUpBelowHalfSpan(t *testing.T) {
	p := interact.NewMovablePoint(vec.V(0, 0), interact.Snap(100))
	got, err := p.Nudge(interact.Right, interact.Modifiers{}, vec.Identity(), 10)
	require.NoError(t, err)
	assert.Equal(t, vec.V(0, 0), got)
}

func TestNudgeUnderScaledScope(t *testing.T) {
	// A scope scaled by one half doubles the local step.
	p := interact.NewMovablePoint(vec.V(1, 1), nil)
	got, err := p.Nudge(interact.Up, interact.Modifiers{}, vec.ScaleMatrix(0.5, 0.5), 10)
	require.NoError(t, err)
	assert.InDelta(t, 1, got.X, 1e-12)
	assert.InDelta(t, 1.4, got.Y, 1e-12)
}

func TestBusyWhileDragging(t *testing.T) {
	vp := view(t)
	p := interact.NewMovablePoint(vec.V(0, 0), nil)
	drag, err := p.BeginDrag(vec.Identity(), vp.View)
	require.NoError(t, err)

	_, err = p.BeginDrag(vec.Identity(), vp.View)
	require.ErrorIs(t, err, interact.ErrBusy)
	_, err = p.Nudge(interact.Up, interact.Modifiers{}, vec.Identity(), 7)
	require.ErrorIs(t, err, interact.ErrBusy)

	drag.End()
	drag.End()
	_, err = drag.Update(vec.V(1, 1))
	require.ErrorIs(t, err, interact.ErrDragEnded)
}

func TestDirectionFromKey(t *testing.T) {
	tests := map[string]interact.Direction{
		"ArrowLeft":  interact.Left,
		"ArrowRight": interact.Right,
		"ArrowUp":    interact.Up,
		"ArrowDown":  interact.Down,
	}
	for key, want := range tests {
		got, ok := interact.DirectionFromKey(key)
		require.True(t, ok, key)
		assert.Equal(t, want, got)
	}
	_, ok := interact.DirectionFromKey("Enter")
	assert.False(t, ok)

	assert.Equal(t, vec.V(0, 1), interact.Up.Vector())
	assert.Equal(t, 3.0, interact.SpanFor(interact.Left, 3, 5))
	assert.Equal(t, 5.0, interact.SpanFor(interact.Down, 3, 5))
}

func TestUnknownConstraintKind(t *testing.T) {
	_, err := interact.NewConstrainedPoint(vec.V(0, 0), "diagonal")
	require.ErrorIs(t, err, interact.ErrUnknownConstraint)
}
