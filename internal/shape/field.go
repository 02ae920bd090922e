package shape

import (
	"errors"
	"fmt"
	"math"

	"github.com/inamate/graphpad/internal/vec"
	"github.com/inamate/graphpad/internal/viewport"
)

// MaxFieldArrows bounds the arrows one vector field may produce.
const MaxFieldArrows = 20000

var (
	ErrInvalidStep   = errors.New("shape: vector field step must be positive")
	ErrFieldTooDense = errors.New("shape: vector field too dense for the viewport")
)

// FieldFunc is a vector field.
type FieldFunc func(x, y float64) vec.Vector2

// OpacityFunc gives the opacity of the arrow at (x, y), in [0, 1].
type OpacityFunc func(x, y float64) float64

// FieldOptions configures VectorField.
type FieldOptions struct {
	Step float64
	// Opacity defaults to fully opaque everywhere.
	Opacity OpacityFunc
	// OpacityStep is the opacity resolution. It defaults to 1 without an
	// Opacity function and to 0.2 with one, and is clamped to [0.01, 1].
	OpacityStep float64
}

// Layer groups arrows drawn with the same opacity.
type Layer struct {
	Opacity float64 `json:"opacity"`
	Arrows  []Arrow `json:"arrows"`
}

// VectorField places one arrow per grid point across the viewport's
// pane range. Arrows are at most 0.75*step long in math units and carry
// a head of at most FieldHeadSize pixels. Points where the field is zero
// or undefined get no arrow. Layers run from opaque to transparent.
func VectorField(f FieldFunc, opts FieldOptions, vp viewport.Viewport, m vec.Matrix) ([]Layer, error) {
	if !(opts.Step > 0) || math.IsInf(opts.Step, 0) {
		return nil, fmt.Errorf("%w: got %g", ErrInvalidStep, opts.Step)
	}

	xs := gridSteps(vp.XPaneRange, opts.Step)
	ys := gridSteps(vp.YPaneRange, opts.Step)
	if xs*ys > MaxFieldArrows {
		return nil, fmt.Errorf("%w: %d arrows at step %g", ErrFieldTooDense, xs*ys, opts.Step)
	}

	layers := opacityLayers(opts)
	maxLen := opts.Step * 0.75
	x0 := math.Floor(vp.XPaneRange.Lo)
	y0 := math.Floor(vp.YPaneRange.Lo)

	for i := range xs {
		x := x0 + float64(i)*opts.Step
		for j := range ys {
			y := y0 + float64(j)*opts.Step
			v := f(x, y)
			if !v.IsFinite() {
				continue
			}
			offset, err := v.WithMag(math.Min(v.Mag(), maxLen))
			if err != nil {
				continue
			}

			tail := vec.V(x, y)
			pixelTail := vec.Transform(tail, m)
			pixelTip := vec.Transform(tail.Add(offset), m)
			arrow := pixelArrow(pixelTail, pixelTip, FieldHeadSize)

			opacity := 1.0
			if opts.Opacity != nil {
				opacity = opts.Opacity(x, y)
			}
			l := closestLayer(len(layers), opacity)
			layers[l].Arrows = append(layers[l].Arrows, arrow)
		}
	}
	return layers, nil
}

// gridSteps counts the grid coordinates from floor(lo) to ceil(hi).
func gridSteps(r viewport.Interval, step float64) int {
	lo, hi := math.Floor(r.Lo), math.Ceil(r.Hi)
	n := math.Floor((hi-lo)/step) + 1
	if n > MaxFieldArrows+1 {
		return MaxFieldArrows + 1
	}
	return int(n)
}

func opacityLayers(opts FieldOptions) []Layer {
	step := opts.OpacityStep
	if step == 0 {
		step = 1
		if opts.Opacity != nil {
			step = 0.2
		}
	}
	step = math.Min(1, math.Max(0.01, step))
	n := int(math.Ceil(1 / step))

	layers := make([]Layer, n)
	for i := range layers {
		layers[i].Opacity = 1 - float64(i)/float64(n)
	}
	return layers
}

// closestLayer returns the index of the layer whose opacity is nearest
// to opacity; index 0 is the opaque layer.
func closestLayer(n int, opacity float64) int {
	if math.IsNaN(opacity) {
		opacity = 0
	}
	opacity = math.Min(1, math.Max(0, opacity))
	return n - 1 - int(math.Round(opacity*float64(n-1)))
}
