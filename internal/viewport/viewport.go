// Package viewport derives the math-to-pixel view transform, the visible
// math-space bounds and the pane tiling from a declared area of interest.
package viewport

import (
	"errors"
	"fmt"
	"math"

	"github.com/inamate/graphpad/internal/vec"
)

var (
	ErrInvalidSize = errors.New("viewport: width and height must be positive")
	ErrEmptyBounds = errors.New("viewport: bounds must have a positive finite span")
)

// Policy selects how the area of interest is fitted into the viewport.
type Policy string

const (
	// PolicyContain keeps x and y at the same scale, widening whichever
	// axis is too narrow for the viewport's aspect ratio.
	PolicyContain Policy = "contain"
	// PolicyStretch maps the area of interest onto the viewport as-is.
	PolicyStretch Policy = "stretch"
)

// DefaultPadding is added on every side of the area of interest when a
// view box is built with DefaultViewBox.
const DefaultPadding = 0.5

// ViewBox is the math-space area of interest a diagram asks to keep visible.
type ViewBox struct {
	X       [2]float64 `json:"x"`
	Y       [2]float64 `json:"y"`
	Padding float64    `json:"padding"`
}

// DefaultViewBox is [-3, 3] on both axes with the default padding.
func DefaultViewBox() ViewBox {
	return ViewBox{X: [2]float64{-3, 3}, Y: [2]float64{-3, 3}, Padding: DefaultPadding}
}

// Size is a viewport size in pixels.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Aspect returns width / height.
func (s Size) Aspect() float64 {
	return s.Width / s.Height
}

// Bounds is an axis-aligned math-space rectangle.
type Bounds struct {
	XMin float64 `json:"xMin"`
	XMax float64 `json:"xMax"`
	YMin float64 `json:"yMin"`
	YMax float64 `json:"yMax"`
}

// XSpan returns XMax - XMin.
func (b Bounds) XSpan() float64 { return b.XMax - b.XMin }

// YSpan returns YMax - YMin.
func (b Bounds) YSpan() float64 { return b.YMax - b.YMin }

// Contains reports whether p lies inside b (edges included).
func (b Bounds) Contains(p vec.Vector2) bool {
	return p.X >= b.XMin && p.X <= b.XMax && p.Y >= b.YMin && p.Y <= b.YMax
}

// Center returns the middle of b.
func (b Bounds) Center() vec.Vector2 {
	return vec.V((b.XMin+b.XMax)/2, (b.YMin+b.YMax)/2)
}

// Viewport is the derived state for one size, view box and pan offset.
type Viewport struct {
	Size   Size   `json:"size"`
	Bounds Bounds `json:"bounds"`

	XSpan  float64 `json:"xSpan"`
	YSpan  float64 `json:"ySpan"`
	ScaleX float64 `json:"scaleX"`
	ScaleY float64 `json:"scaleY"`

	View        vec.Matrix `json:"view"`
	InverseView vec.Matrix `json:"inverseView"`

	XPanes     []Interval `json:"xPanes"`
	YPanes     []Interval `json:"yPanes"`
	XPaneRange Interval   `json:"xPaneRange"`
	YPaneRange Interval   `json:"yPaneRange"`
}

// Compute derives the viewport for the given inputs. pan is a math-space
// offset added to both bounds of each axis.
func Compute(box ViewBox, size Size, pan vec.Vector2, policy Policy) (Viewport, error) {
	if !(size.Width > 0) || !(size.Height > 0) || math.IsInf(size.Width, 0) || math.IsInf(size.Height, 0) {
		return Viewport{}, fmt.Errorf("%w: got %gx%g", ErrInvalidSize, size.Width, size.Height)
	}

	aoi := Bounds{
		XMin: box.X[0] - box.Padding + pan.X,
		XMax: box.X[1] + box.Padding + pan.X,
		YMin: box.Y[0] - box.Padding + pan.Y,
		YMax: box.Y[1] + box.Padding + pan.Y,
	}
	if !validSpan(aoi.XSpan()) || !validSpan(aoi.YSpan()) {
		return Viewport{}, fmt.Errorf("%w: x=[%g, %g] y=[%g, %g]", ErrEmptyBounds, aoi.XMin, aoi.XMax, aoi.YMin, aoi.YMax)
	}

	bounds := aoi
	if policy != PolicyStretch {
		bounds = contain(aoi, size.Aspect())
	}

	xSpan, ySpan := bounds.XSpan(), bounds.YSpan()
	scaleX := size.Width / xSpan
	scaleY := -size.Height / ySpan

	view := vec.NewBuilder().
		Translate(-bounds.XMin, -bounds.YMax).
		Scale(scaleX, scaleY).
		Build()
	inverse, err := vec.Invert(view)
	if err != nil {
		return Viewport{}, fmt.Errorf("invert view transform: %w", err)
	}

	xPanes, xRange := Panes(bounds.XMin, bounds.XMax)
	yPanes, yRange := Panes(bounds.YMin, bounds.YMax)

	return Viewport{
		Size:        size,
		Bounds:      bounds,
		XSpan:       xSpan,
		YSpan:       ySpan,
		ScaleX:      scaleX,
		ScaleY:      scaleY,
		View:        view,
		InverseView: inverse,
		XPanes:      xPanes,
		YPanes:      yPanes,
		XPaneRange:  xRange,
		YPaneRange:  yRange,
	}, nil
}

func validSpan(s float64) bool {
	return s > 0 && !math.IsInf(s, 0)
}

// contain widens the narrow axis of aoi about its centre so it has the
// given aspect ratio.
func contain(aoi Bounds, aspect float64) Bounds {
	out := aoi
	aoiAspect := aoi.XSpan() / aoi.YSpan()
	if aoiAspect > aspect {
		yCenter := (aoi.YMax + aoi.YMin) / 2
		half := aoi.XSpan() / aspect / 2
		out.YMin = yCenter - half
		out.YMax = yCenter + half
	} else {
		xCenter := (aoi.XMax + aoi.XMin) / 2
		half := aoi.YSpan() * aspect / 2
		out.XMin = xCenter - half
		out.XMax = xCenter + half
	}
	return out
}

// ToPixel maps a math-space point to pixels.
func (v Viewport) ToPixel(p vec.Vector2) vec.Vector2 {
	return vec.Transform(p, v.View)
}

// ToMath maps a pixel position back to math space.
func (v Viewport) ToMath(p vec.Vector2) vec.Vector2 {
	return vec.Transform(p, v.InverseView)
}

// ErrorThreshold is the sampling error budget in squared math units that
// corresponds to 0.1 square pixels at this zoom level.
func (v Viewport) ErrorThreshold() float64 {
	return 0.1 / math.Abs(v.ScaleX*v.ScaleY)
}

// PanFromDrag converts a cumulative pan gesture, in pixels, into the
// math-space pan offset that keeps the content under the pointer.
func PanFromDrag(pixelOffset vec.Vector2, v Viewport) vec.Vector2 {
	return vec.V(
		-pixelOffset.X/v.Size.Width*v.XSpan,
		pixelOffset.Y/v.Size.Height*v.YSpan,
	)
}
