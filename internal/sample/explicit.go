package sample

import (
	"math"

	"github.com/inamate/graphpad/internal/vec"
	"github.com/inamate/graphpad/internal/viewport"
)

// OfX samples y = f(x) across the viewport's x panes.
//
// Each pane is sampled on its own so the sample density only depends on
// the pane size, which keeps a panned plot from shimmering. Points whose y
// falls outside the y pane range are treated as undefined, which is how
// vertical asymptotes turn into breaks. A zero ErrorThreshold selects the
// viewport's budget.
func OfX(f func(x float64) float64, vp viewport.Viewport, opts Options) (Path, error) {
	if opts.Clip == nil {
		opts.Clip = &viewport.Bounds{
			XMin: math.Inf(-1), XMax: math.Inf(1),
			YMin: vp.YPaneRange.Lo, YMax: vp.YPaneRange.Hi,
		}
	}
	xy := func(x float64) vec.Vector2 { return vec.V(x, f(x)) }
	return panes(xy, vp.XPanes, forViewport(opts, vp))
}

// OfY samples x = f(y) across the viewport's y panes.
func OfY(f func(y float64) float64, vp viewport.Viewport, opts Options) (Path, error) {
	if opts.Clip == nil {
		opts.Clip = &viewport.Bounds{
			XMin: vp.XPaneRange.Lo, XMax: vp.XPaneRange.Hi,
			YMin: math.Inf(-1), YMax: math.Inf(1),
		}
	}
	xy := func(y float64) vec.Vector2 { return vec.V(f(y), y) }
	return panes(xy, vp.YPanes, forViewport(opts, vp))
}

func forViewport(opts Options, vp viewport.Viewport) Options {
	if opts.ErrorThreshold == 0 {
		opts.ErrorThreshold = vp.ErrorThreshold()
	}
	return opts.withDefaults()
}

// panes samples adjacent intervals into one path. Shared pane edges are
// emitted once.
func panes(xy Func, spans []viewport.Interval, opts Options) (Path, error) {
	if err := opts.Validate(); err != nil {
		return Path{}, err
	}
	s := &sampler{xy: xy, opts: opts}
	for i, p := range spans {
		if !finite(p.Lo) || !finite(p.Hi) {
			return Path{}, ErrInvalidDomain
		}
		s.span(p.Lo, p.Hi, i == 0)
	}
	return s.finish(), nil
}
