// Package sample turns real-valued curves into polylines whose deviation
// from the true curve stays within a fixed error budget.
//
// The sampler subdivides the parameter domain recursively. Every interval
// is split down to MinDepth unconditionally; below that an interval is
// split again only while the true midpoint is farther than the threshold
// from the chord midpoint, and never past MaxDepth. The metric is the
// squared distance between xy(mid) and the lerp of the endpoints.
//
// Each vertex is emitted exactly once: an interval emits its midpoint and
// its right endpoint, and only the leftmost interval also emits its left
// endpoint.
//
// A leaf at MaxDepth whose error is still over the threshold is probed for
// a jump. The half with the longer chord is bisected a few more times; a
// continuous curve's chord shrinks with the interval while a jump keeps at
// least half of it. A jump lifts the pen between its two sides.
package sample

import (
	"fmt"
	"math"

	"github.com/inamate/graphpad/internal/vec"
)

// jumpProbes is the number of extra bisections spent deciding whether a
// leaf straddles a jump.
const jumpProbes = 10

// Func is a parametric curve.
type Func func(t float64) vec.Vector2

type sampler struct {
	xy   Func
	opts Options
	path Path
	run  []Vertex
}

// Parametric samples xy over domain. Points where xy is not finite, lies
// outside opts.Clip or panics are left out and break the path there. A
// domain that is undefined everywhere yields an empty path.
func Parametric(xy Func, domain [2]float64, opts Options) (Path, error) {
	opts = opts.withDefaults()
	if err := opts.Validate(); err != nil {
		return Path{}, err
	}
	if !finite(domain[0]) || !finite(domain[1]) {
		return Path{}, fmt.Errorf("%w: [%g, %g]", ErrInvalidDomain, domain[0], domain[1])
	}

	s := &sampler{xy: xy, opts: opts}
	s.span(domain[0], domain[1], true)
	return s.finish(), nil
}

// span samples one interval into the current path. pushLeft controls
// whether the interval's first point is emitted; callers chaining spans
// end to end pass false for every span after the first.
func (s *sampler) span(lo, hi float64, pushLeft bool) {
	a := s.eval(lo)
	b := s.eval(hi)
	s.subdivide(a, b, pushLeft, true, 0)
}

func (s *sampler) subdivide(a, b Vertex, pushLeft, pushRight bool, depth int) {
	mid := a.T + (b.T-a.T)/2
	m := s.eval(mid)

	if depth < s.opts.MinDepth {
		s.subdivide(a, m, pushLeft, true, depth+1)
		s.subdivide(m, b, false, pushRight, depth+1)
		return
	}

	jump := 0
	if s.defined(a) || s.defined(m) || s.defined(b) {
		chord := a.Vector2.Lerp(b.Vector2, 0.5)
		if m.Vector2.SquareDist(chord) > s.opts.ErrorThreshold {
			if depth < s.opts.MaxDepth {
				s.subdivide(a, m, pushLeft, true, depth+1)
				s.subdivide(m, b, false, pushRight, depth+1)
				return
			}
			jump = s.jump(a, m, b)
		}
	}

	s.path.Stats.Leaves++
	if depth > s.path.Stats.MaxDepthReached {
		s.path.Stats.MaxDepthReached = depth
	}
	if pushLeft {
		s.emit(a)
	}
	if jump < 0 {
		s.penUp()
	}
	s.emit(m)
	if jump > 0 {
		s.penUp()
	}
	if pushRight {
		s.emit(b)
	}
}

// jump reports where a leaf straddles a discontinuity: -1 between a and
// m, 1 between m and b, 0 when the curve is continuous over the leaf.
func (s *sampler) jump(a, m, b Vertex) int {
	if !s.defined(a) || !s.defined(m) || !s.defined(b) {
		return 0
	}
	side := 1
	lo, hi := m, b
	if a.SquareDist(m.Vector2) > m.SquareDist(b.Vector2) {
		side = -1
		lo, hi = a, m
	}
	limit := lo.SquareDist(hi.Vector2) / 4
	for range jumpProbes {
		mid := s.eval(lo.T + (hi.T-lo.T)/2)
		if !s.defined(mid) {
			return side
		}
		if lo.SquareDist(mid.Vector2) > mid.SquareDist(hi.Vector2) {
			hi = mid
		} else {
			lo = mid
		}
	}
	if lo.SquareDist(hi.Vector2) > limit {
		return side
	}
	return 0
}

func (s *sampler) eval(t float64) (v Vertex) {
	s.path.Stats.Evaluations++
	v.T = t
	defer func() {
		if recover() != nil {
			v.Vector2 = vec.V(math.NaN(), math.NaN())
		}
	}()
	v.Vector2 = s.xy(t)
	return v
}

func (s *sampler) defined(v Vertex) bool {
	if !v.IsFinite() {
		return false
	}
	return s.opts.Clip == nil || s.opts.Clip.Contains(v.Vector2)
}

func (s *sampler) emit(v Vertex) {
	if !s.defined(v) {
		s.penUp()
		return
	}
	s.run = append(s.run, v)
}

func (s *sampler) penUp() {
	if len(s.run) > 0 {
		s.path.Runs = append(s.path.Runs, s.run)
		s.run = nil
	}
}

func (s *sampler) finish() Path {
	s.penUp()
	return s.path
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
