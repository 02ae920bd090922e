package sample

import (
	"iter"

	"github.com/inamate/graphpad/internal/vec"
)

// Vertex is a sampled point together with the parameter that produced it.
type Vertex struct {
	T float64 `json:"t"`
	vec.Vector2
}

// Stats describes the work done producing a path.
type Stats struct {
	Leaves          int `json:"leaves"`
	Evaluations     int `json:"evaluations"`
	MaxDepthReached int `json:"maxDepthReached"`
}

// Path is a sampled curve. Each run is a continuous polyline; consecutive
// runs are separated by a pen-up break where the function was undefined.
type Path struct {
	Runs  [][]Vertex `json:"runs"`
	Stats Stats      `json:"stats"`
}

// Sample is one element of Path.Samples: either a point or a break.
type Sample struct {
	T     float64
	Point vec.Vector2
	Break bool
}

// Len returns the number of points across all runs.
func (p Path) Len() int {
	n := 0
	for _, r := range p.Runs {
		n += len(r)
	}
	return n
}

// Empty reports whether the path has no points.
func (p Path) Empty() bool {
	return len(p.Runs) == 0
}

// Breaks returns the number of pen-up gaps between runs.
func (p Path) Breaks() int {
	if len(p.Runs) == 0 {
		return 0
	}
	return len(p.Runs) - 1
}

// Points returns every point in order, ignoring breaks.
func (p Path) Points() []vec.Vector2 {
	out := make([]vec.Vector2, 0, p.Len())
	for _, r := range p.Runs {
		for _, v := range r {
			out = append(out, v.Vector2)
		}
	}
	return out
}

// Samples yields the points in order with a Break between runs.
// The sequence can be iterated any number of times.
func (p Path) Samples() iter.Seq[Sample] {
	return func(yield func(Sample) bool) {
		for i, r := range p.Runs {
			if i > 0 && !yield(Sample{Break: true}) {
				return
			}
			for _, v := range r {
				if !yield(Sample{T: v.T, Point: v.Vector2}) {
					return
				}
			}
		}
	}
}

// Transform maps every run through m, typically a scope's pixel transform.
func (p Path) Transform(m vec.Matrix) [][]vec.Vector2 {
	out := make([][]vec.Vector2, len(p.Runs))
	for i, r := range p.Runs {
		run := make([]vec.Vector2, len(r))
		for j, v := range r {
			run[j] = vec.Transform(v.Vector2, m)
		}
		out[i] = run
	}
	return out
}
