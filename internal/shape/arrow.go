package shape

import (
	"math"

	"github.com/inamate/graphpad/internal/vec"
)

const (
	// VectorHeadSize is the arrowhead length of a vector, in pixels.
	VectorHeadSize = 8
	// FieldHeadSize caps the arrowhead length of vector field arrows.
	FieldHeadSize = 5
)

// headAngle is the angle between the shaft and each barb.
const headAngle = 5 * math.Pi / 6

// Arrow is a shaft with a triangular head, in pixel space.
type Arrow struct {
	Tail vec.Vector2    `json:"tail"`
	Tip  vec.Vector2    `json:"tip"`
	Head [3]vec.Vector2 `json:"head"`
}

// NewArrow maps tail and tip through m and adds a head of at most
// headSize pixels. The head never outgrows the shaft.
func NewArrow(tail, tip vec.Vector2, m vec.Matrix, headSize float64) Arrow {
	pt, pp := vec.Transform(tail, m), vec.Transform(tip, m)
	return pixelArrow(pt, pp, headSize)
}

func pixelArrow(tail, tip vec.Vector2, headSize float64) Arrow {
	a := Arrow{Tail: tail, Tip: tip, Head: [3]vec.Vector2{tip, tip, tip}}
	shaft := tip.Sub(tail)
	back, err := shaft.WithMag(math.Min(shaft.Mag(), headSize))
	if err != nil {
		return a
	}
	a.Head[1] = tip.Add(back.Rotate(headAngle))
	a.Head[2] = tip.Add(back.Rotate(-headAngle))
	return a
}
