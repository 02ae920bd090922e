package shape

import (
	"math"

	"github.com/inamate/graphpad/internal/sample"
	"github.com/inamate/graphpad/internal/vec"
)

// FullTurn is the parameter domain of Ellipse and Circle.
var FullTurn = [2]float64{0, 2 * math.Pi}

// Ellipse returns the outline of an ellipse as a parametric curve over
// FullTurn. radius holds the semi-axes before rotating by angle. Sampling
// the outline keeps it exact under any user transform, including shears
// that no axis-aligned ellipse primitive can express.
func Ellipse(center, radius vec.Vector2, angle float64) sample.Func {
	sin, cos := math.Sincos(angle)
	return func(t float64) vec.Vector2 {
		st, ct := math.Sincos(t)
		x, y := radius.X*ct, radius.Y*st
		return vec.V(center.X+x*cos-y*sin, center.Y+x*sin+y*cos)
	}
}

// Circle is an ellipse with equal radii.
func Circle(center vec.Vector2, r float64) sample.Func {
	return Ellipse(center, vec.V(r, r), 0)
}
