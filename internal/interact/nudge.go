package interact

import (
	"fmt"

	"github.com/inamate/graphpad/internal/vec"
)

// Direction is a keyboard nudge direction in math space (y up).
type Direction int

const (
	Left Direction = iota
	Right
	Up
	Down
)

// Vector returns the unit vector for d.
func (d Direction) Vector() vec.Vector2 {
	switch d {
	case Left:
		return vec.V(-1, 0)
	case Right:
		return vec.V(1, 0)
	case Up:
		return vec.V(0, 1)
	case Down:
		return vec.V(0, -1)
	}
	return vec.Vector2{}
}

// Horizontal reports whether d moves along x.
func (d Direction) Horizontal() bool { return d == Left || d == Right }

func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Right:
		return "right"
	case Up:
		return "up"
	case Down:
		return "down"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// DirectionFromKey maps a keyboard key name to a direction.
func DirectionFromKey(key string) (Direction, bool) {
	switch key {
	case "ArrowLeft", "left":
		return Left, true
	case "ArrowRight", "right":
		return Right, true
	case "ArrowUp", "up":
		return Up, true
	case "ArrowDown", "down":
		return Down, true
	}
	return 0, false
}

// SpanFor picks the visible span along the axis d moves on.
func SpanFor(d Direction, xSpan, ySpan float64) float64 {
	if d.Horizontal() {
		return xSpan
	}
	return ySpan
}

// Modifiers select the nudge granularity. Coarse wins over Fine.
type Modifiers struct {
	Fine   bool `json:"fine"`
	Coarse bool `json:"coarse"`
}

const (
	DefaultDivisions = 50
	FineDivisions    = 200
	CoarseDivisions  = 10
)

// Divisions returns the number of steps per span.
func (m Modifiers) Divisions() int {
	switch {
	case m.Coarse:
		return CoarseDivisions
	case m.Fine:
		return FineDivisions
	}
	return DefaultDivisions
}

// Nudge moves the point one keyboard step in dir and returns the new
// position.
//
// Steps of span/divisions, 2*span/divisions and so on below span/2 are
// tried in order. Each candidate is moved in the user frame, mapped back
// and constrained; the first one landing farther than span/(2*divisions)
// from the current position wins. If none does, the point stays put.
func (m *MovablePoint) Nudge(dir Direction, mods Modifiers, user vec.Matrix, span float64) (vec.Vector2, error) {
	if m.state == StateDragging {
		return m.position, ErrBusy
	}
	invUser, err := vec.Invert(user)
	if err != nil {
		return m.position, fmt.Errorf("invert user transform: %w", err)
	}

	m.state = StateKeyboardNudging
	defer func() { m.state = StateIdle }()

	divisions := mods.Divisions()
	step := span / float64(divisions)
	minDist := span / float64(2*divisions)
	origin := vec.Transform(m.position, user)
	unit := dir.Vector()

	for k := 1; 2*k < divisions; k++ {
		target := vec.Transform(origin.Add(unit.Scale(float64(k)*step)), invUser)
		candidate, err := constrain(m.constraint, target)
		if err != nil {
			return m.position, err
		}
		if candidate.Dist(m.position) > minDist {
			m.position = candidate
			return candidate, nil
		}
	}
	return m.position, nil
}
