package shape

import (
	"fmt"
	"strings"

	"github.com/inamate/graphpad/internal/vec"
)

// Anchor says how text is placed relative to its pixel position.
type Anchor struct {
	Offset   vec.Vector2 `json:"offset"`
	Align    string      `json:"align"`
	Baseline string      `json:"baseline"`
}

// TextAnchor resolves a cardinal attachment ("n", "ne", ..., "nw", or ""
// for centred) into a pixel offset of the given distance. Pixel y grows
// downwards, so north moves the text up.
func TextAnchor(attach string, distance float64) (Anchor, error) {
	a := Anchor{Align: "middle", Baseline: "middle"}
	switch attach {
	case "", "n", "ne", "e", "se", "s", "sw", "w", "nw":
	default:
		return a, fmt.Errorf("shape: unknown text attachment %q", attach)
	}

	var dir vec.Vector2
	switch {
	case strings.Contains(attach, "w"):
		a.Align, dir.X = "end", -1
	case strings.Contains(attach, "e"):
		a.Align, dir.X = "start", 1
	}
	switch {
	case strings.Contains(attach, "n"):
		a.Baseline, dir.Y = "baseline", -1
	case strings.Contains(attach, "s"):
		a.Baseline, dir.Y = "hanging", 1
	}

	if off, err := dir.WithMag(distance); err == nil {
		a.Offset = off
	}
	return a, nil
}
