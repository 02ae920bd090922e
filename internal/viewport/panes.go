package viewport

import "math"

// PaneBase is the base whose powers size the panes.
const PaneBase = 2

// maxPanes bounds the tiling of a single axis. Outward rounding to the
// nearest power of two never needs more than a handful.
const maxPanes = 64

// Interval is a half-open math-space range [Lo, Hi).
type Interval struct {
	Lo float64 `json:"lo"`
	Hi float64 `json:"hi"`
}

// Span returns Hi - Lo.
func (i Interval) Span() float64 { return i.Hi - i.Lo }

// Contains reports whether x lies in [Lo, Hi].
func (i Interval) Contains(x float64) bool { return x >= i.Lo && x <= i.Hi }

// PaneStep returns the pane size for a visible span: the power of
// PaneBase nearest to span in log space.
func PaneStep(span float64) float64 {
	return math.Pow(PaneBase, math.Round(math.Log(span)/math.Log(PaneBase)))
}

// Panes tiles [lo, hi] with power-of-two panes. The returned range is
// lo and hi rounded outward to multiples of the step.
func Panes(lo, hi float64) ([]Interval, Interval) {
	step := PaneStep(hi - lo)
	lower := math.Floor(lo/step) * step
	upper := math.Ceil(hi/step) * step

	panes := make([]Interval, 0, int(math.Min(maxPanes, math.Ceil((upper-lower)/step))))
	for i := 0; i < maxPanes; i++ {
		start := lower + float64(i)*step
		if start >= upper {
			break
		}
		panes = append(panes, Interval{Lo: start, Hi: start + step})
	}
	return panes, Interval{Lo: lower, Hi: upper}
}
