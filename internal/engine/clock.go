package engine

import (
	"errors"
	"fmt"
	"math"

	"github.com/inamate/graphpad/internal/document"
)

var ErrTimeOutOfRange = errors.New("engine: time outside the clock range")

// Clock is a stopwatch in seconds. It only advances through Tick, so the
// host decides the frame rate.
type Clock struct {
	start   float64
	end     float64
	time    float64
	running bool
}

// NewClock returns a stopped clock at start. An end of +Inf never stops.
func NewClock(start, end float64) *Clock {
	return &Clock{start: start, end: end, time: start}
}

func clockFor(c *document.ClockData) *Clock {
	if c == nil {
		return NewClock(0, math.Inf(1))
	}
	end := math.Inf(1)
	if c.End != nil {
		end = *c.End
	}
	return NewClock(c.Start, end)
}

// Start resumes the clock.
func (c *Clock) Start() {
	c.running = true
}

// Stop halts the clock and rewinds it to its start time.
func (c *Clock) Stop() {
	c.running = false
	c.time = c.start
}

// SetTime jumps to t without changing whether the clock runs.
func (c *Clock) SetTime(t float64) error {
	if !(t >= c.start && t <= c.end) {
		return fmt.Errorf("%w: %g not in [%g, %g]", ErrTimeOutOfRange, t, c.start, c.end)
	}
	c.time = t
	return nil
}

// Tick advances a running clock by dt seconds and reports whether the
// time changed. Reaching the end time parks the clock there and stops it.
func (c *Clock) Tick(dt float64) bool {
	if !c.running || !(dt > 0) {
		return false
	}
	c.time += dt
	if c.time >= c.end {
		c.time = c.end
		c.running = false
	}
	return true
}

func (c *Clock) Time() float64             { return c.time }
func (c *Clock) Running() bool             { return c.running }
func (c *Clock) Range() (float64, float64) { return c.start, c.end }
