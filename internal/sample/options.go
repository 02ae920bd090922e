package sample

import (
	"errors"
	"fmt"
	"math"

	"github.com/inamate/graphpad/internal/viewport"
)

const (
	DefaultMinDepth       = 8
	DefaultMaxDepth       = 14
	DefaultErrorThreshold = 0.1

	// MaxDepthCeiling caps MaxDepth. Cost grows as 2^MaxDepth, so depths
	// coming from requests must never exceed this.
	MaxDepthCeiling = 20
)

var (
	ErrInvalidOptions = errors.New("sample: invalid options")
	ErrInvalidDomain  = errors.New("sample: domain bounds must be finite")
)

// Options bound the work done by the sampler.
//
// MinDepth forces uniform subdivision to 2^MinDepth leaves so narrow
// features are not skipped by the first coarse samples. MaxDepth caps the
// refinement. ErrorThreshold is the largest accepted squared distance, in
// the units of the sampled function, between the true midpoint and the
// chord midpoint. Clip, when set, treats points outside it as undefined.
type Options struct {
	MinDepth       int
	MaxDepth       int
	ErrorThreshold float64
	Clip           *viewport.Bounds
}

// DefaultOptions returns depth 8..14 with a 0.1 error budget.
func DefaultOptions() Options {
	return Options{
		MinDepth:       DefaultMinDepth,
		MaxDepth:       DefaultMaxDepth,
		ErrorThreshold: DefaultErrorThreshold,
	}
}

// ForViewport returns the default depths with the error budget of vp, so
// the pixel-space error stays constant across zoom levels.
func ForViewport(vp viewport.Viewport) Options {
	opts := DefaultOptions()
	opts.ErrorThreshold = vp.ErrorThreshold()
	return opts
}

// withDefaults fills the zero value: both depths zero selects the default
// depths and a zero threshold selects the default threshold.
func (o Options) withDefaults() Options {
	if o.MinDepth == 0 && o.MaxDepth == 0 {
		o.MinDepth = DefaultMinDepth
		o.MaxDepth = DefaultMaxDepth
	}
	if o.ErrorThreshold == 0 {
		o.ErrorThreshold = DefaultErrorThreshold
	}
	return o
}

// Validate checks the depth bounds and the threshold.
func (o Options) Validate() error {
	switch {
	case o.MinDepth < 0 || o.MaxDepth < 0:
		return fmt.Errorf("%w: negative depth (min=%d, max=%d)", ErrInvalidOptions, o.MinDepth, o.MaxDepth)
	case o.MinDepth > o.MaxDepth:
		return fmt.Errorf("%w: min depth %d exceeds max depth %d", ErrInvalidOptions, o.MinDepth, o.MaxDepth)
	case o.MaxDepth > MaxDepthCeiling:
		return fmt.Errorf("%w: max depth %d exceeds ceiling %d", ErrInvalidOptions, o.MaxDepth, MaxDepthCeiling)
	case !(o.ErrorThreshold > 0) || math.IsInf(o.ErrorThreshold, 0):
		return fmt.Errorf("%w: error threshold %g must be positive and finite", ErrInvalidOptions, o.ErrorThreshold)
	}
	return nil
}
