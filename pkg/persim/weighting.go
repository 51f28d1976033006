package persim

import (
	"github.com/matzehuels/moltda/pkg/diagram"
	"github.com/matzehuels/moltda/pkg/errors"
)

// Weighting selects how much each landscape point contributes to an image.
//
// The set is closed. For the stability results of persistence images to
// hold, a weight must vanish as persistence goes to zero; every policy except
// [WeightingIdentity] satisfies this.
type Weighting uint8

const (
	// WeightingIdentity gives every point weight 1. It does not satisfy the
	// stability property and is meant for debugging and visualization.
	WeightingIdentity Weighting = iota

	// WeightingLinear scales each point by its persistence divided by the
	// largest persistence in the landscape, so weights run from 0 to 1.
	WeightingLinear
)

// Weighting names as accepted by [ParseWeighting].
const (
	WeightingNameIdentity = "identity"
	WeightingNameLinear   = "linear"
)

// WeightFunc returns the weight of a single landscape point.
type WeightFunc func(p diagram.LandscapePoint) float64

// ParseWeighting returns the Weighting named by s.
// Unknown names fail with UNSUPPORTED_WEIGHTING; there is no fallback.
func ParseWeighting(s string) (Weighting, error) {
	switch s {
	case WeightingNameIdentity:
		return WeightingIdentity, nil
	case WeightingNameLinear:
		return WeightingLinear, nil
	}
	return 0, errors.New(errors.ErrCodeUnsupportedWeighting, "weighting type %q not implemented", s)
}

// String returns the policy name.
func (w Weighting) String() string {
	switch w {
	case WeightingIdentity:
		return WeightingNameIdentity
	case WeightingLinear:
		return WeightingNameLinear
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (w Weighting) MarshalText() ([]byte, error) {
	if err := w.validate(); err != nil {
		return nil, err
	}
	return []byte(w.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (w *Weighting) UnmarshalText(b []byte) error {
	parsed, err := ParseWeighting(string(b))
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}

func (w Weighting) validate() error {
	switch w {
	case WeightingIdentity, WeightingLinear:
		return nil
	}
	return errors.New(errors.ErrCodeUnsupportedWeighting, "weighting type %d not implemented", uint8(w))
}

// Func builds the weight function for landscape l.
//
// Landscape-dependent state (the maximum persistence for the linear policy)
// is computed here once and captured by value, so the returned function is
// pure and safe to share between goroutines. The rasterizer never calls Func
// for an empty landscape.
func (w Weighting) Func(l diagram.Landscape) WeightFunc {
	switch w {
	case WeightingLinear:
		return linearWeight(l.MaxPersistence())
	default:
		return identityWeight
	}
}

func identityWeight(diagram.LandscapePoint) float64 { return 1 }

// linearWeight is f(p) = p / maxP, so f(0) = 0 and f(maxP) = 1. A landscape
// whose points all have zero persistence gets zero weight everywhere.
func linearWeight(maxP float64) WeightFunc {
	if maxP == 0 {
		return func(diagram.LandscapePoint) float64 { return 0 }
	}
	return func(p diagram.LandscapePoint) float64 { return p.Persistence / maxP }
}
