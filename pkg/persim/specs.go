package persim

import (
	"fmt"
	"math"

	"github.com/matzehuels/moltda/pkg/diagram"
	"github.com/matzehuels/moltda/pkg/errors"
)

// Specs is the rectangular domain an image is rasterized over.
//
// The birth axis spans [min(MinBD, 0), MaxB] and the persistence axis spans
// [0, MaxP]. Supplying the same Specs for several landscapes puts their images
// on a shared physical scale, so they can be compared cell by cell.
type Specs struct {
	MaxB  float64 `json:"maxB" toml:"maxB"`
	MaxP  float64 `json:"maxP" toml:"maxP"`
	MinBD float64 `json:"minBD" toml:"minBD"`
}

// String implements fmt.Stringer.
func (s Specs) String() string {
	return fmt.Sprintf("maxB=%g maxP=%g minBD=%g", s.MaxB, s.MaxP, s.MinBD)
}

// Validate checks that every bound is a finite number.
func (s Specs) Validate() error {
	if err := errors.ValidateFinite("maxB", s.MaxB); err != nil {
		return err
	}
	if err := errors.ValidateFinite("maxP", s.MaxP); err != nil {
		return err
	}
	return errors.ValidateFinite("minBD", s.MinBD)
}

// lowerBirth is the lower edge of the birth axis: MinBD, but never above 0.
func (s Specs) lowerBirth() float64 { return math.Min(s.MinBD, 0) }

// EstimateSpecs derives the bounds shared by all landscapes.
//
// Each landscape is padded with an implicit (0, 0) point, so MaxB and MaxP are
// never negative and MinBD is never positive. MinBD is the smallest birth or
// persistence seen, which is 0 for well-formed input. Points with a
// non-finite coordinate (essential classes) carry no mass on a finite grid
// and are left out of the reduction.
//
// The reduction is a plain max/min fold, so the result does not depend on the
// order of landscapes or of points within them.
//
// When every landscape is empty the bounds are undefined and EstimateSpecs
// returns an UNDEFINED_BOUNDS error; callers must supply Specs explicitly.
func EstimateSpecs(landscapes ...diagram.Landscape) (Specs, error) {
	var s Specs
	seen := false
	for _, l := range landscapes {
		if len(l) == 0 {
			continue
		}
		seen = true
		for _, p := range l {
			if !p.IsFinite() {
				continue
			}
			s.MaxB = math.Max(s.MaxB, p.Birth)
			s.MaxP = math.Max(s.MaxP, p.Persistence)
			s.MinBD = math.Min(s.MinBD, math.Min(p.Birth, p.Persistence))
		}
	}
	if !seen {
		return Specs{}, errors.New(errors.ErrCodeUndefinedBounds,
			"cannot estimate bounds from %d empty landscape(s); supply specs explicitly", len(landscapes))
	}
	return s, nil
}
