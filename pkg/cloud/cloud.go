// Package cloud holds atomic point clouds handed to a homology engine.
package cloud

import (
	"math"

	"github.com/matzehuels/moltda/pkg/errors"
)

// Point is a Cartesian coordinate in Angstrom.
type Point [3]float64

// Cloud is a set of atom positions with optional per-atom weights, usually
// atomic radii for weighted alpha shapes.
type Cloud struct {
	Coords  []Point   `json:"coords"`
	Weights []float64 `json:"weights,omitempty"`

	// Elements carries atom symbols when the source format has them. It is
	// informational and never sent to an engine.
	Elements []string `json:"-"`
}

// Len returns the number of atoms.
func (c Cloud) Len() int { return len(c.Coords) }

// Weighted reports whether per-atom weights are present.
func (c Cloud) Weighted() bool { return c.Weights != nil }

// Validate checks coordinates and weights before any engine work starts.
//
// Weights, when present, must match the coordinates one to one and be finite;
// a mismatch is an INVALID_WEIGHT_SPEC error. Non-finite coordinates are
// INVALID_INPUT.
func (c Cloud) Validate() error {
	if len(c.Coords) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "point cloud is empty")
	}
	for i, p := range c.Coords {
		for _, v := range p {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return errors.New(errors.ErrCodeInvalidInput, "coordinate %d is not finite: %v", i, p)
			}
		}
	}
	if c.Weights == nil {
		return nil
	}
	if len(c.Weights) != len(c.Coords) {
		return errors.New(errors.ErrCodeInvalidWeightSpec,
			"weights must be the same length as coords: got %d weights for %d points", len(c.Weights), len(c.Coords))
	}
	for i, w := range c.Weights {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return errors.New(errors.ErrCodeInvalidWeightSpec, "weight %d is not finite: %v", i, w)
		}
	}
	return nil
}
