package diagram

import "math"

// LandscapePoint is a diagram point reparameterized as (birth, persistence).
type LandscapePoint struct {
	Birth       float64
	Persistence float64
}

// IsFinite reports whether both coordinates are finite numbers. Essential
// classes (infinite death) have infinite persistence and are not finite.
func (p LandscapePoint) IsFinite() bool {
	return finite(p.Birth) && finite(p.Persistence)
}

// Landscape is the (birth, persistence) form of a diagram.
type Landscape []LandscapePoint

// ToLandscape maps every (birth, death) pair to (birth, death - birth).
//
// The result is a fresh slice; d is never modified, so the same diagram can be
// rasterized under several settings or persisted after vectorization.
// An empty diagram yields an empty landscape.
func ToLandscape(d Diagram) Landscape {
	out := make(Landscape, len(d))
	for i, p := range d {
		out[i] = LandscapePoint{Birth: p.Birth, Persistence: p.Death - p.Birth}
	}
	return out
}

// MaxPersistence returns the largest persistence in l, ignoring points whose
// persistence is not finite. It returns 0 for an empty landscape.
func (l Landscape) MaxPersistence() float64 {
	maxP := 0.0
	first := true
	for _, p := range l {
		if !finite(p.Persistence) {
			continue
		}
		if first || p.Persistence > maxP {
			maxP = p.Persistence
			first = false
		}
	}
	return maxP
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
