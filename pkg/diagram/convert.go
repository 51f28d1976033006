package diagram

import (
	"math"

	"github.com/matzehuels/moltda/pkg/errors"
)

// ToArrays converts raw engine diagrams into [Arrays].
//
// Alpha filtrations are parameterized by squared radii, so every birth and
// death is square-rooted to bring it back to Euclidean scale. The mapping is
// fixed and not configurable. Every dimension the engine emitted gets a key,
// and empty dimensions map to an empty, non-nil diagram.
//
// Infinite deaths (essential classes) are kept as +Inf. A negative filtration
// value has no real square root and is reported as INVALID_DIAGRAM, as is any
// NaN or a pair whose death precedes its birth.
func ToArrays(dgms Diagrams) (Arrays, error) {
	out := make(Arrays, len(dgms))
	for dim, dgm := range dgms {
		arr := make(Diagram, 0, len(dgm))
		for i, p := range dgm {
			if err := checkRaw(p); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidDiagram, err, "%s[%d]", DimKey(dim), i)
			}
			arr = append(arr, Pair{
				Birth: math.Sqrt(p.Birth),
				Death: math.Sqrt(p.Death),
				Data:  p.Data,
			})
		}
		out[DimKey(dim)] = arr
	}
	return out, nil
}

func checkRaw(p Pair) error {
	switch {
	case math.IsNaN(p.Birth) || math.IsNaN(p.Death):
		return errors.New(errors.ErrCodeInvalidDiagram, "filtration value is NaN")
	case p.Birth < 0 || p.Death < 0:
		return errors.New(errors.ErrCodeInvalidDiagram, "negative filtration value (%v, %v)", p.Birth, p.Death)
	case math.IsInf(p.Birth, 0):
		return errors.New(errors.ErrCodeInvalidDiagram, "birth cannot be infinite")
	case p.Death < p.Birth:
		return errors.New(errors.ErrCodeInvalidDiagram, "death %v precedes birth %v", p.Death, p.Birth)
	}
	return nil
}

// Validate checks that every key of a is a dimension key and every pair is
// well formed: no NaN, a finite birth, and a death no earlier than its birth.
// Unlike raw diagrams, arrays may hold negative values.
func (a Arrays) Validate() error {
	for key, dgm := range a {
		if _, ok := ParseDimKey(key); !ok {
			return errors.New(errors.ErrCodeInvalidDiagram, "unexpected key %q, want dim<n>", key)
		}
		for i, p := range dgm {
			switch {
			case math.IsNaN(p.Birth) || math.IsNaN(p.Death):
				return errors.New(errors.ErrCodeInvalidDiagram, "%s[%d]: value is NaN", key, i)
			case math.IsInf(p.Birth, 0):
				return errors.New(errors.ErrCodeInvalidDiagram, "%s[%d]: birth cannot be infinite", key, i)
			case p.Death < p.Birth:
				return errors.New(errors.ErrCodeInvalidDiagram, "%s[%d]: death %v precedes birth %v", key, i, p.Death, p.Birth)
			}
		}
	}
	return nil
}

// Diagrams returns a indexed by dimension. Dimensions between 0 and the
// highest key that a lacks become empty diagrams.
func (a Arrays) Diagrams() Diagrams {
	dims := a.Dims()
	if len(dims) == 0 {
		return Diagrams{}
	}
	out := make(Diagrams, dims[len(dims)-1]+1)
	for i := range out {
		out[i] = a.Dim(i).Clone()
		if out[i] == nil {
			out[i] = Diagram{}
		}
	}
	return out
}
