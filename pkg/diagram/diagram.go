package diagram

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// dimPrefix is the key prefix used for dimensions in [Arrays].
const dimPrefix = "dim"

// Pair is a single point of a persistence diagram.
//
// Birth and Death are in whatever units the producer uses: squared radii for
// raw alpha-filtration output, Euclidean radii after [ToArrays]. Data is an
// opaque tag assigned by the homology engine (typically the id of the simplex
// that created the feature).
type Pair struct {
	Birth float64
	Death float64
	Data  uint32
}

// Persistence returns Death - Birth.
func (p Pair) Persistence() float64 { return p.Death - p.Birth }

// IsEssential reports whether the feature never dies within the filtration.
func (p Pair) IsEssential() bool { return math.IsInf(p.Death, 1) }

// MarshalJSON encodes the pair as a [birth, death, data] triple.
// Infinite deaths are written as null, since JSON has no infinity.
func (p Pair) MarshalJSON() ([]byte, error) {
	death := any(p.Death)
	if math.IsInf(p.Death, 0) || math.IsNaN(p.Death) {
		death = nil
	}
	return json.Marshal([]any{p.Birth, death, p.Data})
}

// UnmarshalJSON accepts either a [birth, death] / [birth, death, data] array
// or an object with "birth", "death" and optional "data" fields. A null death
// decodes to +Inf.
func (p *Pair) UnmarshalJSON(b []byte) error {
	trimmed := strings.TrimSpace(string(b))
	if strings.HasPrefix(trimmed, "{") {
		var obj struct {
			Birth float64  `json:"birth"`
			Death *float64 `json:"death"`
			Data  uint32   `json:"data"`
		}
		if err := json.Unmarshal(b, &obj); err != nil {
			return err
		}
		p.Birth, p.Data = obj.Birth, obj.Data
		p.Death = math.Inf(1)
		if obj.Death != nil {
			p.Death = *obj.Death
		}
		return nil
	}

	var arr []*float64
	if err := json.Unmarshal(b, &arr); err != nil {
		return err
	}
	if len(arr) < 2 || len(arr) > 3 {
		return fmt.Errorf("pair must have 2 or 3 elements, got %d", len(arr))
	}
	if arr[0] == nil {
		return fmt.Errorf("pair birth cannot be null")
	}
	p.Birth = *arr[0]
	p.Death = math.Inf(1)
	if arr[1] != nil {
		p.Death = *arr[1]
	}
	p.Data = 0
	if len(arr) == 3 && arr[2] != nil {
		d := *arr[2]
		if d < 0 || d > math.MaxUint32 || d != math.Trunc(d) {
			return fmt.Errorf("pair data must be an unsigned 32-bit integer, got %v", d)
		}
		p.Data = uint32(d)
	}
	return nil
}

// Diagram is the multiset of pairs for one homology dimension.
type Diagram []Pair

// Clone returns a copy of d that shares no memory with it.
func (d Diagram) Clone() Diagram {
	if d == nil {
		return nil
	}
	out := make(Diagram, len(d))
	copy(out, d)
	return out
}

// Diagrams holds the raw output of a homology engine, indexed by dimension.
type Diagrams []Diagram

// Arrays maps dimension keys ("dim0", "dim1", ...) to diagrams in Euclidean
// units. It is the form consumed by the vectorization core and the form
// persisted under "diagrams" in result files.
type Arrays map[string]Diagram

// DimKey returns the [Arrays] key for dimension d.
func DimKey(d int) string { return dimPrefix + strconv.Itoa(d) }

// ParseDimKey returns the dimension encoded in key, or false if key is not of
// the form "dim<n>" with n >= 0.
func ParseDimKey(key string) (int, bool) {
	if !strings.HasPrefix(key, dimPrefix) {
		return 0, false
	}
	d, err := strconv.Atoi(key[len(dimPrefix):])
	if err != nil || d < 0 {
		return 0, false
	}
	return d, true
}

// Dim returns the diagram for dimension d, or nil if it is absent.
func (a Arrays) Dim(d int) Diagram { return a[DimKey(d)] }

// Dims returns the dimensions present in a in ascending order.
// Keys that are not dimension keys are ignored.
func (a Arrays) Dims() []int {
	dims := make([]int, 0, len(a))
	for k := range a {
		if d, ok := ParseDimKey(k); ok {
			dims = append(dims, d)
		}
	}
	sort.Ints(dims)
	return dims
}

// Len returns the total number of pairs across all dimensions.
func (a Arrays) Len() int {
	n := 0
	for _, d := range a {
		n += len(d)
	}
	return n
}
