package diagram

import (
	"encoding/json"
	"math"
	"reflect"
	"testing"

	"github.com/matzehuels/moltda/pkg/errors"
)

func TestToArraysSquareRoot(t *testing.T) {
	raw := Diagrams{
		{{Birth: 0, Death: 1, Data: 7}},
		{{Birth: 4, Death: 9, Data: 42}},
	}

	arrays, err := ToArrays(raw)
	if err != nil {
		t.Fatalf("ToArrays() error = %v", err)
	}

	got := arrays["dim1"]
	if len(got) != 1 {
		t.Fatalf("len(dim1) = %d, want 1", len(got))
	}
	want := Pair{Birth: 2, Death: 3, Data: 42}
	if got[0] != want {
		t.Errorf("dim1[0] = %+v, want %+v", got[0], want)
	}
	if arrays["dim0"][0].Death != 1 {
		t.Errorf("dim0[0].Death = %v, want 1", arrays["dim0"][0].Death)
	}
}

func TestToArraysEmptyDimensions(t *testing.T) {
	raw := Diagrams{
		{{Birth: 0, Death: 1}},
		{},
		nil,
		{},
	}

	arrays, err := ToArrays(raw)
	if err != nil {
		t.Fatalf("ToArrays() error = %v", err)
	}

	wantKeys := []int{0, 1, 2, 3}
	if got := arrays.Dims(); !reflect.DeepEqual(got, wantKeys) {
		t.Errorf("Dims() = %v, want %v", got, wantKeys)
	}
	for _, d := range []int{1, 2, 3} {
		arr, ok := arrays[DimKey(d)]
		if !ok {
			t.Fatalf("missing key %s", DimKey(d))
		}
		if arr == nil || len(arr) != 0 {
			t.Errorf("%s = %v, want empty non-nil diagram", DimKey(d), arr)
		}
	}
}

func TestToArraysEssentialClass(t *testing.T) {
	raw := Diagrams{{{Birth: 0, Death: math.Inf(1)}}}

	arrays, err := ToArrays(raw)
	if err != nil {
		t.Fatalf("ToArrays() error = %v", err)
	}
	if !arrays.Dim(0)[0].IsEssential() {
		t.Error("infinite death should survive conversion")
	}
}

func TestToArraysInvalid(t *testing.T) {
	tests := []struct {
		name string
		pair Pair
	}{
		{"negative birth", Pair{Birth: -1, Death: 4}},
		{"death before birth", Pair{Birth: 4, Death: 1}},
		{"nan", Pair{Birth: math.NaN(), Death: 1}},
		{"infinite birth", Pair{Birth: math.Inf(1), Death: math.Inf(1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ToArrays(Diagrams{{tt.pair}})
			if !errors.Is(err, errors.ErrCodeInvalidDiagram) {
				t.Errorf("ToArrays() error = %v, want %s", err, errors.ErrCodeInvalidDiagram)
			}
		})
	}
}

func TestToLandscapeDoesNotMutate(t *testing.T) {
	d := Diagram{{Birth: 1, Death: 3}, {Birth: 2, Death: 2.5}}
	orig := d.Clone()

	l := ToLandscape(d)

	want := Landscape{{Birth: 1, Persistence: 2}, {Birth: 2, Persistence: 0.5}}
	if !reflect.DeepEqual(l, want) {
		t.Errorf("ToLandscape() = %v, want %v", l, want)
	}
	if !reflect.DeepEqual(d, orig) {
		t.Errorf("input mutated: %v, want %v", d, orig)
	}
}

func TestToLandscapeEmpty(t *testing.T) {
	if l := ToLandscape(nil); len(l) != 0 {
		t.Errorf("ToLandscape(nil) = %v, want empty", l)
	}
}

func TestMaxPersistence(t *testing.T) {
	tests := []struct {
		name string
		l    Landscape
		want float64
	}{
		{"empty", nil, 0},
		{"single", Landscape{{1, 2}}, 2},
		{"several", Landscape{{0, 1}, {1, 4}, {2, 3}}, 4},
		{"skips infinite", Landscape{{0, math.Inf(1)}, {1, 0.5}}, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.l.MaxPersistence(); got != tt.want {
				t.Errorf("MaxPersistence() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseDimKey(t *testing.T) {
	tests := []struct {
		key    string
		want   int
		wantOK bool
	}{
		{"dim0", 0, true},
		{"dim12", 12, true},
		{"dim", 0, false},
		{"dim-1", 0, false},
		{"images", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseDimKey(tt.key)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseDimKey(%q) = (%d, %v), want (%d, %v)", tt.key, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestPairJSON(t *testing.T) {
	data, err := json.Marshal(Diagram{{Birth: 2, Death: 3, Data: 5}, {Birth: 0, Death: math.Inf(1)}})
	if err != nil {
		t.Fatalf("Marshal error = %v", err)
	}
	if string(data) != `[[2,3,5],[0,null,0]]` {
		t.Errorf("Marshal = %s", data)
	}

	var back Diagram
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal error = %v", err)
	}
	if back[0] != (Pair{Birth: 2, Death: 3, Data: 5}) || !back[1].IsEssential() {
		t.Errorf("Unmarshal = %+v", back)
	}
}

func TestPairUnmarshalForms(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Pair
		wantErr bool
	}{
		{"pair", `[1.5, 2.5]`, Pair{Birth: 1.5, Death: 2.5}, false},
		{"triple", `[1, 2, 9]`, Pair{Birth: 1, Death: 2, Data: 9}, false},
		{"object", `{"birth": 4, "death": 9, "data": 3}`, Pair{Birth: 4, Death: 9, Data: 3}, false},
		{"too short", `[1]`, Pair{}, true},
		{"fractional tag", `[1, 2, 0.5]`, Pair{}, true},
		{"null birth", `[null, 2]`, Pair{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p Pair
			err := json.Unmarshal([]byte(tt.in), &p)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal(%s) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && p != tt.want {
				t.Errorf("Unmarshal(%s) = %+v, want %+v", tt.in, p, tt.want)
			}
		})
	}
}

func TestArraysValidate(t *testing.T) {
	tests := []struct {
		name    string
		arrays  Arrays
		wantErr bool
	}{
		{"ok", Arrays{"dim0": {{Birth: 0, Death: 1}}, "dim1": {}}, false},
		{"negative allowed", Arrays{"dim1": {{Birth: -0.2, Death: 1}}}, false},
		{"essential", Arrays{"dim0": {{Birth: 0, Death: math.Inf(1)}}}, false},
		{"bad key", Arrays{"h0": {}}, true},
		{"death before birth", Arrays{"dim0": {{Birth: 2, Death: 1}}}, true},
		{"nan", Arrays{"dim0": {{Birth: math.NaN(), Death: 1}}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.arrays.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidDiagram) {
				t.Errorf("Validate() code = %s, want %s", errors.GetCode(err), errors.ErrCodeInvalidDiagram)
			}
		})
	}
}

func TestArraysDiagrams(t *testing.T) {
	a := Arrays{"dim0": {{Birth: 0, Death: 1}}, "dim2": {{Birth: 1, Death: 2}}}

	got := a.Diagrams()
	if len(got) != 3 {
		t.Fatalf("len(Diagrams()) = %d, want 3", len(got))
	}
	if got[1] == nil || len(got[1]) != 0 {
		t.Errorf("Diagrams()[1] = %v, want empty", got[1])
	}
	if got[2][0] != a["dim2"][0] {
		t.Errorf("Diagrams()[2][0] = %v, want %v", got[2][0], a["dim2"][0])
	}
}
