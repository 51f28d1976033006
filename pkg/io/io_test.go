package io

import (
	"bytes"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/moltda/pkg/diagram"
	"github.com/matzehuels/moltda/pkg/errors"
	"github.com/matzehuels/moltda/pkg/persim"
)

func TestReadDiagramsJSONKeyed(t *testing.T) {
	in := `{"dim0": [[0, 1, 3], [0, null]], "dim1": [[0.5, 0.75, 9]]}`

	arrays, err := ReadDiagrams(strings.NewReader(in), FormatJSON, false)
	if err != nil {
		t.Fatalf("ReadDiagrams() error = %v", err)
	}
	if got := arrays.Dim(1)[0]; got != (diagram.Pair{Birth: 0.5, Death: 0.75, Data: 9}) {
		t.Errorf("dim1[0] = %+v", got)
	}
	if !arrays.Dim(0)[1].IsEssential() {
		t.Error("null death should decode as essential")
	}
}

func TestReadDiagramsJSONRaw(t *testing.T) {
	tests := []struct {
		name string
		in   string
		raw  bool
	}{
		{"engine list", `[[{"birth": 0, "death": 4}], [{"birth": 4, "death": 9, "data": 2}]]`, false},
		{"keyed raw", `{"dim0": [[0, 4]], "dim1": [[4, 9, 2]]}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			arrays, err := ReadDiagrams(strings.NewReader(tt.in), FormatJSON, tt.raw)
			if err != nil {
				t.Fatalf("ReadDiagrams() error = %v", err)
			}
			if got := arrays.Dim(1)[0]; got != (diagram.Pair{Birth: 2, Death: 3, Data: 2}) {
				t.Errorf("dim1[0] = %+v, want square-rooted (2, 3, 2)", got)
			}
			if got := arrays.Dim(0)[0].Death; got != 2 {
				t.Errorf("dim0[0].Death = %v, want 2", got)
			}
		})
	}
}

func TestReadDiagramsInvalid(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		format string
		code   errors.Code
	}{
		{"bad json", `{"dim0": [[0,`, FormatJSON, errors.ErrCodeInvalidFormat},
		{"empty", `  `, FormatJSON, errors.ErrCodeInvalidFormat},
		{"bad key", `{"h0": []}`, FormatJSON, errors.ErrCodeInvalidDiagram},
		{"death before birth", `{"dim0": [[2, 1]]}`, FormatJSON, errors.ErrCodeInvalidDiagram},
		{"csv columns", "0,1\n", FormatCSV, errors.ErrCodeInvalidFormat},
		{"csv dim", "x,1,2\n", FormatCSV, errors.ErrCodeInvalidFormat},
		{"unsupported", `{}`, "pkl", errors.ErrCodeUnsupportedFileType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadDiagrams(strings.NewReader(tt.in), tt.format, false)
			if !errors.Is(err, tt.code) {
				t.Errorf("ReadDiagrams() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestReadDiagramsCSV(t *testing.T) {
	in := "dim,birth,death,data\n0,0,1,5\n# comment\n2,0.5,,\n"

	arrays, err := ReadDiagrams(strings.NewReader(in), FormatCSV, false)
	if err != nil {
		t.Fatalf("ReadDiagrams() error = %v", err)
	}
	if got := arrays.Dims(); len(got) != 3 {
		t.Fatalf("Dims() = %v, want [0 1 2]", got)
	}
	if got := arrays.Dim(0)[0]; got != (diagram.Pair{Birth: 0, Death: 1, Data: 5}) {
		t.Errorf("dim0[0] = %+v", got)
	}
	if len(arrays.Dim(1)) != 0 {
		t.Errorf("dim1 = %v, want empty", arrays.Dim(1))
	}
	if !arrays.Dim(2)[0].IsEssential() {
		t.Error("empty death column should decode as essential")
	}
}

func TestDiagramsCSVRoundTrip(t *testing.T) {
	arrays := diagram.Arrays{
		"dim0": {{Birth: 0, Death: 1.5, Data: 1}, {Birth: 0, Death: math.Inf(1)}},
		"dim1": {{Birth: 0.25, Death: 0.5, Data: 4}},
	}

	var buf bytes.Buffer
	if err := WriteDiagramsCSV(arrays, &buf); err != nil {
		t.Fatalf("WriteDiagramsCSV() error = %v", err)
	}
	back, err := ReadDiagrams(&buf, FormatCSV, false)
	if err != nil {
		t.Fatalf("ReadDiagrams() error = %v", err)
	}
	if back.Len() != arrays.Len() || !back.Dim(0)[1].IsEssential() || back.Dim(1)[0] != arrays["dim1"][0] {
		t.Errorf("round trip = %v, want %v", back, arrays)
	}
}

func TestReadCloudXYZ(t *testing.T) {
	in := "3\nwater\nO 0.0 0.0 0.0\nH 0.757 0.586 0.0\nH -0.757 0.586 0.0\n"

	c, err := ReadCloud(strings.NewReader(in), FormatXYZ)
	if err != nil {
		t.Fatalf("ReadCloud() error = %v", err)
	}
	if c.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", c.Len())
	}
	if c.Coords[2][0] != -0.757 || c.Elements[0] != "O" {
		t.Errorf("cloud = %+v", c)
	}
	if c.Weighted() {
		t.Error("xyz clouds carry no weights")
	}
}

func TestReadCloudErrors(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		format string
		code   errors.Code
	}{
		{"count mismatch", "3\n\nC 0 0 0\n", FormatXYZ, errors.ErrCodeInvalidFormat},
		{"bad coordinate", "1\n\nC 0 x 0\n", FormatXYZ, errors.ErrCodeInvalidFormat},
		{"huge count", "999999999999999999\ncomment\nH 0 0 0\n", FormatXYZ, errors.ErrCodeInvalidFormat},
		{"negative count", "-2\n\nH 0 0 0\n", FormatXYZ, errors.ErrCodeInvalidFormat},
		{"weight mismatch", `{"coords": [[0,0,0],[1,1,1]], "weights": [1]}`, FormatJSON, errors.ErrCodeInvalidWeightSpec},
		{"cif", "data_x", "cif", errors.ErrCodeUnsupportedFileType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCloud(strings.NewReader(tt.in), tt.format)
			if !errors.Is(err, tt.code) {
				t.Errorf("ReadCloud() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestImportMissingAndUnsupported(t *testing.T) {
	dir := t.TempDir()

	if _, err := ImportDiagrams(filepath.Join(dir, "missing.json"), false); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("ImportDiagrams(missing) error = %v, want %s", err, errors.ErrCodeFileNotFound)
	}
	if _, err := ImportDiagrams(filepath.Join(dir, "x.pkl"), false); !errors.Is(err, errors.ErrCodeUnsupportedFileType) {
		t.Errorf("ImportDiagrams(pkl) error = %v, want %s", err, errors.ErrCodeUnsupportedFileType)
	}
	if _, err := ImportCloud(filepath.Join(dir, "x.cif")); !errors.Is(err, errors.ErrCodeUnsupportedFileType) {
		t.Errorf("ImportCloud(cif) error = %v, want %s", err, errors.ErrCodeUnsupportedFileType)
	}
}

func sampleResult(t *testing.T) Result {
	t.Helper()
	img, err := persim.ImageFromRows([][]float64{{0, 0.5}, {1, 0.25}})
	if err != nil {
		t.Fatal(err)
	}
	return Result{
		Diagrams: diagram.Arrays{"dim0": {{Birth: 0, Death: 1, Data: 2}}},
		Images:   []persim.Image{img},
		Specs:    []persim.Specs{{MaxB: 1, MaxP: 1}},
		Dims:     []int{0},
	}
}

func TestResultFileRoundTrip(t *testing.T) {
	res := sampleResult(t)
	path := filepath.Join(t.TempDir(), "out.json")

	if err := ExportResult(res, path); err != nil {
		t.Fatalf("ExportResult() error = %v", err)
	}
	back, err := ImportResult(path)
	if err != nil {
		t.Fatalf("ImportResult() error = %v", err)
	}
	if !back.Images[0].Equal(res.Images[0]) {
		t.Errorf("image = %v, want %v", back.Images[0].Rows(), res.Images[0].Rows())
	}
	if back.Specs[0] != res.Specs[0] || back.Diagrams.Dim(0)[0] != res.Diagrams.Dim(0)[0] {
		t.Errorf("round trip = %+v, want %+v", back, res)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{`"diagrams"`, `"images"`, `"maxB"`} {
		if !bytes.Contains(raw, []byte(key)) {
			t.Errorf("result file missing %s", key)
		}
	}
}

func TestResultPath(t *testing.T) {
	tests := []struct{ in, want string }{
		{"data/water.json", "water_result.json"},
		{"/abs/runs/mof.v2.csv", "mof.v2_result.json"},
		{"pd.csv", "pd_result.json"},
		{"noext", "noext_result.json"},
	}
	for _, tt := range tests {
		if got := ResultPath(tt.in); got != tt.want {
			t.Errorf("ResultPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWritePNG(t *testing.T) {
	img, err := persim.ImageFromRows([][]float64{{0, 1, 2}, {3, 4, 5}})
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := WritePNG(img, 4, &buf); err != nil {
		t.Fatalf("WritePNG() error = %v", err)
	}
	decoded, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	if b := decoded.Bounds(); b.Dx() != 12 || b.Dy() != 8 {
		t.Errorf("bounds = %v, want 12x8", b)
	}

	// Darkest cell is top-left, brightest bottom-right.
	if rampAt(0) == rampAt(1) {
		t.Error("ramp endpoints should differ")
	}
	if got, want := decoded.At(0, 0), rampAt(0); got != want {
		t.Errorf("At(0,0) = %v, want %v", got, want)
	}
}

func TestRenderZeroImage(t *testing.T) {
	rgba, err := Render(persim.NewImage(2, 2), 1)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if got := rgba.RGBAAt(1, 1); got != rampAt(0) {
		t.Errorf("RGBAAt(1,1) = %v, want %v", got, rampAt(0))
	}
}
