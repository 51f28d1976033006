package persim

import (
	"encoding/json"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/matzehuels/moltda/pkg/errors"
)

// Image is a persistence image: a dense grid of non-negative intensities with
// persistence on the rows (highest first) and birth on the columns.
//
// Image marshals to JSON as a list of rows.
type Image struct {
	m *mat.Dense
}

// NewImage returns an all-zero image with the given shape.
func NewImage(rows, cols int) Image {
	return Image{m: mat.NewDense(rows, cols, nil)}
}

// ImageFromRows builds an image from row-major data. All rows must have the
// same non-zero length.
func ImageFromRows(rows [][]float64) (Image, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return Image{}, errors.New(errors.ErrCodeInvalidInput, "image must have at least one row and column")
	}
	cols := len(rows[0])
	data := make([]float64, 0, len(rows)*cols)
	for i, row := range rows {
		if len(row) != cols {
			return Image{}, errors.New(errors.ErrCodeInvalidInput, "image row %d has %d columns, want %d", i, len(row), cols)
		}
		data = append(data, row...)
	}
	return Image{m: mat.NewDense(len(rows), cols, data)}, nil
}

// Dims returns the number of rows (persistence pixels) and columns
// (birth pixels).
func (im Image) Dims() (rows, cols int) {
	if im.m == nil {
		return 0, 0
	}
	return im.m.Dims()
}

// IsZero reports whether im has no backing grid.
func (im Image) IsZero() bool { return im.m == nil }

// At returns the intensity at row r, column c.
func (im Image) At(r, c int) float64 { return im.m.At(r, c) }

// Matrix returns a copy of the grid.
func (im Image) Matrix() *mat.Dense { return mat.DenseCopyOf(im.m) }

// Rows returns the grid as freshly allocated row slices.
func (im Image) Rows() [][]float64 {
	r, _ := im.Dims()
	out := make([][]float64, r)
	for i := range out {
		out[i] = mat.Row(nil, i, im.m)
	}
	return out
}

// Sum returns the total intensity.
func (im Image) Sum() float64 {
	if im.m == nil {
		return 0
	}
	return mat.Sum(im.m)
}

// Max returns the largest intensity and its position.
func (im Image) Max() (v float64, row, col int) {
	rows, cols := im.Dims()
	row, col = -1, -1
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if x := im.m.At(i, j); row < 0 || x > v {
				v, row, col = x, i, j
			}
		}
	}
	return v, row, col
}

// Equal reports whether two images have the same shape and bit-identical
// values.
func (im Image) Equal(other Image) bool {
	if im.m == nil || other.m == nil {
		return im.m == nil && other.m == nil
	}
	return mat.Equal(im.m, other.m)
}

// String implements fmt.Stringer.
func (im Image) String() string {
	r, c := im.Dims()
	return fmt.Sprintf("Image(%dx%d)", r, c)
}

// MarshalJSON writes the image as nested rows.
func (im Image) MarshalJSON() ([]byte, error) {
	if im.m == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(im.Rows())
}

// UnmarshalJSON reads nested rows.
func (im *Image) UnmarshalJSON(b []byte) error {
	var rows [][]float64
	if err := json.Unmarshal(b, &rows); err != nil {
		return err
	}
	if len(rows) == 0 {
		*im = Image{}
		return nil
	}
	parsed, err := ImageFromRows(rows)
	if err != nil {
		return err
	}
	*im = parsed
	return nil
}
