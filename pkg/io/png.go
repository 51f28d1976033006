package io

import (
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/draw"
	"gonum.org/v1/gonum/floats"

	"github.com/matzehuels/moltda/pkg/errors"
	"github.com/matzehuels/moltda/pkg/persim"
)

// DefaultPNGScale is the number of output pixels per image cell.
const DefaultPNGScale = 8

// ramp is a perceptual dark-to-bright colour map, sampled at evenly spaced
// stops and blended in CIE L*a*b*.
var ramp = mustRamp("#440154", "#3b528b", "#21918c", "#5ec962", "#fde725")

func mustRamp(hexes ...string) []colorful.Color {
	out := make([]colorful.Color, len(hexes))
	for i, h := range hexes {
		c, err := colorful.Hex(h)
		if err != nil {
			panic(err)
		}
		out[i] = c
	}
	return out
}

// rampAt maps t in [0, 1] onto the colour ramp.
func rampAt(t float64) color.RGBA {
	if t <= 0 {
		return toRGBA(ramp[0])
	}
	if t >= 1 {
		return toRGBA(ramp[len(ramp)-1])
	}
	pos := t * float64(len(ramp)-1)
	i := int(pos)
	return toRGBA(ramp[i].BlendLab(ramp[i+1], pos-float64(i)).Clamped())
}

func toRGBA(c colorful.Color) color.RGBA {
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}

// Render converts img into an RGBA picture with scale output pixels per
// cell. Intensities are normalized by the image maximum; an all-zero image
// renders in the darkest colour.
func Render(img persim.Image, scale int) (*image.RGBA, error) {
	rows, cols := img.Dims()
	if rows == 0 || cols == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "cannot render an empty image")
	}
	if scale < 1 {
		scale = 1
	}

	m := img.Matrix()
	maxV := floats.Max(m.RawMatrix().Data)

	small := image.NewRGBA(image.Rect(0, 0, cols, rows))
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			t := 0.0
			if maxV > 0 {
				t = m.At(r, c) / maxV
			}
			small.SetRGBA(c, r, rampAt(t))
		}
	}
	if scale == 1 {
		return small, nil
	}

	dst := image.NewRGBA(image.Rect(0, 0, cols*scale, rows*scale))
	draw.NearestNeighbor.Scale(dst, dst.Rect, small, small.Bounds(), draw.Src, nil)
	return dst, nil
}

// WritePNG renders img and encodes it as PNG to w.
func WritePNG(img persim.Image, scale int, w io.Writer) error {
	rgba, err := Render(img, scale)
	if err != nil {
		return err
	}
	return png.Encode(w, rgba)
}

// ExportPNG writes img as a PNG file at path.
func ExportPNG(img persim.Image, scale int, path string) error {
	return create(path, func(w io.Writer) error { return WritePNG(img, scale, w) })
}
