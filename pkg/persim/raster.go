package persim

import (
	"runtime"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/matzehuels/moltda/pkg/diagram"
	"github.com/matzehuels/moltda/pkg/errors"
)

const (
	// DefaultPixels is the default image resolution (birth x persistence).
	DefaultPixels = 50

	// DefaultSpread is the default Gaussian standard deviation. A spread of
	// 0 means "one birth pixel width".
	DefaultSpread = 0.15
)

// Options configures a Rasterizer.
type Options struct {
	// Pixels is the resolution as [birth pixels, persistence pixels]. The
	// produced image has Pixels[1] rows and Pixels[0] columns.
	Pixels [2]int `json:"pixels" toml:"pixels"`

	// Spread is the kernel standard deviation in data units. Zero selects
	// the birth pixel width.
	Spread float64 `json:"spread" toml:"spread"`

	Kernel    Kernel    `json:"kernel" toml:"kernel"`
	Weighting Weighting `json:"weighting" toml:"weighting"`

	// CorrectedGrid divides the full birth range [min(MinBD,0), MaxB] into
	// equal pixels. By default the pixel width is MaxB / Pixels[0] while the
	// lower edges still span the full range, so with a negative MinBD the
	// pixels overlap slightly. The default matches images produced by other
	// persistence image tooling.
	CorrectedGrid bool `json:"corrected_grid,omitempty" toml:"corrected_grid"`

	// Workers bounds batch parallelism. Zero uses GOMAXPROCS.
	Workers int `json:"workers,omitempty" toml:"workers"`
}

// DefaultOptions returns 50x50 Gaussian images with spread 0.15 and identity
// weighting.
func DefaultOptions() Options {
	return Options{
		Pixels:    [2]int{DefaultPixels, DefaultPixels},
		Spread:    DefaultSpread,
		Kernel:    KernelGaussian,
		Weighting: WeightingIdentity,
	}
}

// Validate checks resolution, spread, kernel and weighting.
func (o Options) Validate() error {
	if err := errors.ValidatePixels(o.Pixels[0], o.Pixels[1]); err != nil {
		return err
	}
	if err := errors.ValidateSpread(o.Spread); err != nil {
		return err
	}
	if err := o.Kernel.validate(); err != nil {
		return err
	}
	if err := o.Weighting.validate(); err != nil {
		return err
	}
	if o.Workers < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "workers must not be negative, got %d", o.Workers)
	}
	return nil
}

// Rasterizer turns landscapes into persistence images. It holds only
// immutable configuration and is safe for concurrent use.
type Rasterizer struct {
	opts Options
}

// New validates opts and returns a Rasterizer.
func New(opts Options) (*Rasterizer, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if opts.Workers == 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	return &Rasterizer{opts: opts}, nil
}

// Options returns the configuration the rasterizer was built with.
func (r *Rasterizer) Options() Options { return r.opts }

// Shape returns the (rows, cols) of every image this rasterizer produces.
func (r *Rasterizer) Shape() (rows, cols int) { return r.opts.Pixels[1], r.opts.Pixels[0] }

// RasterizeOne rasterizes a single landscape. When specs is nil the bounds
// are estimated from l alone.
//
// An empty landscape yields an all-zero image without consulting specs. It
// has the same (Pixels[1] rows, Pixels[0] cols) shape as any other image, not
// the (birth, persistence) indexing of the unrotated accumulator.
func (r *Rasterizer) RasterizeOne(l diagram.Landscape, specs *Specs) (Image, error) {
	if len(l) == 0 {
		return NewImage(r.Shape()), nil
	}
	s, err := resolveSpecs(specs, l)
	if err != nil {
		return Image{}, err
	}
	return r.Rasterize(l, s)
}

// Rasterize renders l over the domain described by specs.
//
// Each finite point spreads a kernel over the grid; the mass falling into a
// pixel is the product of the 1D masses along the birth and persistence
// axes, scaled by the point's weight. Points with a non-finite coordinate are
// skipped.
//
// The result has persistence on the rows with the highest persistence in row
// 0 and birth on the columns increasing left to right.
func (r *Rasterizer) Rasterize(l diagram.Landscape, specs Specs) (Image, error) {
	if err := specs.Validate(); err != nil {
		return Image{}, err
	}
	if len(l) == 0 {
		return NewImage(r.Shape()), nil
	}

	g := r.grid(specs)
	if g.sigma <= 0 {
		return Image{}, errors.New(errors.ErrCodeUndefinedBounds,
			"kernel spread is zero: spread=0 and birth range is empty (%s)", specs)
	}

	nx, ny := r.opts.Pixels[0], r.opts.Pixels[1]
	weight := r.opts.Weighting.Func(l)

	acc := mat.NewDense(nx, ny, nil)
	xm := make([]float64, nx)
	ym := make([]float64, ny)
	for _, p := range l {
		if !p.IsFinite() {
			continue
		}
		w := weight(p)
		if w == 0 {
			continue
		}
		r.opts.Kernel.binMasses(xm, g.xLower, g.xUpper, p.Birth, g.sigma)
		r.opts.Kernel.binMasses(ym, g.yLower, g.yUpper, p.Persistence, g.sigma)
		acc.RankOne(acc, w, mat.NewVecDense(nx, xm), mat.NewVecDense(ny, ym))
	}

	// acc is indexed [birth][persistence]; flip into display orientation.
	out := mat.NewDense(ny, nx, nil)
	for row := 0; row < ny; row++ {
		for col := 0; col < nx; col++ {
			out.Set(row, col, acc.At(col, ny-1-row))
		}
	}
	return Image{m: out}, nil
}

type grid struct {
	xLower, xUpper []float64
	yLower, yUpper []float64
	sigma          float64
}

func (r *Rasterizer) grid(s Specs) grid {
	nx, ny := r.opts.Pixels[0], r.opts.Pixels[1]
	lo := s.lowerBirth()

	var g grid
	dx := s.MaxB / float64(nx)
	if r.opts.CorrectedGrid {
		dx = (s.MaxB - lo) / float64(nx)
		g.xLower = linspace(lo, s.MaxB-dx, nx)
	} else {
		g.xLower = linspace(lo, s.MaxB, nx)
	}
	g.xUpper = shift(g.xLower, dx)

	dy := s.MaxP / float64(ny)
	g.yLower = linspace(0, s.MaxP, ny)
	g.yUpper = shift(g.yLower, dy)

	g.sigma = r.opts.Spread
	if g.sigma == 0 {
		g.sigma = dx
	}
	return g
}

// linspace returns n evenly spaced values from start to stop with the last
// value pinned to stop. A single value is just start.
func linspace(start, stop float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = start
		return out
	}
	floats.Span(out, start, stop)
	out[n-1] = stop
	return out
}

func shift(xs []float64, d float64) []float64 {
	out := append([]float64(nil), xs...)
	floats.AddConst(d, out)
	return out
}

func resolveSpecs(specs *Specs, ls ...diagram.Landscape) (Specs, error) {
	if specs != nil {
		return *specs, nil
	}
	return EstimateSpecs(ls...)
}
