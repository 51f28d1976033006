// Package pipeline provides the vectorization pipeline shared by the CLI and
// the HTTP API.
//
// # Stages
//
//  1. Load: read diagrams from a file or request body, or run a homology
//     engine on a point cloud, and convert them to Euclidean arrays
//  2. Vectorize: rasterize each requested homology dimension into a
//     persistence image
//  3. Render: encode the result as JSON, CSV and PNG artifacts
//
// Every stage is cached through a [cache.Cache]; keys cover every input that
// affects the output.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Input:     "water.json",
//	    Weighting: "linear",
//	    Formats:   []string{"json", "png"},
//	})
//	if err != nil {
//	    return err
//	}
//	data := result.Artifacts["result.json"]
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/moltda/pkg/cache"
	"github.com/matzehuels/moltda/pkg/diagram"
	"github.com/matzehuels/moltda/pkg/errors"
	pkgio "github.com/matzehuels/moltda/pkg/io"
	"github.com/matzehuels/moltda/pkg/persim"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultPixels is the default resolution on both axes.
	DefaultPixels = persim.DefaultPixels

	// DefaultSpread is the default Gaussian spread.
	DefaultSpread = persim.DefaultSpread

	// DefaultKernel is the default smoothing kernel.
	DefaultKernel = persim.KernelNameGaussian

	// DefaultWeighting is the default weighting policy.
	DefaultWeighting = persim.WeightingNameIdentity

	// DefaultPNGScale is the default number of PNG pixels per image cell.
	DefaultPNGScale = pkgio.DefaultPNGScale
)

// Format constants for output formats.
const (
	FormatJSON = pkgio.FormatJSON
	FormatCSV  = pkgio.FormatCSV
	FormatPNG  = pkgio.FormatPNG
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatCSV:  true,
	FormatPNG:  true,
}

// DefaultDims returns the dimensions vectorized when none are requested.
func DefaultDims() []int { return append([]int(nil), persim.DefaultDims...) }

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the vectorization pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Input options
	Input string `json:"-"`             // Diagram file path (CLI only)
	Raw   bool   `json:"raw,omitempty"` // Input holds squared filtration values

	// Rasterization options
	Pixels        [2]int         `json:"pixels,omitempty"`         // [birth, persistence]
	Spread        *float64       `json:"spread,omitempty"`         // nil means DefaultSpread; 0 means pixel width
	Kernel        string         `json:"kernel,omitempty"`         // "gaussian"
	Weighting     string         `json:"weighting,omitempty"`      // "identity" or "linear"
	CorrectedGrid bool           `json:"corrected_grid,omitempty"` // Equal-width birth pixels over [minBD, maxB]
	Dims          []int          `json:"dims,omitempty"`           // Homology dimensions to vectorize
	Specs         []persim.Specs `json:"specs,omitempty"`          // None, one shared, or one per dimension
	Workers       int            `json:"-"`

	// Output options
	Formats  []string `json:"formats,omitempty"`
	PNGScale int      `json:"png_scale,omitempty"`
	Refresh  bool     `json:"refresh,omitempty"` // Bypass cache reads

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Arrays are the diagrams in Euclidean units.
	Arrays diagram.Arrays

	// DiagramHash is the content hash of Arrays.
	DiagramHash string

	// Dims lists the vectorized dimensions, parallel to Images and Specs.
	Dims []int

	// Images holds one persistence image per entry of Dims.
	Images []persim.Image

	// Specs holds the bounds each image was rasterized over.
	Specs []persim.Specs

	// Artifacts contains rendered outputs keyed by artifact name
	// ("result.json", "diagrams.csv", "dim1.png").
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Output returns the serializable form of the result.
func (r *Result) Output() pkgio.Result {
	return pkgio.Result{
		Diagrams: r.Arrays,
		Images:   r.Images,
		Specs:    r.Specs,
		Dims:     r.Dims,
	}
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Pairs         int
	Dimensions    int
	LoadTime      time.Duration
	EngineTime    time.Duration
	RasterizeTime time.Duration
	RenderTime    time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	DiagramHit bool // Whether converted diagrams came from cache
	EngineHit  bool // Whether engine output came from cache
	ImageHit   bool // Whether images came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: json, csv, png)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateDims checks that dims are non-negative and unique.
func ValidateDims(dims []int) error {
	seen := make(map[int]bool, len(dims))
	for _, d := range dims {
		if d < 0 {
			return errors.New(errors.ErrCodeInvalidInput, "dimension must not be negative, got %d", d)
		}
		if seen[d] {
			return errors.New(errors.ErrCodeInvalidInput, "dimension %d requested twice", d)
		}
		seen[d] = true
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks all fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.SetDefaults()
	if err := o.Validate(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetDefaults fills unset fields.
func (o *Options) SetDefaults() {
	if o.Pixels == [2]int{} {
		o.Pixels = [2]int{DefaultPixels, DefaultPixels}
	}
	if o.Spread == nil {
		s := DefaultSpread
		o.Spread = &s
	}
	if o.Kernel == "" {
		o.Kernel = DefaultKernel
	}
	if o.Weighting == "" {
		o.Weighting = DefaultWeighting
	}
	if len(o.Dims) == 0 {
		o.Dims = DefaultDims()
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	if o.PNGScale == 0 {
		o.PNGScale = DefaultPNGScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Validate checks every field without changing it.
func (o *Options) Validate() error {
	if _, err := o.RasterizerOptions(); err != nil {
		return err
	}
	if err := ValidateDims(o.Dims); err != nil {
		return err
	}
	switch len(o.Specs) {
	case 0, 1, len(o.Dims):
	default:
		return errors.New(errors.ErrCodeInvalidInput,
			"got %d specs for %d dimensions; pass none, one, or one per dimension", len(o.Specs), len(o.Dims))
	}
	for i, s := range o.Specs {
		if err := s.Validate(); err != nil {
			return errors.Wrap(errors.GetCode(err), err, "specs[%d]", i)
		}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.PNGScale < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "png_scale must be positive, got %d", o.PNGScale)
	}
	return nil
}

// Clone returns a deep copy of o that has not been validated yet, so it can
// be decoded into or modified without touching o.
func (o Options) Clone() Options {
	c := o
	if o.Spread != nil {
		s := *o.Spread
		c.Spread = &s
	}
	c.Dims = append([]int(nil), o.Dims...)
	c.Specs = append([]persim.Specs(nil), o.Specs...)
	c.Formats = append([]string(nil), o.Formats...)
	c.validated = false
	return c
}

// SpreadValue returns the configured spread, or DefaultSpread when unset.
func (o *Options) SpreadValue() float64 {
	if o.Spread == nil {
		return DefaultSpread
	}
	return *o.Spread
}

// RasterizerOptions converts the options into validated [persim.Options].
func (o *Options) RasterizerOptions() (persim.Options, error) {
	kernel, err := persim.ParseKernel(o.Kernel)
	if err != nil {
		return persim.Options{}, err
	}
	weighting, err := persim.ParseWeighting(o.Weighting)
	if err != nil {
		return persim.Options{}, err
	}
	popts := persim.Options{
		Pixels:        o.Pixels,
		Spread:        o.SpreadValue(),
		Kernel:        kernel,
		Weighting:     weighting,
		CorrectedGrid: o.CorrectedGrid,
		Workers:       o.Workers,
	}
	if err := popts.Validate(); err != nil {
		return persim.Options{}, err
	}
	return popts, nil
}

// SpecsArg returns the supplied specs in the form taken by
// [persim.Rasterizer.RasterizeDimensions].
func (o *Options) SpecsArg() []*persim.Specs {
	if len(o.Specs) == 0 {
		return nil
	}
	out := make([]*persim.Specs, len(o.Specs))
	for i := range o.Specs {
		s := o.Specs[i]
		out[i] = &s
	}
	return out
}

// DiagramKeyOpts returns cache key options for diagram import.
func (o *Options) DiagramKeyOpts(format string) cache.DiagramKeyOpts {
	return cache.DiagramKeyOpts{Format: format, Raw: o.Raw}
}

// ImageKeyOpts returns cache key options for rasterization.
func (o *Options) ImageKeyOpts() cache.ImageKeyOpts {
	k := cache.ImageKeyOpts{
		Pixels:        o.Pixels,
		Spread:        o.SpreadValue(),
		Kernel:        o.Kernel,
		Weighting:     o.Weighting,
		CorrectedGrid: o.CorrectedGrid,
		Dims:          o.Dims,
	}
	if len(o.Specs) > 0 {
		k.Specs = fmt.Sprint(o.Specs)
	}
	return k
}
