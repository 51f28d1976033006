package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/moltda/pkg/persim"
	"github.com/matzehuels/moltda/pkg/pipeline"
)

// vectorizeFlags holds the rasterization flags shared by vectorize, batch
// and compute. Only flags the user set override the config file.
type vectorizeFlags struct {
	pixels        string
	spread        float64
	kernel        string
	weighting     string
	correctedGrid bool
	dims          string
	maxB          float64
	maxP          float64
	minBD         float64
	formats       string
	pngScale      int
	workers       int
	raw           bool
	output        string
	noCache       bool
	refresh       bool
	save          bool
}

func (f *vectorizeFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.pixels, "pixels", "", "resolution as N or BIRTH,PERSISTENCE (default 50,50)")
	fs.Float64Var(&f.spread, "spread", pipeline.DefaultSpread, "Gaussian standard deviation; 0 uses the pixel width")
	fs.StringVar(&f.kernel, "kernel", pipeline.DefaultKernel, "smoothing kernel: gaussian")
	fs.StringVar(&f.weighting, "weighting", pipeline.DefaultWeighting, "point weighting: identity, linear")
	fs.BoolVar(&f.correctedGrid, "corrected-grid", false, "divide [min(minBD,0), maxB] into equal pixels")
	fs.StringVar(&f.dims, "dims", "", "homology dimensions to vectorize (default 0,1,2,3)")
	fs.Float64Var(&f.maxB, "maxB", 0, "fixed maximum birth (requires --maxP)")
	fs.Float64Var(&f.maxP, "maxP", 0, "fixed maximum persistence (requires --maxB)")
	fs.Float64Var(&f.minBD, "minBD", 0, "fixed minimum of birth and persistence")
	fs.StringVarP(&f.formats, "format", "f", "", "output format(s): json (default), csv, png (comma-separated)")
	fs.IntVar(&f.pngScale, "png-scale", pipeline.DefaultPNGScale, "PNG pixels per image cell")
	fs.IntVar(&f.workers, "workers", 0, "parallel workers (default GOMAXPROCS)")
	fs.BoolVar(&f.raw, "raw", false, "input holds squared filtration values")
	fs.StringVarP(&f.output, "output", "o", "", "output path (default <stem>_result.json in the working directory)")
	fs.BoolVar(&f.noCache, "no-cache", false, "disable caching")
	fs.BoolVar(&f.refresh, "refresh", false, "recompute even when cached")
	fs.BoolVar(&f.save, "save", false, "also save the result to the result store")
	registerCompletions(cmd)
}

// options builds pipeline options from the config file overlaid with the
// flags that were set on cmd.
func (f *vectorizeFlags) options(c *CLI, cmd *cobra.Command) (pipeline.Options, error) {
	opts := c.Config.Options()
	fs := cmd.Flags()

	if fs.Changed("pixels") {
		px, err := parsePixels(f.pixels)
		if err != nil {
			return opts, err
		}
		opts.Pixels = px
	}
	if fs.Changed("spread") {
		s := f.spread
		opts.Spread = &s
	}
	if fs.Changed("kernel") {
		opts.Kernel = f.kernel
	}
	if fs.Changed("weighting") {
		opts.Weighting = f.weighting
	}
	if fs.Changed("corrected-grid") {
		opts.CorrectedGrid = f.correctedGrid
	}
	if fs.Changed("dims") {
		dims, err := parseInts(f.dims)
		if err != nil {
			return opts, fmt.Errorf("invalid --dims: %w", err)
		}
		opts.Dims = dims
	}
	switch maxB, maxP := fs.Changed("maxB"), fs.Changed("maxP"); {
	case maxB && maxP:
		opts.Specs = []persim.Specs{{MaxB: f.maxB, MaxP: f.maxP, MinBD: f.minBD}}
	case maxB || maxP || fs.Changed("minBD"):
		return opts, fmt.Errorf("--maxB and --maxP must be given together")
	}
	if fs.Changed("format") {
		opts.Formats = parseFormats(f.formats)
	}
	if fs.Changed("png-scale") {
		opts.PNGScale = f.pngScale
	}
	if fs.Changed("workers") {
		opts.Workers = f.workers
	}
	opts.Raw = f.raw
	opts.Refresh = f.refresh
	opts.Logger = c.Logger

	if err := opts.ValidateAndSetDefaults(); err != nil {
		return opts, err
	}
	return opts, nil
}
