package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/moltda/pkg/cache"
	"github.com/matzehuels/moltda/pkg/cloud"
	"github.com/matzehuels/moltda/pkg/diagram"
	"github.com/matzehuels/moltda/pkg/errors"
	"github.com/matzehuels/moltda/pkg/homology"
	pkgio "github.com/matzehuels/moltda/pkg/io"
	"github.com/matzehuels/moltda/pkg/observability"
	"github.com/matzehuels/moltda/pkg/persim"
)

// Key types reported to cache hooks.
const (
	keyTypeDiagram = "diagram"
	keyTypeEngine  = "engine"
	keyTypeImage   = "image"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → vectorize → render pipeline for
// opts.Input with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if opts.Input == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "input path is required")
	}
	r.applyLogger(&opts)

	loadStart := time.Now()
	arrays, hit, err := r.LoadWithCacheInfo(ctx, opts.Input, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	loadTime := time.Since(loadStart)

	result, err := r.Vectorize(ctx, arrays, opts)
	if err != nil {
		return nil, fmt.Errorf("vectorize: %w", err)
	}
	result.Stats.LoadTime = loadTime
	result.CacheInfo.DiagramHit = hit

	if err := r.RenderInto(result, opts); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return result, nil
}

// ExecuteCloud runs a homology engine on c and vectorizes its diagrams.
func (r *Runner) ExecuteCloud(ctx context.Context, engine homology.Engine, name string, c cloud.Cloud, hopts homology.Options, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	start := time.Now()
	arrays, hit, err := r.ComputeWithCacheInfo(ctx, engine, name, c, hopts, opts)
	if err != nil {
		return nil, fmt.Errorf("compute: %w", err)
	}
	engineTime := time.Since(start)

	result, err := r.Vectorize(ctx, arrays, opts)
	if err != nil {
		return nil, fmt.Errorf("vectorize: %w", err)
	}
	result.Stats.EngineTime = engineTime
	result.CacheInfo.EngineHit = hit

	if err := r.RenderInto(result, opts); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return result, nil
}

// LoadWithCacheInfo reads a diagram file and reports whether the converted
// diagrams came from cache.
func (r *Runner) LoadWithCacheInfo(ctx context.Context, path string, opts Options) (diagram.Arrays, bool, error) {
	format := pkgio.FormatFromPath(path)
	if format != pkgio.FormatJSON && format != pkgio.FormatCSV {
		return nil, false, errors.New(errors.ErrCodeUnsupportedFileType, "unsupported diagram file %s (must be .json or .csv)", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, errors.Wrap(errors.ErrCodeFileNotFound, err, "%s", path)
		}
		return nil, false, fmt.Errorf("read %s: %w", path, err)
	}
	return r.DecodeWithCacheInfo(ctx, path, data, format, opts)
}

// DecodeWithCacheInfo converts diagram bytes in the given format, keyed by
// their content hash. source only labels logs and hooks.
func (r *Runner) DecodeWithCacheInfo(ctx context.Context, source string, data []byte, format string, opts Options) (diagram.Arrays, bool, error) {
	r.applyLogger(&opts)
	hooks := observability.Pipeline()
	hooks.OnImportStart(ctx, source)
	start := time.Now()

	key := r.Keyer.DiagramKey(cache.Hash(data), opts.DiagramKeyOpts(format))
	if !opts.Refresh {
		if arrays, ok := r.getJSONArrays(ctx, key); ok {
			hooks.OnImportComplete(ctx, source, arrays.Len(), time.Since(start), nil)
			return arrays, true, nil
		}
	}

	arrays, err := pkgio.ReadDiagrams(bytes.NewReader(data), format, opts.Raw)
	hooks.OnImportComplete(ctx, source, arrays.Len(), time.Since(start), err)
	if err != nil {
		return nil, false, err
	}
	r.setJSON(ctx, key, keyTypeDiagram, arrays, cache.TTLDiagram)

	opts.Logger.Debug("loaded diagrams", "source", source, "pairs", arrays.Len(), "dims", arrays.Dims())
	return arrays, false, nil
}

// ComputeWithCacheInfo runs engine on c and converts its output, caching the
// raw diagrams by the cloud's content. name identifies the engine in cache
// keys.
func (r *Runner) ComputeWithCacheInfo(ctx context.Context, engine homology.Engine, name string, c cloud.Cloud, hopts homology.Options, opts Options) (diagram.Arrays, bool, error) {
	r.applyLogger(&opts)
	if err := c.Validate(); err != nil {
		return nil, false, err
	}
	cloudHash, err := cache.HashJSON(c)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "hash cloud")
	}
	key := r.Keyer.EngineKey(cloudHash, cache.EngineKeyOpts{Engine: name, Exact: hopts.Exact, Periodic: hopts.Periodic})

	var raw diagram.Diagrams
	hit := false
	if !opts.Refresh {
		if data, ok := r.get(ctx, key, keyTypeEngine); ok {
			if err := json.Unmarshal(data, &raw); err == nil {
				hit = true
			}
		}
	}

	if !hit {
		hooks := observability.Pipeline()
		hooks.OnEngineStart(ctx, name, c.Len())
		start := time.Now()
		raw, err = engine.Compute(ctx, c, hopts)
		hooks.OnEngineComplete(ctx, name, time.Since(start), err)
		if err != nil {
			return nil, false, err
		}
		r.setJSON(ctx, key, keyTypeEngine, raw, cache.TTLEngine)
		opts.Logger.Debug("computed diagrams", "engine", name, "atoms", c.Len(), "duration", time.Since(start))
	}

	arrays, err := diagram.ToArrays(raw)
	if err != nil {
		return nil, false, err
	}
	return arrays, hit, nil
}

// cachedImages is the cache representation of a vectorization.
type cachedImages struct {
	Images []persim.Image `json:"images"`
	Specs  []persim.Specs `json:"specs"`
}

// Vectorize rasterizes the requested dimensions of arrays with caching.
// The returned result has no artifacts; see [Runner.RenderInto].
func (r *Runner) Vectorize(ctx context.Context, arrays diagram.Arrays, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)
	if err := arrays.Validate(); err != nil {
		return nil, err
	}

	hash, err := cache.HashJSON(arrays)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "hash diagrams")
	}
	result := &Result{
		Arrays:      arrays,
		DiagramHash: hash,
		Dims:        opts.Dims,
		Artifacts:   make(map[string][]byte),
	}
	result.Stats.Pairs = arrays.Len()
	result.Stats.Dimensions = len(opts.Dims)

	key := r.Keyer.ImageKey(hash, opts.ImageKeyOpts())
	if !opts.Refresh {
		if data, ok := r.get(ctx, key, keyTypeImage); ok {
			var cached cachedImages
			if err := json.Unmarshal(data, &cached); err == nil && len(cached.Images) == len(opts.Dims) {
				result.Images, result.Specs = cached.Images, cached.Specs
				result.CacheInfo.ImageHit = true
				return result, nil
			}
		}
	}

	popts, err := opts.RasterizerOptions()
	if err != nil {
		return nil, err
	}
	rasterizer, err := persim.New(popts)
	if err != nil {
		return nil, err
	}

	hooks := observability.Pipeline()
	hooks.OnRasterizeStart(ctx, opts.Dims, opts.Pixels)
	start := time.Now()
	images, specs, err := rasterizer.RasterizeDimensions(ctx, arrays, opts.Dims, opts.SpecsArg())
	result.Stats.RasterizeTime = time.Since(start)
	hooks.OnRasterizeComplete(ctx, opts.Dims, result.Stats.RasterizeTime, err)
	if err != nil {
		return nil, err
	}
	result.Images, result.Specs = images, specs

	r.setJSON(ctx, key, keyTypeImage, cachedImages{Images: images, Specs: specs}, cache.TTLImage)
	opts.Logger.Debug("rasterized",
		"dims", opts.Dims,
		"pixels", fmt.Sprintf("%dx%d", opts.Pixels[0], opts.Pixels[1]),
		"duration", result.Stats.RasterizeTime)
	return result, nil
}

// VectorizeBatch vectorizes several diagram sets on one shared scale.
//
// Unless opts.Specs is set, bounds are estimated per dimension jointly over
// every set, so images of the same dimension are directly comparable.
func (r *Runner) VectorizeBatch(ctx context.Context, sets []diagram.Arrays, opts Options) ([]*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	if len(opts.Specs) == 0 {
		opts.Specs = JointSpecs(sets, opts.Dims)
		opts.Logger.Debug("estimated shared specs", "sets", len(sets), "specs", opts.Specs)
	}

	results := make([]*Result, len(sets))
	for i, arrays := range sets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := r.Vectorize(ctx, arrays, opts)
		if err != nil {
			return nil, fmt.Errorf("set %d: %w", i, err)
		}
		results[i] = res
	}
	return results, nil
}

// JointSpecs estimates one Specs per dimension over every set. A dimension
// that is empty everywhere gets zero Specs; its images are all zero anyway.
func JointSpecs(sets []diagram.Arrays, dims []int) []persim.Specs {
	out := make([]persim.Specs, len(dims))
	for i, d := range dims {
		ls := make([]diagram.Landscape, 0, len(sets))
		for _, arrays := range sets {
			ls = append(ls, diagram.ToLandscape(arrays.Dim(d)))
		}
		if s, err := persim.EstimateSpecs(ls...); err == nil {
			out[i] = s
		}
	}
	return out
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func (r *Runner) get(ctx context.Context, key, keyType string) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Debug("cache read failed", "type", keyType, "error", err)
		return nil, false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return data, true
}

func (r *Runner) getJSONArrays(ctx context.Context, key string) (diagram.Arrays, bool) {
	data, ok := r.get(ctx, key, keyTypeDiagram)
	if !ok {
		return nil, false
	}
	var arrays diagram.Arrays
	if err := json.Unmarshal(data, &arrays); err != nil {
		return nil, false
	}
	return arrays, true
}

func (r *Runner) setJSON(ctx context.Context, key, keyType string, v any, ttl time.Duration) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Debug("cache write failed", "type", keyType, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}
