// Package cache stores intermediate and final vectorization outputs.
//
// A [Cache] is a byte-oriented key/value store with per-entry TTLs. Three
// backends exist: [FileCache] for the CLI, [RedisCache] for shared
// deployments, and [NullCache] to disable caching. Keys are produced by a
// [Keyer] so that every input affecting an output is part of its key.
//
// Cache failures are never fatal to callers: a failed Get is treated as a
// miss and a failed Set is ignored.
package cache

import (
	"context"
	"time"
)

// TTLs for each kind of entry.
const (
	// TTLDiagram covers converted diagrams, keyed by input content.
	TTLDiagram = 30 * 24 * time.Hour

	// TTLImage covers rasterized images, keyed by diagrams and settings.
	TTLImage = 7 * 24 * time.Hour

	// TTLEngine covers homology engine output, keyed by the point cloud.
	TTLEngine = 30 * 24 * time.Hour
)

// Cache is a key/value store for serialized pipeline outputs.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the value for key and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer generates cache keys.
type Keyer interface {
	// DiagramKey keys converted diagrams by the hash of their source bytes.
	DiagramKey(contentHash string, opts DiagramKeyOpts) string

	// ImageKey keys the images computed from a set of diagrams.
	ImageKey(diagramHash string, opts ImageKeyOpts) string

	// EngineKey keys raw engine diagrams by the hash of the point cloud.
	EngineKey(cloudHash string, opts EngineKeyOpts) string
}

// DiagramKeyOpts holds the options that affect diagram import.
type DiagramKeyOpts struct {
	Format string `json:"format"`
	Raw    bool   `json:"raw"`
}

// ImageKeyOpts holds every rasterization setting that affects the images.
type ImageKeyOpts struct {
	Pixels        [2]int  `json:"pixels"`
	Spread        float64 `json:"spread"`
	Kernel        string  `json:"kernel"`
	Weighting     string  `json:"weighting"`
	CorrectedGrid bool    `json:"corrected_grid"`
	Dims          []int   `json:"dims"`
	// Specs is the canonical encoding of the supplied bounds, empty when
	// bounds are estimated.
	Specs string `json:"specs,omitempty"`
}

// EngineKeyOpts holds the engine settings that affect raw diagrams.
type EngineKeyOpts struct {
	Engine   string `json:"engine"`
	Exact    bool   `json:"exact"`
	Periodic bool   `json:"periodic"`
}

// keyVersion is bumped whenever the serialized form of a cached value
// changes, orphaning old entries.
const keyVersion = "v1"

// DefaultKeyer builds keys of the form "kind:sha256(version, parts...)".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// DiagramKey implements Keyer.
func (DefaultKeyer) DiagramKey(contentHash string, opts DiagramKeyOpts) string {
	return hashKey("diagram", keyVersion, contentHash, opts)
}

// ImageKey implements Keyer.
func (DefaultKeyer) ImageKey(diagramHash string, opts ImageKeyOpts) string {
	return hashKey("image", keyVersion, diagramHash, opts)
}

// EngineKey implements Keyer.
func (DefaultKeyer) EngineKey(cloudHash string, opts EngineKeyOpts) string {
	return hashKey("engine", keyVersion, cloudHash, opts)
}

var _ Keyer = DefaultKeyer{}

// NullCache misses on every Get and drops every Set. It backs --no-cache
// runs and runners built without a cache.
type NullCache struct{}

// NewNullCache returns a NullCache.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error                     { return nil }
func (NullCache) Close() error                                             { return nil }
