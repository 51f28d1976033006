// Package observability provides hooks for metrics and tracing.
//
// Libraries emit events through globally registered hooks; the defaults do
// nothing. The serve command registers [PrometheusHooks] at startup, while
// the CLI leaves the no-op hooks in place.
//
// # Usage
//
// Register hooks at startup. Setters return the hooks they replace, which
// lets a temporary observer forward to them and restore them afterwards:
//
//	hooks := observability.NewPrometheusHooks(prometheus.DefaultRegisterer)
//	observability.SetPipelineHooks(hooks)
//	observability.SetCacheHooks(hooks)
//	observability.SetHTTPHooks(hooks)
//
// Libraries call hooks to emit events:
//
//	observability.Pipeline().OnRasterizeStart(ctx, dims, pixels)
//	// ... rasterize ...
//	observability.Pipeline().OnRasterizeComplete(ctx, dims, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the vectorization pipeline.
type PipelineHooks interface {
	// Import events (diagram files or request bodies)
	OnImportStart(ctx context.Context, source string)
	OnImportComplete(ctx context.Context, source string, pairs int, duration time.Duration, err error)

	// Homology engine events
	OnEngineStart(ctx context.Context, engine string, atoms int)
	OnEngineComplete(ctx context.Context, engine string, duration time.Duration, err error)

	// Rasterization events
	OnRasterizeStart(ctx context.Context, dims []int, pixels [2]int)
	OnRasterizeComplete(ctx context.Context, dims []int, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP API server.
type HTTPHooks interface {
	// OnRequest records an incoming request before routing, by URL path.
	OnRequest(ctx context.Context, method, route string)

	// OnResponse records the response status and latency.
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnImportStart(context.Context, string) {}
func (NoopPipelineHooks) OnImportComplete(context.Context, string, int, time.Duration, error) {
}
func (NoopPipelineHooks) OnEngineStart(context.Context, string, int)                       {}
func (NoopPipelineHooks) OnEngineComplete(context.Context, string, time.Duration, error)   {}
func (NoopPipelineHooks) OnRasterizeStart(context.Context, []int, [2]int)                  {}
func (NoopPipelineHooks) OnRasterizeComplete(context.Context, []int, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

// slot holds the hooks registered for one kind of event.
type slot[H any] struct {
	mu   sync.RWMutex
	cur  H
	noop H
}

func newSlot[H any](noop H) *slot[H] { return &slot[H]{cur: noop, noop: noop} }

func (s *slot[H]) get() H {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

// swap installs h and returns what it replaced. A nil h changes nothing.
func (s *slot[H]) swap(h H) H {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.cur
	if any(h) != nil {
		s.cur = h
	}
	return prev
}

func (s *slot[H]) reset() { s.swap(s.noop) }

var (
	pipelineSlot = newSlot[PipelineHooks](NoopPipelineHooks{})
	cacheSlot    = newSlot[CacheHooks](NoopCacheHooks{})
	httpSlot     = newSlot[HTTPHooks](NoopHTTPHooks{})
)

// SetPipelineHooks registers h and returns the hooks it replaces, so a
// caller can wrap them and put them back later. A nil h is ignored.
func SetPipelineHooks(h PipelineHooks) (prev PipelineHooks) { return pipelineSlot.swap(h) }

// SetCacheHooks registers h and returns the hooks it replaces.
func SetCacheHooks(h CacheHooks) (prev CacheHooks) { return cacheSlot.swap(h) }

// SetHTTPHooks registers h and returns the hooks it replaces.
func SetHTTPHooks(h HTTPHooks) (prev HTTPHooks) { return httpSlot.swap(h) }

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks { return pipelineSlot.get() }

// Cache returns the registered cache hooks.
func Cache() CacheHooks { return cacheSlot.get() }

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks { return httpSlot.get() }

// Reset restores the no-op hooks everywhere. Tests call it in cleanup.
func Reset() {
	pipelineSlot.reset()
	cacheSlot.reset()
	httpSlot.reset()
}
