package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusHooks implements every hook interface by updating Prometheus
// collectors.
type PrometheusHooks struct {
	stageDuration *prometheus.HistogramVec
	stageErrors   *prometheus.CounterVec
	imported      prometheus.Counter
	cacheEvents   *prometheus.CounterVec
	cacheBytes    *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	httpRequests  *prometheus.CounterVec
}

// NewPrometheusHooks registers the collectors with reg. Pass
// prometheus.DefaultRegisterer to expose them on promhttp.Handler.
func NewPrometheusHooks(reg prometheus.Registerer) *PrometheusHooks {
	f := promauto.With(reg)
	return &PrometheusHooks{
		stageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name: "moltda_stage_duration_seconds",
			Help: "Duration of pipeline stages.",
		}, []string{"stage"}),
		stageErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "moltda_stage_errors_total",
			Help: "Number of failed pipeline stages.",
		}, []string{"stage"}),
		imported: f.NewCounter(prometheus.CounterOpts{
			Name: "moltda_imported_pairs_total",
			Help: "Number of persistence pairs imported.",
		}),
		cacheEvents: f.NewCounterVec(prometheus.CounterOpts{
			Name: "moltda_cache_events_total",
			Help: "Cache lookups and writes by key type and outcome.",
		}, []string{"key_type", "event"}),
		cacheBytes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "moltda_cache_written_bytes_total",
			Help: "Bytes written to the cache by key type.",
		}, []string{"key_type"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name: "http_response_time_seconds",
			Help: "Duration of HTTP requests.",
		}, []string{"method", "route"}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Number of HTTP requests.",
		}, []string{"method", "route", "status"}),
	}
}

func (h *PrometheusHooks) observeStage(stage string, d time.Duration, err error) {
	h.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
	if err != nil {
		h.stageErrors.WithLabelValues(stage).Inc()
	}
}

func (h *PrometheusHooks) OnImportStart(context.Context, string) {}

func (h *PrometheusHooks) OnImportComplete(_ context.Context, _ string, pairs int, d time.Duration, err error) {
	h.observeStage("import", d, err)
	if err == nil {
		h.imported.Add(float64(pairs))
	}
}

func (h *PrometheusHooks) OnEngineStart(context.Context, string, int) {}

func (h *PrometheusHooks) OnEngineComplete(_ context.Context, _ string, d time.Duration, err error) {
	h.observeStage("engine", d, err)
}

func (h *PrometheusHooks) OnRasterizeStart(context.Context, []int, [2]int) {}

func (h *PrometheusHooks) OnRasterizeComplete(_ context.Context, _ []int, d time.Duration, err error) {
	h.observeStage("rasterize", d, err)
}

func (h *PrometheusHooks) OnCacheHit(_ context.Context, keyType string) {
	h.cacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (h *PrometheusHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.cacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (h *PrometheusHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.cacheEvents.WithLabelValues(keyType, "set").Inc()
	h.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (h *PrometheusHooks) OnRequest(context.Context, string, string) {}

func (h *PrometheusHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	h.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
	h.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

var (
	_ PipelineHooks = (*PrometheusHooks)(nil)
	_ CacheHooks    = (*PrometheusHooks)(nil)
	_ HTTPHooks     = (*PrometheusHooks)(nil)
)
