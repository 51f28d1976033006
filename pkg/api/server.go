// Package api serves the vectorization pipeline over HTTP.
//
// # Routes
//
//	POST   /v1/vectorize             vectorize diagrams, store and return the record
//	POST   /v1/compute               run the homology engine on a cloud, then vectorize
//	GET    /v1/results               list stored records, newest first
//	GET    /v1/results/{id}          fetch a record
//	DELETE /v1/results/{id}          delete a record
//	GET    /v1/results/{id}/png/{dim} render one image as PNG
//	GET    /healthz                  liveness and build info
//	GET    /metrics                  Prometheus metrics
//
// Errors are returned as {"code": "...", "message": "..."}.
package api

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/moltda/pkg/homology"
	"github.com/matzehuels/moltda/pkg/observability"
	"github.com/matzehuels/moltda/pkg/pipeline"
	"github.com/matzehuels/moltda/pkg/store"
)

// DefaultMaxBodyBytes bounds request bodies when Server.MaxBodyBytes is zero.
const DefaultMaxBodyBytes = 32 << 20

// Server holds the collaborators of the HTTP handlers.
type Server struct {
	Runner *pipeline.Runner
	Store  store.Store

	// Engine runs /v1/compute; nil disables the route.
	Engine     homology.Engine
	EngineName string

	// Defaults seeds options for every request before the body is applied.
	Defaults pipeline.Options

	// Gatherer backs /metrics; nil uses the default registry.
	Gatherer prometheus.Gatherer

	MaxBodyBytes int64
	Logger       *log.Logger
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	if s.Logger == nil {
		s.Logger = log.Default()
	}
	gatherer := s.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		r.Post("/vectorize", s.handleVectorize)
		r.Post("/compute", s.handleCompute)
		r.Get("/results", s.handleList)
		r.Get("/results/{id}", s.handleGet)
		r.Delete("/results/{id}", s.handleDelete)
		r.Get("/results/{id}/png/{dim}", s.handlePNG)
	})
	return r
}

// instrument reports every request to the HTTP hooks using the matched route
// pattern, so metrics are not keyed by record IDs.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hooks := observability.HTTP()
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		d := time.Since(start)
		hooks.OnResponse(r.Context(), r.Method, route, status, d)
		s.Logger.Debug("request", "method", r.Method, "route", route, "status", status, "duration", d)
	})
}

// HTTPServer builds an http.Server for addr around the handler.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func (s *Server) maxBody() int64 {
	if s.MaxBodyBytes > 0 {
		return s.MaxBodyBytes
	}
	return DefaultMaxBodyBytes
}
