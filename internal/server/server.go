// Package server exposes the batch client over HTTP. It is a thin JSON
// surface: a request lists queries with their shaping modes, the handler
// runs them as one concurrent batch, and the response carries the shaped
// results in request order.
package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sathwikv/batchq/internal/batch"
	"github.com/sathwikv/batchq/internal/logger"
)

// Server wires the batch client into an HTTP listener.
type Server struct {
	client       *batch.Client
	log          *logger.Logger
	router       chi.Router
	queryTimeout time.Duration

	// batchMu serialises whole batches: the client's queue is shared state,
	// and interleaved enqueues from two HTTP requests would merge their
	// batches. Per instance, so independent servers never block each other.
	batchMu sync.Mutex
}

// Option configures a Server.
type Option func(*Server)

// WithQueryTimeout bounds every batch execution with a deadline. Zero leaves
// the request context as the only limit.
func WithQueryTimeout(d time.Duration) Option {
	return func(s *Server) { s.queryTimeout = d }
}

// New builds a Server around the given batch client.
func New(client *batch.Client, log *logger.Logger, opts ...Option) *Server {
	s := &Server{
		client: client,
		log:    log,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealth)
	r.Post("/v1/batch", s.handleBatch)

	s.router = r
	return s
}

// Router returns the HTTP handler, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Listen blocks serving HTTP on addr until the listener fails.
func (s *Server) Listen(addr string, readTimeout, writeTimeout time.Duration) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}
	s.log.Infof("listening on %s", addr)
	return srv.ListenAndServe()
}

// requestLogger emits one structured line per request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.log.InfoWith("request", map[string]any{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   ww.Status(),
			"duration": time.Since(start).String(),
		})
	})
}
