// Package server exposes ingestion and graph navigation over HTTP.
//
// Routes:
//
//	POST /api/ollama                   ingest {text}
//	POST /api/sessions                 create a session
//	GET  /api/sessions/{id}            current view
//	POST /api/sessions/{id}/submit     ingest {text} and load the result
//	POST /api/sessions/{id}/promote    promote {nodeId}
//	POST /api/sessions/{id}/layout     switch to {kind}
//	POST /api/sessions/{id}/toggle     switch between JSON and raw text
//	POST /api/sessions/{id}/clear      drop the graph
//	GET  /api/sessions/{id}/ws         websocket stream of views
//	GET  /healthz
//
// Errors are written as {"error": message} with the status that matches
// the error code.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/PeterMaltzoff/huh/pkg/ingest"
	"github.com/PeterMaltzoff/huh/pkg/session"
)

// Server routes API requests to an ingestor and a session store.
type Server struct {
	ingestor ingest.Ingestor
	sessions *session.Store
	logger   *log.Logger
	router   chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger for request and error logs.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// New returns a server. Sessions created through the API come from store.
func New(ing ingest.Ingestor, store *session.Store, opts ...Option) *Server {
	s := &Server{ingestor: ing, sessions: store}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/ollama", s.handleIngest)
		r.Post("/sessions", s.handleCreateSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)
			r.Post("/submit", s.handleSubmit)
			r.Post("/promote", s.handlePromote)
			r.Post("/layout", s.handleLayout)
			r.Post("/toggle", s.handleToggle)
			r.Post("/clear", s.handleClear)
			r.Get("/ws", s.handleWS)
		})
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
