// Package server exposes the resolvers and browsing sessions over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mesh-intelligence/lineage/internal/relation"
	"github.com/mesh-intelligence/lineage/internal/session"
	"github.com/mesh-intelligence/lineage/internal/tree"
	"github.com/mesh-intelligence/lineage/pkg/types"
)

// Server wires the query and session handlers to a chi router.
type Server struct {
	rel      *relation.Resolver
	builder  *tree.Builder
	sessions *session.Registry
	gatherer prometheus.Gatherer
	logger   *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithGatherer serves the gatherer's metrics on /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// New constructs a Server. The builder's depth is the default tree depth.
func New(rel *relation.Resolver, builder *tree.Builder, sessions *session.Registry, opts ...Option) *Server {
	s := &Server{
		rel:      rel,
		builder:  builder,
		sessions: sessions,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP handler with every route mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/unions/{id}", func(r chi.Router) {
		r.Get("/partners", s.handlePartners)
		r.Get("/children", s.handleChildren)
		r.Get("/date", s.handleUnionDate)
	})
	r.Route("/persons/{id}", func(r chi.Router) {
		r.Get("/parents", s.handleParents)
		r.Get("/unions", s.handleUnions)
		r.Get("/adopted", s.handleAdopted)
		r.Get("/dates", s.handlePersonDates)
	})
	r.Get("/tree", s.handleTree)

	s.registerSessions(r)
	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("serving", "addr", ln.Addr().String())
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// errorResponse is the body of every non-2xx reply.
type errorResponse struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, description string) {
	writeJSON(w, status, errorResponse{Error: code, Description: description})
}

// idParam parses a positive id path parameter, writing a 400 on failure.
func idParam(w http.ResponseWriter, r *http.Request, name string) (types.ID, bool) {
	id, err := parseID(chi.URLParam(r, name))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Sprintf("%s: %v", name, err))
		return types.NoID, false
	}
	return id, true
}

// queryID parses an optional id query parameter; absent means NoID.
func queryID(w http.ResponseWriter, r *http.Request, name string) (types.ID, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return types.NoID, true
	}
	id, err := parseID(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Sprintf("%s: %v", name, err))
		return types.NoID, false
	}
	return id, true
}

func parseID(raw string) (types.ID, error) {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return types.NoID, types.ErrInvalidID
	}
	return types.ID(n), nil
}

// decodeBody decodes a JSON request body into v, writing a 400 on failure.
// An empty body leaves v untouched.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return true
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return false
	}
	return true
}
