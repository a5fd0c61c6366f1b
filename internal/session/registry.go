package session

import (
	"errors"
	"log/slog"
	"sort"
	"sync"

	"github.com/mesh-intelligence/lineage/internal/metrics"
	"github.com/mesh-intelligence/lineage/internal/relation"
	"github.com/mesh-intelligence/lineage/internal/tree"
)

// ErrSessionNotFound is returned for an unknown or closed session id.
var ErrSessionNotFound = errors.New("session not found")

// Registry creates and tracks sessions sharing one resolver and builder.
type Registry struct {
	rel     *relation.Resolver
	builder *tree.Builder
	metrics *metrics.Metrics
	logger  *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger handed to sessions.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithMetrics records navigation steps, tree builds and open sessions.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Registry) {
		r.metrics = m
	}
}

// NewRegistry creates an empty Registry. A nil resolver or builder panics.
func NewRegistry(rel *relation.Resolver, builder *tree.Builder, opts ...Option) *Registry {
	if rel == nil || builder == nil {
		panic("session: nil resolver or builder")
	}
	r := &Registry{
		rel:      rel,
		builder:  builder,
		logger:   slog.Default(),
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// New creates and registers an empty session.
func (r *Registry) New() *Session {
	s := &Session{
		id:      newID(),
		rel:     r.rel,
		builder: r.builder,
		metrics: r.metrics,
		logger:  r.logger,
	}
	r.mu.Lock()
	r.sessions[s.id] = s
	r.mu.Unlock()
	if r.metrics != nil {
		r.metrics.SessionOpened()
	}
	r.logger.Debug("session opened", "session", s.id)
	return s
}

// Get returns the session with the given id.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Close removes a session.
func (r *Registry) Close(id string) error {
	r.mu.Lock()
	_, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	if r.metrics != nil {
		r.metrics.SessionClosed()
	}
	r.logger.Debug("session closed", "session", id)
	return nil
}

// IDs lists the open session ids in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of open sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
