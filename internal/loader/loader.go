// Package loader reads and writes Store snapshots as plain files: a
// directory of JSONL files, one per table, or a single YAML fixture.
// Both formats carry the row id in an "id" field; rows without a positive
// id and lines that do not parse are skipped, never fatal.
package loader

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/mesh-intelligence/lineage/internal/store"
	"github.com/mesh-intelligence/lineage/pkg/types"
)

// Option configures a file backend.
type Option func(*base)

// WithLogger sets the logger that reports skipped rows.
func WithLogger(logger *slog.Logger) Option {
	return func(b *base) {
		b.logger = logger
	}
}

// base holds the attach state shared by the file backends.
type base struct {
	mu       sync.Mutex
	attached bool
	path     string
	logger   *slog.Logger
}

func newBase(opts []Option) base {
	b := base{logger: slog.Default()}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// attach validates config and records the resolved path. mkdir is the
// directory that must exist for the backend to write.
func (b *base) attach(config types.Config, path, mkdir string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(mkdir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", mkdir, err)
	}
	b.path = path
	b.attached = true
	return nil
}

// Detach releases the backend. Idempotent.
func (b *base) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.attached = false
	return nil
}

// resolved returns the attached path or ErrDetached.
func (b *base) resolved() (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return "", types.ErrDetached
	}
	return b.path, nil
}

// putRow adds one decoded row to s. It reports false, after logging, when
// the row has no usable id or the id is already taken; the first row for an
// id wins.
func putRow(s *store.Store, logger *slog.Logger, table string, row map[string]any, where string) bool {
	rec := make(types.Record, len(row))
	for k, v := range row {
		rec[k] = normalize(v)
	}
	id, ok := rec.ID(types.FieldID)
	if !ok {
		logger.Debug("skipping row without id", "table", table, "at", where)
		return false
	}
	if _, err := s.GetTable(table).Get(id); err == nil {
		logger.Debug("skipping duplicate id", "table", table, "id", int64(id), "at", where)
		return false
	}
	delete(rec, types.FieldID)
	if err := s.Put(table, id, rec); err != nil {
		logger.Debug("skipping row", "table", table, "at", where, "error", err)
		return false
	}
	return true
}

// rowOf renders a stored record with its id for export.
func rowOf(id types.ID, rec types.Record) map[string]any {
	row := make(map[string]any, len(rec)+1)
	for k, v := range rec {
		row[k] = v
	}
	row[types.FieldID] = int64(id)
	return row
}

// normalize turns decoded JSON numbers into int64 when integral so stored
// records compare the same whichever format they came from.
func normalize(v any) any {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i
		}
		if f, err := n.Float64(); err == nil {
			return f
		}
		return n.String()
	case int:
		return int64(n)
	case map[string]any:
		for k, e := range n {
			n[k] = normalize(e)
		}
		return n
	case []any:
		for i, e := range n {
			n[i] = normalize(e)
		}
		return n
	default:
		return v
	}
}
