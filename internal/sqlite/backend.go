// Package sqlite keeps Store snapshots in a SQLite database file.
package sqlite

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/lineage/internal/store"
	"github.com/mesh-intelligence/lineage/pkg/types"
)

// DBFile is the database file name inside DataDir.
const DBFile = "lineage.db"

// Backend implements types.Backend on a SQLite database.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
	logger   *slog.Logger
}

// Option configures a Backend.
type Option func(*Backend)

// WithLogger sets the backend logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Backend) {
		b.logger = logger
	}
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend(opts ...Option) *Backend {
	b := &Backend{logger: slog.Default()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Attach opens DataDir/lineage.db, creating the directory and schema if
// needed. Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}

	db, err := sql.Open("sqlite", filepath.Join(dataDir, DBFile))
	if err != nil {
		return err
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return fmt.Errorf("enabling foreign keys: %w", err)
	}
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return fmt.Errorf("creating schema: %w", err)
		}
	}

	b.db = db
	b.config = config
	b.attached = true
	return nil
}

// Detach closes the database. Idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	b.attached = false
	if b.db != nil {
		err := b.db.Close()
		b.db = nil
		return err
	}
	return nil
}

// Load reads every table into a fresh Store. Rows whose data does not
// decode to a JSON object are skipped.
func (b *Backend) Load() (types.Store, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrDetached
	}

	s := store.New()
	names, err := b.db.Query("SELECT name FROM tables ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}
	for names.Next() {
		var name string
		if err := names.Scan(&name); err != nil {
			names.Close()
			return nil, fmt.Errorf("scanning table name: %w", err)
		}
		s.GetTable(name)
	}
	names.Close()
	if err := names.Err(); err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}

	rows, err := b.db.Query("SELECT table_name, id, data FROM records ORDER BY table_name, id")
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	skipped := 0
	for rows.Next() {
		var (
			table string
			id    int64
			data  string
		)
		if err := rows.Scan(&table, &id, &data); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		rec, err := decodeRecord(data)
		if err != nil {
			b.logger.Debug("skipping record", "table", table, "id", id, "error", err)
			skipped++
			continue
		}
		if err := s.Put(table, types.ID(id), rec); err != nil {
			b.logger.Debug("skipping record", "table", table, "id", id, "error", err)
			skipped++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading records: %w", err)
	}
	b.logger.Debug("sqlite loaded", "tables", len(s.TableNames()), "skipped", skipped)
	return s, nil
}

// Save replaces the stored snapshot with s in one transaction.
func (b *Backend) Save(s types.Store) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrDetached
	}

	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning save transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM records"); err != nil {
		return fmt.Errorf("clearing records: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM tables"); err != nil {
		return fmt.Errorf("clearing tables: %w", err)
	}

	insertTable, err := tx.Prepare("INSERT INTO tables (name) VALUES (?)")
	if err != nil {
		return fmt.Errorf("preparing table insert: %w", err)
	}
	defer insertTable.Close()
	insertRecord, err := tx.Prepare("INSERT INTO records (table_name, id, data) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing record insert: %w", err)
	}
	defer insertRecord.Close()

	for _, name := range s.TableNames() {
		if _, err := insertTable.Exec(name); err != nil {
			return fmt.Errorf("saving table %s: %w", name, err)
		}
		for id, rec := range s.GetTable(name).All() {
			data, err := json.Marshal(rec)
			if err != nil {
				return fmt.Errorf("encoding %s/%d: %w", name, id, err)
			}
			if _, err := insertRecord.Exec(name, int64(id), string(data)); err != nil {
				return fmt.Errorf("saving %s/%d: %w", name, id, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing save transaction: %w", err)
	}
	return nil
}

// Counts returns the number of stored rows per table.
func (b *Backend) Counts() (map[string]int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrDetached
	}
	rows, err := b.db.Query(`SELECT t.name, COUNT(r.id) FROM tables t
LEFT JOIN records r ON r.table_name = t.name GROUP BY t.name`)
	if err != nil {
		return nil, fmt.Errorf("counting records: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			name string
			n    int
		)
		if err := rows.Scan(&name, &n); err != nil {
			return nil, fmt.Errorf("scanning count: %w", err)
		}
		counts[name] = n
	}
	return counts, rows.Err()
}

// decodeRecord parses a stored JSON object. Integral numbers come back as
// int64.
func decodeRecord(data string) (types.Record, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(data)))
	dec.UseNumber()
	var rec types.Record
	if err := dec.Decode(&rec); err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, types.ErrInvalidData
	}
	for k, v := range rec {
		n, ok := v.(json.Number)
		if !ok {
			continue
		}
		if i, err := n.Int64(); err == nil {
			rec[k] = i
		} else if f, err := n.Float64(); err == nil {
			rec[k] = f
		}
	}
	return rec, nil
}

var _ types.Backend = (*Backend)(nil)
