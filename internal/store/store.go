// Package store implements the in-memory Store that loaders populate and
// the relationship engine reads.
//
// Tables keep their IDs sorted so iteration is always id-ascending. Reads
// take a shared lock; host-side mutation (Put, Add, Remove) takes the
// exclusive lock, so a resolver never observes a half-written row.
package store

import (
	"fmt"
	"iter"
	"slices"
	"sort"
	"sync"

	"github.com/mesh-intelligence/lineage/pkg/types"
)

// Store implements types.Store over a map of tables.
type Store struct {
	mu     sync.RWMutex
	tables map[string]*Table
}

// New creates an empty Store.
func New() *Store {
	return &Store{tables: make(map[string]*Table)}
}

// GetTable returns the named table, creating it on first use.
func (s *Store) GetTable(name string) types.Table {
	return s.table(name)
}

// GetFiltered returns the rows of the named table that reference refID in
// refTable.
func (s *Store) GetFiltered(name, refTable string, refID types.ID) types.Table {
	return s.table(name).Fetch(map[string]any{
		types.FieldReferenceTable: refTable,
		types.FieldReferenceID:    refID,
	})
}

// TableNames lists the tables currently present, sorted by name.
func (s *Store) TableNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.tables))
	for name := range s.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Put stores rec under id in the named table, replacing any existing row.
// Returns ErrInvalidID if id is not positive.
func (s *Store) Put(name string, id types.ID, rec types.Record) error {
	if !id.Valid() {
		return fmt.Errorf("put %s/%d: %w", name, id, types.ErrInvalidID)
	}
	if rec == nil {
		return fmt.Errorf("put %s/%d: %w", name, id, types.ErrInvalidData)
	}
	s.table(name).put(id, rec.Clone())
	return nil
}

// Add appends rec to the named table under the next free ID and returns it.
func (s *Store) Add(name string, rec types.Record) types.ID {
	t := s.table(name)
	t.mu.Lock()
	defer t.mu.Unlock()

	id := types.ID(1)
	if n := len(t.ids); n > 0 {
		id = t.ids[n-1] + 1
	}
	if rec == nil {
		rec = types.Record{}
	}
	t.rows[id] = rec.Clone()
	t.ids = append(t.ids, id)
	return id
}

// Remove deletes the row with the given ID.
// Returns ErrNotFound if the row does not exist.
func (s *Store) Remove(name string, id types.ID) error {
	t := s.table(name)
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.rows[id]; !ok {
		return fmt.Errorf("remove %s/%d: %w", name, id, types.ErrNotFound)
	}
	delete(t.rows, id)
	i, _ := slices.BinarySearch(t.ids, id)
	t.ids = slices.Delete(t.ids, i, i+1)
	return nil
}

func (s *Store) table(name string) *Table {
	s.mu.RLock()
	t, ok := s.tables[name]
	s.mu.RUnlock()
	if ok {
		return t
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.tables[name]; ok {
		return t
	}
	t = newTable(name)
	s.tables[name] = t
	return t
}

// Table implements types.Table. Tables returned by Fetch are detached
// snapshots: later writes to the Store do not reach them.
type Table struct {
	mu   sync.RWMutex
	name string
	rows map[types.ID]types.Record
	ids  []types.ID
}

func newTable(name string) *Table {
	return &Table{
		name: name,
		rows: make(map[types.ID]types.Record),
	}
}

// Name returns the table name.
func (t *Table) Name() string {
	return t.name
}

// Get returns the record with the given ID or ErrNotFound.
func (t *Table) Get(id types.ID) (types.Record, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	rec, ok := t.rows[id]
	if !ok {
		return nil, types.ErrNotFound
	}
	return rec, nil
}

// Len returns the number of records.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.ids)
}

// IDs returns a copy of the sorted record IDs.
func (t *Table) IDs() []types.ID {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Clone(t.ids)
}

// All yields every record in ascending ID order. The ID list is captured
// when iteration starts; rows removed afterwards are skipped.
func (t *Table) All() iter.Seq2[types.ID, types.Record] {
	return func(yield func(types.ID, types.Record) bool) {
		for _, id := range t.IDs() {
			t.mu.RLock()
			rec, ok := t.rows[id]
			t.mu.RUnlock()
			if !ok {
				continue
			}
			if !yield(id, rec) {
				return
			}
		}
	}
}

// Fetch returns a detached table with the records matching filter.
func (t *Table) Fetch(filter map[string]any) types.Table {
	out := newTable(t.name)

	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, id := range t.ids {
		rec := t.rows[id]
		if rec.Matches(filter) {
			out.rows[id] = rec
			out.ids = append(out.ids, id)
		}
	}
	return out
}

func (t *Table) put(id types.ID, rec types.Record) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.rows[id]; !exists {
		i, _ := slices.BinarySearch(t.ids, id)
		t.ids = slices.Insert(t.ids, i, id)
	}
	t.rows[id] = rec
}
