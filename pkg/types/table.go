package types

import (
	"errors"
	"iter"
)

// Table is an ordered mapping from ID to Record. Iteration is always in
// ascending ID order, which is the order every resolver relies on for
// "first wins" decisions.
type Table interface {
	// Name returns the table name the table was obtained under.
	Name() string

	// Get returns the record with the given ID.
	// Returns ErrNotFound if no record exists with that ID.
	Get(id ID) (Record, error)

	// Len returns the number of records.
	Len() int

	// IDs returns the record IDs in ascending order.
	IDs() []ID

	// All yields every record in ascending ID order.
	All() iter.Seq2[ID, Record]

	// Fetch returns a detached table holding the records that match every
	// filter entry. An empty filter returns every record.
	Fetch(filter map[string]any) Table
}

// Store is the normalized record container the engine reads from.
// Implementations must allow concurrent readers.
type Store interface {
	// GetTable returns the named table, creating an empty one if it does
	// not exist yet. It never fails.
	GetTable(name string) Table

	// GetFiltered returns the rows of the named table whose reference_table
	// and reference_id fields match refTable and refID.
	GetFiltered(name, refTable string, refID ID) Table

	// TableNames lists the tables currently present, sorted by name.
	TableNames() []string
}

// Table operation errors.
var (
	ErrNotFound    = errors.New("record not found")
	ErrInvalidID   = errors.New("invalid record ID")
	ErrInvalidData = errors.New("invalid record data")
)
