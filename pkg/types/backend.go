package types

import "errors"

// Backend persists a Store snapshot outside the process.
// Callers attach to a backend, load or save whole stores, and detach when
// done. The engine itself never talks to a Backend; hosts load a Store once
// and hand it to the resolvers.
type Backend interface {
	// Attach connects the Backend to the location described by config.
	// Creates the DataDir if it does not exist. Returns ErrAlreadyAttached
	// if called while already attached.
	Attach(config Config) error

	// Load reads every table into a fresh Store.
	Load() (Store, error)

	// Save replaces the persisted snapshot with the contents of store.
	Save(store Store) error

	// Detach releases backend resources. Idempotent: multiple calls succeed.
	// After Detach, Load and Save return ErrDetached.
	Detach() error
}

// Backend lifecycle errors.
var (
	ErrDetached        = errors.New("backend is detached")
	ErrAlreadyAttached = errors.New("backend is already attached")
)
