// Package types defines the Store and Table interfaces, the generic Record
// with its typed entity views, the standard table and field names, and the
// sentinel errors shared by every lineage package.
//
// Records are schema-less: a loader may add any field to any table. The
// typed views (Person, Group, Junction, Event, ...) read the fields the
// relationship engine depends on and ignore the rest.
package types
