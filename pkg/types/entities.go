package types

import (
	"strconv"
	"strings"
)

// Person is the typed view of a person row. The engine only needs the
// identity; Name is an optional display label some loaders provide.
type Person struct {
	ID   ID
	Name string
}

// PersonOf builds the Person view of a record.
func PersonOf(id ID, r Record) Person {
	name, _ := r.String(FieldName)
	return Person{ID: id, Name: name}
}

// Group is the typed view of a union ("family") row.
type Group struct {
	ID   ID
	Type string
}

// GroupOf builds the Group view of a record.
func GroupOf(id ID, r Record) Group {
	typ, _ := r.String(FieldType)
	return Group{ID: id, Type: typ}
}

// Junction links a referenced row (normally a person) to a group with a role.
type Junction struct {
	ID             ID
	GroupID        ID
	ReferenceTable string
	ReferenceID    ID
	Role           string
}

// JunctionOf builds the Junction view of a record. A missing
// reference_table defaults to "person".
func JunctionOf(id ID, r Record) Junction {
	j := Junction{ID: id}
	j.GroupID, _ = r.ID(FieldGroupID)
	j.ReferenceID, _ = r.ID(FieldReferenceID)
	j.ReferenceTable, _ = r.String(FieldReferenceTable)
	if j.ReferenceTable == "" {
		j.ReferenceTable = TablePerson
	}
	role, _ := r.String(FieldRole)
	j.Role = strings.ToLower(strings.TrimSpace(role))
	return j
}

// Valid reports whether the junction references both a group and a row.
func (j Junction) Valid() bool {
	return j.GroupID.Valid() && j.ReferenceID.Valid()
}

// IsChild reports whether the role places the referenced person below the
// group, either as a birth child or as an adoptee.
func (j Junction) IsChild() bool {
	return j.Role == RoleChild || j.Role == RoleAdoptee
}

// Event is the typed view of an event row. DateID and PlaceID are NoID when
// the date or place is unknown.
type Event struct {
	ID             ID
	TypeID         ID
	Type           string
	ReferenceTable string
	ReferenceID    ID
	DateID         ID
	PlaceID        ID
}

// EventOf builds the Event view of a record.
func EventOf(id ID, r Record) Event {
	e := Event{ID: id}
	e.TypeID, _ = r.ID(FieldTypeID)
	e.Type, _ = r.String(FieldType)
	e.ReferenceTable, _ = r.String(FieldReferenceTable)
	e.ReferenceID, _ = r.ID(FieldReferenceID)
	e.DateID, _ = r.ID(FieldDateID)
	e.PlaceID, _ = r.ID(FieldPlaceID)
	return e
}

// EventType is the typed view of an event_type row.
type EventType struct {
	ID       ID
	Type     string
	Category string
}

// EventTypeOf builds the EventType view of a record.
func EventTypeOf(id ID, r Record) EventType {
	typ, _ := r.String(FieldType)
	cat, _ := r.String(FieldCategory)
	return EventType{ID: id, Type: typ, Category: strings.ToLower(strings.TrimSpace(cat))}
}

// HistoricDate is the typed view of a historic_date row.
type HistoricDate struct {
	ID         ID
	Date       string
	CalendarID ID
}

// HistoricDateOf builds the HistoricDate view of a record.
func HistoricDateOf(id ID, r Record) HistoricDate {
	d := HistoricDate{ID: id}
	if s, ok := r.String(FieldDate); ok {
		d.Date = s
	} else if y, ok := r.Int(FieldDate); ok {
		// A bare year decodes as a number from YAML and JSON.
		d.Date = strconv.FormatInt(y, 10)
	}
	d.CalendarID, _ = r.ID(FieldCalendarID)
	return d
}

// Calendar is the typed view of a calendar row.
type Calendar struct {
	ID   ID
	Type string
}

// CalendarOf builds the Calendar view of a record.
func CalendarOf(id ID, r Record) Calendar {
	typ, _ := r.String(FieldType)
	return Calendar{ID: id, Type: strings.ToLower(strings.TrimSpace(typ))}
}

// Place is the typed view of a place row.
type Place struct {
	ID     ID
	Name   string
	Locale string
}

// PlaceOf builds the Place view of a record.
func PlaceOf(id ID, r Record) Place {
	p := Place{ID: id}
	p.Name, _ = r.String(FieldName)
	p.Locale, _ = r.String(FieldLocale)
	return p
}
