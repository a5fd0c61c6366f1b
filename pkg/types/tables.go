package types

// Standard table names.
const (
	TablePerson        = "person"
	TableGroup         = "group"
	TableGroupJunction = "group_junction"
	TableEvent         = "event"
	TableEventType     = "event_type"
	TableHistoricDate  = "historic_date"
	TableCalendar      = "calendar"
	TablePlace         = "place"
)

// StandardTableNames lists all standard table names for enumeration.
var StandardTableNames = []string{
	TablePerson,
	TableGroup,
	TableGroupJunction,
	TableEvent,
	TableEventType,
	TableHistoricDate,
	TableCalendar,
	TablePlace,
}

// Field names read by the typed views.
const (
	FieldID             = "id"
	FieldName           = "name"
	FieldType           = "type"
	FieldTypeID         = "type_id"
	FieldCategory       = "category"
	FieldGroupID        = "group_id"
	FieldReferenceTable = "reference_table"
	FieldReferenceID    = "reference_id"
	FieldRole           = "role"
	FieldDateID         = "date_id"
	FieldPlaceID        = "place_id"
	FieldDate           = "date"
	FieldCalendarID     = "calendar_id"
	FieldLocale         = "locale"
)

// Junction roles.
const (
	RolePartner = "partner"
	RoleChild   = "child"
	RoleAdoptee = "adoptee"
)

// Event categories.
const (
	CategoryBirth    = "birth"
	CategoryDeath    = "death"
	CategoryUnion    = "union"
	CategoryAdoption = "adoption"
)

// Calendar types understood by the date resolver.
const (
	CalendarGregorian = "gregorian"
	CalendarJulian    = "julian"
)
