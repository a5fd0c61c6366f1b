package dates

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/lineage/pkg/types"
)

// Direction selects which end of the timeline Extract looks for.
type Direction int

// Extraction directions.
const (
	Earliest Direction = iota
	Latest
)

// Match is the event selected by Extract together with its parsed date.
type Match struct {
	Date  Date
	Event types.Event
}

// Resolver answers date and event queries over a Store. It holds no state
// besides the Store, so every call sees the Store as it is at that moment.
type Resolver struct {
	store  types.Store
	logger *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger used to report skipped dates.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// NewResolver creates a Resolver over store. A nil store is a programming
// error and panics.
func NewResolver(store types.Store, opts ...Option) *Resolver {
	if store == nil {
		panic("dates: nil store")
	}
	r := &Resolver{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Events returns the events that reference refID in refTable and whose
// category equals category, in event ID order.
func (r *Resolver) Events(refTable string, refID types.ID, category string) []types.Event {
	if !refID.Valid() {
		return nil
	}
	category = strings.ToLower(category)

	var out []types.Event
	for id, rec := range r.store.GetFiltered(types.TableEvent, refTable, refID).All() {
		e := types.EventOf(id, rec)
		if r.CategoryOf(e) == category {
			out = append(out, e)
		}
	}
	return out
}

// CategoryOf resolves the category of an event: through type_id when set,
// otherwise by matching the event's type name against event_type rows, and
// finally by taking the type name itself.
func (r *Resolver) CategoryOf(e types.Event) string {
	eventTypes := r.store.GetTable(types.TableEventType)
	if e.TypeID.Valid() {
		if rec, err := eventTypes.Get(e.TypeID); err == nil {
			return types.EventTypeOf(e.TypeID, rec).Category
		}
	}
	if e.Type == "" {
		return ""
	}
	for id, rec := range eventTypes.All() {
		et := types.EventTypeOf(id, rec)
		if strings.EqualFold(et.Type, e.Type) && et.Category != "" {
			return et.Category
		}
	}
	return strings.ToLower(strings.TrimSpace(e.Type))
}

// DateOf resolves and parses the date of an event. It reports false when the
// event has no date, the date row or its calendar is missing, or the text
// does not parse.
func (r *Resolver) DateOf(e types.Event) (Date, bool) {
	if !e.DateID.Valid() {
		return Date{}, false
	}
	rec, err := r.store.GetTable(types.TableHistoricDate).Get(e.DateID)
	if err != nil {
		r.logger.Debug("skipping event with dangling date", "event_id", e.ID, "date_id", e.DateID)
		return Date{}, false
	}
	hd := types.HistoricDateOf(e.DateID, rec)

	calendarType := ""
	if hd.CalendarID.Valid() {
		crec, err := r.store.GetTable(types.TableCalendar).Get(hd.CalendarID)
		if err != nil {
			r.logger.Debug("skipping date with dangling calendar", "date_id", hd.ID, "calendar_id", hd.CalendarID)
			return Date{}, false
		}
		calendarType = types.CalendarOf(hd.CalendarID, crec).Type
	}

	d, err := Parse(hd.Date, calendarType)
	if err != nil {
		r.logger.Debug("skipping unparseable date", "date_id", hd.ID, "error", err)
		return Date{}, false
	}
	return d, true
}

// PlaceOf returns the place an event happened at.
func (r *Resolver) PlaceOf(e types.Event) (types.Place, bool) {
	if !e.PlaceID.Valid() {
		return types.Place{}, false
	}
	rec, err := r.store.GetTable(types.TablePlace).Get(e.PlaceID)
	if err != nil {
		return types.Place{}, false
	}
	return types.PlaceOf(e.PlaceID, rec), true
}

// Extract finds the subject's event of the given category with the earliest
// or latest date. Events without a usable date are ignored. On equal dates
// the event with the lowest ID wins.
func (r *Resolver) Extract(refTable string, refID types.ID, category string, dir Direction) (Match, bool) {
	var (
		best    Match
		bestKey int
		found   bool
	)
	for _, e := range r.Events(refTable, refID, category) {
		d, ok := r.DateOf(e)
		if !ok {
			continue
		}
		key := d.key(dir)
		better := !found ||
			(dir == Earliest && key < bestKey) ||
			(dir == Latest && key > bestKey)
		if better {
			best, bestKey, found = Match{Date: d, Event: e}, key, true
		}
	}
	return best, found
}

// extractPlace returns the place of the event Extract selects. When no event
// of the category has a usable date, the first event with a known place is
// used instead.
func (r *Resolver) extractPlace(refTable string, refID types.ID, category string, dir Direction) (types.Place, bool) {
	if m, ok := r.Extract(refTable, refID, category, dir); ok {
		return r.PlaceOf(m.Event)
	}
	for _, e := range r.Events(refTable, refID, category) {
		if p, ok := r.PlaceOf(e); ok {
			return p, true
		}
	}
	return types.Place{}, false
}

// EarliestUnionDate returns the earliest dated union event of a group.
func (r *Resolver) EarliestUnionDate(unionID types.ID) (Match, bool) {
	return r.Extract(types.TableGroup, unionID, types.CategoryUnion, Earliest)
}

// EarliestUnionYear returns the year of the earliest union event of a group
// as a decimal string.
func (r *Resolver) EarliestUnionYear(unionID types.ID) (string, bool) {
	m, ok := r.EarliestUnionDate(unionID)
	if !ok {
		return "", false
	}
	return strconv.Itoa(m.Date.Year()), true
}

// EarliestUnionPlace returns the place of the earliest union event of a group.
func (r *Resolver) EarliestUnionPlace(unionID types.ID) (types.Place, bool) {
	return r.extractPlace(types.TableGroup, unionID, types.CategoryUnion, Earliest)
}

// EarliestBirth returns the earliest dated birth event of a person.
func (r *Resolver) EarliestBirth(personID types.ID) (Match, bool) {
	return r.Extract(types.TablePerson, personID, types.CategoryBirth, Earliest)
}

// LatestDeath returns the latest dated death event of a person.
func (r *Resolver) LatestDeath(personID types.ID) (Match, bool) {
	return r.Extract(types.TablePerson, personID, types.CategoryDeath, Latest)
}

// BirthPlace returns the place of the earliest birth event of a person.
func (r *Resolver) BirthPlace(personID types.ID) (types.Place, bool) {
	return r.extractPlace(types.TablePerson, personID, types.CategoryBirth, Earliest)
}

// DeathPlace returns the place of the latest death event of a person.
func (r *Resolver) DeathPlace(personID types.ID) (types.Place, bool) {
	return r.extractPlace(types.TablePerson, personID, types.CategoryDeath, Latest)
}
