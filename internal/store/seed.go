package store

import "github.com/mesh-intelligence/lineage/pkg/types"

// builtInEventType describes an event_type row seeded into a new store.
type builtInEventType struct {
	typ      string
	category string
}

// builtInEventTypes covers one event type per category the resolvers read.
var builtInEventTypes = []builtInEventType{
	{"Birth", types.CategoryBirth},
	{"Baptism", types.CategoryBirth},
	{"Death", types.CategoryDeath},
	{"Burial", types.CategoryDeath},
	{"Marriage", types.CategoryUnion},
	{"Adoption", types.CategoryAdoption},
}

// builtInCalendars lists the calendars the date parser understands.
var builtInCalendars = []string{types.CalendarGregorian, types.CalendarJulian}

// SeedVocabulary adds the built-in event types and calendars to s. Each
// table is seeded only while it is empty, so seeding a populated store is a
// no-op. It returns the number of rows added.
func SeedVocabulary(s *Store) int {
	added := 0
	if s.GetTable(types.TableEventType).Len() == 0 {
		for _, et := range builtInEventTypes {
			s.Add(types.TableEventType, types.Record{
				types.FieldType:     et.typ,
				types.FieldCategory: et.category,
			})
			added++
		}
	}
	if s.GetTable(types.TableCalendar).Len() == 0 {
		for _, c := range builtInCalendars {
			s.Add(types.TableCalendar, types.Record{types.FieldType: c})
			added++
		}
	}
	return added
}
