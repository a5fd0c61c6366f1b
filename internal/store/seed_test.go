package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/lineage/pkg/types"
)

func TestSeedVocabularyOnEmptyStore(t *testing.T) {
	s := New()

	added := SeedVocabulary(s)

	assert.Equal(t, len(builtInEventTypes)+len(builtInCalendars), added)
	assert.Equal(t, len(builtInEventTypes), s.GetTable(types.TableEventType).Len())

	rec, err := s.GetTable(types.TableCalendar).Get(1)
	require.NoError(t, err)
	assert.Equal(t, types.CalendarGregorian, types.CalendarOf(1, rec).Type)

	births := s.GetTable(types.TableEventType).Fetch(map[string]any{types.FieldCategory: types.CategoryBirth})
	assert.Equal(t, 2, births.Len())
}

func TestSeedVocabularyIsIdempotent(t *testing.T) {
	s := New()
	SeedVocabulary(s)

	assert.Zero(t, SeedVocabulary(s))
	assert.Equal(t, len(builtInCalendars), s.GetTable(types.TableCalendar).Len())
}

func TestSeedVocabularyKeepsExistingTables(t *testing.T) {
	s := New()
	require.NoError(t, s.Put(types.TableCalendar, 7, types.Record{types.FieldType: "julian"}))

	added := SeedVocabulary(s)

	assert.Equal(t, len(builtInEventTypes), added)
	assert.Equal(t, []types.ID{7}, s.GetTable(types.TableCalendar).IDs())
}
