package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJunctionOf(t *testing.T) {
	tests := []struct {
		name      string
		record    Record
		want      Junction
		wantValid bool
		wantChild bool
	}{
		{
			name:      "partner row",
			record:    Record{"group_id": 1, "reference_table": "person", "reference_id": 2, "role": "partner"},
			want:      Junction{ID: 10, GroupID: 1, ReferenceTable: "person", ReferenceID: 2, Role: RolePartner},
			wantValid: true,
		},
		{
			name:      "reference table defaults to person and role is normalised",
			record:    Record{"group_id": 1, "reference_id": 3, "role": " Adoptee "},
			want:      Junction{ID: 10, GroupID: 1, ReferenceTable: "person", ReferenceID: 3, Role: RoleAdoptee},
			wantValid: true,
			wantChild: true,
		},
		{
			name:   "missing group is invalid",
			record: Record{"reference_id": 3, "role": "child"},
			want:   Junction{ID: 10, ReferenceTable: "person", ReferenceID: 3, Role: RoleChild},
			// IsChild only looks at the role.
			wantChild: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := JunctionOf(10, tt.record)
			assert.Equal(t, tt.want, j)
			assert.Equal(t, tt.wantValid, j.Valid())
			assert.Equal(t, tt.wantChild, j.IsChild())
		})
	}
}

func TestEventOfUnknownDateAndPlace(t *testing.T) {
	e := EventOf(3, Record{"type_id": 2, "reference_table": "group", "reference_id": 1})
	assert.Equal(t, ID(2), e.TypeID)
	assert.Equal(t, NoID, e.DateID, "absent date_id means unknown")
	assert.Equal(t, NoID, e.PlaceID, "absent place_id means unknown")
	assert.False(t, e.DateID.Valid())
}

func TestTypedViews(t *testing.T) {
	assert.Equal(t, EventType{ID: 1, Type: "Marriage", Category: "union"},
		EventTypeOf(1, Record{"type": "Marriage", "category": "Union"}))
	assert.Equal(t, Calendar{ID: 2, Type: "julian"}, CalendarOf(2, Record{"type": "Julian"}))
	assert.Equal(t, HistoricDate{ID: 3, Date: "1 JAN 1800", CalendarID: 2},
		HistoricDateOf(3, Record{"date": "1 JAN 1800", "calendar_id": 2}))
	assert.Equal(t, HistoricDate{ID: 7, Date: "1800"}, HistoricDateOf(7, Record{"date": int64(1800)}))
	assert.Equal(t, HistoricDate{ID: 8, Date: "1800"}, HistoricDateOf(8, Record{"date": float64(1800)}))
	assert.Equal(t, Place{ID: 4, Name: "Venezia", Locale: "it"},
		PlaceOf(4, Record{"name": "Venezia", "locale": "it"}))
	assert.Equal(t, Person{ID: 5, Name: "Ada"}, PersonOf(5, Record{"name": "Ada"}))
	assert.Equal(t, Group{ID: 6, Type: "marriage"}, GroupOf(6, Record{"type": "marriage"}))
}
