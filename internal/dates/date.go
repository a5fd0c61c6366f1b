package dates

import "fmt"

// Qualifier says how precisely a Date pins down a moment.
type Qualifier int

// Date qualifiers.
const (
	Exact Qualifier = iota
	Approximate
	Before
	After
	Between
	Period
	Interpreted
)

var qualifierNames = [...]string{
	Exact:       "exact",
	Approximate: "approximate",
	Before:      "before",
	After:       "after",
	Between:     "between",
	Period:      "period",
	Interpreted: "interpreted",
}

func (q Qualifier) String() string {
	if q < 0 || int(q) >= len(qualifierNames) {
		return fmt.Sprintf("qualifier(%d)", int(q))
	}
	return qualifierNames[q]
}

// Day is one end of a Date. Month and Day are zero when the source omitted
// them.
type Day struct {
	Year  int
	Month int
	Day   int

	// first and last are the Julian Day Numbers of the earliest and latest
	// day this partial date can denote.
	first int
	last  int
}

// JDN returns the Julian Day Number of the first day the Day can denote.
func (d Day) JDN() int {
	return d.first
}

// Date is a parsed historic date. Single dates have End equal to Start.
type Date struct {
	Text      string
	Calendar  string
	Qualifier Qualifier
	Start     Day
	End       Day
}

// Approximate reports whether the date is an estimate (ABT, CAL, EST).
func (d Date) Approximate() bool {
	return d.Qualifier == Approximate
}

// Ranged reports whether the date spans an interval (BET/AND, FROM/TO).
func (d Date) Ranged() bool {
	return d.Qualifier == Between || d.Qualifier == Period
}

// Year returns the year of the start of the date.
func (d Date) Year() int {
	return d.Start.Year
}

// key returns the ordering key for the given direction.
func (d Date) key(dir Direction) int {
	if dir == Latest {
		return d.End.last
	}
	return d.Start.first
}

// Compare orders two dates by their first possible day, then by their last.
// It returns -1, 0 or +1.
func Compare(a, b Date) int {
	switch {
	case a.Start.first < b.Start.first:
		return -1
	case a.Start.first > b.Start.first:
		return 1
	case a.End.last < b.End.last:
		return -1
	case a.End.last > b.End.last:
		return 1
	default:
		return 0
	}
}
