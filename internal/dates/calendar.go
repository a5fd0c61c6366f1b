package dates

import (
	"errors"
	"strings"

	"github.com/mesh-intelligence/lineage/pkg/types"
)

// Date parsing errors.
var (
	ErrUnparseable     = errors.New("unparseable date")
	ErrUnknownCalendar = errors.New("unknown calendar")
)

// calendar converts calendar dates to Julian Day Numbers.
type calendar interface {
	isLeap(year int) bool
	jdn(year, month, day int) int
}

type gregorian struct{}

func (gregorian) isLeap(y int) bool {
	return y%4 == 0 && (y%100 != 0 || y%400 == 0)
}

func (gregorian) jdn(y, m, d int) int {
	a := (14 - m) / 12
	yy := y + 4800 - a
	mm := m + 12*a - 3
	return d + (153*mm+2)/5 + 365*yy + yy/4 - yy/100 + yy/400 - 32045
}

type julian struct{}

func (julian) isLeap(y int) bool {
	return y%4 == 0
}

func (julian) jdn(y, m, d int) int {
	a := (14 - m) / 12
	yy := y + 4800 - a
	mm := m + 12*a - 3
	return d + (153*mm+2)/5 + 365*yy + yy/4 - 32083
}

var calendars = map[string]calendar{
	types.CalendarGregorian: gregorian{},
	types.CalendarJulian:    julian{},
}

// lookupCalendar maps a calendar.type value to its converter. An empty type
// means Gregorian.
func lookupCalendar(name string) (string, calendar, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = types.CalendarGregorian
	}
	cal, ok := calendars[name]
	if !ok {
		return "", nil, ErrUnknownCalendar
	}
	return name, cal, nil
}

var monthDays = [13]int{0, 31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

func daysIn(cal calendar, year, month int) int {
	if month == 2 && cal.isLeap(year) {
		return 29
	}
	return monthDays[month]
}
