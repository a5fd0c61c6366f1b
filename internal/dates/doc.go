// Package dates parses historical date strings, orders them across
// calendars, and picks the earliest or latest qualifying event of a subject.
//
// Dates are ordered through Julian Day Numbers so Gregorian and Julian dates
// compare correctly against each other. A partial date (year only, month and
// year) covers every day it could denote: it sorts by its first possible day
// when looking for the earliest event and by its last possible day when
// looking for the latest. Ranges behave the same way through their start and
// end.
package dates
