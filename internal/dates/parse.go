package dates

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var monthNames = [...]string{
	"JANUARY", "FEBRUARY", "MARCH", "APRIL", "MAY", "JUNE",
	"JULY", "AUGUST", "SEPTEMBER", "OCTOBER", "NOVEMBER", "DECEMBER",
}

var approximateWords = map[string]bool{
	"ABT": true, "ABOUT": true, "CAL": true, "EST": true,
	"CIRCA": true, "C.": true, "CA": true, "CA.": true,
}

// Parse reads a date string in the given calendar. An empty calendar means
// Gregorian. Accepted forms:
//
//	27 FEB 1976, FEB 1976, 1976, 1976-02-27
//	ABT 1800, CAL 1800, EST 1800
//	BEF 1800, AFT 1800
//	BET 1800 AND 1810, FROM 1800 TO 1810, FROM 1800, TO 1810
//	INT 1800 (free text)
//
// Keywords and month names are case-insensitive.
func Parse(text, calendarType string) (Date, error) {
	calName, cal, err := lookupCalendar(calendarType)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", err, calendarType)
	}

	d := Date{Text: text, Calendar: calName}
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return Date{}, fmt.Errorf("%w: empty", ErrUnparseable)
	}

	head, rest := tokens[0], tokens[1:]
	switch {
	case approximateWords[head]:
		d.Qualifier = Approximate
	case head == "BEF" || head == "BEFORE":
		d.Qualifier = Before
	case head == "AFT" || head == "AFTER":
		d.Qualifier = After
	case head == "INT":
		d.Qualifier = Interpreted
	case head == "BET" || head == "BETWEEN":
		d.Qualifier = Between
		return parseRange(d, cal, rest, "AND", true)
	case head == "FROM":
		d.Qualifier = Period
		return parseRange(d, cal, rest, "TO", false)
	case head == "TO":
		d.Qualifier = Period
	default:
		rest = tokens
	}

	day, err := parseDay(cal, rest)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", err, text)
	}
	d.Start, d.End = day, day
	return d, nil
}

// parseRange reads "<start> SEP <end>". When the separator is optional and
// absent the range is open-ended and collapses to its start.
func parseRange(d Date, cal calendar, tokens []string, sep string, sepRequired bool) (Date, error) {
	i := indexOf(tokens, sep)
	if i < 0 {
		if sepRequired {
			return Date{}, fmt.Errorf("%w: missing %s in %q", ErrUnparseable, sep, d.Text)
		}
		start, err := parseDay(cal, tokens)
		if err != nil {
			return Date{}, fmt.Errorf("%w: %q", err, d.Text)
		}
		d.Start, d.End = start, start
		return d, nil
	}

	start, err := parseDay(cal, tokens[:i])
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", err, d.Text)
	}
	end, err := parseDay(cal, tokens[i+1:])
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", err, d.Text)
	}
	if start.first > end.last {
		return Date{}, fmt.Errorf("%w: range ends before it starts: %q", ErrUnparseable, d.Text)
	}
	d.Start, d.End = start, end
	return d, nil
}

// parseDay reads "[day] [month] year" or an ISO "YYYY-MM-DD" date.
func parseDay(cal calendar, tokens []string) (Day, error) {
	switch len(tokens) {
	case 1:
		if y, m, dd, ok := parseISO(tokens[0]); ok {
			return newDay(cal, y, m, dd)
		}
		y, err := parseYear(tokens[0])
		if err != nil {
			return Day{}, err
		}
		return newDay(cal, y, 0, 0)
	case 2:
		m, ok := parseMonth(tokens[0])
		if !ok {
			return Day{}, ErrUnparseable
		}
		y, err := parseYear(tokens[1])
		if err != nil {
			return Day{}, err
		}
		return newDay(cal, y, m, 0)
	case 3:
		dd, err := strconv.Atoi(tokens[0])
		if err != nil || dd < 1 {
			return Day{}, ErrUnparseable
		}
		m, ok := parseMonth(tokens[1])
		if !ok {
			return Day{}, ErrUnparseable
		}
		y, err := parseYear(tokens[2])
		if err != nil {
			return Day{}, err
		}
		return newDay(cal, y, m, dd)
	default:
		return Day{}, ErrUnparseable
	}
}

func newDay(cal calendar, year, month, day int) (Day, error) {
	d := Day{Year: year, Month: month, Day: day}
	switch {
	case month == 0:
		d.first = cal.jdn(year, 1, 1)
		d.last = cal.jdn(year, 12, 31)
	case month < 1 || month > 12:
		return Day{}, ErrUnparseable
	case day == 0:
		d.first = cal.jdn(year, month, 1)
		d.last = cal.jdn(year, month, daysIn(cal, year, month))
	case day < 1 || day > daysIn(cal, year, month):
		return Day{}, ErrUnparseable
	default:
		d.first = cal.jdn(year, month, day)
		d.last = d.first
	}
	return d, nil
}

// parseYear accepts 1..9999 and GEDCOM dual years such as "1700/01", of
// which the first part counts.
func parseYear(tok string) (int, error) {
	if i := strings.IndexByte(tok, '/'); i > 0 {
		tok = tok[:i]
	}
	y, err := strconv.Atoi(tok)
	if err != nil || y < 1 || y > 9999 {
		return 0, ErrUnparseable
	}
	return y, nil
}

// parseMonth accepts any prefix of an English month name that is at least
// three letters long, with an optional trailing dot.
func parseMonth(tok string) (int, bool) {
	tok = strings.TrimSuffix(tok, ".")
	if len(tok) < 3 {
		return 0, false
	}
	for i, name := range monthNames {
		if strings.HasPrefix(name, tok) {
			return i + 1, true
		}
	}
	return 0, false
}

func parseISO(tok string) (int, int, int, bool) {
	parts := strings.Split(tok, "-")
	if len(parts) != 3 || len(parts[0]) != 4 {
		return 0, 0, 0, false
	}
	y, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	d, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil || m < 1 || d < 1 {
		return 0, 0, 0, false
	}
	return y, m, d, true
}

// tokenize upper-cases the text, drops any parenthesised phrase and splits
// on whitespace and commas.
func tokenize(text string) []string {
	if i := strings.IndexByte(text, '('); i >= 0 {
		text = text[:i]
	}
	upper := cases.Upper(language.Und).String(text)
	return strings.FieldsFunc(upper, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
}

func indexOf(tokens []string, want string) int {
	for i, t := range tokens {
		if t == want {
			return i
		}
	}
	return -1
}
