package types

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ID identifies a row within a table. Valid IDs are positive; NoID marks an
// unset reference (an unknown partner, a person without a union).
type ID int64

// NoID is the zero ID, meaning "unset".
const NoID ID = 0

// Valid reports whether the ID can reference a row.
func (id ID) Valid() bool {
	return id > 0
}

// String formats the ID in base 10.
func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// Record maps field names to values. Values are untyped at the store level;
// integers may arrive as any Go integer kind, as float64 (JSON decoding), as
// json.Number or as a decimal string, and the accessors normalise them.
type Record map[string]any

// Has reports whether the field is present and not nil.
func (r Record) Has(field string) bool {
	v, ok := r[field]
	return ok && v != nil
}

// Int returns the field as an int64. It reports false when the field is
// missing or does not hold an integral value.
func (r Record) Int(field string) (int64, bool) {
	v, ok := r[field]
	if !ok || v == nil {
		return 0, false
	}
	return toInt64(v)
}

// ID returns the field as a reference ID. Only positive values count.
func (r Record) ID(field string) (ID, bool) {
	n, ok := r.Int(field)
	if !ok || n <= 0 {
		return NoID, false
	}
	return ID(n), true
}

// String returns the field as a string. Numbers are not converted.
func (r Record) String(field string) (string, bool) {
	v, ok := r[field]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Matches reports whether every filter entry equals the corresponding
// record field. Integral values compare numerically, so a filter holding
// ID(3) matches a field decoded from JSON as float64(3).
func (r Record) Matches(filter map[string]any) bool {
	for field, want := range filter {
		got, ok := r[field]
		if !ok || got == nil {
			if want == nil {
				continue
			}
			return false
		}
		if !valuesEqual(got, want) {
			return false
		}
	}
	return true
}

func valuesEqual(a, b any) bool {
	if ai, ok := toInt64(a); ok {
		if bi, ok := toInt64(b); ok {
			return ai == bi
		}
	}
	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		return as == bs
	}
	return a == b
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case ID:
		return int64(n), true
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case float32:
		return floatToInt64(float64(n))
	case float64:
		return floatToInt64(n)
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		return i, err == nil
	default:
		return 0, false
	}
}

func floatToInt64(f float64) (int64, bool) {
	if f != math.Trunc(f) || f > math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}
