package merge

import (
	"cmp"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Kind identifies the type carried by a Value.
type Kind uint8

const (
	KindEmpty Kind = iota
	KindString
	KindNumber
	KindBool
	KindDate
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindDate:
		return "date"
	default:
		return "empty"
	}
}

// Value is a single dataset cell.
// The zero value is an empty cell.
type Value struct {
	t    time.Time
	s    string
	src  string
	n    float64
	kind Kind
	b    bool
}

// Text returns a string cell.
func Text(s string) Value { return Value{kind: KindString, s: s} }

// Number returns a numeric cell.
func Number(n float64) Value { return Value{kind: KindNumber, n: n} }

// Bool returns a boolean cell.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Date returns a date cell.
func Date(t time.Time) Value { return Value{kind: KindDate, t: t} }

// Empty returns an empty cell.
func Empty() Value { return Value{} }

// Kind reports the kind of the value.
func (v Value) Kind() Kind { return v.kind }

// IsEmpty reports whether the cell is empty.
func (v Value) IsEmpty() bool { return v.kind == KindEmpty }

// String returns the text the cell was parsed from. Values built directly
// print in canonical form: numbers without trailing zeros, dates at midnight
// as 2006-01-02 and other dates as RFC 3339. Empty cells print as "".
func (v Value) String() string {
	if v.src != "" {
		return v.src
	}
	switch v.kind {
	case KindString:
		return v.s
	case KindNumber:
		return strconv.FormatFloat(v.n, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindDate:
		if isMidnight(v.t) {
			return v.t.Format(time.DateOnly)
		}
		return v.t.Format(time.RFC3339)
	default:
		return ""
	}
}

// Float returns the numeric value of a number cell or of a string cell that
// holds a plain decimal number.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.n, true
	case KindString:
		s := strings.TrimSpace(v.s)
		if !numberPattern.MatchString(s) {
			return 0, false
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// Time returns the instant of a date cell.
func (v Value) Time() (time.Time, bool) {
	if v.kind != KindDate {
		return time.Time{}, false
	}
	return v.t, true
}

// Equal reports strict equality: both values must have the same kind and
// carry the same value.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.s == o.s
	case KindNumber:
		return v.n == o.n
	case KindBool:
		return v.b == o.b
	case KindDate:
		return v.t.Equal(o.t)
	default:
		return true
	}
}

// Compare orders two values. Both sides are compared numerically when they
// coerce to numbers, chronologically when both are dates and by canonical
// text otherwise. ok is false when either side is empty.
func Compare(a, b Value) (c int, ok bool) {
	if a.IsEmpty() || b.IsEmpty() {
		return 0, false
	}
	if x, okx := a.Float(); okx {
		if y, oky := b.Float(); oky {
			return cmp.Compare(x, y), true
		}
	}
	if x, okx := a.Time(); okx {
		if y, oky := b.Time(); oky {
			return x.Compare(y), true
		}
	}
	return strings.Compare(a.String(), b.String()), true
}

var numberPattern = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

var dateLayouts = []string{
	time.RFC3339,
	time.DateTime,
	"2006-01-02T15:04:05",
	time.DateOnly,
}

// ParseValue infers a cell from raw text: blank text is empty, plain decimal
// numbers are numbers, true/false (any case) are booleans, ISO 8601 dates are
// dates and everything else is kept as the original string.
//
// Typed cells keep raw as their text, so "007" compares as 7 but still prints
// as "007".
func ParseValue(raw string) Value {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Empty()
	}
	v, ok := parseTyped(s)
	if !ok {
		return Text(raw)
	}
	v.src = raw
	return v
}

func parseTyped(s string) (Value, bool) {
	if numberPattern.MatchString(s) {
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			return Number(n), true
		}
	}
	if strings.EqualFold(s, "true") {
		return Bool(true), true
	}
	if strings.EqualFold(s, "false") {
		return Bool(false), true
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Date(t), true
		}
	}
	return Value{}, false
}

func isMidnight(t time.Time) bool {
	h, m, s := t.Clock()
	return h == 0 && m == 0 && s == 0 && t.Nanosecond() == 0
}
