package merge

import (
	"fmt"
	"slices"
	"strings"
)

// Condition is a row filter: the cell in Column compared to Value with Operator.
type Condition struct {
	Column   string
	Operator Operator
	Value    string
}

// Evaluate reports whether a row satisfies the condition.
// It returns ErrColumnNotFound when the column is not part of the header and
// ErrUnsupportedOperator for an unknown operator.
func Evaluate(row []Value, headers []string, cond Condition) (bool, error) {
	idx := slices.Index(headers, cond.Column)
	if idx < 0 {
		return false, fmt.Errorf("%w: %q", ErrColumnNotFound, cond.Column)
	}
	return compareCell(cell(row, idx), cond.Operator, cond.Value)
}

func compareCell(v Value, op Operator, raw string) (bool, error) {
	want := ParseValue(raw)

	switch op {
	case OpEquals:
		return v.Equal(want), nil
	case OpNotEquals:
		return !v.Equal(want), nil
	case OpContains:
		return strings.Contains(v.String(), raw), nil
	case OpNotContains:
		return !strings.Contains(v.String(), raw), nil
	case OpGreaterThan:
		c, ok := Compare(v, want)
		return ok && c > 0, nil
	case OpLessThan:
		c, ok := Compare(v, want)
		return ok && c < 0, nil
	default:
		return false, fmt.Errorf("%w: %q", ErrUnsupportedOperator, op)
	}
}

// cell returns the value at idx, reading cells past the end of a short row as empty.
func cell(row []Value, idx int) Value {
	if idx < 0 || idx >= len(row) {
		return Empty()
	}
	return row[idx]
}
