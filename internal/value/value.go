// Package value implements type-checking and type-coercion for the
// scalar values that flow through INSERT, UPDATE, and WHERE evaluation.
package value

import (
	"fmt"
	"strconv"
	"strings"

	"ledgerlite/internal/types"
)

// TypeError reports that a value could not be validated or coerced
// against a column's declared data type.
type TypeError struct {
	Column   string
	DataType types.DataType
	Value    any
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("invalid type for column %q: expected %s, got %T(%v)", e.Column, e.DataType, e.Value, e.Value)
}

// Assignable reports whether value can be stored in a column of the
// given data type without conversion. NULL (nil) is always assignable;
// callers enforce the primary-key-NULL prohibition separately. INT
// values are assignable to FLOAT columns per spec §4.6.
func Assignable(v any, dt types.DataType) bool {
	if v == nil {
		return true
	}
	switch dt {
	case types.Int:
		_, ok := v.(int)
		return ok
	case types.Float:
		switch v.(type) {
		case int, float64:
			return true
		default:
			return false
		}
	case types.Text, types.Timestamp:
		_, ok := v.(string)
		return ok
	case types.Boolean:
		_, ok := v.(bool)
		return ok
	default:
		return false
	}
}

// Coerce converts v to the Go representation appropriate for dt,
// returning a *TypeError if the value cannot be converted.
func Coerce(v any, dt types.DataType) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch dt {
	case types.Int:
		switch n := v.(type) {
		case int:
			return n, nil
		case float64:
			return int(n), nil
		case string:
			i, err := strconv.Atoi(n)
			if err != nil {
				return nil, &TypeError{DataType: dt, Value: v}
			}
			return i, nil
		}
	case types.Float:
		switch n := v.(type) {
		case int:
			return float64(n), nil
		case float64:
			return n, nil
		case string:
			f, err := strconv.ParseFloat(n, 64)
			if err != nil {
				return nil, &TypeError{DataType: dt, Value: v}
			}
			return f, nil
		}
	case types.Text, types.Timestamp:
		switch s := v.(type) {
		case string:
			return s, nil
		default:
			return fmt.Sprintf("%v", s), nil
		}
	case types.Boolean:
		switch b := v.(type) {
		case bool:
			return b, nil
		case string:
			lower := strings.ToLower(b)
			return lower == "true" || lower == "1" || lower == "yes" || lower == "on", nil
		case int:
			return b != 0, nil
		}
	}
	return nil, &TypeError{DataType: dt, Value: v}
}

// BuildRow builds a row from positional values in a table's column
// order, coercing each value to its column's declared type. The
// caller must already have checked len(values) == len(table.Columns).
func BuildRow(values []any, table *types.Table) (types.Row, error) {
	row := make(types.Row, len(table.Columns))
	for i, col := range table.Columns {
		converted, err := Coerce(values[i], col.DataType)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", col.Name, err)
		}
		row[col.Name] = converted
	}
	return row, nil
}

// Compare orders two non-NULL values of the same underlying type,
// returning -1, 0, or 1. Callers must only invoke it after confirming
// both sides are non-NULL per spec §4.7.6. It does not panic on
// mismatched types: a right-hand value of another type is read as the
// zero value of the left-hand type, and any other left-hand type
// compares as 0.
func Compare(a, b any) int {
	switch av := a.(type) {
	case int:
		bv := toFloat(b)
		return compareFloat(float64(av), bv)
	case float64:
		return compareFloat(av, toFloat(b))
	case string:
		bv, _ := b.(string)
		return strings.Compare(av, bv)
	case bool:
		bv, _ := b.(bool)
		return compareBool(av, bv)
	default:
		return 0
	}
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case float64:
		return n
	default:
		return 0
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a && b:
		return -1
	default:
		return 1
	}
}

// Equal reports value equality with NULL semantics: NULL equals NULL,
// and is unequal to everything else.
func Equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch a.(type) {
	case int, float64:
		switch b.(type) {
		case int, float64:
			return toFloat(a) == toFloat(b)
		default:
			return false
		}
	default:
		return a == b
	}
}
