package criteria

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
)

var (
	// ErrInvalidColumn is returned when a column or sort field fails the identifier allow-list.
	ErrInvalidColumn = errors.New("invalid column")
	// ErrInvalidArgument is returned for caller contract violations (bad operator, negative limit, ...).
	ErrInvalidArgument = errors.New("invalid argument")
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// ValidIdentifier reports whether s may be used as a table, column or sort identifier.
func ValidIdentifier(s string) bool {
	return identifierPattern.MatchString(s)
}

// Operator is a comparison operator of a single filter condition.
type Operator string

const (
	OpEq   Operator = "="
	OpNe   Operator = "!="
	OpLt   Operator = "<"
	OpLe   Operator = "<="
	OpGt   Operator = ">"
	OpGe   Operator = ">="
	OpLike Operator = "LIKE"
	OpIn   Operator = "IN"
)

var operators = map[Operator]struct{}{
	OpEq: {}, OpNe: {}, OpLt: {}, OpLe: {}, OpGt: {}, OpGe: {}, OpLike: {}, OpIn: {},
}

// ParseOperator converts request or caller input into an Operator.
// The empty string maps to OpEq.
func ParseOperator(s string) (Operator, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return OpEq, nil
	}
	if s == "<>" {
		return OpNe, nil
	}
	op := Operator(s)
	if _, ok := operators[op]; !ok {
		return "", fmt.Errorf("%w: unsupported operator %q", ErrInvalidArgument, s)
	}
	return op, nil
}

// Item is a single filter condition. It is immutable once constructed.
type Item struct {
	column   string
	operator Operator
	value    any
	values   []any
}

// NewItem builds a filter condition. An empty operator means equality.
// Slice values are only accepted together with OpIn, and OpIn requires a non-empty slice.
func NewItem(column string, value any, op Operator) (*Item, error) {
	if !ValidIdentifier(column) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidColumn, column)
	}
	if op == "" {
		op = OpEq
	}
	if _, ok := operators[op]; !ok {
		return nil, fmt.Errorf("%w: unsupported operator %q", ErrInvalidArgument, op)
	}

	values, isList := listValues(value)
	switch {
	case op == OpIn && !isList:
		return nil, fmt.Errorf("%w: IN on %s requires a list value", ErrInvalidArgument, column)
	case op == OpIn && len(values) == 0:
		return nil, fmt.Errorf("%w: IN on %s requires at least one value", ErrInvalidArgument, column)
	case op != OpIn && isList:
		return nil, fmt.Errorf("%w: list value on %s requires IN", ErrInvalidArgument, column)
	}

	item := &Item{column: column, operator: op}
	if isList {
		item.values = values
	} else {
		item.value = value
	}
	return item, nil
}

// Eq is shorthand for an equality condition.
func Eq(column string, value any) (*Item, error) {
	return NewItem(column, value, OpEq)
}

// Column returns the filtered column.
func (i *Item) Column() string { return i.column }

// Operator returns the comparison operator.
func (i *Item) Operator() Operator { return i.operator }

// Value returns the scalar value, or a copy of the list for IN conditions.
func (i *Item) Value() any {
	if i.operator == OpIn {
		out := make([]any, len(i.values))
		copy(out, i.values)
		return out
	}
	return i.value
}

// render writes the condition with bound placeholders.
func (i *Item) render(quote func(string) string) (string, []any) {
	col := quote(i.column)
	if i.operator == OpIn {
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(i.values)), ", ")
		args := make([]any, len(i.values))
		copy(args, i.values)
		return fmt.Sprintf("%s IN (%s)", col, placeholders), args
	}
	return fmt.Sprintf("%s %s ?", col, i.operator), []any{i.value}
}

// listValues flattens slice and array values; []byte is treated as a scalar.
func listValues(value any) ([]any, bool) {
	if value == nil {
		return nil, false
	}
	v := reflect.ValueOf(value)
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return nil, false
	}
	if v.Type().Elem().Kind() == reflect.Uint8 {
		return nil, false
	}
	out := make([]any, v.Len())
	for idx := 0; idx < v.Len(); idx++ {
		out[idx] = v.Index(idx).Interface()
	}
	return out, true
}
