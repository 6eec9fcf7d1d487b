// Package views derives sorted and filtered projections of record collections.
//
// A projection never mutates its source: Apply copies the records that pass the filter
// into a new slice and sorts that slice with a stable sort, so re-sorting on an unchanged
// key keeps the previous order of equal records.
package views

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Direction is the sort direction of a projection.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

var ErrUnknownField = errors.New("unknown field")

// Field extracts one comparable column of T.
type Field[T any] struct {
	Name    string
	Label   string
	Compare func(a, b T) int
}

// StringField builds a field ordered lexicographically. ISO dates sort correctly this way.
func StringField[T any](name, label string, get func(T) string) Field[T] {
	return Field[T]{Name: name, Label: label, Compare: func(a, b T) int { return strings.Compare(get(a), get(b)) }}
}

// NumberField builds a field ordered numerically.
func NumberField[T any, N cmp.Ordered](name, label string, get func(T) N) Field[T] {
	return Field[T]{Name: name, Label: label, Compare: func(a, b T) int { return cmp.Compare(get(a), get(b)) }}
}

// Schema is the set of sortable fields of an entity.
type Schema[T any] struct {
	fields []Field[T]
}

// NewSchema keeps fields in column order.
func NewSchema[T any](fields ...Field[T]) Schema[T] {
	return Schema[T]{fields: fields}
}

// Field looks a field up by name.
func (s Schema[T]) Field(name string) (Field[T], error) {
	for _, f := range s.fields {
		if f.Name == name {
			return f, nil
		}
	}
	return Field[T]{}, fmt.Errorf("%w: %q", ErrUnknownField, name)
}

// Fields returns the fields in column order.
func (s Schema[T]) Fields() []Field[T] {
	return slices.Clone(s.fields)
}

// Sort is the active sort key and direction.
type Sort struct {
	Key       string    `json:"field,omitempty"`
	Direction Direction `json:"direction,omitempty"`
}

// Toggle applies a header click: the same key flips direction, a new key starts ascending.
func (s Sort) Toggle(key string) Sort {
	if s.Key == key {
		if s.Direction == Asc {
			return Sort{Key: key, Direction: Desc}
		}
		return Sort{Key: key, Direction: Asc}
	}
	return Sort{Key: key, Direction: Asc}
}

// Predicate selects records for a projection.
type Predicate[T any] func(T) bool

// Equals keeps records whose extracted value equals want.
func Equals[T any, V comparable](get func(T) V, want V) Predicate[T] {
	return func(item T) bool { return get(item) == want }
}

// NotZero keeps records whose extracted value is not the zero value.
func NotZero[T any, V comparable](get func(T) V) Predicate[T] {
	var zero V
	return func(item T) bool { return get(item) != zero }
}

// Config describes one projection.
type Config[T any] struct {
	Sort   Sort
	Filter Predicate[T]
}

// Apply filters then stably sorts items into a new slice. An empty sort key keeps the
// filtered input order.
func Apply[T any](schema Schema[T], items []T, cfg Config[T]) ([]T, error) {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if cfg.Filter == nil || cfg.Filter(item) {
			out = append(out, item)
		}
	}
	if cfg.Sort.Key == "" {
		return out, nil
	}
	field, err := schema.Field(cfg.Sort.Key)
	if err != nil {
		return nil, err
	}
	compare := field.Compare
	if cfg.Sort.Direction == Desc {
		compare = func(a, b T) int { return field.Compare(b, a) }
	}
	slices.SortStableFunc(out, compare)
	return out, nil
}
