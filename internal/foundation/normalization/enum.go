// Package normalization maps loosely written configuration strings onto
// typed enum values.
package normalization

import (
	"fmt"
	"slices"
	"strings"
)

// Enum resolves case- and whitespace-insensitive names, including aliases,
// to values of T.
type Enum[T comparable] struct {
	name     string
	values   map[string]T
	fallback T
	keys     []string
}

// NewEnum builds an Enum named name (used in errors). Unknown input
// normalizes to fallback.
func NewEnum[T comparable](name string, values map[string]T, fallback T) *Enum[T] {
	e := &Enum[T]{name: name, values: make(map[string]T, len(values)), fallback: fallback}
	for k, v := range values {
		key := clean(k)
		e.values[key] = v
		e.keys = append(e.keys, key)
	}
	slices.Sort(e.keys)
	return e
}

// Normalize returns the value for raw, or the fallback.
func (e *Enum[T]) Normalize(raw string) T {
	if v, ok := e.values[clean(raw)]; ok {
		return v
	}
	return e.fallback
}

// Parse returns the value for raw or an error listing the accepted names.
func (e *Enum[T]) Parse(raw string) (T, error) {
	if v, ok := e.values[clean(raw)]; ok {
		return v, nil
	}
	var zero T
	return zero, fmt.Errorf("invalid %s %q, valid options: %s", e.name, raw, strings.Join(e.keys, ", "))
}

// Names returns the accepted names, aliases included, sorted.
func (e *Enum[T]) Names() []string {
	return slices.Clone(e.keys)
}

func clean(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
