package graph

import (
	"fmt"
	"strings"
)

// CanonicalKey derives a comparable, collision-resistant string key from a
// TaskID. This exists because a TaskID may be a Tuple, which is backed by a
// slice: Go panics at runtime the moment a slice-dynamic-typed value is used as
// a native map key (hashing an uncomparable type), so every TaskID-keyed
// collection in this module goes through CanonicalKey rather than indexing a
// map[TaskID]V directly.
func CanonicalKey(id TaskID) string {
	switch v := id.(type) {
	case Tuple:
		return joinElems("tuple", []any(v))
	case []any:
		return joinElems("seq", v)
	default:
		return fmt.Sprintf("%T|%v", v, v)
	}
}

func joinElems(tag string, elems []any) string {
	parts := make([]string, len(elems))
	for i, e := range elems {
		parts[i] = CanonicalKey(e)
	}
	return tag + "(" + strings.Join(parts, ",") + ")"
}

type idEntry[V any] struct {
	id    TaskID
	value V
}

// IDMap is an insertion-ordered association from TaskID to V, keyed internally
// by CanonicalKey. Use it anywhere a map[TaskID]V would otherwise be needed.
type IDMap[V any] struct {
	order   []string
	entries map[string]idEntry[V]
}

// NewIDMap returns an empty IDMap.
func NewIDMap[V any]() *IDMap[V] {
	return &IDMap[V]{entries: make(map[string]idEntry[V])}
}

// Set records v under id, preserving id's original insertion position on
// overwrite.
func (m *IDMap[V]) Set(id TaskID, v V) {
	k := CanonicalKey(id)
	if _, exists := m.entries[k]; !exists {
		m.order = append(m.order, k)
	}
	m.entries[k] = idEntry[V]{id: id, value: v}
}

// Get returns the value recorded under id, and whether it was present.
func (m *IDMap[V]) Get(id TaskID) (V, bool) {
	e, ok := m.entries[CanonicalKey(id)]
	return e.value, ok
}

// Has reports whether id has a recorded value.
func (m *IDMap[V]) Has(id TaskID) bool {
	_, ok := m.entries[CanonicalKey(id)]
	return ok
}

// Len returns the number of entries.
func (m *IDMap[V]) Len() int { return len(m.order) }

// Keys returns the recorded task identifiers in insertion order.
func (m *IDMap[V]) Keys() []TaskID {
	out := make([]TaskID, len(m.order))
	for i, k := range m.order {
		out[i] = m.entries[k].id
	}
	return out
}

// Range calls f for every entry in insertion order, stopping early if f
// returns false.
func (m *IDMap[V]) Range(f func(id TaskID, v V) bool) {
	for _, k := range m.order {
		e := m.entries[k]
		if !f(e.id, e.value) {
			return
		}
	}
}
