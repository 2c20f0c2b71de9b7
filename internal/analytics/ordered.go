package analytics

import (
	"bytes"
	"cmp"
	"encoding/json"
	"slices"
)

// OrderedMap is a map that remembers first-insertion order of its keys.
// The zero value is not usable; create one with NewOrderedMap.
type OrderedMap[K comparable, V any] struct {
	keys   []K
	values map[K]V
}

// Entry is one key/value pair of an OrderedMap.
type Entry[K comparable, V any] struct {
	Key   K
	Value V
}

// NewOrderedMap returns an empty OrderedMap.
func NewOrderedMap[K comparable, V any]() *OrderedMap[K, V] {
	return &OrderedMap[K, V]{values: make(map[K]V)}
}

// Set stores v under k. A new key is appended; an existing key keeps its position.
func (m *OrderedMap[K, V]) Set(k K, v V) {
	if _, ok := m.values[k]; !ok {
		m.keys = append(m.keys, k)
	}
	m.values[k] = v
}

// Get returns the value stored under k.
func (m *OrderedMap[K, V]) Get(k K) (V, bool) {
	v, ok := m.values[k]
	return v, ok
}

// Len returns the number of keys.
func (m *OrderedMap[K, V]) Len() int { return len(m.keys) }

// Keys returns the keys in insertion order.
func (m *OrderedMap[K, V]) Keys() []K { return slices.Clone(m.keys) }

// Values returns the values in key order.
func (m *OrderedMap[K, V]) Values() []V {
	out := make([]V, len(m.keys))
	for i, k := range m.keys {
		out[i] = m.values[k]
	}
	return out
}

// Entries returns the pairs in key order.
func (m *OrderedMap[K, V]) Entries() []Entry[K, V] {
	out := make([]Entry[K, V], len(m.keys))
	for i, k := range m.keys {
		out[i] = Entry[K, V]{Key: k, Value: m.values[k]}
	}
	return out
}

// SortedBy returns a copy whose keys are ordered by less. The sort is stable,
// so keys that compare equal keep their insertion order.
func (m *OrderedMap[K, V]) SortedBy(less func(a, b Entry[K, V]) int) *OrderedMap[K, V] {
	entries := m.Entries()
	slices.SortStableFunc(entries, less)
	out := NewOrderedMap[K, V]()
	for _, e := range entries {
		out.Set(e.Key, e.Value)
	}
	return out
}

// SortKeys returns a copy ordered by key ascending.
func SortKeys[K cmp.Ordered, V any](m *OrderedMap[K, V]) *OrderedMap[K, V] {
	return m.SortedBy(func(a, b Entry[K, V]) int { return cmp.Compare(a.Key, b.Key) })
}

// MarshalJSON encodes the map as a JSON object with keys in order.
func (m *OrderedMap[K, V]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		if len(kb) == 0 || kb[0] != '"' {
			kb, err = json.Marshal(string(kb))
			if err != nil {
				return nil, err
			}
		}
		vb, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
