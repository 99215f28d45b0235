package maps

import (
	"iter"
	"slices"
)

// OrderedMap is a generic map that preserves insertion order when iterating while
// keeping O(1) average-case lookup. Re-adding an existing key replaces its value
// without moving it; new keys are appended to the end of the insertion order.
//
// The zero value is not usable, create instances with NewOrderedMap.
//
// Thread-safety: OrderedMap is not thread-safe. Concurrent access must be
// synchronized by the caller.
type OrderedMap[K comparable, V any] struct {
	orderedKeys []K     // Keys in insertion order
	data        map[K]V // Values indexed by key
}

// NewOrderedMap creates an empty OrderedMap.
//
// Example:
//
//	m := maps.NewOrderedMap[string, int]()
//	m.Add("first", 1)
//	m.Add("second", 2)
//	// Iteration will always be in order: first, second
func NewOrderedMap[K comparable, V any]() *OrderedMap[K, V] {
	return &OrderedMap[K, V]{
		data: make(map[K]V),
	}
}

// Add inserts or updates a key-value pair. Existing keys keep their position.
func (o *OrderedMap[K, V]) Add(key K, value V) {
	if _, ok := o.data[key]; !ok {
		o.orderedKeys = append(o.orderedKeys, key)
	}

	o.data[key] = value
}

// Get returns the value stored for key, with found=false if the key is absent.
func (o *OrderedMap[K, V]) Get(key K) (value V, found bool) {
	value, found = o.data[key]

	return value, found
}

// Contains reports whether key is present.
func (o *OrderedMap[K, V]) Contains(key K) bool {
	_, ok := o.data[key]

	return ok
}

// Size returns the number of entries.
func (o *OrderedMap[K, V]) Size() int {
	return len(o.data)
}

// Seq returns an iterator over (index, entry) tuples in insertion order.
// This method is compatible with Go 1.23+ range-over-func syntax:
//
//	for i, entry := range m.Seq() {
//	    // process index and entry.Key, entry.Value
//	}
func (o *OrderedMap[K, V]) Seq() iter.Seq2[int, KeyValuePair[K, V]] {
	return func(yield func(int, KeyValuePair[K, V]) bool) {
		for i, key := range o.orderedKeys {
			if !yield(i, KeyValuePair[K, V]{Key: key, Value: o.data[key]}) {
				return
			}
		}
	}
}

// Keys returns a copy of the keys in insertion order.
func (o *OrderedMap[K, V]) Keys() []K {
	return slices.Clone(o.orderedKeys)
}

// Values returns the values in insertion order.
func (o *OrderedMap[K, V]) Values() []V {
	values := make([]V, 0, len(o.orderedKeys))
	for _, entry := range o.Seq() {
		values = append(values, entry.Value)
	}

	return values
}

// FindFirst returns the first entry, in insertion order, for which predicate
// returns true.
func (o *OrderedMap[K, V]) FindFirst(predicate func(key K, value V) bool) (KeyValuePair[K, V], bool) {
	for _, entry := range o.Seq() {
		if predicate(entry.Key, entry.Value) {
			return entry, true
		}
	}

	return KeyValuePair[K, V]{}, false
}
