package value

import "fmt"

// Map is an ordered, string-keyed collection of Values. Insertion order is
// preserved; lookup is linear since property maps are typically small
// (a few dozen entries at most).
type Map struct {
	keys   []string
	values []Value
}

// NewMap returns an empty map with room for capacity entries.
func NewMap(capacity int) *Map {
	return &Map{
		keys:   make([]string, 0, capacity),
		values: make([]Value, 0, capacity),
	}
}

// MapOf builds a Map from key-value pairs given in order. Panics on a
// duplicate key, mirroring the checked Insert below.
func MapOf(pairs ...Pair) *Map {
	m := NewMap(len(pairs))
	for _, p := range pairs {
		if err := m.Insert(p.Key, p.Value); err != nil {
			panic(err)
		}
	}
	return m
}

// Pair is a single key-value entry, used by MapOf.
type Pair struct {
	Key   string
	Value Value
}

func (m *Map) indexOf(key string) int {
	for i, k := range m.keys {
		if k == key {
			return i
		}
	}
	return -1
}

// Get returns the value for key and whether it was found.
func (m *Map) Get(key string) (Value, bool) {
	if i := m.indexOf(key); i >= 0 {
		return m.values[i], true
	}
	return Value{}, false
}

// Len returns the number of entries.
func (m *Map) Len() int { return len(m.keys) }

// Keys returns the keys in insertion order. Callers must not mutate the
// returned slice.
func (m *Map) Keys() []string { return m.keys }

// Range calls fn for each entry in insertion order, stopping early if fn
// returns false.
func (m *Map) Range(fn func(key string, v Value) bool) {
	for i, k := range m.keys {
		if !fn(k, m.values[i]) {
			return
		}
	}
}

// Insert adds key/value, failing if key is already present.
func (m *Map) Insert(key string, v Value) error {
	if m.indexOf(key) >= 0 {
		return fmt.Errorf("value: key %q already exists in map", key)
	}
	return m.insertUnchecked(key, v)
}

// InsertUnsafe adds key/value without checking for a duplicate key. Use
// only when the caller can prove the key is unique, e.g. column names
// from a schema that are already known distinct.
func (m *Map) InsertUnsafe(key string, v Value) {
	if err := m.insertUnchecked(key, v); err != nil {
		panic(err)
	}
}

func (m *Map) insertUnchecked(key string, v Value) error {
	if v.Kind() == KindNode || v.Kind() == KindRelationship ||
		v.Kind() == KindUnboundRelationship || v.Kind() == KindPath {
		return fmt.Errorf("value: property maps cannot contain graph-typed values (key %q)", key)
	}
	m.keys = append(m.keys, key)
	m.values = append(m.values, v)
	return nil
}

// Equal reports deep structural equality. Property maps are compared
// without regard to insertion order, since two maps with the same
// key-value pairs in different orders represent the same properties.
func (m *Map) Equal(other *Map) bool {
	if m == other {
		return true
	}
	if m == nil || other == nil {
		return false
	}
	if m.Len() != other.Len() {
		return false
	}
	for i, k := range m.keys {
		ov, ok := other.Get(k)
		if !ok || !m.values[i].Equal(ov) {
			return false
		}
	}
	return true
}
