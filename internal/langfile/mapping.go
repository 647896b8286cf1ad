package langfile

import (
	"slices"
)

// Mapping is an insertion-ordered set of translation keys and values.
type Mapping struct {
	keys   []string
	values map[string]string
}

// NewMapping returns an empty mapping.
func NewMapping() *Mapping {
	return &Mapping{values: make(map[string]string)}
}

// Set stores value under key. Re-setting a key updates its value without
// moving it.
func (m *Mapping) Set(key, value string) {
	if m.values == nil {
		m.values = make(map[string]string)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// SetIfAbsent stores value only when key is not yet present and reports
// whether it did.
func (m *Mapping) SetIfAbsent(key, value string) bool {
	if m.Has(key) {
		return false
	}
	m.Set(key, value)
	return true
}

// Get returns the value for key.
func (m *Mapping) Get(key string) (string, bool) {
	if m == nil {
		return "", false
	}
	v, ok := m.values[key]
	return v, ok
}

// Has reports whether key is present.
func (m *Mapping) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Len returns the number of keys.
func (m *Mapping) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns the keys in insertion order.
func (m *Mapping) Keys() []string {
	if m == nil {
		return nil
	}
	return slices.Clone(m.keys)
}

// SortedKeys returns the keys in lexicographic order.
func (m *Mapping) SortedKeys() []string {
	keys := m.Keys()
	slices.Sort(keys)
	return keys
}

// Map returns a plain map copy.
func (m *Mapping) Map() map[string]string {
	out := make(map[string]string, m.Len())
	if m == nil {
		return out
	}
	for k, v := range m.values {
		out[k] = v
	}
	return out
}
