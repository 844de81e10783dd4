// Package toggle implements keyed on/off sets such as favorites and
// social connections.
package toggle

import (
	"encoding/json"
	"sort"
	"sync"
)

// Set is a concurrency-safe set of string keys, each carrying a value of
// type V. A key is "on" while it is present.
type Set[V any] struct {
	mu    sync.RWMutex
	items map[string]V
}

// New returns an empty set.
func New[V any]() *Set[V] {
	return &Set[V]{items: make(map[string]V)}
}

// Toggle flips key and reports whether it is on afterwards. A key switched
// on carries the zero V.
func (s *Set[V]) Toggle(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[key]; ok {
		delete(s.items, key)
		return false
	}
	var zero V
	s.items[key] = zero
	return true
}

func (s *Set[V]) IsSet(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.items[key]
	return ok
}

// Put switches key on with meta, replacing any previous value.
func (s *Set[V]) Put(key string, meta V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = meta
}

func (s *Set[V]) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
}

func (s *Set[V]) Get(key string) (V, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.items[key]
	return v, ok
}

// Keys returns the keys that are on, sorted.
func (s *Set[V]) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.items))
	for k := range s.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s *Set[V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Map returns a copy of the underlying key/value map.
func (s *Set[V]) Map() map[string]V {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]V, len(s.items))
	for k, v := range s.items {
		out[k] = v
	}
	return out
}

// Replace discards the current contents and loads m.
func (s *Set[V]) Replace(m map[string]V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]V, len(m))
	for k, v := range m {
		s.items[k] = v
	}
}

// ReplaceKeys switches on exactly keys, each with the zero V.
func (s *Set[V]) ReplaceKeys(keys []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]V, len(keys))
	var zero V
	for _, k := range keys {
		s.items[k] = zero
	}
}

// MarshalJSON encodes the set as its key/value map.
func (s *Set[V]) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Map())
}
