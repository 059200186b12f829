// Package registry provides keyed stores for upstream MBTA entities.
// Trips hold entity IDs and dereference through these stores, so an entity
// fetched via several different queries is represented once.
package registry

import "sync"

// Store is an ID-keyed registry with last-write-wins semantics.
type Store[T any] struct {
	mu      sync.RWMutex
	entries map[string]T
}

// NewStore returns an empty Store.
func NewStore[T any]() *Store[T] {
	return &Store[T]{entries: make(map[string]T)}
}

// Put stores v under id, replacing any previous value.
func (s *Store[T]) Put(id string, v T) {
	if id == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = v
}

// Get returns the value stored under id.
func (s *Store[T]) Get(id string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.entries[id]
	return v, ok
}

// Len returns the number of stored entries.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
