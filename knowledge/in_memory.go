package knowledge

import (
	"context"
	"fmt"
	"sync"
)

// InMemoryStore is a volatile KnowledgeBase implementation keeping entries in
// a process local map. It is safe for concurrent access and best suited for
// tests or single-process assistants.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[string]any
}

// NewInMemoryStore constructs an empty in-memory knowledge base.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{entries: make(map[string]any)}
}

// Store persists value under key, overwriting any previous value.
func (s *InMemoryStore) Store(_ context.Context, key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = value
	return nil
}

// Retrieve returns the value stored under key or ErrNotFound.
func (s *InMemoryStore) Retrieve(_ context.Context, key string) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.entries[key]
	if !ok {
		return nil, fmt.Errorf("key %q: %w", key, ErrNotFound)
	}
	return v, nil
}

// Keys lists all keys currently present.
func (s *InMemoryStore) Keys(context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	return keys, nil
}

// Delete removes key if present.
func (s *InMemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}
