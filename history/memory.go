package history

import (
	"context"
	"sync"
)

// MemoryStore implements Store in process memory.
// Data is lost when process terminates.
type MemoryStore struct {
	mu      sync.RWMutex
	limit   int
	entries []string
	saves   int
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore(limit int, seed ...string) *MemoryStore {
	return &MemoryStore{
		limit:   limit,
		entries: append([]string{}, seed...),
	}
}

// Load returns a copy of the stored entries.
func (s *MemoryStore) Load(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]string{}, s.entries...), nil
}

// Save appends entries and trims to the limit.
func (s *MemoryStore) Save(ctx context.Context, entries []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = keepLast(append(s.entries, entries...), s.limit)
	s.saves++
	return nil
}

// Saves reports how many times Save has been called.
func (s *MemoryStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

// Clear drops every entry.
func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = nil
	return nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}

// Verify MemoryStore implements Store
var _ Store = (*MemoryStore)(nil)
