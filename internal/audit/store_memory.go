package audit

import (
	"context"
	"sync"
	"time"

	"custodia/internal/domain"
)

// InMemoryStore keeps the log in process memory. It is the authoritative
// implementation of the Store semantics and the default for tests and dev.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries []domain.Entry
	nextID  domain.EntryID
}

// NewInMemoryStore constructs an empty in-memory audit store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{nextID: 1}
}

func (s *InMemoryStore) Append(_ context.Context, entry domain.Entry) (domain.EntryID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry.ID = s.nextID
	s.nextID++
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	s.entries = append(s.entries, entry)
	return entry.ID, nil
}

func (s *InMemoryStore) Scan(_ context.Context) ([]domain.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Entry{}, s.entries...), nil
}

// Len reports the current number of entries. Intended for tests asserting
// the one-entry-per-invocation gate invariant.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
