package store

import (
	"context"
	"maps"
	"sync"
	"time"
)

type memoryEntry struct {
	fields    map[string]string
	expiresAt time.Time // zero means no expiry
}

// InMemoryStore is a process-local Store. Expired entries are treated as
// absent and dropped on access.
type InMemoryStore struct {
	mu      sync.Mutex
	records map[string]*memoryEntry
	now     func() time.Time
}

// MemoryOption configures an InMemoryStore.
type MemoryOption func(*InMemoryStore)

// WithClock replaces the wall clock used for expiry.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *InMemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewInMemory constructs an empty in-memory store.
func NewInMemory(opts ...MemoryOption) *InMemoryStore {
	s := &InMemoryStore{
		records: make(map[string]*memoryEntry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *InMemoryStore) Exists(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live(id) != nil, nil
}

func (s *InMemoryStore) WriteFields(_ context.Context, id string, fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.live(id)
	if entry == nil {
		entry = &memoryEntry{fields: make(map[string]string, len(fields))}
		s.records[id] = entry
	}
	maps.Copy(entry.fields, fields)
	return nil
}

func (s *InMemoryStore) SetExpiry(_ context.Context, id string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.live(id)
	if entry == nil {
		return nil
	}
	if ttl <= 0 {
		delete(s.records, id)
		return nil
	}
	entry.expiresAt = s.now().Add(ttl)
	return nil
}

func (s *InMemoryStore) ReadAll(_ context.Context, id string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.live(id)
	if entry == nil {
		return map[string]string{}, nil
	}
	return maps.Clone(entry.fields), nil
}

// live returns the entry for id, evicting it first if it has expired.
// Callers hold mu.
func (s *InMemoryStore) live(id string) *memoryEntry {
	entry, ok := s.records[id]
	if !ok {
		return nil
	}
	if !entry.expiresAt.IsZero() && !s.now().Before(entry.expiresAt) {
		delete(s.records, id)
		return nil
	}
	return entry
}
