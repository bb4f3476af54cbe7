package repository

import (
	"context"
	"path"
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

type memoryStateStore struct {
	mu    sync.RWMutex
	items map[string]memoryEntry
}

// NewMemoryStateStore returns an in-memory StateStore for single-instance
// deployments and tests.
func NewMemoryStateStore() StateStore {
	return &memoryStateStore{items: make(map[string]memoryEntry)}
}

func (s *memoryStateStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}
	s.items[key] = entry
	return nil
}

func (s *memoryStateStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	entry, ok := s.items[key]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.items, key)
		s.mu.Unlock()
		return nil, nil
	}
	return entry.value, nil
}

func (s *memoryStateStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
	return nil
}

func (s *memoryStateStore) DeleteByPattern(_ context.Context, pattern string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.items {
		if ok, _ := path.Match(pattern, key); ok {
			delete(s.items, key)
		}
	}
	return nil
}

func (s *memoryStateStore) Exists(ctx context.Context, key string) (bool, error) {
	val, err := s.Get(ctx, key)
	return val != nil, err
}
