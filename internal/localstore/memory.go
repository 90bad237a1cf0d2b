package localstore

import (
	"context"
	"sync"
)

type memoryStore struct {
	mu sync.RWMutex
	m  map[string][]byte
}

// NewMemory returns an in-memory store for tests and ephemeral runs.
func NewMemory() Store {
	return &memoryStore{m: make(map[string][]byte)}
}

func (s *memoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[key]
	if !ok {
		return nil, ErrNoKey
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (s *memoryStore) Put(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := make([]byte, len(value))
	copy(v, value)
	s.m[key] = v
	return nil
}

func (s *memoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
	return nil
}

func (s *memoryStore) Close() error { return nil }
