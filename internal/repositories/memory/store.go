package memory

import (
	"context"
	"sync"

	"github.com/chrisdamba/fleetops/internal/repositories"
)

// Store is an in-process SnapshotStore; contents are lost on exit.
type Store struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewStore() *Store {
	return &Store{data: make(map[string][]byte)}
}

func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[key]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (s *Store) PutMany(_ context.Context, snapshots map[string][]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k, v := range snapshots {
		buf := make([]byte, len(v))
		copy(buf, v)
		s.data[k] = buf
	}
	return nil
}

func (s *Store) Close() error { return nil }
