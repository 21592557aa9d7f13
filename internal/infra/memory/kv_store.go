package memory

import (
	"context"
	"sync"
)

// KVStore is an in-memory implementation of local device storage.
type KVStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

func NewKVStore() *KVStore {
	return &KVStore{
		values: make(map[string][]byte),
	}
}

// Get returns a copy of the stored value, or nil when the key is unset.
func (s *KVStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

func (s *KVStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = append([]byte(nil), value...)
	return nil
}

func (s *KVStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}
