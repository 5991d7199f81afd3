// internal/infrastructure/cache/memory.go
package cache

import (
	"context"
	"sync"

	"github.com/your-org/storefront-backend/internal/domain/lineitem"
)

// MemoryStore is an in-memory blob store for tests and local development
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string]string
}

// NewMemoryStore creates an empty in-memory blob store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string]string)}
}

// Get retrieves a blob by key
func (s *MemoryStore) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.blobs[key]
	if !ok {
		return "", lineitem.ErrBlobNotFound
	}
	return value, nil
}

// Set stores a blob under key
func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = value
	return nil
}

// Remove deletes a blob
func (s *MemoryStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, key)
	return nil
}
