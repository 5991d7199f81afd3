// internal/domain/lineitem/store.go
package lineitem

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// ErrBlobNotFound is returned by BlobStore implementations when a key does
// not exist
var ErrBlobNotFound = errors.New("blob not found")

// BlobStore is the persistence abstraction behind the local cache: one
// JSON blob per key. It is injected once per engine so tests can swap in an
// in-memory fake.
type BlobStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// CacheStore persists one Cache blob per (scope, kind) pair. Reads degrade
// to an empty cache and writes are logged on failure rather than surfaced;
// the cache is a convenience copy, the remote store stays authoritative.
type CacheStore struct {
	blobs  BlobStore
	prefix string
	logger *logrus.Entry
}

// NewCacheStore creates a cache store over the given blob persistence
func NewCacheStore(blobs BlobStore, prefix string, logger *logrus.Logger) *CacheStore {
	return &CacheStore{
		blobs:  blobs,
		prefix: prefix,
		logger: logger.WithField("component", "cache_store"),
	}
}

func (s *CacheStore) storageKey(scope Scope, kind Kind) string {
	return fmt.Sprintf("%s:%s:%s", s.prefix, scope.CacheID(), kind)
}

// Load reads the cache for a scope and kind. A missing blob yields an empty
// cache; so does a failed read or a corrupt blob, logged at warn level.
func (s *CacheStore) Load(ctx context.Context, scope Scope, kind Kind) *Cache {
	key := s.storageKey(scope, kind)

	raw, err := s.blobs.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrBlobNotFound) {
			s.logger.WithError(&StorageError{Op: "get", Key: key, Err: err}).
				Warn("cache read failed, degrading to empty cache")
		}
		return NewCache()
	}

	var cache Cache
	if err := json.Unmarshal([]byte(raw), &cache); err != nil {
		s.logger.WithError(&StorageError{Op: "decode", Key: key, Err: err}).
			Warn("cache blob corrupt, degrading to empty cache")
		return NewCache()
	}
	if cache.Items == nil {
		cache.Items = []LineItem{}
	}
	return &cache
}

// Save persists the cache for a scope and kind. Write failures are logged
// only and never returned to callers.
func (s *CacheStore) Save(ctx context.Context, scope Scope, kind Kind, cache *Cache) {
	key := s.storageKey(scope, kind)

	raw, err := json.Marshal(cache)
	if err != nil {
		s.logger.WithError(&StorageError{Op: "encode", Key: key, Err: err}).
			Error("cache encode failed, state not persisted")
		return
	}

	if err := s.blobs.Set(ctx, key, string(raw)); err != nil {
		s.logger.WithError(&StorageError{Op: "set", Key: key, Err: err}).
			Error("cache write failed, state not persisted")
	}
}

// Clear removes the cache blob for a scope and kind
func (s *CacheStore) Clear(ctx context.Context, scope Scope, kind Kind) {
	key := s.storageKey(scope, kind)
	if err := s.blobs.Remove(ctx, key); err != nil {
		s.logger.WithError(&StorageError{Op: "remove", Key: key, Err: err}).
			Error("cache clear failed")
	}
}
