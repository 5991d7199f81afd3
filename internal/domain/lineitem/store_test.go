// internal/domain/lineitem/store_test.go
package lineitem

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryBlobs is an in-memory BlobStore with injectable failures
type memoryBlobs struct {
	mu      sync.Mutex
	data    map[string]string
	getErr  error
	setErr  error
	setHits int
}

func newMemoryBlobs() *memoryBlobs {
	return &memoryBlobs{data: map[string]string{}}
}

func (m *memoryBlobs) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", m.getErr
	}
	value, ok := m.data[key]
	if !ok {
		return "", ErrBlobNotFound
	}
	return value, nil
}

func (m *memoryBlobs) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setHits++
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	return nil
}

func (m *memoryBlobs) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestCacheStoreRoundTrip(t *testing.T) {
	t.Parallel()

	blobs := newMemoryBlobs()
	store := NewCacheStore(blobs, "storefront", quietLogger())
	scope := Scope{SessionID: "s1"}

	cache := NewCache()
	cache.Upsert(LineItem{
		VariantRef: "v1",
		ProductRef: "shirt",
		UnitPrice:  decimal.RequireFromString("12.50"),
		Quantity:   2,
	})
	store.Save(context.Background(), scope, KindCart, cache)

	loaded := store.Load(context.Background(), scope, KindCart)
	require.Len(t, loaded.Items, 1)
	assert.Equal(t, "v1", loaded.Items[0].VariantRef)
	assert.Equal(t, 2, loaded.Items[0].Quantity)
	assert.True(t, loaded.Items[0].UnitPrice.Equal(decimal.RequireFromString("12.50")))
	assert.Equal(t, 1, loaded.TotalItems)
}

func TestCacheStoreScopesAndKindsAreIsolated(t *testing.T) {
	t.Parallel()

	blobs := newMemoryBlobs()
	store := NewCacheStore(blobs, "storefront", quietLogger())

	cart := NewCache()
	cart.Upsert(LineItem{VariantRef: "v1", ProductRef: "shirt", Quantity: 1})
	store.Save(context.Background(), Scope{SessionID: "s1"}, KindCart, cart)

	// same session, other kind
	wishlist := store.Load(context.Background(), Scope{SessionID: "s1"}, KindWishlist)
	assert.Empty(t, wishlist.Items)

	// same kind, other scope
	other := store.Load(context.Background(), Scope{OwnerRef: "alice"}, KindCart)
	assert.Empty(t, other.Items)
}

func TestCacheStoreLoadDegradesToEmpty(t *testing.T) {
	t.Parallel()

	t.Run("missing blob", func(t *testing.T) {
		store := NewCacheStore(newMemoryBlobs(), "storefront", quietLogger())
		cache := store.Load(context.Background(), Scope{SessionID: "s1"}, KindCart)
		require.NotNil(t, cache)
		assert.Empty(t, cache.Items)
	})

	t.Run("read failure", func(t *testing.T) {
		blobs := newMemoryBlobs()
		blobs.getErr = errors.New("connection refused")
		store := NewCacheStore(blobs, "storefront", quietLogger())
		cache := store.Load(context.Background(), Scope{SessionID: "s1"}, KindCart)
		require.NotNil(t, cache)
		assert.Empty(t, cache.Items)
	})

	t.Run("corrupt blob", func(t *testing.T) {
		blobs := newMemoryBlobs()
		blobs.data["storefront:session:s1:cart"] = "{not json"
		store := NewCacheStore(blobs, "storefront", quietLogger())
		cache := store.Load(context.Background(), Scope{SessionID: "s1"}, KindCart)
		require.NotNil(t, cache)
		assert.Empty(t, cache.Items)
	})
}

func TestCacheStoreSaveFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	blobs := newMemoryBlobs()
	blobs.setErr = errors.New("connection refused")
	store := NewCacheStore(blobs, "storefront", quietLogger())

	// Save has no error return; the failure must not panic and must have
	// actually reached the blob store
	store.Save(context.Background(), Scope{SessionID: "s1"}, KindCart, NewCache())
	assert.Equal(t, 1, blobs.setHits)
}

func TestCacheStoreClear(t *testing.T) {
	t.Parallel()

	blobs := newMemoryBlobs()
	store := NewCacheStore(blobs, "storefront", quietLogger())
	scope := Scope{OwnerRef: "alice"}

	cache := NewCache()
	cache.Upsert(LineItem{VariantRef: "v1", ProductRef: "shirt", Quantity: 1})
	store.Save(context.Background(), scope, KindCart, cache)

	store.Clear(context.Background(), scope, KindCart)
	loaded := store.Load(context.Background(), scope, KindCart)
	assert.Empty(t, loaded.Items)
}
