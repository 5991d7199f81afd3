// internal/domain/lineitem/engine.go
package lineitem

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// RemoteStore is the typed surface of the remote per-owner line item store.
// List and find calls are always owner-scoped; there is no global listing.
type RemoteStore interface {
	ListForOwner(ctx context.Context, ownerRef string) ([]RemoteRecord, error)
	FindMatches(ctx context.Context, ownerRef, productRef, size, color string) ([]RemoteRecord, error)
	Create(ctx context.Context, input RemoteRecordInput) (*RemoteRecord, error)
	Update(ctx context.Context, id string, patch RemotePatch) (*RemoteRecord, error)
	Delete(ctx context.Context, id string) error
}

// ProductInfo is the slice of the product read model the engine needs
type ProductInfo struct {
	Name     string
	ImageURL string
}

// ProductLookup backfills product details missing from remote records
type ProductLookup interface {
	GetByRef(ctx context.Context, productRef string) (*ProductInfo, error)
}

// SyncResult reports the outcome of a full remote sync
type SyncResult struct {
	Cache    *Cache
	Filtered int // records dropped by the ownership filter
}

// Engine reconciles the local line item caches with the remote store. Cache
// reads and writes are synchronous; remote calls are the only blocking
// points. There is deliberately no per-variant-key mutual exclusion: two
// concurrent adds for the same variant can race between their find and their
// write and leave a duplicate remote record behind. Duplicates are legal on
// the server and every read path aggregates them away, so the race is
// tolerated instead of locked out.
type Engine struct {
	cache      *CacheStore
	remote     RemoteStore
	products   ProductLookup
	normalizer *Normalizer
	logger     *logrus.Entry
}

// NewEngine creates a reconciliation engine
func NewEngine(cache *CacheStore, remote RemoteStore, products ProductLookup, normalizer *Normalizer, logger *logrus.Logger) *Engine {
	return &Engine{
		cache:      cache,
		remote:     remote,
		products:   products,
		normalizer: normalizer,
		logger:     logger.WithField("component", "reconciliation"),
	}
}

// Get returns the current cache for a scope and kind
func (e *Engine) Get(ctx context.Context, scope Scope, kind Kind) *Cache {
	return e.cache.Load(ctx, scope, kind)
}

// TotalQuantity returns the summed quantity across the cached entries
func (e *Engine) TotalQuantity(ctx context.Context, scope Scope, kind Kind) int {
	return e.cache.Load(ctx, scope, kind).TotalQuantity()
}

// AddOrIncrement adds a variant to the cache, merging with any existing
// entry for the same variant. Anonymous scopes mutate only the local cache.
// Authenticated scopes reconcile against the remote store first: existing
// duplicate records are collapsed into the first match and the rest are
// deleted best-effort. The price is validated before any mutation.
func (e *Engine) AddOrIncrement(ctx context.Context, scope Scope, kind Kind, incoming NewItem) (*Cache, error) {
	var unitPrice decimal.Decimal
	pricePresent := incoming.Price != ""
	if pricePresent {
		var err error
		unitPrice, err = e.normalizer.Normalize(incoming.Price)
		if err != nil {
			return nil, err
		}
	}

	if scope.IsAnonymous() {
		return e.addLocal(ctx, scope, kind, incoming, unitPrice, pricePresent)
	}
	return e.addRemote(ctx, scope, kind, incoming, unitPrice, pricePresent)
}

func (e *Engine) addLocal(ctx context.Context, scope Scope, kind Kind, incoming NewItem, unitPrice decimal.Decimal, pricePresent bool) (*Cache, error) {
	cache := e.cache.Load(ctx, scope, kind)

	if existing := cache.Find(incoming.VariantRef); existing != nil {
		newQuantity := existing.Quantity + incoming.Quantity
		if existing.MaxQuantity > 0 && newQuantity > existing.MaxQuantity {
			newQuantity = existing.MaxQuantity
		}
		existing.Quantity = newQuantity
		if pricePresent {
			existing.UnitPrice = unitPrice
		}
		cache.Recount()
		e.cache.Save(ctx, scope, kind, cache)
		return cache, nil
	}

	if !pricePresent {
		return nil, &InvalidPriceError{Raw: "", Reason: "price required for a new item"}
	}

	cache.Upsert(LineItem{
		VariantRef:   incoming.VariantRef,
		ProductRef:   incoming.ProductRef,
		ProductName:  incoming.ProductName,
		ProductImage: incoming.ProductImage,
		UnitPrice:    unitPrice,
		Color:        incoming.Color,
		Size:         incoming.Size,
		Quantity:     incoming.Quantity,
		MaxQuantity:  incoming.MaxQuantity,
		SyncStatus:   StatusLocalOnly,
		AddedAt:      time.Now().UTC(),
	})
	e.cache.Save(ctx, scope, kind, cache)
	return cache, nil
}

func (e *Engine) addRemote(ctx context.Context, scope Scope, kind Kind, incoming NewItem, unitPrice decimal.Decimal, pricePresent bool) (*Cache, error) {
	log := e.logger.WithFields(logrus.Fields{
		"owner":   scope.OwnerRef,
		"kind":    kind,
		"variant": incoming.Key().String(),
	})

	matches, err := e.remote.FindMatches(ctx, scope.OwnerRef, incoming.ProductRef, incoming.Size, incoming.Color)
	if err != nil {
		return nil, err
	}

	var record *RemoteRecord
	if len(matches) == 0 {
		if !pricePresent {
			return nil, &InvalidPriceError{Raw: "", Reason: "price required for a new item"}
		}
		record, err = e.remote.Create(ctx, RemoteRecordInput{
			OwnerRef:   scope.OwnerRef,
			ProductRef: incoming.ProductRef,
			Quantity:   incoming.Quantity,
			Price:      unitPrice,
			Size:       incoming.Size,
			Color:      incoming.Color,
			ImageURL:   incoming.ProductImage,
		})
		if err != nil {
			return nil, err
		}
	} else {
		// The remote store can hold duplicate rows for one variant. Fold
		// them into the first match and clean up the rest.
		primary := matches[0]
		newQuantity := incoming.Quantity
		for _, m := range matches {
			newQuantity += m.Quantity
		}

		patch := RemotePatch{Quantity: &newQuantity}
		if pricePresent {
			patch.Price = &unitPrice
		}
		record, err = e.remote.Update(ctx, primary.ID, patch)
		if err != nil {
			return nil, err
		}

		for _, dup := range matches[1:] {
			if delErr := e.remote.Delete(ctx, dup.ID); delErr != nil {
				log.WithError(delErr).WithField("record_id", dup.ID).
					Warn("duplicate cleanup failed, leaving stale record")
			}
		}
	}

	cache := e.cache.Load(ctx, scope, kind)
	cache.Upsert(e.itemFromRecord(ctx, *record, &incoming, scope.OwnerRef))
	e.cache.Save(ctx, scope, kind, cache)
	return cache, nil
}

// UpdateItem applies a partial update to a cached entry, optimistically
// first, then against the remote store. A 404-class remote failure triggers
// the reconcile fallback: re-match by variant key, set the requested fields
// verbatim on the first match (never summed), delete leftover duplicates,
// or create a fresh record when nothing matches. Any other remote failure
// rolls the cache back to its pre-update state and propagates.
func (e *Engine) UpdateItem(ctx context.Context, scope Scope, kind Kind, variantRef string, patch ItemPatch) (*Cache, error) {
	var unitPrice decimal.Decimal
	if patch.Price != nil {
		var err error
		unitPrice, err = e.normalizer.Normalize(*patch.Price)
		if err != nil {
			return nil, err
		}
	}

	cache := e.cache.Load(ctx, scope, kind)
	entry := cache.Find(variantRef)
	if entry == nil {
		return nil, ErrItemNotFound
	}
	snapshot := cache.Clone()

	// Optimistic local apply.
	if patch.Quantity != nil {
		entry.Quantity = *patch.Quantity
	}
	if patch.Price != nil {
		entry.UnitPrice = unitPrice
	}
	if patch.Size != nil {
		entry.Size = *patch.Size
	}
	if patch.Color != nil {
		entry.Color = *patch.Color
	}
	e.cache.Save(ctx, scope, kind, cache)

	if scope.IsAnonymous() {
		return cache, nil
	}

	remotePatch := RemotePatch{
		Quantity: patch.Quantity,
		Size:     patch.Size,
		Color:    patch.Color,
	}
	if patch.Price != nil {
		remotePatch.Price = &unitPrice
	}

	rollback := func(err error) (*Cache, error) {
		e.cache.Save(ctx, scope, kind, snapshot)
		return nil, err
	}

	if entry.RemoteID != "" {
		record, err := e.remote.Update(ctx, entry.RemoteID, remotePatch)
		if err == nil {
			e.reconcileEntry(entry, record, remotePatch)
			e.cache.Save(ctx, scope, kind, cache)
			return cache, nil
		}
		if !IsRemoteNotFound(err) {
			return rollback(err)
		}
		// Record deleted out-of-band; fall through to re-matching.
		entry.SyncStatus = StatusReconciling
	}

	matches, err := e.remote.FindMatches(ctx, scope.OwnerRef, entry.ProductRef, entry.Size, entry.Color)
	if err != nil {
		return rollback(err)
	}

	var record *RemoteRecord
	if len(matches) > 0 {
		primary := matches[0]
		record, err = e.remote.Update(ctx, primary.ID, remotePatch)
		if err != nil {
			return rollback(err)
		}
		for _, dup := range matches[1:] {
			if delErr := e.remote.Delete(ctx, dup.ID); delErr != nil {
				e.logger.WithError(delErr).WithField("record_id", dup.ID).
					Warn("duplicate cleanup failed, leaving stale record")
			}
		}
	} else {
		record, err = e.remote.Create(ctx, RemoteRecordInput{
			OwnerRef:   scope.OwnerRef,
			ProductRef: entry.ProductRef,
			Quantity:   entry.Quantity,
			Price:      entry.UnitPrice,
			Size:       entry.Size,
			Color:      entry.Color,
			ImageURL:   entry.ProductImage,
		})
		if err != nil {
			return rollback(err)
		}
	}

	e.reconcileEntry(entry, record, remotePatch)
	e.cache.Save(ctx, scope, kind, cache)
	return cache, nil
}

// Remove drops an entry from the local cache unconditionally. No remote
// deletion is issued; a record left behind resurfaces on the next sync and
// duplicate folding absorbs it.
func (e *Engine) Remove(ctx context.Context, scope Scope, kind Kind, variantRef string) (*Cache, error) {
	cache := e.cache.Load(ctx, scope, kind)
	if cache.RemoveByRef(variantRef) {
		e.cache.Save(ctx, scope, kind, cache)
	}
	return cache, nil
}

// Clear wipes the cache blob for a scope and kind
func (e *Engine) Clear(ctx context.Context, scope Scope, kind Kind) {
	e.cache.Clear(ctx, scope, kind)
}

// SyncFromRemote replaces the local cache wholesale with the owner's remote
// records: list, enforce owner scoping, map to line items (backfilling
// product names from the read model), aggregate duplicates, persist.
func (e *Engine) SyncFromRemote(ctx context.Context, scope Scope, kind Kind) (*SyncResult, error) {
	if scope.IsAnonymous() {
		return nil, ErrNotAuthenticated
	}
	log := e.logger.WithFields(logrus.Fields{"owner": scope.OwnerRef, "kind": kind})

	records, err := e.remote.ListForOwner(ctx, scope.OwnerRef)
	if err != nil {
		return nil, err
	}

	kept, dropped, err := FilterOwned(records, scope.OwnerRef)
	if err != nil {
		// Fail closed: withhold everything, leave the local cache alone.
		log.WithError(err).Warn("remote response not owner-scoped, withholding data")
		return &SyncResult{Cache: NewCache(), Filtered: len(records)}, err
	}
	if dropped > 0 {
		log.WithField("dropped", dropped).Warn("filtered foreign records from remote response")
	}

	items := make([]LineItem, 0, len(kept))
	for _, rec := range kept {
		items = append(items, e.itemFromRecord(ctx, rec, nil, scope.OwnerRef))
	}
	items = Aggregate(items)

	cache := &Cache{Items: items}
	cache.Recount()
	e.cache.Save(ctx, scope, kind, cache)
	return &SyncResult{Cache: cache, Filtered: dropped}, nil
}

// MergeLocalToOwner replays a session's local-only items into the owner's
// remote store after sign-in, then rebuilds the owner cache from remote.
// Individual replay failures are logged and skipped; the final sync decides
// the end state.
func (e *Engine) MergeLocalToOwner(ctx context.Context, session Scope, ownerRef string, kind Kind) (*SyncResult, error) {
	local := e.cache.Load(ctx, session, kind)
	authScope := Scope{SessionID: session.SessionID, OwnerRef: ownerRef}

	for _, item := range local.Items {
		incoming := NewItem{
			VariantRef:   item.VariantRef,
			ProductRef:   item.ProductRef,
			ProductName:  item.ProductName,
			ProductImage: item.ProductImage,
			Price:        item.UnitPrice.StringFixed(2),
			Size:         item.Size,
			Color:        item.Color,
			Quantity:     item.Quantity,
			MaxQuantity:  item.MaxQuantity,
		}
		if _, err := e.AddOrIncrement(ctx, authScope, kind, incoming); err != nil {
			e.logger.WithError(err).WithFields(logrus.Fields{
				"owner":   ownerRef,
				"kind":    kind,
				"variant": item.Key().String(),
			}).Warn("merge of local item failed, skipping")
		}
	}

	e.cache.Clear(ctx, session, kind)
	return e.SyncFromRemote(ctx, authScope, kind)
}

// itemFromRecord maps a remote record into a cached line item. The server
// price runs through the total-vs-unit heuristic; missing display fields
// fall back to the incoming item, then to the product read model.
func (e *Engine) itemFromRecord(ctx context.Context, rec RemoteRecord, fallback *NewItem, ownerRef string) LineItem {
	item := LineItem{
		VariantRef:   rec.ID,
		ProductRef:   rec.ProductRef,
		ProductName:  rec.ProductName,
		ProductImage: rec.ImageURL,
		UnitPrice:    e.normalizer.ServerPriceToUnit(rec.Price, rec.Quantity),
		Color:        rec.Color,
		Size:         rec.Size,
		Quantity:     rec.Quantity,
		MaxQuantity:  rec.MaxQuantity,
		OwnerRef:     ownerRef,
		RemoteID:     rec.ID,
		SyncStatus:   StatusSynced,
		AddedAt:      rec.CreatedAt,
	}
	if rec.OwnerRef != nil {
		item.OwnerRef = *rec.OwnerRef
	}
	if item.AddedAt.IsZero() {
		item.AddedAt = time.Now().UTC()
	}

	if fallback != nil {
		if fallback.VariantRef != "" {
			item.VariantRef = fallback.VariantRef
		}
		if item.ProductName == "" {
			item.ProductName = fallback.ProductName
		}
		if item.ProductImage == "" {
			item.ProductImage = fallback.ProductImage
		}
		if item.MaxQuantity == 0 {
			item.MaxQuantity = fallback.MaxQuantity
		}
		if item.Quantity <= 0 {
			item.Quantity = fallback.Quantity
		}
	}

	if item.ProductName == "" && e.products != nil {
		info, err := e.products.GetByRef(ctx, item.ProductRef)
		if err != nil {
			e.logger.WithError(err).WithField("product", item.ProductRef).
				Warn("product name backfill failed")
		} else if info != nil {
			item.ProductName = info.Name
			if item.ProductImage == "" {
				item.ProductImage = info.ImageURL
			}
		}
	}

	if item.Quantity <= 0 {
		item.Quantity = 1
	}
	return item
}

// reconcileEntry folds a remote write response back into the cached entry.
// The server wins on identity fields; quantity and price echo the requested
// values when the response omits them.
func (e *Engine) reconcileEntry(entry *LineItem, rec *RemoteRecord, requested RemotePatch) {
	if rec.ProductRef != "" {
		entry.ProductRef = rec.ProductRef
	}
	if rec.Size != "" {
		entry.Size = rec.Size
	}
	if rec.Color != "" {
		entry.Color = rec.Color
	}
	if rec.OwnerRef != nil && *rec.OwnerRef != "" {
		entry.OwnerRef = *rec.OwnerRef
	}

	switch {
	case rec.Quantity > 0:
		entry.Quantity = rec.Quantity
	case requested.Quantity != nil:
		entry.Quantity = *requested.Quantity
	}

	switch {
	case rec.Price.IsPositive():
		entry.UnitPrice = e.normalizer.ServerPriceToUnit(rec.Price, entry.Quantity)
	case requested.Price != nil:
		entry.UnitPrice = *requested.Price
	}

	if rec.MaxQuantity > 0 {
		entry.MaxQuantity = rec.MaxQuantity
	}
	entry.RemoteID = rec.ID
	entry.SyncStatus = StatusSynced
}
