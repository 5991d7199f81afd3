// internal/domain/lineitem/entity.go
package lineitem

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Kind identifies which cache a line item belongs to
type Kind string

const (
	KindCart     Kind = "cart"
	KindWishlist Kind = "wishlist"
)

// SyncStatus tracks how far a line item has progressed against the remote store
type SyncStatus string

const (
	// StatusLocalOnly means the item exists only in the local cache
	StatusLocalOnly SyncStatus = "local_only"
	// StatusSynced means the item is backed by a remote record
	StatusSynced SyncStatus = "synced"
	// StatusReconciling means the remote record went missing and a match is being resolved
	StatusReconciling SyncStatus = "reconciling"
)

// Scope identifies whose cache an operation targets. An empty OwnerRef
// switches every operation into anonymous (local-only) mode.
type Scope struct {
	SessionID string
	OwnerRef  string
}

// IsAnonymous reports whether the scope has no authenticated owner
func (s Scope) IsAnonymous() bool {
	return s.OwnerRef == ""
}

// CacheID returns the storage partition for this scope
func (s Scope) CacheID() string {
	if s.OwnerRef != "" {
		return "user:" + s.OwnerRef
	}
	return "session:" + s.SessionID
}

// VariantKey identifies one purchasable SKU
type VariantKey struct {
	ProductRef string
	Size       string
	Color      string
}

// String renders the key for log fields and map lookups
func (k VariantKey) String() string {
	return fmt.Sprintf("%s/%s/%s", k.ProductRef, k.Size, k.Color)
}

// LineItem is a cached record of a chosen variant, quantity, and price
type LineItem struct {
	VariantRef   string          `json:"variant_ref"`
	ProductRef   string          `json:"product_ref"`
	ProductName  string          `json:"product_name"`
	ProductImage string          `json:"product_image"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Color        string          `json:"color"`
	Size         string          `json:"size"`
	Quantity     int             `json:"quantity"`
	MaxQuantity  int             `json:"max_quantity"` // 0 means unavailable
	OwnerRef     string          `json:"owner_ref,omitempty"`
	RemoteID     string          `json:"remote_id,omitempty"`
	SyncStatus   SyncStatus      `json:"sync_status"`
	AddedAt      time.Time       `json:"added_at"`
	ExpiresAt    *time.Time      `json:"expires_at,omitempty"`
}

// Key returns the variant key of the item
func (li LineItem) Key() VariantKey {
	return VariantKey{ProductRef: li.ProductRef, Size: li.Size, Color: li.Color}
}

// Cache is the persisted per-kind line item collection. Insertion order
// matters for aggregation tie-breaks.
type Cache struct {
	Items      []LineItem `json:"items"`
	TotalItems int        `json:"total_items"`
}

// NewCache returns an empty cache
func NewCache() *Cache {
	return &Cache{Items: []LineItem{}}
}

// Recount refreshes the item counter after a mutation
func (c *Cache) Recount() {
	c.TotalItems = len(c.Items)
}

// Find returns a pointer to the entry with the given variant ref, or nil
func (c *Cache) Find(variantRef string) *LineItem {
	for i := range c.Items {
		if c.Items[i].VariantRef == variantRef {
			return &c.Items[i]
		}
	}
	return nil
}

// FindByKey returns a pointer to the entry with the given variant key, or nil
func (c *Cache) FindByKey(key VariantKey) *LineItem {
	for i := range c.Items {
		if c.Items[i].Key() == key {
			return &c.Items[i]
		}
	}
	return nil
}

// Upsert replaces the entry sharing the item's variant key, or appends it
func (c *Cache) Upsert(item LineItem) {
	if existing := c.FindByKey(item.Key()); existing != nil {
		*existing = item
	} else {
		c.Items = append(c.Items, item)
	}
	c.Recount()
}

// RemoveByRef drops the entry with the given variant ref. It reports whether
// an entry was removed.
func (c *Cache) RemoveByRef(variantRef string) bool {
	for i := range c.Items {
		if c.Items[i].VariantRef == variantRef {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			c.Recount()
			return true
		}
	}
	return false
}

// Clone returns a deep copy usable as a rollback snapshot
func (c *Cache) Clone() *Cache {
	items := make([]LineItem, len(c.Items))
	copy(items, c.Items)
	return &Cache{Items: items, TotalItems: c.TotalItems}
}

// TotalQuantity sums the quantities of all entries
func (c *Cache) TotalQuantity() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

// RemoteRecord is a server-side row in the remote line item store. Duplicate
// rows for the same (owner, product, size, color) are legal; the record ID is
// independent of the local variant ref. OwnerRef is a pointer because the
// remote store has been observed to return rows with the field missing
// entirely, which the ownership filter must distinguish from an empty value.
type RemoteRecord struct {
	ID          string
	OwnerRef    *string
	ProductRef  string
	ProductName string
	ImageURL    string
	Price       decimal.Decimal // ambiguous: may be a total or a unit price
	Quantity    int
	MaxQuantity int
	Size        string
	Color       string
	CreatedAt   time.Time
}

// Key returns the variant key of the record
func (r RemoteRecord) Key() VariantKey {
	return VariantKey{ProductRef: r.ProductRef, Size: r.Size, Color: r.Color}
}

// RemoteRecordInput is the payload for creating a remote record
type RemoteRecordInput struct {
	OwnerRef   string
	ProductRef string
	Quantity   int
	Price      decimal.Decimal
	Size       string
	Color      string
	ImageURL   string
}

// RemotePatch is a partial update of a remote record. Nil fields are omitted.
type RemotePatch struct {
	Quantity *int
	Price    *decimal.Decimal
	Size     *string
	Color    *string
	ImageURL *string
}

// NewItem is the caller-supplied input for an add operation. Price arrives as
// a raw string and is only trusted after normalization.
type NewItem struct {
	VariantRef   string
	ProductRef   string
	ProductName  string
	ProductImage string
	Price        string
	Size         string
	Color        string
	Quantity     int
	MaxQuantity  int
}

// Key returns the variant key of the incoming item
func (n NewItem) Key() VariantKey {
	return VariantKey{ProductRef: n.ProductRef, Size: n.Size, Color: n.Color}
}

// ItemPatch is a partial update of a cached line item. Nil fields are left
// untouched. Price arrives raw, like NewItem.
type ItemPatch struct {
	Quantity *int
	Price    *string
	Size     *string
	Color    *string
}
