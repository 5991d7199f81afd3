// internal/domain/product/entity.go
package product

import (
	"time"

	"gorm.io/gorm"
)

// Product is the catalog read model consumed by the reconciliation engine.
// The catalog itself is maintained elsewhere; this table is a lookup surface
// for backfilling display fields on synced line items.
type Product struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Ref       string         `gorm:"uniqueIndex;not null;size:100" json:"ref"`
	Name      string         `gorm:"not null;size:255" json:"name"`
	ImageURL  string         `gorm:"size:500" json:"image_url"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (Product) TableName() string {
	return "products"
}
