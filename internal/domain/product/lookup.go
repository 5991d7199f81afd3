// internal/domain/product/lookup.go
package product

import (
	"context"
	"errors"
	"fmt"

	"github.com/your-org/storefront-backend/internal/domain/lineitem"
	"gorm.io/gorm"
)

// Lookup resolves product display details by public ref. It implements
// lineitem.ProductLookup over the catalog read model.
type Lookup struct {
	db *gorm.DB
}

// NewLookup creates a product lookup over the given database
func NewLookup(db *gorm.DB) *Lookup {
	return &Lookup{db: db}
}

// GetByRef returns display details for one product, or nil when the product
// is unknown
func (l *Lookup) GetByRef(ctx context.Context, productRef string) (*lineitem.ProductInfo, error) {
	var prod Product
	err := l.db.WithContext(ctx).Where("ref = ? AND is_active = ?", productRef, true).First(&prod).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load product %s: %w", productRef, err)
	}
	return &lineitem.ProductInfo{
		Name:     prod.Name,
		ImageURL: prod.ImageURL,
	}, nil
}
