// internal/interfaces/http/handlers/lineitems.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/your-org/storefront-backend/internal/domain/lineitem"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
)

// LineItemHandler serves one cache kind (cart or wishlist) over HTTP. Both
// kinds share the reconciliation engine; only the cache they target differs.
type LineItemHandler struct {
	engine *lineitem.Engine
	kind   lineitem.Kind
}

// NewCartHandler creates the cart handler
func NewCartHandler(engine *lineitem.Engine) *LineItemHandler {
	return &LineItemHandler{engine: engine, kind: lineitem.KindCart}
}

// NewWishlistHandler creates the wishlist handler
func NewWishlistHandler(engine *lineitem.Engine) *LineItemHandler {
	return &LineItemHandler{engine: engine, kind: lineitem.KindWishlist}
}

// AddItemRequest represents an add-to-cache request
type AddItemRequest struct {
	VariantRef   string      `json:"variant_ref"`
	ProductRef   string      `json:"product_ref" binding:"required"`
	ProductName  string      `json:"product_name"`
	ProductImage string      `json:"product_image"`
	Price        json.Number `json:"price"`
	Size         string      `json:"size"`
	Color        string      `json:"color"`
	Quantity     int         `json:"quantity" binding:"required,min=1"`
	MaxQuantity  int         `json:"max_quantity" binding:"omitempty,min=0"`
}

// UpdateItemRequest represents a partial item update request
type UpdateItemRequest struct {
	Quantity *int         `json:"quantity" binding:"omitempty,min=1"`
	Price    *json.Number `json:"price"`
	Size     *string      `json:"size"`
	Color    *string      `json:"color"`
}

// GetCache handles GET /{kind}
func (h *LineItemHandler) GetCache(c *gin.Context) {
	cache := h.engine.Get(c.Request.Context(), h.scope(c), h.kind)
	c.JSON(http.StatusOK, gin.H{
		"message": "Cache retrieved successfully",
		"data":    cache,
	})
}

// GetCount handles GET /{kind}/count
func (h *LineItemHandler) GetCount(c *gin.Context) {
	count := h.engine.TotalQuantity(c.Request.Context(), h.scope(c), h.kind)
	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{"total_quantity": count},
	})
}

// AddItem handles POST /{kind}/items
func (h *LineItemHandler) AddItem(c *gin.Context) {
	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	variantRef := req.VariantRef
	if variantRef == "" {
		variantRef = uuid.New().String()
	}

	cache, err := h.engine.AddOrIncrement(c.Request.Context(), h.scope(c), h.kind, lineitem.NewItem{
		VariantRef:   variantRef,
		ProductRef:   req.ProductRef,
		ProductName:  req.ProductName,
		ProductImage: req.ProductImage,
		Price:        req.Price.String(),
		Size:         req.Size,
		Color:        req.Color,
		Quantity:     req.Quantity,
		MaxQuantity:  req.MaxQuantity,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item added successfully",
		"data":    cache,
	})
}

// UpdateItem handles PUT /{kind}/items/:variantRef
func (h *LineItemHandler) UpdateItem(c *gin.Context) {
	var req UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	patch := lineitem.ItemPatch{
		Quantity: req.Quantity,
		Size:     req.Size,
		Color:    req.Color,
	}
	if req.Price != nil {
		price := req.Price.String()
		patch.Price = &price
	}

	cache, err := h.engine.UpdateItem(c.Request.Context(), h.scope(c), h.kind, c.Param("variantRef"), patch)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item updated successfully",
		"data":    cache,
	})
}

// RemoveItem handles DELETE /{kind}/items/:variantRef
func (h *LineItemHandler) RemoveItem(c *gin.Context) {
	cache, err := h.engine.Remove(c.Request.Context(), h.scope(c), h.kind, c.Param("variantRef"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item removed successfully",
		"data":    cache,
	})
}

// ClearCache handles DELETE /{kind}
func (h *LineItemHandler) ClearCache(c *gin.Context) {
	h.engine.Clear(c.Request.Context(), h.scope(c), h.kind)
	c.JSON(http.StatusOK, gin.H{
		"message": "Cache cleared successfully",
	})
}

// Sync handles POST /{kind}/sync
func (h *LineItemHandler) Sync(c *gin.Context) {
	result, err := h.engine.SyncFromRemote(c.Request.Context(), h.scope(c), h.kind)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cache synced successfully",
		"data":    result.Cache,
		"meta":    gin.H{"filtered": result.Filtered},
	})
}

// Merge handles POST /{kind}/merge
func (h *LineItemHandler) Merge(c *gin.Context) {
	scope := h.scope(c)
	if scope.IsAnonymous() {
		respondError(c, lineitem.ErrNotAuthenticated)
		return
	}

	session := lineitem.Scope{SessionID: scope.SessionID}
	result, err := h.engine.MergeLocalToOwner(c.Request.Context(), session, scope.OwnerRef, h.kind)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Session items merged successfully",
		"data":    result.Cache,
		"meta":    gin.H{"filtered": result.Filtered},
	})
}

func (h *LineItemHandler) scope(c *gin.Context) lineitem.Scope {
	ownerRef, _ := middleware.GetOwnerRefFromContext(c)
	return lineitem.Scope{
		SessionID: middleware.GetOrCreateSessionID(c),
		OwnerRef:  ownerRef,
	}
}

// respondError maps domain errors onto HTTP statuses
func respondError(c *gin.Context, err error) {
	switch {
	case lineitem.IsInvalidPrice(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, lineitem.ErrItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
	case errors.Is(err, lineitem.ErrNotAuthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
	case lineitem.IsUnscopedData(err):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Remote data could not be verified as yours and was withheld",
			"code":  "UNSCOPED_DATA",
		})
	default:
		var remoteErr *lineitem.RemoteError
		var decodeErr *lineitem.DecodeError
		if errors.As(err, &remoteErr) || errors.As(err, &decodeErr) {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
