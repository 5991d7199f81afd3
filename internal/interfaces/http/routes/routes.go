// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/lineitem"
	"github.com/your-org/storefront-backend/internal/interfaces/http/handlers"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
)

// SetupRoutes sets up the cart and wishlist routes. Every route works with
// optional authentication: a valid bearer token scopes the operation to its
// owner, otherwise the guest session cookie is used.
func SetupRoutes(rg *gin.RouterGroup, engine *lineitem.Engine, cfg *config.Config) {
	setupLineItemRoutes(rg.Group("/cart"), handlers.NewCartHandler(engine), cfg)
	setupLineItemRoutes(rg.Group("/wishlist"), handlers.NewWishlistHandler(engine), cfg)
}

func setupLineItemRoutes(rg *gin.RouterGroup, handler *handlers.LineItemHandler, cfg *config.Config) {
	rg.Use(middleware.OptionalAuthMiddleware(cfg))
	{
		rg.GET("", handler.GetCache)
		rg.GET("/count", handler.GetCount)
		rg.POST("/items", handler.AddItem)
		rg.PUT("/items/:variantRef", handler.UpdateItem)
		rg.DELETE("/items/:variantRef", handler.RemoveItem)
		rg.DELETE("", handler.ClearCache)
		rg.POST("/sync", handler.Sync)
		rg.POST("/merge", handler.Merge)
	}
}
