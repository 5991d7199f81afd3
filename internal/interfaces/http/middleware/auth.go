// internal/interfaces/http/middleware/auth.go
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/pkg/auth"
)

const sessionCookieName = "storefront_session"

// OptionalAuthMiddleware resolves the caller's owner ref when a valid bearer
// token is present and falls back to anonymous mode otherwise. Cart and
// wishlist operations work in both modes, so a missing or invalid token is
// never an error here.
func OptionalAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	jwtManager := auth.NewJWTManager(cfg)

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		tokenString := auth.ExtractTokenFromHeader(authHeader)
		if tokenString == "" {
			c.Next()
			return
		}

		claims, err := jwtManager.ValidateAccessToken(tokenString)
		if err != nil {
			c.Next()
			return
		}

		c.Set("owner_ref", claims.OwnerRef)
		c.Next()
	}
}

// GetOwnerRefFromContext extracts the authenticated owner ref, if any
func GetOwnerRefFromContext(c *gin.Context) (string, bool) {
	ownerRef, exists := c.Get("owner_ref")
	if !exists {
		return "", false
	}
	return ownerRef.(string), true
}

// GetOrCreateSessionID returns the guest session id, minting one on first
// contact
func GetOrCreateSessionID(c *gin.Context) string {
	if sessionID, err := c.Cookie(sessionCookieName); err == nil && sessionID != "" {
		return sessionID
	}

	sessionID := uuid.New().String()
	// Session cookie only; the cache blob carries its own TTL.
	c.SetCookie(sessionCookieName, sessionID, 0, "/", "", false, true)
	return sessionID
}
