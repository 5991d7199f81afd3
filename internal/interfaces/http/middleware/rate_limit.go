// internal/interfaces/http/middleware/rate_limit.go
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/your-org/storefront-backend/internal/config"
)

const rateLimitWindow = time.Minute

// RateLimit enforces a fixed-window per-client request budget in Redis. The
// window is baked into the key, so counters expire on their own and the
// increment needs no read-then-write round trip. Redis being unreachable
// never blocks traffic.
func RateLimit(cfg *config.Config, redisClient *redis.Client) gin.HandlerFunc {
	limit := int64(cfg.Security.RateLimitPerMinute)
	windowSecs := int64(rateLimitWindow / time.Second)

	return func(c *gin.Context) {
		window := time.Now().Unix() / windowSecs
		key := fmt.Sprintf("ratelimit:%s:%d", c.ClientIP(), window)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		count, err := redisClient.Incr(ctx, key).Result()
		if err != nil {
			c.Next()
			return
		}
		if count == 1 {
			redisClient.Expire(ctx, key, rateLimitWindow)
		}

		remaining := limit - count
		if remaining < 0 {
			remaining = 0
		}
		resetAt := (window + 1) * windowSecs
		c.Header("X-RateLimit-Limit", strconv.FormatInt(limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetAt, 10))

		if count > limit {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"retry_after": resetAt - time.Now().Unix(),
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
