package middlewares

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Gopher0727/Concord/utils/ratelimit"
)

// RateLimitMiddleware limits each caller to requestsPerMinute. Authenticated
// requests are keyed by profile, everything else by client IP.
func RateLimitMiddleware(limiter ratelimit.Limiter, requestsPerMinute int) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetString("profile_id")
		if key == "" {
			key = c.ClientIP()
		}

		allowed, err := limiter.Allow(c.Request.Context(), key, requestsPerMinute, time.Minute)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "rate limit unavailable"})
			c.Abort()
			return
		}
		if !allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			c.Abort()
			return
		}
		c.Next()
	}
}
