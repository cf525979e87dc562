package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gopher-classifieds/internal/ratelimit"
	"gopher-classifieds/internal/transport/http/response"
)

// Throttle smooths bursts per client IP. A nil throttle lets everything through.
func Throttle(t *ratelimit.Throttle) gin.HandlerFunc {
	return func(c *gin.Context) {
		if t != nil && !t.Allow(c.ClientIP()) {
			response.Error(c, http.StatusTooManyRequests, response.CodeTooFrequent, "too many requests")
			c.Abort()
			return
		}
		c.Next()
	}
}
