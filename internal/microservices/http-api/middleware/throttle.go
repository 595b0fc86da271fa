package middleware

import (
	"log/slog"
	"net/http"

	"reviewhub/internal/ratelimit"

	"github.com/gin-gonic/gin"
)

// Throttle limits requests per client IP. If the limiter itself fails the
// request is let through and the failure logged.
func Throttle(limiter ratelimit.Limiter, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			log.WarnContext(c.Request.Context(), "rate limiter unavailable",
				slog.String("client_ip", c.ClientIP()),
				slog.Any("error", err))
			c.Next()
			return
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Request was throttled. Try again later."})
			return
		}
		c.Next()
	}
}
