package middlewares

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/saladoop/shift-report-backend/pkg/metrics"
	"github.com/saladoop/shift-report-backend/pkg/ratelimit"
)

const RATE_LIMITED_MESSAGE = "Too many requests. Please try again later."

// RateLimit rejects a client once it exceeds the limiter's budget. The client is identified by
// gin's ClientIP, which honours X-Forwarded-For only for trusted proxies. Limiter errors let the
// request through.
func RateLimit(limiter ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if key == "" {
			key = "unknown"
		}

		allowed, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			slog.Error("rate limiter unavailable", slog.String("key", key), slog.String("error", err.Error()))
			c.Next()
			return
		}
		if !allowed {
			rlErr := &ratelimit.RateLimitedError{Key: key}
			slog.Warn("request rate limited", slog.String("key", key), slog.String("error", rlErr.Error()))
			metrics.RateLimitRejections.Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": RATE_LIMITED_MESSAGE})
			return
		}
		c.Next()
	}
}
