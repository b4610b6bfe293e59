package middlewares

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

const HeaderAPIKey = "Api-Key"

// HasValidAPIKey guards internal routes. An empty key list leaves the route open.
func HasValidAPIKey(validKeys []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(validKeys) == 0 {
			c.Next()
			return
		}

		keysInHeader := c.Request.Header.Values(HeaderAPIKey)
		for _, k := range keysInHeader {
			for _, vk := range validKeys {
				if subtle.ConstantTimeCompare([]byte(k), []byte(vk)) == 1 {
					c.Next()
					return
				}
			}
		}

		slog.Warn("a valid API key missing", slog.String("path", c.FullPath()), slog.Int("receivedKeys", len(keysInHeader)))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "A valid API key missing"})
	}
}
