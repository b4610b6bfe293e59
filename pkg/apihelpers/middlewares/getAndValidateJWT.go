package middlewares

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	jwthandling "github.com/saladoop/shift-report-backend/pkg/jwt-handling"
)

const (
	HeaderAuthorization = "Authorization"

	ContextKeyToken          = "token"
	ContextKeyValidatedToken = "validatedToken"
)

func extractToken(c *gin.Context) (string, error) {
	header := c.GetHeader(HeaderAuthorization)
	if header == "" {
		return "", errors.New("No Authorization header found")
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if len(token) == 0 {
		return token, errors.New("No token found in Authorization header")
	}
	return token, nil
}

// GetAndValidateReporterJWT rejects requests without a valid reporter token and stores the claims
// under ContextKeyValidatedToken.
func GetAndValidateReporterJWT(tokenSignKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := extractToken(c)
		if err != nil {
			slog.Warn("no Authorization token found", slog.String("path", c.FullPath()))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		claims, ok, err := jwthandling.ValidateReporterToken(token, tokenSignKey)
		if err != nil || !ok {
			if err != nil {
				slog.Warn("token validation failed", slog.String("error", err.Error()))
			} else {
				slog.Warn("token validation failed")
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "error during token validation"})
			return
		}
		c.Set(ContextKeyToken, token)
		c.Set(ContextKeyValidatedToken, claims)
		c.Next()
	}
}

// ReporterClaimsFromCtx returns the claims set by GetAndValidateReporterJWT.
func ReporterClaimsFromCtx(c *gin.Context) (*jwthandling.ReporterClaims, bool) {
	v, ok := c.Get(ContextKeyValidatedToken)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*jwthandling.ReporterClaims)
	return claims, ok
}
