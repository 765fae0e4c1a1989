package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nulzo/provider-relay/pkg/api"
)

// Auth checks for a valid Bearer token in the Authorization header against
// the statically configured admin keys. An empty key list disables auth,
// which is the expected mode when the daemon only listens on loopback.
func Auth(staticKeys []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(staticKeys) == 0 {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.ErrorResponse{Message: "Missing Authorization header"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.ErrorResponse{Message: "Invalid Authorization header format"})
			return
		}

		token := parts[1]
		for _, k := range staticKeys {
			if subtle.ConstantTimeCompare([]byte(token), []byte(k)) == 1 {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusUnauthorized, api.ErrorResponse{Message: "Invalid API Key"})
	}
}
