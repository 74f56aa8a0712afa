package middleware

import (
	"net/http"
	"strings"

	"dailyledger/services"

	"github.com/gin-gonic/gin"
)

// AccessTokenMiddleware requires a valid owner bearer token. With auth
// disabled in config every request passes.
func AccessTokenMiddleware(tokens *services.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !tokens.Enabled() {
			c.Next()
			return
		}

		header := c.Request.Header.Get("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is missing"})
			return
		}

		bearer := strings.SplitN(header, " ", 2)
		if len(bearer) != 2 || bearer[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token format"})
			return
		}

		claims, err := tokens.ParseAccessToken(bearer[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Token is expired or invalid: " + err.Error()})
			return
		}

		c.Set("claims", claims)
		c.Set("userId", claims.UserID)
		c.Next()
	}
}
