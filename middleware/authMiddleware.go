package middleware

import (
	"net/http"
	"strings"

	"storepos/utils"

	"github.com/gin-gonic/gin"
)

// Context keys set by AuthMiddleware.
const (
	CashierIDKey   = "cashierID"
	AccessTokenKey = "accessToken"
)

// AuthMiddleware accepts the storefront's access token from the "token"
// cookie or an "Authorization: Bearer" header. The raw token is kept so it
// can be forwarded upstream.
func AuthMiddleware(signingKey []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie("token")
		if err != nil || token == "" {
			authHeader := c.GetHeader("Authorization")
			if authHeader == "" {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization token not provided"})
				c.Abort()
				return
			}
			parts := strings.Fields(authHeader)
			if len(parts) != 2 || parts[0] != "Bearer" {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid Authorization header format"})
				c.Abort()
				return
			}
			token = parts[1]
		}

		claims, err := utils.ValidateToken(token, signingKey)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization token"})
			c.Abort()
			return
		}

		c.Set(CashierIDKey, string(claims.UserID))
		c.Set(AccessTokenKey, token)

		c.Next()
	}
}

// CashierID returns the id set by AuthMiddleware.
func CashierID(c *gin.Context) string {
	return c.GetString(CashierIDKey)
}

// AccessToken returns the raw token set by AuthMiddleware.
func AccessToken(c *gin.Context) string {
	return c.GetString(AccessTokenKey)
}
