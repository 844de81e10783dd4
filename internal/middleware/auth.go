package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pageza/flavr/backend/internal/types"
)

// Context keys set by AuthMiddleware.
const (
	ContextUserID  = "user_id"
	ContextAccount = "account"
	ContextClaims  = "claims"
)

// TokenValidator is an interface for validating JWT tokens
type TokenValidator interface {
	ValidateToken(token string) (*types.TokenClaims, error)
}

// AuthMiddleware creates a middleware that validates JWT tokens
func AuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			c.Abort()
			return
		}

		claims, err := validator.ValidateToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			c.Abort()
			return
		}

		// Store user info in context
		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextAccount, claims.Account())
		c.Set(ContextClaims, claims)
		c.Next()
	}
}

// Account returns the account id stored by AuthMiddleware.
func Account(c *gin.Context) (string, bool) {
	v, ok := c.Get(ContextAccount)
	if !ok {
		return "", false
	}
	account, ok := v.(string)
	return account, ok && account != ""
}
