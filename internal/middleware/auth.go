package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Valneuskaya/foodgram-project-react/internal/service"
)

const (
	// UserIDKey is the gin context key holding the authenticated user id.
	UserIDKey = "user_id"
	// TokenKey holds the raw bearer token for logout.
	TokenKey = "token"
)

// TokenValidator is an interface for validating bearer tokens
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*service.TokenClaims, error)
}

// AuthMiddleware creates a middleware that requires a valid bearer token.
func AuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, token, ok := claimsFromHeader(c, validator)
		if !ok {
			return
		}
		if claims == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			c.Abort()
			return
		}
		c.Set(UserIDKey, claims.UserID)
		c.Set(TokenKey, token)
		c.Next()
	}
}

// OptionalAuthMiddleware resolves a bearer token when one is present and
// lets the request through as anonymous otherwise. A present but invalid
// token is still rejected.
func OptionalAuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, token, ok := claimsFromHeader(c, validator)
		if !ok {
			return
		}
		if claims != nil {
			c.Set(UserIDKey, claims.UserID)
			c.Set(TokenKey, token)
		}
		c.Next()
	}
}

// claimsFromHeader parses the Authorization header. ok is false when the
// request has already been aborted with a 401.
func claimsFromHeader(c *gin.Context, validator TokenValidator) (claims *service.TokenClaims, token string, ok bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, "", true
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
		c.Abort()
		return nil, "", false
	}

	claims, err := validator.ValidateToken(c.Request.Context(), parts[1])
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		c.Abort()
		return nil, "", false
	}
	return claims, parts[1], true
}
