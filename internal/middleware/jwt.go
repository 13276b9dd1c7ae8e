package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/schoolsite/portal-backend/internal/access"
	"github.com/schoolsite/portal-backend/internal/service"
)

const (
	// ContextKeyClaims is the Gin context key for JWT claims.
	ContextKeyClaims = "claims"
	// ContextKeyAuth is the Gin context key for the resolved AuthContext.
	ContextKeyAuth = "auth_context"
)

// sessionValidator is the part of the auth service the guards need.
type sessionValidator interface {
	ValidateToken(tokenStr string) (*service.Claims, error)
	ValidateSession(ctx context.Context, claims *service.Claims) error
}

// GetClaims retrieves the JWT claims from the Gin context.
func GetClaims(c *gin.Context) *service.Claims {
	val, exists := c.Get(ContextKeyClaims)
	if !exists {
		return nil
	}
	claims, ok := val.(*service.Claims)
	if !ok {
		return nil
	}
	return claims
}

// GetAuth retrieves the AuthContext attached by RequireSession.
func GetAuth(c *gin.Context) *access.AuthContext {
	val, exists := c.Get(ContextKeyAuth)
	if !exists {
		return nil
	}
	ac, ok := val.(*access.AuthContext)
	if !ok {
		return nil
	}
	return ac
}

// BearerToken reads the token from the Authorization header, falling back to
// the token query parameter for WebSocket upgrades.
func BearerToken(c *gin.Context) string {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	return c.Query("token")
}

// OptionalSession attaches claims when a live session token is present and
// never rejects the request.
func OptionalSession(auth sessionValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenStr := BearerToken(c); tokenStr != "" {
			if claims, err := auth.ValidateToken(tokenStr); err == nil {
				if auth.ValidateSession(c.Request.Context(), claims) == nil {
					c.Set(ContextKeyClaims, claims)
				}
			}
		}
		c.Next()
	}
}
