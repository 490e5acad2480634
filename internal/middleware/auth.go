package middleware

import (
	"campusbuddy/internal/models"
	"campusbuddy/internal/utils"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const identityContextKey = "identity"

// Identity is the caller resolved from a bearer token. Handlers read it from
// the gin context and never parse the token themselves.
type Identity struct {
	UserID string
	Role   string
}

func (i Identity) IsAdmin() bool {
	return i.Role == models.RoleAdmin
}

// IdentityFromContext returns the identity stored by AuthMiddleware.
func IdentityFromContext(c *gin.Context) (Identity, bool) {
	value, ok := c.Get(identityContextKey)
	if !ok {
		return Identity{}, false
	}
	identity, ok := value.(Identity)
	return identity, ok
}

// SetIdentity stores identity on the context.
func SetIdentity(c *gin.Context, identity Identity) {
	c.Set(identityContextKey, identity)
	c.Set("user_id", identity.UserID)
}

// AuthMiddleware is a middleware that checks for a valid JWT token
func AuthMiddleware(tokens *utils.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")

		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header is required",
			})
			return
		}

		tokenParts := strings.Fields(authHeader)
		if len(tokenParts) != 2 || !strings.EqualFold(tokenParts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header must be in the format 'Bearer {token}'",
			})
			return
		}

		claims, err := tokens.ValidateToken(tokenParts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid token",
			})
			return
		}

		role := claims.Role
		if role == "" {
			role = models.RoleStudent
		}
		SetIdentity(c, Identity{UserID: claims.UserID, Role: role})
		c.Next()
	}
}

// RequireAdmin rejects callers without the admin role. It must run after
// AuthMiddleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := IdentityFromContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		if !identity.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin role required"})
			return
		}
		c.Next()
	}
}
