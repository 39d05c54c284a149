package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"maidmarket/internal/pkg/jwt"
	"maidmarket/internal/pkg/response"
)

// RequireRole lets the request through when the token role is one of roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(c *gin.Context) {
		role := c.GetString("role")
		if role == "" {
			response.Abort(c, http.StatusUnauthorized, response.CodeUnauthorized, "Role not found in token")
			return
		}

		if !allowed[role] {
			response.Abort(c, http.StatusForbidden, "FORBIDDEN", "Access denied: insufficient permissions")
			return
		}

		c.Next()
	}
}

// AdminOnly middleware requires admin role
func AdminOnly() gin.HandlerFunc {
	return RequireRole(jwt.RoleAdmin)
}

// ListingWriters lets offices and admins manage maid listings.
func ListingWriters() gin.HandlerFunc {
	return RequireRole(jwt.RoleOffice, jwt.RoleAdmin)
}
