package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"zehnify/api/internal/models"
)

// RequireRoles must run after Auth.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	roleSet := make(map[models.UserRole]struct{}, len(roles))
	for _, role := range roles {
		roleSet[role] = struct{}{}
	}

	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			abort(c, http.StatusUnauthorized, "authentication required")
			return
		}

		if _, ok := roleSet[user.Role]; !ok {
			abort(c, http.StatusForbidden, "insufficient permissions")
			return
		}

		c.Next()
	}
}

func RequireAdmin() gin.HandlerFunc {
	return RequireRoles(models.UserRoleAdmin)
}
