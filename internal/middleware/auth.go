package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"zehnify/api/internal/models"
	"zehnify/api/internal/service"
)

const currentUserKey = "current_user"

// Auth resolves the bearer token to a user and stores it on the context.
func Auth(auth *service.AuthService, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		scheme, tokenStr, found := strings.Cut(authHeader, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tokenStr) == "" {
			abort(c, http.StatusUnauthorized, "missing bearer token")
			return
		}

		user, err := auth.Authenticate(c.Request.Context(), strings.TrimSpace(tokenStr))
		if err != nil {
			if errors.Is(err, service.ErrUnauthenticated) {
				abort(c, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			log.Error().Err(err).Str("request_id", RequestIDFrom(c)).Msg("authenticate request")
			abort(c, http.StatusInternalServerError, "internal server error")
			return
		}

		c.Set(currentUserKey, user)
		c.Next()
	}
}

// CurrentUser returns the user stored by Auth.
func CurrentUser(c *gin.Context) (models.User, bool) {
	value, exists := c.Get(currentUserKey)
	if !exists {
		return models.User{}, false
	}
	user, ok := value.(models.User)
	return user, ok
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": message})
}
