package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"zehnify/api/internal/config"
	"zehnify/api/internal/metrics"
	"zehnify/api/internal/middleware"
	"zehnify/api/internal/service"
)

// HealthCheck reports whether one dependency is reachable.
type HealthCheck func(ctx context.Context) error

type HandlerSet struct {
	log         zerolog.Logger
	cfg         *config.AppConfig
	auth        *service.AuthService
	catalog     *service.CatalogService
	enrollments *service.EnrollmentService
	metrics     *metrics.Metrics
	checks      map[string]HealthCheck
}

func NewHandlerSet(
	log zerolog.Logger,
	cfg *config.AppConfig,
	auth *service.AuthService,
	catalog *service.CatalogService,
	enrollments *service.EnrollmentService,
	m *metrics.Metrics,
	checks map[string]HealthCheck,
) HandlerSet {
	return HandlerSet{
		log:         log,
		cfg:         cfg,
		auth:        auth,
		catalog:     catalog,
		enrollments: enrollments,
		metrics:     m,
		checks:      checks,
	}
}

func (h HandlerSet) Routes(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	requireAuth := middleware.Auth(h.auth, h.log)
	requireAdmin := middleware.RequireAdmin()

	auth := router.Group("/auth")
	auth.POST("/register", h.Register)
	auth.POST("/signup", h.Register)
	auth.POST("/login", h.Login)
	auth.GET("/me", requireAuth, h.Me)

	courses := router.Group("/courses")
	courses.GET("", h.ListCourses)
	courses.GET("/:id", h.GetCourse)
	courses.POST("", requireAuth, requireAdmin, h.CreateCourse)
	courses.PUT("/:id", requireAuth, requireAdmin, h.UpdateCourse)
	courses.DELETE("/:id", requireAuth, requireAdmin, h.DeleteCourse)
	courses.POST("/:id/thumbnail", requireAuth, requireAdmin, h.UploadThumbnail)

	enrollments := router.Group("/enrollments", requireAuth)
	enrollments.POST("", h.Enroll)
	enrollments.GET("/:userId", h.ListEnrollments)
}

var statusBySentinel = []struct {
	sentinel error
	status   int
}{
	{service.ErrInvalidInput, http.StatusBadRequest},
	{service.ErrUnauthenticated, http.StatusUnauthorized},
	{service.ErrForbidden, http.StatusForbidden},
	{service.ErrNotFound, http.StatusNotFound},
	{service.ErrConflict, http.StatusConflict},
	{service.ErrUnavailable, http.StatusServiceUnavailable},
}

// writeError maps a service error onto its status code. The sentinel prefix
// is dropped from the message; unknown errors are logged and hidden.
func (h HandlerSet) writeError(c *gin.Context, err error) {
	for _, m := range statusBySentinel {
		if errors.Is(err, m.sentinel) {
			message := strings.TrimPrefix(err.Error(), m.sentinel.Error()+": ")
			c.JSON(m.status, gin.H{"success": false, "error": message})
			return
		}
	}

	_ = c.Error(err)
	h.log.Error().
		Err(err).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Str("request_id", middleware.RequestIDFrom(c)).
		Msg("request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal server error"})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": message})
}

// outcome is the metrics label for a service result.
func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, service.ErrInvalidInput):
		return "invalid"
	case errors.Is(err, service.ErrUnauthenticated):
		return "rejected"
	case errors.Is(err, service.ErrForbidden):
		return "forbidden"
	case errors.Is(err, service.ErrNotFound):
		return "not_found"
	case errors.Is(err, service.ErrConflict):
		return "conflict"
	default:
		return "error"
	}
}
