package middleware

import (
	"github.com/gin-gonic/gin"

	"zehnify/api/internal/metrics"
)

// Metrics labels requests by route template, not by raw path.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		done := m.RequestStarted()
		c.Next()
		done(c.Request.Method, c.FullPath(), c.Writer.Status())
	}
}
