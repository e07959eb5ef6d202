package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/followups/pkg/metrics"
)

// Metrics records request duration and counts by route template, so public
// tokens and record ids never become label values.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		code := c.Writer.Status()
		status := strconv.Itoa(code)

		m.RequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
		m.RequestTotal.WithLabelValues(c.Request.Method, path, status).Inc()

		switch {
		case code >= 500:
			m.ErrorTotal.WithLabelValues(c.Request.Method, path, "server").Inc()
		case code >= 400:
			m.ErrorTotal.WithLabelValues(c.Request.Method, path, "client").Inc()
		}
	}
}
