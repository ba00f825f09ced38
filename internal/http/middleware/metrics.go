package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/agilecoach-backend/internal/observability"
)

// unobservedRoutes are probe and scrape endpoints hit on a timer. Counting
// them would drown out learner traffic.
var unobservedRoutes = map[string]bool{
	"/healthcheck": true,
	"/metrics":     true,
}

// Metrics records request counts and latency by route template, so
// /api/scenarios/:id stays one series however many scenarios exist.
// Unmatched paths collapse into "unmatched".
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		route := c.FullPath()
		if unobservedRoutes[route] {
			c.Next()
			return
		}
		start := time.Now()
		m.APIInflightInc()
		defer m.APIInflightDec()

		c.Next()

		if route == "" {
			route = "unmatched"
		}
		m.ObserveAPI(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
