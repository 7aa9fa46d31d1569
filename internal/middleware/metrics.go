package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"peerlearn.app/server/internal/metrics"
)

// Metrics records request counts and latencies labelled by route template.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		metrics.InFlight.Inc()

		c.Next()

		metrics.InFlight.Dec()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		status := strconv.Itoa(c.Writer.Status())

		metrics.RequestsTotal.WithLabelValues(route, method, status).Inc()
		metrics.ReqDuration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
	}
}
