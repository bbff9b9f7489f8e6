package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cppla/blogly/metrics"
)

// HTTPMetrics records request count and latency per matched route.
func HTTPMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		// Static assets and the scrape endpoint would drown the page metrics
		route := c.FullPath()
		if route == "/metrics" || route == "/static/*filepath" {
			return
		}
		metrics.ObserveHTTP(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
