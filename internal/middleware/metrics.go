package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-roster-ledger/internal/service"
)

const unmatchedRoute = "unmatched"

// Metrics records request duration per route template. Requests that match no
// route share one label so student ids never become label values. Scrapes of
// the metrics endpoint itself are not recorded.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		if strings.HasSuffix(route, "/metrics") {
			return
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
