package gin

import (
	"strconv"
	"time"

	"github.com/RigelNana/gazotheque/pkg/metrics"
	"github.com/gin-gonic/gin"
)

// PrometheusMiddleware records one request sample per handled route.
// Unrouted requests share a single "unmatched" label so scanners hitting
// random paths cannot blow up the series count.
func PrometheusMiddleware(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RecordRequest(serviceName, c.Request.Method+" "+route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
