package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

// requestObserver receives one observation per finished request.
type requestObserver interface {
	ObserveHTTPRequest(method, route string, status int, duration time.Duration)
}

// unmatchedRoute labels requests that hit no route, keeping raw paths (and
// any ids in them) out of the label set.
const unmatchedRoute = "unmatched"

// Metrics observes every request under its route template. Paths in skip,
// such as the Prometheus scrape endpoint, are not observed.
func Metrics(observer requestObserver, skip ...string) gin.HandlerFunc {
	skipped := make(map[string]struct{}, len(skip))
	for _, path := range skip {
		skipped[path] = struct{}{}
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if observer == nil {
			return
		}
		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		if _, ok := skipped[route]; ok {
			return
		}
		observer.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
