package api

import (
	"time"

	"github.com/gin-gonic/gin"
)

// observe records latency and status of every request and logs it.
func (s *HTTPServer) observe(c *gin.Context) {
	start := time.Now()
	c.Next()

	route := c.FullPath()
	if route == "" {
		route = "unmatched"
	}
	status := c.Writer.Status()
	elapsed := time.Since(start)

	s.metrics.ObserveRequest(c.Request.Method, route, status, elapsed)

	ctx := c.Request.Context()
	args := []any{
		"method", c.Request.Method,
		"route", route,
		"status", status,
		"duration_ms", elapsed.Milliseconds(),
	}
	switch {
	case status >= 500:
		s.logger.Error(ctx, "request", args...)
	case status >= 400:
		s.logger.Warn(ctx, "request", args...)
	default:
		s.logger.Debug(ctx, "request", args...)
	}
}
