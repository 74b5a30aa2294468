package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// RequestObserver records request latency per route.
type RequestObserver interface {
	ObserveRequest(method, route string, code int, elapsed time.Duration)
}

// RequestLogger logs information about incoming requests using slog and
// reports their latency to observer when one is given.
func RequestLogger(logger *slog.Logger, observer RequestObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()
		attrs := []any{
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", status),
			slog.Duration("latency", latency),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, slog.String("error", c.Errors.String()))
		}
		if status >= 500 {
			logger.Error("http request", attrs...)
		} else {
			logger.Info("http request", attrs...)
		}
		if observer != nil {
			observer.ObserveRequest(c.Request.Method, c.FullPath(), status, latency)
		}
	}
}
