package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/OldStager01/housing-valuator/internal/logger"
)

// RequestLogger writes one access line per request. The trace id comes from
// the request context, so TraceID must run first.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		began := time.Now()
		c.Next()

		req := c.Request
		entry := logger.FromContext(req.Context(), nil).WithFields(logrus.Fields{
			"method":    req.Method,
			"route":     routeOf(c),
			"path":      req.URL.Path,
			"status":    c.Writer.Status(),
			"bytes_out": c.Writer.Size(),
			"took_ms":   time.Since(began).Milliseconds(),
			"client":    c.ClientIP(),
		})
		if msg := c.Errors.ByType(gin.ErrorTypeAny).String(); msg != "" {
			entry = entry.WithField("errors", msg)
		}

		code := c.Writer.Status()
		if code >= 500 {
			entry.Error("request failed")
		} else if code >= 400 {
			entry.Warn("request rejected")
		} else {
			entry.Debug("request served")
		}
	}
}

type HTTPObserver interface {
	ObserveHTTP(method, route, status string, took time.Duration)
}

// Metrics reports every request by its route template, never the raw path.
func Metrics(observer HTTPObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		observer.ObserveHTTP(c.Request.Method, routeOf(c), strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}

func routeOf(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return "unmatched"
}
