package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/OldStager01/housing-valuator/internal/logger"
)

// TraceIDHeader carries the request correlation id in both directions.
const TraceIDHeader = "X-Trace-ID"

const (
	traceKey      = "trace_id"
	maxTraceIDLen = 128
)

// TraceID adopts an inbound trace id when it looks sane and mints a UUID
// otherwise. Handlers read it with GetTraceID; services read it from the
// request context through the logger package.
func TraceID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(TraceIDHeader)
		if id == "" || len(id) > maxTraceIDLen {
			id = uuid.NewString()
		}

		c.Set(traceKey, id)
		c.Writer.Header().Set(TraceIDHeader, id)
		c.Request = c.Request.WithContext(logger.WithTraceID(c.Request.Context(), id))
		c.Next()
	}
}

func GetTraceID(c *gin.Context) string {
	return c.GetString(traceKey)
}
