package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bakehouse/internal/core/appctx"
)

const (
	HeaderRequestID = "X-Request-ID"
	HeaderTraceID   = "X-Trace-ID"
)

// Trace middleware attaches request and trace identifiers to the
// request context and echoes them back in response headers. Incoming
// headers are honored only when they carry valid UUIDs, so a caller
// cannot inject arbitrary strings into the log stream.
func Trace() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := validOrNew(c.GetHeader(HeaderRequestID))
		traceID := validOrNew(c.GetHeader(HeaderTraceID))

		trace := &appctx.TraceContext{
			TraceID:   traceID,
			SpanID:    uuid.NewString()[:16],
			RequestID: requestID,
		}

		ctx := appctx.WithTrace(c.Request.Context(), trace)
		c.Request = c.Request.WithContext(ctx)

		c.Set("trace_id", traceID)
		c.Set("request_id", requestID)

		c.Header(HeaderRequestID, requestID)
		c.Header(HeaderTraceID, traceID)

		c.Next()
	}
}

func validOrNew(header string) string {
	if _, err := uuid.Parse(header); err == nil {
		return header
	}
	return uuid.NewString()
}
