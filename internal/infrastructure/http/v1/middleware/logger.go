package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"bakehouse/internal/core/appctx"
	"bakehouse/pkg/logger"
)

// Logger middleware logs HTTP requests with timing and status.
// Health probes are skipped to keep the log readable.
func Logger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/health") {
			c.Next()
			return
		}

		start := time.Now()
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		ctx := c.Request.Context()

		fields := []any{
			"method", c.Request.Method,
			"path", path,
			"query", query,
			"status", status,
			"latency_ms", latency.Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if user := appctx.GetUser(ctx); user != nil {
			fields = append(fields, "user_id", user.UserID, "role", user.Role)
		}
		if errs := c.Errors.ByType(gin.ErrorTypePrivate).String(); errs != "" {
			fields = append(fields, "errors", errs)
		}

		entry := log.WithContext(ctx)
		if status >= 500 {
			entry.Warnw("http request", fields...)
		} else {
			entry.Infow("http request", fields...)
		}
	}
}
