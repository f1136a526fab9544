package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const RequestIDKey = "requestID"

// StructuredLogger assigns every request an id and logs its outcome.
func StructuredLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set(RequestIDKey, requestID)
		c.Header("X-Request-ID", requestID)

		c.Next()

		status := c.Writer.Status()
		logAttrs := []slog.Attr{
			slog.String("request_id", requestID),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
			slog.String("ip", c.ClientIP()),
			slog.String("user_agent", c.Request.UserAgent()),
		}

		if adminID := c.GetString(AdminIDKey); adminID != "" {
			logAttrs = append(logAttrs, slog.String("admin_id", adminID))
		}

		ctx := c.Request.Context()
		if len(c.Errors) > 0 {
			logAttrs = append(logAttrs, slog.String("error", c.Errors.String()))
			logger.LogAttrs(ctx, slog.LevelError, "request error", logAttrs...)
		} else if status >= 500 {
			logger.LogAttrs(ctx, slog.LevelError, "server error", logAttrs...)
		} else if status >= 400 {
			logger.LogAttrs(ctx, slog.LevelWarn, "client error", logAttrs...)
		} else {
			logger.LogAttrs(ctx, slog.LevelInfo, "request completed", logAttrs...)
		}
	}
}
