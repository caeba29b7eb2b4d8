package middleware

import (
	"log/slog"
	"time"

	applog "fintrack/internal/log"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader carries the request id in and out.
const RequestIDHeader = "X-Request-ID"

// RequestLogger tags each request with an id, stores a request-scoped logger
// in the request context and logs the outcome at a level chosen by status.
func RequestLogger(base *applog.Logger) gin.HandlerFunc {
	httpLog := base.WithComponent(applog.ComponentHTTP)
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" || len(requestID) > 128 {
			requestID = uuid.NewString()
		}
		c.Header(RequestIDHeader, requestID)

		logger := httpLog.With(applog.FieldRequestID, requestID)
		ctx := applog.NewContext(c.Request.Context(), logger)
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		status := c.Writer.Status()
		level := slog.LevelInfo
		switch {
		case status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		}
		logger.Log(ctx, level, "request completed",
			applog.FieldMethod, c.Request.Method,
			applog.FieldPath, c.Request.URL.Path,
			applog.FieldStatusCode, status,
			applog.FieldDuration, time.Since(start).Milliseconds(),
			applog.FieldClientIP, c.ClientIP(),
		)
	}
}
