package logger

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
)

// Middleware attaches a request-scoped logger to the gin context under
// "logger" and emits one line per request with status and latency.
// Request IDs are taken from the context (set by RequestIDMiddleware).
func Middleware(logger *Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLogger := logger
		if requestID := c.GetString("requestID"); requestID != "" {
			reqLogger = reqLogger.WithRequestID(requestID)
		}
		if userID, exists := c.Get("userId"); exists {
			reqLogger = reqLogger.WithUserID(fmt.Sprintf("%v", userID))
		}
		c.Set("logger", reqLogger)

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		method := c.Request.Method
		path := c.Request.URL.Path
		reqLogger.LogRequest(method, path, c.Writer.Status(), latency)

		for _, err := range c.Errors {
			reqLogger.LogError(err.Err, "request error",
				"method", method,
				"path", path,
				"error_type", err.Type,
			)
		}
	}
}
