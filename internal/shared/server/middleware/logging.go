package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pitchdeck-backend/internal/shared/telemetry"
)

// Logging emits a structured log per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		fields := map[string]any{
			"request_id":        RequestIDFromContext(c),
			"method":            c.Request.Method,
			"path":              c.FullPath(),
			"status":            c.Writer.Status(),
			"status_transition": c.GetString("statusTransition"),
			"duration_ms":       float64(latency.Microseconds()) / 1000.0,
			"document_id":       c.GetString("documentId"),
			"bytes_out":         c.Writer.Size(),
			"client_ip":         c.ClientIP(),
			"user_agent":        c.Request.UserAgent(),
		}
		if fields["path"] == "" {
			fields["path"] = c.Request.URL.Path
		}
		telemetry.Info("request.complete", fields)
	}
}
