package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"pitchdeck-backend/internal/shared/server/respond"
	"pitchdeck-backend/internal/shared/telemetry"
)

// Recovery turns a handler panic into a 500 with the standard error body.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				fields := map[string]any{
					"request_id": RequestIDFromContext(c),
					"error":      fmt.Sprint(rec),
					"stack":      string(debug.Stack()),
					"route":      c.FullPath(),
				}
				if docID := c.GetString("documentId"); docID != "" {
					fields["document_id"] = docID
				}
				telemetry.Error("http.panic", fields)
				respond.Error(c, http.StatusInternalServerError, "internal_error", "Internal server error", nil)
			}
		}()
		c.Next()
	}
}
