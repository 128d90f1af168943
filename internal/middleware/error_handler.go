package middleware

import (
	"net/http"

	"github.com/anajbsouza/projeto13-batepapo-uol-api/pkg/errors"
	"github.com/anajbsouza/projeto13-batepapo-uol-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ErrorHandler renders the last error a handler attached with c.Error.
// Validation failures become a JSON array of messages; everything else gets
// an {"error": ...} object.
func ErrorHandler(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		statusCode := errors.HTTPStatusFromError(err)

		switch statusCode {
		case http.StatusUnprocessableEntity:
			c.JSON(statusCode, errors.Details(err))
		case http.StatusInternalServerError:
			log.Error("Request failed", "error", err, "path", c.FullPath(), "request_id", RequestID(c))
			c.JSON(statusCode, errors.NewAPIError("Internal server error", statusCode))
		default:
			c.JSON(statusCode, errors.NewAPIError(err.Error(), statusCode))
		}
	}
}
