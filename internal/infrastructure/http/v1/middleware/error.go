package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"backoffice/internal/core/apperror"
	appctx "backoffice/internal/core/context"
	"backoffice/internal/infrastructure/http/v1/dto"
	"backoffice/pkg/logger"
)

// ErrorHandler middleware transforms errors into consistent JSON responses.
// Hides internal errors from clients while logging full details.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		writeError(c)
	}
}

// writeError renders the last registered error unless a response was already written.
func writeError(c *gin.Context) {
	if len(c.Errors) == 0 || c.Writer.Written() {
		return
	}
	err := c.Errors.Last().Err

	if appErr, ok := apperror.AsAppError(err); ok {
		if appErr.Err != nil {
			logger.Error(c.Request.Context(), "request error",
				"code", appErr.Code,
				"cause", appErr.Err,
			)
		}
		c.JSON(appErr.HTTPStatus, dto.ErrorResponse{
			Code:      appErr.Code,
			Message:   appErr.Message,
			Details:   appErr.Details,
			RequestID: appctx.GetRequestID(c.Request.Context()),
		})
		return
	}

	// Unknown error - log and return generic message
	logger.Error(c.Request.Context(), "unhandled error", "error", err)
	c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
		Code:      apperror.CodeInternal,
		Message:   "Internal server error",
		RequestID: appctx.GetRequestID(c.Request.Context()),
	})
}
