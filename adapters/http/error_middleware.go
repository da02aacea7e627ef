package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/khoahotran/cvnova/pkg/apperror"
	"github.com/khoahotran/cvnova/pkg/logger"
)

// ErrorMiddleware renders the last error a handler pushed with c.Error.
func ErrorMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", c.GetString(GinContextKeyRequestID)),
		}

		var appErr *apperror.AppError
		if !errors.As(err, &appErr) {
			log.Error("Unhandled error", err, fields...)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   apperror.ErrInternal.Error(),
				"message": "An internal server error occurred",
			})
			return
		}

		status := apperror.ToHTTPStatus(appErr)
		if status >= http.StatusInternalServerError {
			log.Error(appErr.Message, appErr.Cause(), append(fields, zap.String("details", appErr.Details))...)
		} else {
			log.Debug(appErr.Message, append(fields, zap.Int("status", status), zap.String("details", appErr.Details))...)
		}
		c.JSON(status, appErr.ToJSON())
	}
}
