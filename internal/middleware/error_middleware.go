package middleware

import (
	"linklet/internal/transport/httpdto"
	linklet_errors "linklet/pkg/errors"
	"linklet/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorHandler is the safety net for errors a handler attached to the
// context without writing a response. It maps them through the sentinel
// taxonomy the same way the handlers do.
func ErrorHandler(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		if l != nil {
			l.Error("unhandled request error",
				zap.String("path", c.Request.URL.Path),
				zap.Error(err),
			)
		}
		c.JSON(linklet_errors.HTTPStatus(err), httpdto.NewErrorResponse(err.Error(), linklet_errors.Code(err)))
	}
}
