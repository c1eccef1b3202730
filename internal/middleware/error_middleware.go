package middleware

import (
	"net/http"

	"facebrain/internal/transport/httpdto"
	"facebrain/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorHandler logs errors recorded by handlers and answers with a generic 500
// if a handler failed without writing a response.
func ErrorHandler(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		if l != nil {
			log := l.WithContext(c.Request.Context())
			for _, ginErr := range c.Errors {
				log.Debug("request error",
					zap.String("path", c.Request.URL.Path),
					zap.Int("status", c.Writer.Status()),
					zap.Error(ginErr.Err),
				)
			}
		}

		if !c.Writer.Written() {
			c.JSON(http.StatusInternalServerError, httpdto.NewErrorResponse("internal error", httpdto.CodeInternal).WithRequestID(RequestID(c)))
		}
	}
}
