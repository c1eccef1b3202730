package handler

import (
	"errors"

	facebrain_errors "facebrain/pkg/errors"

	"github.com/gin-gonic/gin"
)

func asAppError(err error) (*facebrain_errors.Error, bool) {
	var appErr *facebrain_errors.Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// clientMessage returns the text that may be shown to a client for err.
func clientMessage(err error) string {
	if appErr, ok := asAppError(err); ok && appErr.Message != "" {
		return appErr.Message
	}
	return "internal error"
}

// recordError attaches err to the request so the error middleware can log it
// once the response is written.
func recordError(c *gin.Context, err error) {
	_ = c.Error(err).SetType(gin.ErrorTypePrivate)
}
