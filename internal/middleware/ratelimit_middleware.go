package middleware

import (
	"net/http"
	"strconv"

	"facebrain/internal/redis"
	"facebrain/internal/transport/httpdto"
	"facebrain/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthRateLimitMiddleware limits sign-in and registration attempts per client IP.
// If Redis cannot be reached the request is let through.
func AuthRateLimitMiddleware(limiter *redis.RateLimiter, l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := limiter.AllowAuth(c.Request.Context(), c.ClientIP())
		if err != nil {
			if l != nil {
				l.WithContext(c.Request.Context()).Warn("auth rate limit unavailable", zap.Error(err))
			}
			c.Next()
			return
		}

		setRateLimitHeaders(c, result)

		if !result.Allowed {
			c.JSON(http.StatusTooManyRequests, httpdto.NewErrorResponse("too many requests", httpdto.CodeRateLimited).WithRequestID(RequestID(c)))
			c.Abort()
			return
		}

		c.Next()
	}
}

// ClearAuthLimitOnSuccess resets the client's auth window once a request
// completes with 200, so a user who finally signs in is not left throttled.
func ClearAuthLimitOnSuccess(limiter *redis.RateLimiter, l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Status() != http.StatusOK {
			return
		}
		if err := limiter.ResetAuth(c.Request.Context(), c.ClientIP()); err != nil && l != nil {
			l.WithContext(c.Request.Context()).Warn("auth rate limit reset failed", zap.Error(err))
		}
	}
}

// setRateLimitHeaders sets standard rate limit response headers
func setRateLimitHeaders(c *gin.Context, result *redis.RateLimitResult) {
	c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	c.Header("X-RateLimit-Reset", strconv.FormatInt(int64(result.ResetIn.Seconds()), 10))
}
