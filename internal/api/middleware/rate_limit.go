package middleware

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/yoockh/portfolio/internal/ratelimit"
	"github.com/yoockh/portfolio/internal/utils"
)

// RateLimit throttles by client IP. A nil limiter disables it, and limiter
// failures let the request through.
func RateLimit(l ratelimit.Limiter, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if l == nil {
			c.Next()
			return
		}

		d, err := l.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			if log != nil {
				log.WithError(err).WithField("path", c.FullPath()).Warn("rate limiter unavailable")
			}
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(d.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		if !d.Allowed {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(d.RetryAfter.Seconds()))))
			abortWithError(c, utils.E(utils.CodeTooManyRequests, "Middleware.RateLimit",
				"Too many requests, please try again later.", nil))
			return
		}
		c.Next()
	}
}
