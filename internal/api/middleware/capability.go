package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/yoockh/portfolio/internal/auth"
	"github.com/yoockh/portfolio/internal/utils"
)

// RequireCapability must run after JWTAuth.
func RequireCapability(want auth.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		const op = "Middleware.RequireCapability"

		u, ok := CurrentUser(c)
		if !ok {
			abortWithError(c, utils.E(utils.CodeUnauthorized, op, "Not authorized, no token", nil))
			return
		}
		if !auth.Can(u.Role, want) {
			abortWithError(c, utils.E(utils.CodeForbidden, op, "Not authorized for this action", nil))
			return
		}
		c.Next()
	}
}
