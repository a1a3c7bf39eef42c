package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yoockh/portfolio/internal/models"
	"github.com/yoockh/portfolio/internal/services"
	"github.com/yoockh/portfolio/internal/utils"
)

const (
	ctxUser   = "user"
	ctxUserID = "user_id"
	ctxRole   = "role"
)

// JWTAuth resolves the bearer token to a stored user. The role used by later
// guards is always the one on the user record, not the token claim.
func JWTAuth(svc services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const op = "Middleware.JWTAuth"

		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			abortWithError(c, utils.E(utils.CodeUnauthorized, op, "Not authorized, no token", nil))
			return
		}

		raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if raw == "" {
			abortWithError(c, utils.E(utils.CodeUnauthorized, op, "Not authorized, no token", nil))
			return
		}

		u, err := svc.Authenticate(c.Request.Context(), raw)
		if err != nil {
			abortWithError(c, err)
			return
		}

		c.Set(ctxUser, u)
		c.Set(ctxUserID, u.ID.Hex())
		c.Set(ctxRole, string(u.Role))
		c.Next()
	}
}

// CurrentUser returns the user stored by JWTAuth.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(ctxUser)
	if !ok {
		return nil, false
	}
	u, ok := v.(*models.User)
	return u, ok && u != nil
}
