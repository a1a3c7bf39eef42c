package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/yoockh/portfolio/internal/utils"
)

// Recovery turns a handler panic into a JSON 500. It must run inside
// RequestLogger so the panic value reaches the request log.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		abortWithError(c, utils.E(utils.CodeInternal, "Middleware.Recovery", "Server error",
			fmt.Errorf("panic: %v", recovered)))
	})
}

// NotFound answers unmatched routes.
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		abortWithError(c, utils.E(utils.CodeNotFound, "Router", "Route not found", nil))
	}
}
