package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yoockh/portfolio/internal/api/middleware"
	"github.com/yoockh/portfolio/internal/models"
	"github.com/yoockh/portfolio/internal/utils"
)

type APIError struct {
	Code    utils.Code        `json:"code"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// writeError maps err to its HTTP status. Server-side failures are attached
// to the context so the request logger records the wrapped cause.
func writeError(c *gin.Context, err error) {
	status := utils.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}

	var ae *utils.AppError
	if errors.As(err, &ae) {
		c.JSON(status, APIError{
			Code:    ae.Code,
			Message: ae.Message,
			Errors:  ae.Fields,
		})
		return
	}

	c.JSON(status, APIError{
		Code:    utils.CodeInternal,
		Message: "Server error",
	})
}

func requireUser(c *gin.Context) (*models.User, bool) {
	if u, ok := middleware.CurrentUser(c); ok {
		return u, true
	}

	writeError(c, utils.E(utils.CodeUnauthorized, "Auth", "Not authorized, no token", nil))
	return nil, false
}

func bindJSON(c *gin.Context, op string, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "invalid request body", err))
		return false
	}
	return true
}
