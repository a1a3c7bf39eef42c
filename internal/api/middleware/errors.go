package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/yoockh/portfolio/internal/utils"
)

type apiError struct {
	Code    utils.Code `json:"code"`
	Message string     `json:"message"`
}

func abortWithError(c *gin.Context, err error) {
	status := utils.HTTPStatus(err)

	var ae *utils.AppError
	if !errors.As(err, &ae) {
		_ = c.Error(err)
		c.AbortWithStatusJSON(status, apiError{Code: utils.CodeInternal, Message: "Server error"})
		return
	}
	if status >= 500 {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, apiError{Code: ae.Code, Message: ae.Message})
}
