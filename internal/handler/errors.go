package handler

import (
	"net/http"

	"clothingstore/pkg/apperror"
	"clothingstore/pkg/response"

	"github.com/gin-gonic/gin"
)

// writeError maps a service error onto the standard error envelope.
func writeError(c *gin.Context, err error) {
	_ = c.Error(err)
	status, body := response.FromError(err)
	c.JSON(status, body)
}

func writeBindError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusBadRequest, response.Response{
		Status:     "error",
		StatusCode: http.StatusBadRequest,
		Code:       string(apperror.KindInvalidInput),
		Error:      "Invalid request payload: " + err.Error(),
	})
}
