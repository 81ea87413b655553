package common

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse 客户端错误响应
type ErrorResponse struct {
	Error string `json:"error"`
}

// ServerErrorResponse 下游失败响应，details 为底层错误原文
type ServerErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

// RespondSuccess sends a 200 response with the given body.
func RespondSuccess(c *gin.Context, body interface{}) {
	c.JSON(http.StatusOK, body)
}

// RespondError sends an error response with message.
func RespondError(c *gin.Context, httpStatus int, message string) {
	c.JSON(httpStatus, ErrorResponse{Error: message})
}

// RespondErrorAbort 返回错误并中止后续处理，供中间件使用
func RespondErrorAbort(c *gin.Context, httpStatus int, message string) {
	c.AbortWithStatusJSON(httpStatus, ErrorResponse{Error: message})
}

// RespondServerError sends a 500 response carrying the underlying error message.
func RespondServerError(c *gin.Context, message string, err error) {
	details := ""
	if err != nil {
		details = err.Error()
	}
	c.JSON(http.StatusInternalServerError, ServerErrorResponse{Error: message, Details: details})
}
