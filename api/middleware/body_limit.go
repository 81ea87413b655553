package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/anoixa/shelf-scanner/api/common"
	"github.com/gin-gonic/gin"
)

// multipartOverhead multipart 边界与表单头的余量
const multipartOverhead = 64 << 10

// ErrBodyTooLarge 请求体超过上限
var ErrBodyTooLarge = errors.New("request body too large")

// BodyLimit 限制请求体大小
// Content-Length 已超限时直接返回 413，否则包装 Body，读取超限时由处理器识别
func BodyLimit(maxFileBytes int64) gin.HandlerFunc {
	limit := maxFileBytes + multipartOverhead
	return func(c *gin.Context) {
		if c.Request.ContentLength > limit {
			common.RespondErrorAbort(c, http.StatusRequestEntityTooLarge, TooLargeMessage(maxFileBytes))
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}

// IsBodyTooLarge 判断读取请求体时是否触发了大小上限
func IsBodyTooLarge(err error) bool {
	if err == nil {
		return false
	}
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) || errors.Is(err, ErrBodyTooLarge) {
		return true
	}
	// multipart 解析错误未必保留错误链
	return strings.Contains(err.Error(), "request body too large")
}

// TooLargeMessage 413 响应文案
func TooLargeMessage(maxFileBytes int64) string {
	if maxFileBytes >= 1<<20 {
		return fmt.Sprintf("File too large. Maximum size is %dMB", maxFileBytes>>20)
	}
	return fmt.Sprintf("File too large. Maximum size is %d bytes", maxFileBytes)
}
