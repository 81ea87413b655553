package middleware

import "github.com/gin-gonic/gin"

// NoStore 禁止客户端和代理缓存 API 响应
func NoStore() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.Next()
	}
}
