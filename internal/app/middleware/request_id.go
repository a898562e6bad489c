/*
 * @Description: 请求ID中间件
 * @Author: 安知鱼
 * @Date: 2026-02-06 11:05:12
 */
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader 请求ID所在的请求头与响应头
	RequestIDHeader = "X-Request-ID"
	// RequestIDKey 请求ID在 gin.Context 中的键
	RequestIDKey = "request_id"
)

// RequestID 沿用客户端传入的请求ID，没有时生成一个新的 UUID
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Set(RequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}
