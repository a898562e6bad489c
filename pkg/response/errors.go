/*
 * @Description: 业务错误到 HTTP 状态码的映射
 * @Author: 安知鱼
 * @Date: 2026-02-06 11:24:33
 */
package response

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/anzhiyu-c/anheyu-news/pkg/constant"
)

// StatusFromError 根据错误链中的哨兵错误决定状态码
func StatusFromError(err error) int {
	switch {
	case errors.Is(err, constant.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, constant.ErrInvalidField),
		errors.Is(err, constant.ErrValidation),
		errors.Is(err, constant.ErrBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// FailWithError 按错误类型返回失败响应，未知错误不向客户端暴露细节
func FailWithError(c *gin.Context, err error) {
	code := StatusFromError(err)
	if code == http.StatusInternalServerError {
		_ = c.Error(err)
		Fail(c, code, constant.ErrInternalServer.Error())
		return
	}
	Fail(c, code, err.Error())
}

// ParseID 解析路径参数中的正整数ID
func ParseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		Fail(c, http.StatusBadRequest, "无效的ID")
		return 0, false
	}
	return uint(id), true
}
