/*
 * @Description: 统一响应结构
 * @Author: 安知鱼
 * @Date: 2025-06-15 12:16:18
 * @LastEditTime: 2026-02-06 11:20:18
 * @LastEditors: 安知鱼
 */
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response 是统一的API返回结构体
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// CreatedResponse 创建成功的返回结构，顶层额外携带新资源的 id
type CreatedResponse struct {
	Response
	ID uint `json:"id"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}, message string) {
	SuccessWithStatus(c, http.StatusOK, data, message)
}

// Fail 失败响应
func Fail(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
		Data:    nil,
	})
}

// SuccessWithStatus 成功响应，但允许自定义 HTTP 状态码
func SuccessWithStatus(c *gin.Context, code int, data interface{}, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
		Data:    data,
	})
}

// Created 返回 201，data 与顶层都带上新资源的 id
func Created(c *gin.Context, id uint, data interface{}, message string) {
	c.JSON(http.StatusCreated, CreatedResponse{
		Response: Response{
			Code:    http.StatusCreated,
			Message: message,
			Data:    data,
		},
		ID: id,
	})
}

// NoContent 返回 204，不带响应体
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
