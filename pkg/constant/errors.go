/*
 * @Description: 业务错误定义
 * @Author: 安知鱼
 * @Date: 2025-06-27 12:08:15
 * @LastEditTime: 2026-02-03 10:12:41
 * @LastEditors: 安知鱼
 */
package constant

import "errors"

// 定义业务逻辑相关的标准错误
var (
	// ErrNotFound 表示资源未找到，可以由 Handler 转换为 404
	ErrNotFound = errors.New("资源未找到")

	// ErrInvalidField 表示更新请求中包含未知字段，可以由 Handler 转换为 400
	ErrInvalidField = errors.New("无效的字段")

	// ErrValidation 表示参数校验失败（标题长度、空标签、缺少必填字段等），可以由 Handler 转换为 400
	ErrValidation = errors.New("参数校验失败")

	// ErrBadRequest 表示请求参数错误，可以由 Handler 转换为 400
	ErrBadRequest = errors.New("错误的请求")

	// ErrInternalServer 表示服务器内部错误，可以由 Handler 转换为 500
	ErrInternalServer = errors.New("内部服务器错误")
)
