/*
 * @Description: 版本信息处理器
 * @Author: 安知鱼
 * @Date: 2025-09-26 09:52:32
 * @LastEditTime: 2026-02-06 11:44:03
 * @LastEditors: 安知鱼
 */
package version

import (
	"github.com/anzhiyu-c/anheyu-news/internal/pkg/version"
	"github.com/anzhiyu-c/anheyu-news/pkg/response"
	"github.com/gin-gonic/gin"
)

// Handler 版本信息处理器
type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// GetVersion 获取版本信息
// @Summary      获取版本信息
// @Description  获取应用的详细版本信息
// @Tags         辅助工具
// @Produce      json
// @Success      200  {object}  response.Response{data=version.BuildInfo}  "版本信息"
// @Router       /version [get]
func (h *Handler) GetVersion(c *gin.Context) {
	response.Success(c, version.GetBuildInfo(), "获取版本信息成功")
}
