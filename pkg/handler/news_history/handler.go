/*
 * @Description: 新闻历史快照 HTTP 处理器
 * @Author: 安知鱼
 * @Date: 2026-01-13
 */
package news_history

import (
	"github.com/gin-gonic/gin"

	"github.com/anzhiyu-c/anheyu-news/pkg/response"
	historySvc "github.com/anzhiyu-c/anheyu-news/pkg/service/news_history"
)

// Handler 封装了所有与新闻历史快照相关的 HTTP 处理器
type Handler struct {
	svc historySvc.Service
}

// NewHandler 是 Handler 的构造函数
func NewHandler(svc historySvc.Service) *Handler {
	return &Handler{svc: svc}
}

// ListHistory 获取新闻历史快照列表
// @Summary      获取新闻历史快照列表
// @Description  返回新闻的全部历史快照，最新的在前
// @Tags         新闻历史
// @Produce      json
// @Param        id path int true "新闻ID"
// @Success      200 {object} response.Response{data=model.NewsHistoryListResponse}
// @Failure      400 {object} response.Response "无效的ID"
// @Failure      404 {object} response.Response "新闻不存在"
// @Router       /news/{id}/history [get]
func (h *Handler) ListHistory(c *gin.Context) {
	id, ok := response.ParseID(c, "id")
	if !ok {
		return
	}

	result, err := h.svc.ListHistory(c.Request.Context(), id)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, result, "获取成功")
}

// GetHistoryCount 获取历史快照数量
// @Summary      获取历史快照数量
// @Tags         新闻历史
// @Produce      json
// @Param        id path int true "新闻ID"
// @Success      200 {object} response.Response{data=object{count=int}}
// @Failure      400 {object} response.Response "无效的ID"
// @Router       /news/{id}/history/count [get]
func (h *Handler) GetHistoryCount(c *gin.Context) {
	id, ok := response.ParseID(c, "id")
	if !ok {
		return
	}

	count, err := h.svc.GetHistoryCount(c.Request.Context(), id)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, gin.H{"count": count}, "获取成功")
}
