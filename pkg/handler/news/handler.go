/*
 * @Description: 新闻 HTTP 处理器
 * @Author: 安知鱼
 * @Date: 2026-02-04 09:30:27
 * @LastEditTime: 2026-02-06 14:02:11
 * @LastEditors: 安知鱼
 */
package news

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anzhiyu-c/anheyu-news/pkg/constant"
	"github.com/anzhiyu-c/anheyu-news/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-news/pkg/response"
	newsSvc "github.com/anzhiyu-c/anheyu-news/pkg/service/news"
)

// MessageUpdated 更新与回滚成功时返回的消息
const MessageUpdated = "Updated"

// Handler 封装了所有与新闻相关的 HTTP 处理器
type Handler struct {
	svc newsSvc.Service
}

// NewHandler 是 Handler 的构造函数
func NewHandler(svc newsSvc.Service) *Handler {
	return &Handler{svc: svc}
}

// Index 将根路径重定向到新闻列表
func (h *Handler) Index(c *gin.Context) {
	c.Redirect(http.StatusFound, "/news")
}

// List 获取全部新闻
// @Summary      获取新闻列表
// @Description  按 ID 升序返回全部新闻
// @Tags         新闻
// @Produce      json
// @Success      200 {object} response.Response{data=[]model.News}
// @Failure      500 {object} response.Response "服务器内部错误"
// @Router       /news [get]
func (h *Handler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, list, "获取成功")
}

// Get 获取单条新闻
// @Summary      获取新闻
// @Tags         新闻
// @Produce      json
// @Param        id path int true "新闻ID"
// @Success      200 {object} response.Response{data=model.News}
// @Failure      400 {object} response.Response "无效的ID"
// @Failure      404 {object} response.Response "新闻不存在"
// @Router       /news/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	id, ok := response.ParseID(c, "id")
	if !ok {
		return
	}
	n, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, n, "获取成功")
}

// Create 创建新闻
// @Summary      创建新闻
// @Tags         新闻
// @Accept       json
// @Produce      json
// @Param        body body model.CreateNewsRequest true "新闻内容"
// @Success      201 {object} response.CreatedResponse{data=model.CreateNewsResponse}
// @Failure      400 {object} response.Response "参数校验失败"
// @Failure      429 {object} response.Response "请求过于频繁"
// @Router       /news [post]
func (h *Handler) Create(c *gin.Context) {
	var req model.CreateNewsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FailWithError(c, fmt.Errorf("%w: %v", constant.ErrValidation, err))
		return
	}

	id, err := h.svc.Create(c.Request.Context(), &req)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Created(c, id, model.CreateNewsResponse{ID: id}, "Created")
}

// Update 部分更新新闻，被修改字段的旧值会记录为一条历史快照
// @Summary      部分更新新闻
// @Description  请求体为 title/text/img/tags 的任意非空子集，出现未知字段时不做任何修改
// @Tags         新闻
// @Accept       json
// @Produce      json
// @Param        id path int true "新闻ID"
// @Param        body body object true "需要更新的字段"
// @Success      200 {object} response.Response
// @Failure      400 {object} response.Response "无效的字段或参数校验失败"
// @Failure      404 {object} response.Response "新闻不存在"
// @Router       /news/{id} [patch]
func (h *Handler) Update(c *gin.Context) {
	id, ok := response.ParseID(c, "id")
	if !ok {
		return
	}

	var body map[string]json.RawMessage
	if err := c.ShouldBindJSON(&body); err != nil {
		response.FailWithError(c, fmt.Errorf("%w: 请求体必须是 JSON 对象", constant.ErrValidation))
		return
	}

	if err := h.svc.Update(c.Request.Context(), id, body); err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, nil, MessageUpdated)
}

// Rollback 回滚最近一次更新
// @Summary      回滚新闻
// @Description  恢复最近一条历史快照中记录的字段
// @Tags         新闻
// @Produce      json
// @Param        id path int true "新闻ID"
// @Success      200 {object} response.Response
// @Failure      404 {object} response.Response "新闻不存在或没有历史快照"
// @Router       /news/{id}/rollback [patch]
func (h *Handler) Rollback(c *gin.Context) {
	id, ok := response.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Rollback(c.Request.Context(), id); err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, nil, MessageUpdated)
}

// Delete 删除新闻及其全部历史快照
// @Summary      删除新闻
// @Tags         新闻
// @Param        id path int true "新闻ID"
// @Success      204
// @Failure      404 {object} response.Response "新闻不存在"
// @Router       /news/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	id, ok := response.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		response.FailWithError(c, err)
		return
	}
	response.NoContent(c)
}

// Render 获取渲染后的新闻正文
// @Summary      渲染新闻正文
// @Description  将 Markdown 正文渲染为安全的 HTML，并生成纯文本摘要
// @Tags         新闻
// @Produce      json
// @Param        id path int true "新闻ID"
// @Success      200 {object} response.Response{data=model.RenderedNews}
// @Failure      404 {object} response.Response "新闻不存在"
// @Router       /news/{id}/render [get]
func (h *Handler) Render(c *gin.Context) {
	id, ok := response.ParseID(c, "id")
	if !ok {
		return
	}
	rendered, err := h.svc.Render(c.Request.Context(), id)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, rendered, "获取成功")
}
