/*
 * @Description: 新闻历史快照领域模型
 * @Author: 安知鱼
 * @Date: 2026-02-03 11:40:02
 */
package model

import "time"

// NewsHistory 一次更新之前被修改字段的旧值快照
type NewsHistory struct {
	ID        uint      `json:"id"`
	NewsID    uint      `json:"news_id"`
	Fields    NewsPatch `json:"fields"`
	CreatedAt time.Time `json:"created_at"`
}

// NewsHistoryListResponse 历史快照列表响应，按时间倒序
type NewsHistoryListResponse struct {
	List  []*NewsHistory `json:"list"`
	Total int            `json:"total"`
}
