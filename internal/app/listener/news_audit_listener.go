/*
 * @Description: 监听新闻事件，记录审计日志，并在更新后按保留策略修剪快照。
 * @Author: 安知鱼
 * @Date: 2025-07-18 17:30:00
 * @LastEditTime: 2026-02-06 09:58:14
 * @LastEditors: 安知鱼
 */
package listener

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/anzhiyu-c/anheyu-news/internal/pkg/event"
	"github.com/anzhiyu-c/anheyu-news/pkg/domain/repository"
)

// pruneTimeout 单次修剪快照的超时时间
const pruneTimeout = 10 * time.Second

// NewsAuditListener 订阅所有新闻事件。
// historyRepo 非空且 maxVersions > 0 时，每次更新后修剪该新闻超出保留数量的快照。
type NewsAuditListener struct {
	logger      *slog.Logger
	historyRepo repository.NewsHistoryRepository
	maxVersions int

	mu     sync.Mutex
	counts map[event.Topic]int
}

// NewNewsAuditListener 是 NewsAuditListener 的构造函数，创建后即完成订阅。
func NewNewsAuditListener(
	eventBus *event.EventBus,
	historyRepo repository.NewsHistoryRepository,
	maxVersions int,
) *NewsAuditListener {
	l := &NewsAuditListener{
		logger:      slog.New(slog.NewTextHandler(os.Stdout, nil)).With("system", "news_audit"),
		historyRepo: historyRepo,
		maxVersions: maxVersions,
		counts:      make(map[event.Topic]int),
	}
	for _, topic := range []event.Topic{event.NewsCreated, event.NewsUpdated, event.NewsRolledBack, event.NewsDeleted} {
		t := topic
		eventBus.Subscribe(t, func(payload interface{}) { l.handle(t, payload) })
	}
	return l
}

// Count 返回某个主题已处理的事件数量
func (l *NewsAuditListener) Count(topic event.Topic) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.counts[topic]
}

func (l *NewsAuditListener) handle(topic event.Topic, payload interface{}) {
	p, ok := payload.(event.NewsPayload)
	if !ok {
		l.logger.Error("收到的新闻事件负载类型不正确", "topic", string(topic))
		return
	}

	l.logger.Info("新闻事件", "topic", string(topic), "news_id", p.NewsID, "fields", p.Fields)

	if topic == event.NewsUpdated {
		l.prune(p.NewsID)
	}

	l.mu.Lock()
	l.counts[topic]++
	l.mu.Unlock()
}

func (l *NewsAuditListener) prune(newsID uint) {
	if l.historyRepo == nil || l.maxVersions <= 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), pruneTimeout)
	defer cancel()

	deleted, err := l.historyRepo.DeleteOldVersions(ctx, newsID, l.maxVersions)
	if err != nil {
		l.logger.Error("修剪历史快照失败", "news_id", newsID, "error", err)
		return
	}
	if deleted > 0 {
		l.logger.Info("修剪历史快照", "news_id", newsID, "deleted", deleted, "keep", l.maxVersions)
	}
}
