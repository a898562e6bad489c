/*
 * @Description: 新闻正文渲染与示例数据
 * @Author: 安知鱼
 * @Date: 2026-02-05 11:40:02
 */
package news

import (
	"context"
	"fmt"
	"log"

	"github.com/anzhiyu-c/anheyu-news/internal/pkg/parser"
	"github.com/anzhiyu-c/anheyu-news/pkg/domain/model"
)

// SummaryMaxLength 摘要最大长度（按字符计）
const SummaryMaxLength = 150

func (s *serviceImpl) Render(ctx context.Context, id uint) (*model.RenderedNews, error) {
	n, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	html, err := parser.MarkdownToHTML(n.Text)
	if err != nil {
		return nil, fmt.Errorf("渲染新闻 %d 正文失败: %w", id, err)
	}

	return &model.RenderedNews{
		ID:      n.ID,
		Title:   n.Title,
		HTML:    html,
		Summary: parser.Summary(html, SummaryMaxLength),
		Tags:    n.Tags,
	}, nil
}

// SeedTag 示例数据使用的占位标签，标签不能为空
const SeedTag = "lorem"

// seedNews 示例数据
var seedNews = []string{"Lorem Ipsum1", "Lorem Ipsum2", "Lorem Ipsum3"}

func (s *serviceImpl) Seed(ctx context.Context) (int, error) {
	count, err := s.repos.News.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("统计新闻数量失败: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	for i, title := range seedNews {
		title, text, img := title, "", ""
		req := &model.CreateNewsRequest{
			Title: &title,
			Text:  &text,
			Img:   &img,
			Tags:  []string{SeedTag},
		}
		if _, err := s.Create(ctx, req); err != nil {
			return i, fmt.Errorf("写入示例新闻失败: %w", err)
		}
	}

	log.Printf("[NewsService] 已写入 %d 条示例新闻", len(seedNews))
	return len(seedNews), nil
}
