/*
 * @Description: 新闻领域模型
 * @Author: 安知鱼
 * @Date: 2026-02-03 10:20:11
 * @LastEditTime: 2026-02-05 16:42:08
 * @LastEditors: 安知鱼
 */
package model

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/anzhiyu-c/anheyu-news/internal/pkg/strutil"
	"github.com/anzhiyu-c/anheyu-news/pkg/constant"
)

const (
	// TitleMaxLength 标题最大长度（按字符计）
	TitleMaxLength = 100
	// ImgMaxLength 图片地址最大长度（按字符计）
	ImgMaxLength = 255
)

// NewsField 是新闻记录中允许被部分更新的字段
type NewsField string

const (
	NewsFieldTitle NewsField = "title"
	NewsFieldText  NewsField = "text"
	NewsFieldImg   NewsField = "img"
	NewsFieldTags  NewsField = "tags"
)

// newsFields 固定的字段白名单，同时决定字段的规范顺序
var newsFields = []NewsField{NewsFieldTitle, NewsFieldText, NewsFieldImg, NewsFieldTags}

// NewsFields 返回所有允许更新的字段
func NewsFields() []NewsField {
	fields := make([]NewsField, len(newsFields))
	copy(fields, newsFields)
	return fields
}

// ParseNewsField 将字段名解析为 NewsField，不在白名单内的字段返回 ErrInvalidField
func ParseNewsField(name string) (NewsField, error) {
	for _, f := range newsFields {
		if string(f) == name {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", constant.ErrInvalidField, name)
}

// News 新闻领域模型
type News struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	Text      string    `json:"text"`
	Img       string    `json:"img"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone 返回一个深拷贝，避免调用方修改共享的标签切片
func (n *News) Clone() *News {
	if n == nil {
		return nil
	}
	c := *n
	c.Tags = append([]string(nil), n.Tags...)
	return &c
}

// Snapshot 截取指定字段的当前值，用于写入历史记录
func (n *News) Snapshot(fields []NewsField) NewsPatch {
	var p NewsPatch
	for _, f := range fields {
		switch f {
		case NewsFieldTitle:
			title := n.Title
			p.Title = &title
		case NewsFieldText:
			text := n.Text
			p.Text = &text
		case NewsFieldImg:
			img := n.Img
			p.Img = &img
		case NewsFieldTags:
			p.Tags = append(make([]string, 0, len(n.Tags)), n.Tags...)
		}
	}
	return p
}

// Apply 将补丁中出现的字段写入记录，未出现的字段保持不变
func (n *News) Apply(p NewsPatch) {
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Text != nil {
		n.Text = *p.Text
	}
	if p.Img != nil {
		n.Img = *p.Img
	}
	if p.Tags != nil {
		n.Tags = append(make([]string, 0, len(p.Tags)), p.Tags...)
	}
}

// CreateNewsRequest 创建新闻的请求体。
// text 与 img 允许为空字符串，是否出现由 Validate 检查。
type CreateNewsRequest struct {
	Title *string  `json:"title" binding:"required,min=1,max=100"`
	Text  *string  `json:"text"`
	Img   *string  `json:"img" binding:"omitempty,max=255"`
	Tags  []string `json:"tags" binding:"required,min=1"`
}

// Validate 校验创建参数，失败时返回包装了 ErrValidation 的错误
func (r *CreateNewsRequest) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: 请求体不能为空", constant.ErrValidation)
	}
	if r.Title == nil {
		return fmt.Errorf("%w: 缺少必填字段 title", constant.ErrValidation)
	}
	if r.Text == nil {
		return fmt.Errorf("%w: 缺少必填字段 text", constant.ErrValidation)
	}
	if r.Img == nil {
		return fmt.Errorf("%w: 缺少必填字段 img", constant.ErrValidation)
	}
	if r.Tags == nil {
		return fmt.Errorf("%w: 缺少必填字段 tags", constant.ErrValidation)
	}
	return r.Patch().Validate()
}

// Patch 将创建请求视为一个包含全部字段的补丁，复用同一套校验规则
func (r *CreateNewsRequest) Patch() NewsPatch {
	return NewsPatch{Title: r.Title, Text: r.Text, Img: r.Img, Tags: r.Tags}
}

// CreateNewsResponse 创建成功后返回的数据
type CreateNewsResponse struct {
	ID uint `json:"id"`
}

// RenderedNews 渲染后的新闻内容
type RenderedNews struct {
	ID      uint     `json:"id"`
	Title   string   `json:"title"`
	HTML    string   `json:"html"`
	Summary string   `json:"summary"`
	Tags    []string `json:"tags"`
}

// validateTitle 标题必须非空白，且长度在 [1, TitleMaxLength] 之间
func validateTitle(title string) error {
	if strutil.IsBlank(title) {
		return fmt.Errorf("%w: 标题不能为空", constant.ErrValidation)
	}
	if n := utf8.RuneCountInString(title); n > TitleMaxLength {
		return fmt.Errorf("%w: 标题长度不能超过 %d 个字符，当前 %d", constant.ErrValidation, TitleMaxLength, n)
	}
	return nil
}
