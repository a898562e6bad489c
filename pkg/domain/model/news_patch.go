/*
 * @Description: 新闻字段级补丁，既用于部分更新，也用于历史快照
 * @Author: 安知鱼
 * @Date: 2026-02-03 11:02:37
 * @LastEditTime: 2026-02-05 16:40:55
 * @LastEditors: 安知鱼
 */
package model

import (
	"encoding/json"
	"fmt"
	"sort"
	"unicode/utf8"

	"github.com/anzhiyu-c/anheyu-news/pkg/constant"
)

// NewsPatch 描述一组字段的取值。
// 指针为 nil（Tags 为 nil 切片）表示该字段未出现。
type NewsPatch struct {
	Title *string
	Text  *string
	Img   *string
	Tags  []string
}

// Fields 按规范顺序返回补丁中出现的字段
func (p NewsPatch) Fields() []NewsField {
	fields := make([]NewsField, 0, len(newsFields))
	if p.Title != nil {
		fields = append(fields, NewsFieldTitle)
	}
	if p.Text != nil {
		fields = append(fields, NewsFieldText)
	}
	if p.Img != nil {
		fields = append(fields, NewsFieldImg)
	}
	if p.Tags != nil {
		fields = append(fields, NewsFieldTags)
	}
	return fields
}

// IsEmpty 判断补丁是否不包含任何字段
func (p NewsPatch) IsEmpty() bool {
	return len(p.Fields()) == 0
}

// Validate 校验出现字段的取值约束
func (p NewsPatch) Validate() error {
	if p.Title != nil {
		if err := validateTitle(*p.Title); err != nil {
			return err
		}
	}
	if p.Img != nil {
		if n := utf8.RuneCountInString(*p.Img); n > ImgMaxLength {
			return fmt.Errorf("%w: 图片地址长度不能超过 %d 个字符，当前 %d", constant.ErrValidation, ImgMaxLength, n)
		}
	}
	if p.Tags != nil && len(p.Tags) == 0 {
		return fmt.Errorf("%w: 标签不能为空", constant.ErrValidation)
	}
	return nil
}

// MarshalJSON 只输出出现的字段，因此序列化后的键集合等于字段集合
func (p NewsPatch) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, 4)
	if p.Title != nil {
		m[string(NewsFieldTitle)] = *p.Title
	}
	if p.Text != nil {
		m[string(NewsFieldText)] = *p.Text
	}
	if p.Img != nil {
		m[string(NewsFieldImg)] = *p.Img
	}
	if p.Tags != nil {
		m[string(NewsFieldTags)] = p.Tags
	}
	return json.Marshal(m)
}

// UnmarshalJSON 使用与请求解析相同的严格规则
func (p *NewsPatch) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: 字段快照必须是 JSON 对象: %v", constant.ErrValidation, err)
	}
	decoded, err := DecodeNewsPatch(raw)
	if err != nil {
		return err
	}
	*p = decoded
	return nil
}

// DecodeNewsPatch 将原始 JSON 对象解析为补丁。
// 先检查全部字段名，任一未知字段返回 ErrInvalidField；之后再解析取值，类型错误返回 ErrValidation。
func DecodeNewsPatch(raw map[string]json.RawMessage) (NewsPatch, error) {
	var p NewsPatch

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]NewsField, 0, len(keys))
	for _, k := range keys {
		f, err := ParseNewsField(k)
		if err != nil {
			return NewsPatch{}, err
		}
		fields = append(fields, f)
	}

	for _, f := range fields {
		value := raw[string(f)]
		if string(value) == "null" {
			return NewsPatch{}, fmt.Errorf("%w: 字段 %s 不能为 null", constant.ErrValidation, f)
		}
		switch f {
		case NewsFieldTags:
			var tags []string
			if err := json.Unmarshal(value, &tags); err != nil {
				return NewsPatch{}, fmt.Errorf("%w: 字段 tags 必须是字符串数组", constant.ErrValidation)
			}
			if tags == nil {
				tags = []string{}
			}
			p.Tags = tags
		default:
			var s string
			if err := json.Unmarshal(value, &s); err != nil {
				return NewsPatch{}, fmt.Errorf("%w: 字段 %s 必须是字符串", constant.ErrValidation, f)
			}
			switch f {
			case NewsFieldTitle:
				p.Title = &s
			case NewsFieldText:
				p.Text = &s
			case NewsFieldImg:
				p.Img = &s
			}
		}
	}
	return p, nil
}
