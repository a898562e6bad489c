/*
 * @Description: 纯文本与摘要
 * @Author: 安知鱼
 * @Date: 2025-08-08 16:10:36
 * @LastEditTime: 2026-02-05 11:06:50
 * @LastEditors: 安知鱼
 */
package parser

import (
	"html"
	"strings"

	"github.com/anzhiyu-c/anheyu-news/internal/pkg/strutil"
)

// StripHTML 去除所有标签并还原实体，返回纯文本
func StripHTML(htmlContent string) string {
	return html.UnescapeString(stripTagsPol.Sanitize(htmlContent))
}

// Summary 从渲染后的 HTML 生成长度不超过 maxRunes 的单行摘要
func Summary(renderedHTML string, maxRunes int) string {
	text := strings.Join(strings.Fields(StripHTML(renderedHTML)), " ")
	return strutil.Truncate(text, maxRunes)
}
