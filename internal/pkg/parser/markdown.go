/*
 * @Description: 新闻正文 Markdown 渲染
 * @Author: 安知鱼
 * @Date: 2025-08-08 15:57:23
 * @LastEditTime: 2026-02-05 11:02:17
 * @LastEditors: 安知鱼
 */
package parser

import (
	"bytes"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	mdParser     goldmark.Markdown
	bodyPolicy   *bluemonday.Policy
	stripTagsPol *bluemonday.Policy
)

func init() {
	// 新闻正文只需要 GFM，不需要脚注和任务列表
	mdParser = goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Typographer,
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithUnsafe(), // 原始 HTML 交给 bluemonday 清理
		),
	)

	bodyPolicy = bluemonday.UGCPolicy()
	bodyPolicy.AllowAttrs("id").OnElements("h1", "h2", "h3", "h4", "h5", "h6")
	bodyPolicy.AllowURLSchemes("http", "https")
	bodyPolicy.RequireNoFollowOnLinks(true)

	stripTagsPol = bluemonday.StripTagsPolicy()
}

// MarkdownToHTML 将新闻正文转换为安全的 HTML
func MarkdownToHTML(mdContent string) (string, error) {
	var buf bytes.Buffer
	if err := mdParser.Convert([]byte(mdContent), &buf); err != nil {
		return "", err
	}
	return bodyPolicy.Sanitize(buf.String()), nil
}
