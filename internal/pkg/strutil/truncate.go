/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-08-08 16:10:53
 * @LastEditTime: 2026-02-05 11:05:31
 * @LastEditors: 安知鱼
 */
package strutil

import (
	"strings"
	"unicode/utf8"
)

const ellipsis = "..."

// Truncate 按字符截断字符串，截断时补上省略号，结果不超过 maxLength 个字符
func Truncate(s string, maxLength int) string {
	if maxLength <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLength {
		return s
	}
	if maxLength <= len(ellipsis) {
		return string([]rune(s)[:maxLength])
	}

	runes := []rune(s)[:maxLength-len(ellipsis)]
	return strings.TrimRight(string(runes), " ") + ellipsis
}

// IsBlank 判断字符串是否只包含空白字符
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
