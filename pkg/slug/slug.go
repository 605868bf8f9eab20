package slug

import (
	"regexp"
	"strings"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Make 生成 URL 片段：转小写，非字母数字的连续字符替换为 "-"，去掉首尾 "-"。
// 结果为空时返回 fallback。
func Make(s, fallback string) string {
	out := strings.Trim(nonAlnum.ReplaceAllString(strings.ToLower(s), "-"), "-")
	if out == "" {
		return fallback
	}
	return out
}
