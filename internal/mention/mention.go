// Package mention 提取文本中的 @用户名
package mention

import "regexp"

var pattern = regexp.MustCompile(`@(\w+)`)

// Extract 按首次出现顺序返回去重后的用户名
// 只是候选，不保证对应已注册用户
func Extract(content string) []string {
	matches := pattern.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return []string{}
	}
	seen := make(map[string]struct{}, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		name := m[1]
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
