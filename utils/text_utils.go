package utils

import (
	"strings"
	"unicode/utf8"
)

// DeduplicateSlice 去重字符串切片，保留首次出现的顺序
func DeduplicateSlice(input []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(input))

	for _, val := range input {
		val = strings.TrimSpace(val)
		if val != "" && !seen[val] {
			result = append(result, val)
			seen[val] = true
		}
	}

	return result
}

// TruncateRunes 按字符截断，不会切断多字节字符
func TruncateRunes(text string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	runes := []rune(text)
	return string(runes[:n])
}

// Preview 生成日志用的文本预览，超长时追加省略号
func Preview(text string, n int) string {
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	return TruncateRunes(text, n) + "..."
}

// CleanGeneratedLine 清理模型返回的单行文本，去掉首尾空白、引号和markdown标题符号
func CleanGeneratedLine(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimLeft(text, "# ")
	text = strings.Trim(text, "\"'“”*")
	return strings.TrimSpace(text)
}

// CountWords 统计空白分隔的单词数
func CountWords(text string) int {
	return len(strings.Fields(text))
}
