package utils

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// goKeywords Go 关键词表
var goKeywords = map[string]bool{
	"break": true, "case": true, "chan": true, "const": true, "continue": true,
	"default": true, "defer": true, "else": true, "fallthrough": true, "for": true,
	"func": true, "go": true, "goto": true, "if": true, "import": true,
	"interface": true, "map": true, "package": true, "range": true, "return": true,
	"select": true, "struct": true, "switch": true, "type": true, "var": true,
}

// IsGoKeyword 检查是否是 Go 关键词
func IsGoKeyword(s string) bool {
	return goKeywords[s]
}

// IsValidIdent 检查字符串是否是合法的 Go 标识符（且不是关键词）
func IsValidIdent(s string) bool {
	if s == "" || IsGoKeyword(s) {
		return false
	}
	for i, r := range s {
		if unicode.IsLetter(r) || r == '_' {
			continue
		}
		if i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return true
}

// IsExported 检查标识符是否是导出的
func IsExported(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsUpper(r)
}

// ReceiverName 为类型名生成接收者变量名
// 取首字母小写；与保留名冲突时追加后缀
func ReceiverName(typeName string, reserved ...string) string {
	if typeName == "" {
		return "x"
	}
	name := strings.ToLower(typeName[:1])
	for _, r := range reserved {
		if name == r {
			return name + "0"
		}
	}
	if IsGoKeyword(name) {
		return name + "0"
	}
	return name
}
