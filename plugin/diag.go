package plugin

import (
	"fmt"
	"go/token"
)

// Diagnostic 编译期诊断，携带消息和精确的源码位置
// 它是生成失败时唯一的错误通道，渲染为 path:line:col: message
type Diagnostic struct {
	Path    string // 源文件路径
	Line    int    // 起始行（1 起）
	Column  int    // 起始列（1 起）
	EndLine int    // 结束行，0 表示未知
	EndCol  int    // 结束列，0 表示未知
	Message string // 诊断消息
}

// NewDiagnostic 在指定位置创建诊断
func NewDiagnostic(pos token.Position, format string, args ...any) *Diagnostic {
	return &Diagnostic{
		Path:    pos.Filename,
		Line:    pos.Line,
		Column:  pos.Column,
		Message: fmt.Sprintf(format, args...),
	}
}

// WithEnd 设置诊断范围的结束位置，返回自身便于链式调用
func (d *Diagnostic) WithEnd(pos token.Position) *Diagnostic {
	d.EndLine = pos.Line
	d.EndCol = pos.Column
	return d
}

// Error 实现 error 接口
func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", d.Path, d.Line, d.Column, d.Message)
}

// Position 返回诊断的起始位置
func (d *Diagnostic) Position() token.Position {
	return token.Position{Filename: d.Path, Line: d.Line, Column: d.Column}
}
