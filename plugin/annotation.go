package plugin

import (
	"go/ast"
	"go/token"
)

// ParseAnnotations 从注释组中解析所有注解
// 与正则方案不同，这里逐字符扫描并配对括号，
// 因此支持嵌套括号的参数（如 ignore(A, B)），
// 并为参数文本记录精确的源码位置
func ParseAnnotations(doc *ast.CommentGroup, fset *token.FileSet) []*Annotation {
	if doc == nil {
		return nil
	}

	var annotations []*Annotation
	for _, c := range doc.List {
		base := fset.Position(c.Pos())
		annotations = append(annotations, ParseCommentAnnotations(c.Text, base)...)
	}
	return annotations
}

// ParseCommentAnnotations 从单条注释的原始文本中解析注解
// text 是包含 // 或 /* */ 前缀的原始文本，base 是其第一个字符的位置
func ParseCommentAnnotations(text string, base token.Position) []*Annotation {
	var annotations []*Annotation

	cur := cursor{pos: base}
	for i := 0; i < len(text); i++ {
		if text[i] != '@' || i+1 >= len(text) || !isIdentStart(text[i+1]) {
			cur.advance(text[i])
			continue
		}

		// 读取注解名
		start := i
		j := i + 1
		for j < len(text) && isIdentPart(text[j]) {
			j++
		}
		name := text[i+1 : j]

		ann := &Annotation{Name: name}

		// 推进到名称末尾
		for k := i; k < j; k++ {
			cur.advance(text[k])
		}

		// 读取可选的括号参数（配对括号，支持嵌套与字符串）
		if j < len(text) && text[j] == '(' {
			cur.advance(text[j])
			argsStart := j + 1
			ann.ArgsPos = cur.pos

			depth := 1
			k := argsStart
			var quote byte
			for k < len(text) && depth > 0 {
				ch := text[k]
				switch {
				case quote != 0:
					if ch == quote {
						quote = 0
					}
				case ch == '"' || ch == '`':
					quote = ch
				case ch == '(':
					depth++
				case ch == ')':
					depth--
				}
				if depth > 0 {
					cur.advance(ch)
					k++
				}
			}

			if depth != 0 {
				// 括号不闭合，放弃本条注释的剩余部分
				break
			}

			ann.Args = text[argsStart:k]
			cur.advance(text[k]) // 闭括号
			j = k + 1
		} else {
			ann.ArgsPos = cur.pos
		}

		ann.Raw = text[start:j]
		annotations = append(annotations, ann)
		i = j - 1
	}

	return annotations
}

// cursor 跟踪文本内的文件坐标
type cursor struct {
	pos token.Position
}

func (c *cursor) advance(ch byte) {
	if ch == '\n' {
		c.pos.Line++
		c.pos.Column = 1
	} else {
		c.pos.Column++
	}
	c.pos.Offset++
}

func isIdentStart(ch byte) bool {
	return ch == '_' || ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z')
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || ('0' <= ch && ch <= '9')
}
