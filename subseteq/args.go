package subseteq

import (
	"go/scanner"
	"go/token"
	"strconv"

	"github.com/donutnomad/eqgen/internal/utils"
	"github.com/donutnomad/eqgen/plugin"
)

// Args 一次 @SubsetEq 注解解析后的配置
// 每次生成各自解析一份，解析完成后不再修改
type Args struct {
	Ignored []string // 要排除的字段名，保留书写顺序，不去重（重复无副作用）
	Method  string   // 方法名覆盖，空表示使用默认名
}

// ParseArgs 解析注解括号内的参数文本
// 识别两种参数形态，顺序任意，逗号分隔：
//
//	ignore(Field1, Field2, ...)   裸标识符列表，内容取并集
//	method = "Name"               字符串字面量，重复赋值时后者生效
//
// base 是参数文本第一个字符在源文件中的位置，
// 所有诊断都换算回源文件坐标，定位到最小的出错片段。
// 首个非法参数立即终止解析，不聚合多个错误，不返回部分结果。
func ParseArgs(src string, base token.Position) (*Args, *plugin.Diagnostic) {
	p := &argParser{src: []byte(src), base: base}

	fset := token.NewFileSet()
	p.file = fset.AddFile(base.Filename, -1, len(src))
	p.s.Init(p.file, p.src, p.onScanError, 0)

	args := &Args{}
	p.next()
	if p.scanErr != nil {
		return nil, p.scanErr
	}

	for p.tok != token.EOF {
		if d := p.parseItem(args); d != nil {
			return nil, d
		}
		if p.scanErr != nil {
			return nil, p.scanErr
		}

		switch p.tok {
		case token.COMMA:
			p.next()
		case token.EOF:
		default:
			return nil, p.diagAt(p.off, "应为 ',' 或参数结束，得到 %q", p.tokenText())
		}
	}

	return args, nil
}

// argParser 注解参数的 token 级解析器
type argParser struct {
	file *token.File
	src  []byte
	base token.Position // 参数文本在源文件中的起始位置

	s   scanner.Scanner
	tok token.Token
	lit string
	off int // 当前 token 在参数文本内的字节偏移

	scanErr *plugin.Diagnostic // 扫描器报出的第一个错误
}

// next 读取下一个 token，跳过扫描器自动插入的分号
func (p *argParser) next() {
	for {
		pos, tok, lit := p.s.Scan()
		if tok == token.SEMICOLON && lit == "\n" {
			continue
		}
		p.off = p.file.Offset(pos)
		p.tok, p.lit = tok, lit
		return
	}
}

// parseItem 解析单个参数项
func (p *argParser) parseItem(args *Args) *plugin.Diagnostic {
	if p.tok != token.IDENT {
		return p.badItem(p.off)
	}

	name, nameOff := p.lit, p.off
	p.next()

	switch p.tok {
	case token.LPAREN:
		if name != "ignore" {
			return p.diagAt(nameOff, "应为 ignore(...)，不支持 %s(...)", name)
		}
		return p.parseIgnoreList(args)
	case token.ASSIGN:
		if name != "method" {
			return p.diagAt(nameOff, "赋值左侧应为 method，得到 %s", name)
		}
		return p.parseMethodValue(args)
	default:
		return p.badItem(nameOff)
	}
}

// parseIgnoreList 解析 ignore(...) 的标识符列表，当前 token 为 '('
func (p *argParser) parseIgnoreList(args *Args) *plugin.Diagnostic {
	openOff := p.off
	p.next()

	for p.tok != token.RPAREN {
		if p.tok == token.EOF {
			return p.diagAt(openOff, "ignore(...) 缺少闭括号")
		}
		if p.tok != token.IDENT {
			return p.badIgnoreArg(p.off)
		}

		ident, identOff := p.lit, p.off
		p.next()

		switch p.tok {
		case token.COMMA:
			args.Ignored = append(args.Ignored, ident)
			p.next()
		case token.RPAREN:
			args.Ignored = append(args.Ignored, ident)
		default:
			// foo.Bar、foo(x) 之类的复合表达式，不是裸标识符
			return p.badIgnoreArg(identOff)
		}
	}

	p.next() // 吃掉 ')'
	return nil
}

// parseMethodValue 解析 method = "..." 的右侧，当前 token 为 '='
func (p *argParser) parseMethodValue(args *Args) *plugin.Diagnostic {
	p.next()

	if p.tok != token.STRING {
		return p.badMethodValue(p.off)
	}

	lit, litOff := p.lit, p.off
	p.next()

	// 字符串后还跟着别的 token，说明右侧是 "a" + "b" 之类的表达式
	if p.tok != token.COMMA && p.tok != token.EOF {
		return p.badMethodValue(litOff)
	}

	val, err := strconv.Unquote(lit)
	if err != nil {
		return p.diagAt(litOff, "method 的值不是合法的字符串字面量")
	}
	if !utils.IsValidIdent(val) {
		return p.diagAt(litOff, "method 的值不是合法的 Go 标识符: %q", val)
	}

	args.Method = val
	return nil
}

// badItem 参数项不属于任何已知形态
func (p *argParser) badItem(startOff int) *plugin.Diagnostic {
	endOff := p.skipItem()
	return p.diagSpan(startOff, endOff, `应为 ignore(...) 或 method = "..."`)
}

// badIgnoreArg ignore(...) 中出现了非标识符参数
func (p *argParser) badIgnoreArg(startOff int) *plugin.Diagnostic {
	endOff := p.skipArg()
	return p.diagSpan(startOff, endOff, "ignore(...) 中应为字段标识符")
}

// badMethodValue method 的右侧不是单个字符串字面量
func (p *argParser) badMethodValue(startOff int) *plugin.Diagnostic {
	endOff := p.skipItem()
	return p.diagSpan(startOff, endOff, "method 的值应为字符串字面量")
}

// skipItem 跳到当前参数项末尾（顶层 ',' 或 EOF），返回末尾偏移
func (p *argParser) skipItem() int {
	return p.skipUntil(func(depth int) bool {
		return depth == 0 && p.tok == token.COMMA
	})
}

// skipArg 跳到 ignore 列表中当前参数末尾（',' 或 ')'），返回末尾偏移
func (p *argParser) skipArg() int {
	return p.skipUntil(func(depth int) bool {
		return depth == 0 && (p.tok == token.COMMA || p.tok == token.RPAREN)
	})
}

// skipUntil 按括号深度前进直到 stop 条件或 EOF，返回最后消费 token 的结束偏移
func (p *argParser) skipUntil(stop func(depth int) bool) int {
	end := p.off
	depth := 0
	for p.tok != token.EOF {
		if stop(depth) {
			return end
		}
		switch p.tok {
		case token.LPAREN, token.LBRACK, token.LBRACE:
			depth++
		case token.RPAREN, token.RBRACK, token.RBRACE:
			if depth == 0 {
				return end
			}
			depth--
		}
		end = p.off + p.tokenLen()
		p.next()
	}
	return end
}

// tokenLen 当前 token 的文本长度
func (p *argParser) tokenLen() int {
	if p.lit != "" {
		return len(p.lit)
	}
	if p.tok == token.EOF {
		return 0
	}
	return len(p.tok.String())
}

// tokenText 当前 token 的文本形式，用于诊断消息
func (p *argParser) tokenText() string {
	if p.lit != "" {
		return p.lit
	}
	return p.tok.String()
}

// position 将参数文本内的偏移换算为源文件坐标
func (p *argParser) position(off int) token.Position {
	pos := p.base
	for i := 0; i < off && i < len(p.src); i++ {
		if p.src[i] == '\n' {
			pos.Line++
			pos.Column = 1
		} else {
			pos.Column++
		}
		pos.Offset++
	}
	return pos
}

// diagAt 在指定偏移处创建诊断
func (p *argParser) diagAt(off int, format string, args ...any) *plugin.Diagnostic {
	return plugin.NewDiagnostic(p.position(off), format, args...)
}

// diagSpan 创建带范围的诊断
func (p *argParser) diagSpan(startOff, endOff int, format string, args ...any) *plugin.Diagnostic {
	return p.diagAt(startOff, format, args...).WithEnd(p.position(endOff))
}

// onScanError 记录扫描器报出的第一个错误
func (p *argParser) onScanError(pos token.Position, msg string) {
	if p.scanErr == nil {
		p.scanErr = plugin.NewDiagnostic(p.position(pos.Offset), "参数无法解析: %s", msg)
	}
}
