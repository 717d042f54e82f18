package subseteq

import (
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// basePos 模拟注解参数出现在源文件中的位置
func basePos() token.Position {
	return token.Position{Filename: "models.go", Line: 3, Column: 15, Offset: 40}
}

func TestParseArgsBasic(t *testing.T) {
	args, diag := ParseArgs(`ignore(UpdatedAt, CacheToken), method = "EqIgnoringMeta"`, basePos())
	require.Nil(t, diag)
	assert.Equal(t, []string{"UpdatedAt", "CacheToken"}, args.Ignored)
	assert.Equal(t, "EqIgnoringMeta", args.Method)
}

func TestParseArgsOrderInvariance(t *testing.T) {
	a, diag := ParseArgs(`ignore(A, B), method = "Eq"`, basePos())
	require.Nil(t, diag)

	b, diag := ParseArgs(`method = "Eq", ignore(A, B)`, basePos())
	require.Nil(t, diag)

	assert.Equal(t, a, b)
}

func TestParseArgsEmpty(t *testing.T) {
	// 无参数
	args, diag := ParseArgs("", basePos())
	require.Nil(t, diag)
	assert.Empty(t, args.Ignored)
	assert.Empty(t, args.Method)

	// 空 ignore 列表
	args, diag = ParseArgs("ignore()", basePos())
	require.Nil(t, diag)
	assert.Empty(t, args.Ignored)

	// 只有 method
	args, diag = ParseArgs(`method = "Same"`, basePos())
	require.Nil(t, diag)
	assert.Empty(t, args.Ignored)
	assert.Equal(t, "Same", args.Method)
}

func TestParseArgsTrailingComma(t *testing.T) {
	args, diag := ParseArgs("ignore(A, B,)", basePos())
	require.Nil(t, diag)
	assert.Equal(t, []string{"A", "B"}, args.Ignored)
}

func TestParseArgsDuplicateIgnore(t *testing.T) {
	// 重复排除同一字段不是错误，集合语义下无副作用
	args, diag := ParseArgs("ignore(A, A, B)", basePos())
	require.Nil(t, diag)
	assert.Equal(t, []string{"A", "A", "B"}, args.Ignored)
}

func TestParseArgsMethodLastWins(t *testing.T) {
	args, diag := ParseArgs(`method = "First", method = "Second"`, basePos())
	require.Nil(t, diag)
	assert.Equal(t, "Second", args.Method)
}

func TestParseArgsMultilineSpan(t *testing.T) {
	// 参数跨行时位置换算要跟着换行走
	args, diag := ParseArgs("ignore(A,\nB)", basePos())
	require.Nil(t, diag)
	assert.Equal(t, []string{"A", "B"}, args.Ignored)
}

func TestParseArgsBadIgnoreArg(t *testing.T) {
	_, diag := ParseArgs("ignore(1 + 2)", basePos())
	require.NotNil(t, diag)
	assert.Contains(t, diag.Message, "字段标识符")

	// 诊断范围覆盖最小出错片段 "1 + 2"
	// 参数文本从 models.go:3:15 开始，"1" 在偏移 7 处
	assert.Equal(t, 3, diag.Line)
	assert.Equal(t, 15+7, diag.Column)
	assert.Equal(t, 15+12, diag.EndCol)
}

func TestParseArgsQualifiedIdentRejected(t *testing.T) {
	_, diag := ParseArgs("ignore(pkg.Field)", basePos())
	require.NotNil(t, diag)
	assert.Contains(t, diag.Message, "字段标识符")
}

func TestParseArgsBadMethodValue(t *testing.T) {
	// 右侧不是字符串字面量
	_, diag := ParseArgs("method = Foo", basePos())
	require.NotNil(t, diag)
	assert.Contains(t, diag.Message, "字符串字面量")

	// 右侧是字符串表达式
	_, diag = ParseArgs(`method = "A" + "B"`, basePos())
	require.NotNil(t, diag)
	assert.Contains(t, diag.Message, "字符串字面量")
}

func TestParseArgsMethodNotIdent(t *testing.T) {
	_, diag := ParseArgs(`method = "1bad"`, basePos())
	require.NotNil(t, diag)
	assert.Contains(t, diag.Message, "标识符")

	_, diag = ParseArgs(`method = "has space"`, basePos())
	require.NotNil(t, diag)
	assert.Contains(t, diag.Message, "标识符")
}

func TestParseArgsUnknownItem(t *testing.T) {
	// 未知调用形态
	_, diag := ParseArgs("frobnicate(A)", basePos())
	require.NotNil(t, diag)
	assert.Contains(t, diag.Message, "ignore")

	// 未知赋值左侧
	_, diag = ParseArgs(`only = "X"`, basePos())
	require.NotNil(t, diag)
	assert.Contains(t, diag.Message, "method")

	// 裸标识符不属于任何形态
	_, diag = ParseArgs("wibble", basePos())
	require.NotNil(t, diag)
	assert.Contains(t, diag.Message, "ignore(...)")
}

func TestParseArgsUnclosedIgnore(t *testing.T) {
	_, diag := ParseArgs("ignore(", basePos())
	require.NotNil(t, diag)
	assert.Contains(t, diag.Message, "闭括号")
}

func TestParseArgsFirstErrorAborts(t *testing.T) {
	// 第一个非法参数立即终止，后面的合法参数不产生部分结果
	args, diag := ParseArgs(`bogus(1), method = "Fine"`, basePos())
	require.NotNil(t, diag)
	assert.Nil(t, args)
}

func TestParseArgsDiagnosticFormat(t *testing.T) {
	_, diag := ParseArgs("ignore(1)", basePos())
	require.NotNil(t, diag)

	// 诊断以 path:line:col: message 形式呈现
	assert.Contains(t, diag.Error(), "models.go:3:")
}
