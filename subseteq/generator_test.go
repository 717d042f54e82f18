package subseteq

import (
	"context"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/donutnomad/eqgen/plugin"
	"github.com/donutnomad/gg"
	"golang.org/x/tools/imports"
)

const itemSrc = `package models

type Item struct {
	ID         uint64
	Name       string
	UpdatedAt  int64
	CacheToken string
}
`

// writeModel 把源码写入临时目录，返回文件路径
func writeModel(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "models.go")
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// makeTarget 手工构造一个带 @SubsetEq 注解的目标
func makeTarget(filePath, structName, args string) *plugin.AnnotatedTarget {
	return &plugin.AnnotatedTarget{
		Target: &plugin.Target{
			Kind:        plugin.TargetStruct,
			Name:        structName,
			PackageName: "models",
			FilePath:    filePath,
			Position:    token.Position{Filename: filePath, Line: 3, Column: 1},
		},
		Annotations: []*plugin.Annotation{{
			Name:    "SubsetEq",
			Args:    args,
			ArgsPos: token.Position{Filename: filePath, Line: 2, Column: 14},
		}},
	}
}

// runGenerate 执行生成并返回唯一定义的代码文本
// 断言前先过 goimports，与写盘前的处理一致
func runGenerate(t *testing.T, targets ...*plugin.AnnotatedTarget) string {
	t.Helper()

	result, err := NewGenerator().Generate(&plugin.GenerateContext{Targets: targets})
	if err != nil {
		t.Fatalf("Generate() 出错: %v", err)
	}
	if result.HasErrors() {
		t.Fatalf("Generate() 产生诊断: %v", result.Errors)
	}
	if len(result.Definitions) != 1 {
		t.Fatalf("Generate() 得到 %d 个定义, 期望 1 个", len(result.Definitions))
	}

	var gen *gg.Generator
	for _, g := range result.Definitions {
		gen = g
	}

	formatted, err := imports.Process("models_subseteq.go", []byte(gen.String()), &imports.Options{
		Comments:  true,
		TabIndent: true,
		TabWidth:  8,
	})
	if err != nil {
		t.Fatalf("格式化生成代码失败: %v\n%s", err, gen.String())
	}
	return string(formatted)
}

func TestGenerateBasic(t *testing.T) {
	path := writeModel(t, itemSrc)
	target := makeTarget(path, "Item", `ignore(UpdatedAt, CacheToken), method = "EqIgnoringMeta"`)

	code := runGenerate(t, target)

	if !strings.Contains(code, "func (i *Item) EqIgnoringMeta(other *Item) bool") {
		t.Errorf("生成的代码应包含方法签名, got:\n%s", code)
	}
	if !strings.Contains(code, "i.ID == other.ID && i.Name == other.Name") {
		t.Errorf("生成的代码应按声明顺序比较保留字段, got:\n%s", code)
	}
	if strings.Contains(code, "UpdatedAt") || strings.Contains(code, "CacheToken") {
		t.Errorf("被忽略的字段不应出现在比较中, got:\n%s", code)
	}
}

func TestGenerateOutputPath(t *testing.T) {
	path := writeModel(t, itemSrc)
	target := makeTarget(path, "Item", "ignore(UpdatedAt)")

	result, err := NewGenerator().Generate(&plugin.GenerateContext{Targets: []*plugin.AnnotatedTarget{target}})
	if err != nil {
		t.Fatal(err)
	}

	want := filepath.Join(filepath.Dir(path), "models_subseteq.go")
	if _, ok := result.Definitions[want]; !ok {
		t.Errorf("定义应输出到 %s, got: %v", want, result.Definitions)
	}
}

// TestGenerateOrderInvariance 参数顺序不影响生成结果
func TestGenerateOrderInvariance(t *testing.T) {
	path := writeModel(t, itemSrc)

	a := runGenerate(t, makeTarget(path, "Item", `ignore(UpdatedAt, CacheToken), method = "Eq"`))
	b := runGenerate(t, makeTarget(path, "Item", `method = "Eq", ignore(UpdatedAt, CacheToken)`))

	if a != b {
		t.Errorf("参数顺序不同时输出应逐字节一致:\n--- a ---\n%s\n--- b ---\n%s", a, b)
	}
}

// TestGenerateIdempotentIgnore 重复排除同一字段与排除一次结果相同
func TestGenerateIdempotentIgnore(t *testing.T) {
	path := writeModel(t, itemSrc)

	once := runGenerate(t, makeTarget(path, "Item", "ignore(UpdatedAt)"))
	twice := runGenerate(t, makeTarget(path, "Item", "ignore(UpdatedAt, UpdatedAt)"))

	if once != twice {
		t.Errorf("重复排除应与排除一次等价:\n--- once ---\n%s\n--- twice ---\n%s", once, twice)
	}
}

// TestGenerateAllFields 空 ignore 列表 + 默认方法名，比较全部字段
func TestGenerateAllFields(t *testing.T) {
	path := writeModel(t, itemSrc)

	code := runGenerate(t, makeTarget(path, "Item", ""))

	if !strings.Contains(code, "func (i *Item) "+DefaultMethodName+"(other *Item) bool") {
		t.Errorf("未指定 method 时应使用默认方法名 %s, got:\n%s", DefaultMethodName, code)
	}
	for _, field := range []string{"ID", "Name", "UpdatedAt", "CacheToken"} {
		if !strings.Contains(code, "i."+field+" == other."+field) {
			t.Errorf("字段 %s 应参与比较, got:\n%s", field, code)
		}
	}
}

// TestGenerateVacuous 排除全部字段是错误
func TestGenerateVacuous(t *testing.T) {
	path := writeModel(t, itemSrc)
	target := makeTarget(path, "Item", "ignore(ID, Name, UpdatedAt, CacheToken)")

	result, err := NewGenerator().Generate(&plugin.GenerateContext{Targets: []*plugin.AnnotatedTarget{target}})
	if err != nil {
		t.Fatal(err)
	}

	if !result.HasErrors() {
		t.Fatal("排除全部字段应产生诊断")
	}
	if len(result.Definitions) != 0 {
		t.Errorf("出错时不应产生任何定义, got: %v", result.Definitions)
	}
	if !strings.Contains(result.Errors[0].Error(), "没有可比较的字段") {
		t.Errorf("诊断消息不符合预期: %v", result.Errors[0])
	}
}

// TestGenerateUnknownIgnoreName 排除不存在的字段不是错误
func TestGenerateUnknownIgnoreName(t *testing.T) {
	path := writeModel(t, itemSrc)

	code := runGenerate(t, makeTarget(path, "Item", "ignore(NoSuchField)"))

	for _, field := range []string{"ID", "Name", "UpdatedAt", "CacheToken"} {
		if !strings.Contains(code, "i."+field+" == other."+field) {
			t.Errorf("字段 %s 应参与比较, got:\n%s", field, code)
		}
	}
}

// TestGenerateWrongKind 注解在非结构体声明上产生定位到声明处的诊断
func TestGenerateWrongKind(t *testing.T) {
	path := writeModel(t, itemSrc)

	for _, kind := range []plugin.TargetKind{plugin.TargetType, plugin.TargetFunc} {
		target := makeTarget(path, "Whatever", "ignore(A)")
		target.Target.Kind = kind

		result, err := NewGenerator().Generate(&plugin.GenerateContext{Targets: []*plugin.AnnotatedTarget{target}})
		if err != nil {
			t.Fatal(err)
		}

		if !result.HasErrors() {
			t.Fatalf("kind=%s 应产生诊断", kind)
		}
		if !strings.Contains(result.Errors[0].Error(), "不是结构体") {
			t.Errorf("诊断消息不符合预期: %v", result.Errors[0])
		}
		if len(result.Definitions) != 0 {
			t.Errorf("出错时不应产生任何定义")
		}
	}
}

// TestGenerateBadArgs 参数解析错误原样带出并终止该目标
func TestGenerateBadArgs(t *testing.T) {
	path := writeModel(t, itemSrc)
	target := makeTarget(path, "Item", "ignore(1 + 2)")

	result, err := NewGenerator().Generate(&plugin.GenerateContext{Targets: []*plugin.AnnotatedTarget{target}})
	if err != nil {
		t.Fatal(err)
	}

	if !result.HasErrors() {
		t.Fatal("非法参数应产生诊断")
	}
	diag, ok := result.Errors[0].(*plugin.Diagnostic)
	if !ok {
		t.Fatalf("诊断应为 *plugin.Diagnostic, got %T", result.Errors[0])
	}
	if diag.Path != path {
		t.Errorf("诊断应定位到源文件 %s, got %s", path, diag.Path)
	}
	if len(result.Definitions) != 0 {
		t.Errorf("出错时不应产生任何定义")
	}
}

// TestGenerateEmbeddedField 嵌入字段按隐式字段名参与比较和排除
func TestGenerateEmbeddedField(t *testing.T) {
	src := `package models

type Meta struct {
	Version int
}

type Record struct {
	Meta
	ID   uint64
	Name string
}
`
	path := writeModel(t, src)

	code := runGenerate(t, makeTarget(path, "Record", "ignore(Meta)"))

	if strings.Contains(code, "r.Meta == other.Meta") {
		t.Errorf("被忽略的嵌入字段不应参与比较, got:\n%s", code)
	}
	if !strings.Contains(code, "r.ID == other.ID && r.Name == other.Name") {
		t.Errorf("其余字段应按声明顺序比较, got:\n%s", code)
	}
}

// TestGenerateMultipleStructs 同一文件多个结构体合并到一个输出文件
func TestGenerateMultipleStructs(t *testing.T) {
	src := `package models

type Alpha struct {
	A int
	B int
}

type Beta struct {
	C int
	D int
}
`
	path := writeModel(t, src)

	code := runGenerate(t,
		makeTarget(path, "Beta", `ignore(D), method = "EqC"`),
		makeTarget(path, "Alpha", `ignore(B), method = "EqA"`),
	)

	if !strings.Contains(code, "func (a *Alpha) EqA(other *Alpha) bool") {
		t.Errorf("缺少 Alpha 的方法, got:\n%s", code)
	}
	if !strings.Contains(code, "func (b *Beta) EqC(other *Beta) bool") {
		t.Errorf("缺少 Beta 的方法, got:\n%s", code)
	}

	// 按结构体名排序，Alpha 在前
	if strings.Index(code, "EqA") > strings.Index(code, "EqC") {
		t.Errorf("方法应按结构体名排序, got:\n%s", code)
	}
}

// TestGenerateFromScan 从扫描到生成的完整链路
func TestGenerateFromScan(t *testing.T) {
	src := `package models

// @SubsetEq(ignore(UpdatedAt), method = "EqCore")
type Entry struct {
	Key       string
	Value     string
	UpdatedAt int64
}
`
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "models.go"), []byte(src), 0644); err != nil {
		t.Fatal(err)
	}

	scanner := plugin.NewScanner(plugin.WithAnnotationFilter("SubsetEq"))
	scanResult, err := scanner.Scan(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}

	targets := scanResult.ByAnnotation("SubsetEq")
	if len(targets) != 1 {
		t.Fatalf("应扫描到 1 个目标, got %d", len(targets))
	}

	code := runGenerate(t, targets...)
	if !strings.Contains(code, "func (e *Entry) EqCore(other *Entry) bool") {
		t.Errorf("缺少生成的方法, got:\n%s", code)
	}
	if !strings.Contains(code, "e.Key == other.Key && e.Value == other.Value") {
		t.Errorf("比较表达式不符合预期, got:\n%s", code)
	}
}

// TestCheckExamplePackage 提交的示例生成文件必须与当前管线输出一致
func TestCheckExamplePackage(t *testing.T) {
	registry := plugin.NewRegistry()
	registry.MustRegister(NewGenerator())

	stats, err := plugin.RunWithOptionsAndStats(context.Background(), &plugin.RunOptions{
		Registry: registry,
		Patterns: []string{"example"},
		Check:    true,
	})
	if err != nil {
		t.Fatalf("check 模式应通过: %v", err)
	}
	if stats.StaleCount != 0 {
		t.Errorf("提交的生成文件已过期: stale=%d", stats.StaleCount)
	}
}
