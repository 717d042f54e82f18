package plugin

import (
	"go/ast"
	"go/token"

	"github.com/donutnomad/gg"
)

// TargetKind 表示注解目标的类型
type TargetKind int

const (
	TargetStruct TargetKind = iota + 1 // 结构体
	TargetType                         // 非结构体的类型声明（接口、别名等）
	TargetFunc                         // 包级函数或方法
)

func (k TargetKind) String() string {
	switch k {
	case TargetStruct:
		return "struct"
	case TargetType:
		return "type"
	case TargetFunc:
		return "func"
	default:
		return "unknown"
	}
}

// ParamDef 描述注解支持的一种参数形态，仅用于生成帮助文本
type ParamDef struct {
	Name        string // 参数形态，如 ignore(...) 或 method = "..."
	Required    bool   // 是否必填
	Default     string // 默认值（如果有）
	Description string // 参数描述
}

// Annotation 表示解析后的注解
// Args 保留括号内的原始文本，由各生成器自行解析；
// ArgsPos 是 Args 第一个字符在源文件中的精确位置，用于诊断定位
type Annotation struct {
	Name    string         // 注解名称，如 "SubsetEq"
	Args    string         // 括号内原始文本，无括号时为空
	ArgsPos token.Position // Args 起始位置
	Raw     string         // 原始注解文本
}

// Target 表示注解的目标
type Target struct {
	Kind        TargetKind     // 目标类型
	Name        string         // 名称（类型名、函数名）
	PackageName string         // 包名
	FilePath    string         // 文件路径
	Position    token.Position // 声明位置，用于诊断定位

	// AST 节点（可选，用于深度解析）
	Node ast.Node
}

// AnnotatedTarget 表示带注解的目标
type AnnotatedTarget struct {
	Target      *Target       // 目标信息
	Annotations []*Annotation // 注解列表
}

// ScanResult 表示扫描结果
type ScanResult struct {
	Structs []*AnnotatedTarget // 带注解的结构体
	Types   []*AnnotatedTarget // 带注解的非结构体类型声明
	Funcs   []*AnnotatedTarget // 带注解的函数

	// PackageConfigs 包级配置
	// key: 包目录
	PackageConfigs map[string]*PackageConfig
}

// All 返回所有带注解的目标
func (r *ScanResult) All() []*AnnotatedTarget {
	result := make([]*AnnotatedTarget, 0, len(r.Structs)+len(r.Types)+len(r.Funcs))
	result = append(result, r.Structs...)
	result = append(result, r.Types...)
	result = append(result, r.Funcs...)
	return result
}

// ByAnnotation 按注解名称过滤
func (r *ScanResult) ByAnnotation(name string) []*AnnotatedTarget {
	var result []*AnnotatedTarget
	for _, t := range r.All() {
		for _, a := range t.Annotations {
			if a.Name == name {
				result = append(result, t)
				break
			}
		}
	}
	return result
}

// GenerateContext 生成上下文，传递给 Generator
type GenerateContext struct {
	Targets        []*AnnotatedTarget        // 该 Generator 需要处理的目标
	PackageConfigs map[string]*PackageConfig // 包级配置，key: 包目录
	DefaultOutput  string                    // 命令行指定的默认输出路径（最低优先级）
	Verbose        bool                      // 详细输出
}

// GetPackageConfig 获取指定包目录的配置
func (c *GenerateContext) GetPackageConfig(pkgDir string) *PackageConfig {
	if c.PackageConfigs == nil {
		return nil
	}
	return c.PackageConfigs[pkgDir]
}

// GenerateResult 生成结果
// Generator 返回 gg 定义，由聚合器统一处理
type GenerateResult struct {
	// Definitions 是生成的 gg 定义
	// key: 输出文件路径
	Definitions map[string]*gg.Generator

	// Errors 错误列表，诊断类错误为 *Diagnostic
	Errors []error

	// Skipped 跳过的数量
	Skipped int
}

// NewGenerateResult 创建新的生成结果
func NewGenerateResult() *GenerateResult {
	return &GenerateResult{
		Definitions: make(map[string]*gg.Generator),
	}
}

// AddDefinition 添加 gg 定义
func (r *GenerateResult) AddDefinition(path string, gen *gg.Generator) {
	if r.Definitions == nil {
		r.Definitions = make(map[string]*gg.Generator)
	}
	r.Definitions[path] = gen
}

// AddError 添加错误
func (r *GenerateResult) AddError(err error) {
	r.Errors = append(r.Errors, err)
}

// HasErrors 检查是否有错误
func (r *GenerateResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// PackageConfig 包级生成配置
// 通过 // go:eqgen: 注释定义
// 示例:
//
//	// go:eqgen: -output `$FILE_subseteq`
type PackageConfig struct {
	PackageDir string // 包目录

	// DefaultOutput 默认输出路径
	// 来自: // go:eqgen: -output `xxx`
	DefaultOutput string
}

// GetOutput 获取输出路径配置
func (c *PackageConfig) GetOutput() string {
	if c == nil {
		return ""
	}
	return c.DefaultOutput
}

// FilterByNames 过滤指定名称的注解
func FilterByNames(annotations []*Annotation, names ...string) []*Annotation {
	if len(names) == 0 {
		return annotations
	}

	nameSet := make(map[string]bool)
	for _, n := range names {
		nameSet[n] = true
	}

	var result []*Annotation
	for _, ann := range annotations {
		if nameSet[ann.Name] {
			result = append(result, ann)
		}
	}
	return result
}

// HasAnnotation 检查是否包含指定注解
func HasAnnotation(annotations []*Annotation, name string) bool {
	for _, ann := range annotations {
		if ann.Name == name {
			return true
		}
	}
	return false
}

// GetAnnotation 获取指定名称的注解
func GetAnnotation(annotations []*Annotation, name string) *Annotation {
	for _, ann := range annotations {
		if ann.Name == name {
			return ann
		}
	}
	return nil
}
