package plugin

// Generator 是代码生成器接口
// 每个生成器（如 subseteq）需要实现此接口
type Generator interface {
	// Name 返回生成器名称
	Name() string

	// Annotations 返回该生成器支持的注解列表
	// 一个注解只能绑定一个生成器
	Annotations() []string

	// SupportedTargets 返回支持的目标类型
	// 需要自行对错误类型给出诊断的生成器应声明全部类型
	SupportedTargets() []TargetKind

	// ParamDefs 返回注解支持的参数形态，用于帮助文本
	ParamDefs() []ParamDef

	// Priority 返回生成器优先级
	// 数字越小优先级越高，输出合并时优先级高的在前面
	// 默认值为 100
	Priority() int

	// Generate 执行代码生成
	// 返回的 GenerateResult 包含 gg 定义，由聚合器统一处理
	Generate(ctx *GenerateContext) (*GenerateResult, error)
}

// BaseGenerator 提供基础实现，可嵌入
type BaseGenerator struct {
	name        string
	annotations []string
	targets     []TargetKind
	paramDefs   []ParamDef
	priority    int
}

// NewBaseGenerator 创建基础生成器
func NewBaseGenerator(name string, annotations []string, targets []TargetKind, params []ParamDef) *BaseGenerator {
	return &BaseGenerator{
		name:        name,
		annotations: annotations,
		targets:     targets,
		paramDefs:   params,
		priority:    100,
	}
}

func (g *BaseGenerator) Name() string {
	return g.name
}

func (g *BaseGenerator) Annotations() []string {
	return g.annotations
}

func (g *BaseGenerator) SupportedTargets() []TargetKind {
	return g.targets
}

func (g *BaseGenerator) ParamDefs() []ParamDef {
	return g.paramDefs
}

// Priority 返回生成器优先级
func (g *BaseGenerator) Priority() int {
	return g.priority
}

// SetPriority 设置生成器优先级，数字越小优先级越高
func (g *BaseGenerator) SetPriority(priority int) *BaseGenerator {
	g.priority = priority
	return g
}
