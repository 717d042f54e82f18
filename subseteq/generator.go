package subseteq

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/donutnomad/eqgen/internal/structparse"
	"github.com/donutnomad/eqgen/internal/utils"
	"github.com/donutnomad/eqgen/plugin"
	"github.com/donutnomad/gg"
	"github.com/samber/lo"
)

const (
	generatorName  = "subseteqgen"
	annotationName = "SubsetEq"
)

// DefaultMethodName 未提供 method 参数时生成的方法名
const DefaultMethodName = "EqSubsetIgnoring"

// Generator 实现 plugin.Generator 接口
// 为带 @SubsetEq 注解的结构体生成子集比较方法
type Generator struct {
	plugin.BaseGenerator
}

// NewGenerator 创建 SubsetEq 生成器
// 声明支持所有目标类型，以便对非结构体目标给出定位到声明处的诊断
func NewGenerator() *Generator {
	gen := &Generator{
		BaseGenerator: *plugin.NewBaseGenerator(
			generatorName,
			[]string{annotationName},
			[]plugin.TargetKind{plugin.TargetStruct, plugin.TargetType, plugin.TargetFunc},
			[]plugin.ParamDef{
				{Name: "ignore(Field1, Field2, ...)", Description: "要排除的字段标识符列表，可为空"},
				{Name: `method = "Name"`, Default: DefaultMethodName, Description: "生成的方法名，必须是合法的 Go 标识符"},
			},
		),
	}
	gen.SetPriority(40)
	return gen
}

// methodSpec 一个待生成方法的完整描述
type methodSpec struct {
	packageName string
	structName  string
	methodName  string
	fields      []string // 保留字段名，与声明顺序一致
}

// Generate 执行代码生成
// 每个目标独立处理：要么得到一个方法定义，要么得到一条诊断，
// 不产生部分结果，也不在多次调用间保留任何状态
func (g *Generator) Generate(ctx *plugin.GenerateContext) (*plugin.GenerateResult, error) {
	result := plugin.NewGenerateResult()

	if len(ctx.Targets) == 0 {
		return result, nil
	}

	// 按输出文件分组处理
	fileTargets := make(map[string][]*methodSpec)

	for _, at := range ctx.Targets {
		ann := plugin.GetAnnotation(at.Annotations, annotationName)
		if ann == nil {
			continue
		}

		// 1. 声明类型校验：只接受结构体
		if at.Target.Kind != plugin.TargetStruct {
			result.AddError(plugin.NewDiagnostic(at.Target.Position,
				"@%s 只能用于结构体声明，%s %s 不是结构体",
				annotationName, at.Target.Kind, at.Target.Name))
			continue
		}

		// 2. 解析注解参数
		args, diag := ParseArgs(ann.Args, ann.ArgsPos)
		if diag != nil {
			result.AddError(diag)
			continue
		}

		if ctx.Verbose {
			fmt.Printf("[subseteq] %s", spew.Sdump(args))
		}

		// 3. 解析结构体字段元数据
		info, err := structparse.ParseStruct(at.Target.FilePath, at.Target.Name)
		if err != nil {
			result.AddError(fmt.Errorf("解析结构体 %s 失败: %w", at.Target.Name, err))
			continue
		}

		// 4. 计算保留字段并校验
		spec, diag := buildMethodSpec(at.Target, info, args, ctx.Verbose)
		if diag != nil {
			result.AddError(diag)
			continue
		}

		// 5. 计算输出路径
		pkgConfig := ctx.GetPackageConfig(filepath.Dir(at.Target.FilePath))
		outputPath := plugin.GetOutputPath(at.Target, "$FILE_subseteq.go", pkgConfig, ctx.DefaultOutput)

		fileTargets[outputPath] = append(fileTargets[outputPath], spec)

		if ctx.Verbose {
			fmt.Printf("[subseteq] 处理结构体 %s -> %s (%s)\n", at.Target.Name, spec.methodName, outputPath)
		}
	}

	// 为每个输出文件生成 gg 定义
	outputPaths := lo.Keys(fileTargets)
	slices.Sort(outputPaths)

	for _, outputPath := range outputPaths {
		specs := fileTargets[outputPath]
		// 按结构体名称排序，确保生成顺序一致
		slices.SortFunc(specs, func(a, b *methodSpec) int {
			return strings.Compare(a.structName, b.structName)
		})

		gen, err := generateDefinition(specs)
		if err != nil {
			result.AddError(fmt.Errorf("生成 %s 失败: %w", outputPath, err))
			continue
		}
		result.AddDefinition(outputPath, gen)
	}

	return result, nil
}

// buildMethodSpec 由字段元数据和注解参数推导方法描述
// 保留字段 = 结构体字段（按声明顺序）去掉 ignore 集合中的名字
func buildMethodSpec(target *plugin.Target, info *structparse.StructInfo, args *Args, verbose bool) (*methodSpec, *plugin.Diagnostic) {
	ignored := make(map[string]bool, len(args.Ignored))
	for _, name := range args.Ignored {
		ignored[name] = true
	}

	// ignore 中出现结构体没有的字段名不是错误，仅在详细模式下提示
	if verbose {
		known := lo.SliceToMap(info.Fields, func(f structparse.FieldInfo) (string, bool) {
			return f.Name, true
		})
		for _, name := range args.Ignored {
			if !known[name] {
				fmt.Printf("[subseteq] 警告: 结构体 %s 没有字段 %s，可用字段: %v\n",
					info.Name, name, info.FieldNames())
			}
		}
	}

	retained := lo.FilterMap(info.Fields, func(f structparse.FieldInfo, _ int) (string, bool) {
		return f.Name, !ignored[f.Name]
	})

	if len(retained) == 0 {
		return nil, plugin.NewDiagnostic(target.Position,
			"忽略指定字段后，结构体 %s 没有可比较的字段", info.Name)
	}

	methodName := args.Method
	if methodName == "" {
		methodName = DefaultMethodName
	}

	return &methodSpec{
		packageName: info.PackageName,
		structName:  info.Name,
		methodName:  methodName,
		fields:      retained,
	}, nil
}

// generateDefinition 为一组方法描述生成 gg 定义
func generateDefinition(specs []*methodSpec) (*gg.Generator, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("没有目标需要生成")
	}

	gen := gg.New()
	gen.SetPackage(specs[0].packageName)

	for _, spec := range specs {
		buildMethod(gen, spec)
	}

	return gen, nil
}

// buildMethod 生成子集比较方法
// 字段按声明顺序用 && 连接，从左到右短路求值，
// 每个字段沿用其自身的 == 语义，方法本身不检查字段类型
func buildMethod(gen *gg.Generator, spec *methodSpec) {
	recv := utils.ReceiverName(spec.structName, "other")

	conds := lo.Map(spec.fields, func(name string, _ int) string {
		return fmt.Sprintf("%s.%s == other.%s", recv, name, name)
	})

	gen.Body().AddLine()
	gen.Body().Append(gg.LineComment("%s 按声明顺序比较 %s 中未被忽略的字段", spec.methodName, spec.structName))
	gen.Body().NewFunction(spec.methodName).
		WithReceiver(recv, "*"+spec.structName).
		AddParameter("other", "*"+spec.structName).
		AddResult("", "bool").
		AddBody(gg.Return(gg.S("%s", strings.Join(conds, " && "))))
}
