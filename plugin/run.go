package plugin

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/donutnomad/gg"
	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/tools/imports"
)

// Run 运行代码生成
// 1. 扫描指定路径的注解
// 2. 将目标分发给对应的生成器
// 3. 执行生成器
// 4. 合并同一文件的 gg 定义并写入文件
func Run(ctx context.Context, registry *Registry, patterns ...string) error {
	opts := &RunOptions{
		Registry: registry,
		Patterns: patterns,
	}
	return RunWithOptions(ctx, opts)
}

// RunGlobal 使用全局注册表运行
func RunGlobal(ctx context.Context, patterns ...string) error {
	return Run(ctx, globalRegistry, patterns...)
}

// RunOptions 运行选项
type RunOptions struct {
	Registry *Registry
	Patterns []string
	Verbose  bool
	Output   string // 命令行指定的默认输出路径（最低优先级）
	Async    bool   // 是否异步执行生成器，默认 true
	Check    bool   // 检查模式：不写文件，对比已有输出并在过期时报错
}

// RunStats 运行统计信息
type RunStats struct {
	ScanDuration     time.Duration // 扫描耗时
	GenerateDuration time.Duration // 生成耗时
	TotalDuration    time.Duration // 总耗时
	TargetCount      int           // 目标数量
	FileCount        int           // 生成文件数量
	StaleCount       int           // 检查模式下过期的文件数量
}

// RunWithOptions 带选项运行
func RunWithOptions(ctx context.Context, opts *RunOptions) error {
	_, err := RunWithOptionsAndStats(ctx, opts)
	return err
}

// RunWithOptionsAndStats 带选项运行并返回统计信息
func RunWithOptionsAndStats(ctx context.Context, opts *RunOptions) (*RunStats, error) {
	totalStart := time.Now()
	stats := &RunStats{}

	registry := opts.Registry
	if registry == nil {
		registry = globalRegistry
	}

	annotations := registry.Annotations()
	if len(annotations) == 0 {
		return nil, fmt.Errorf("没有已注册的生成器")
	}

	// 扫描
	scanStart := time.Now()
	scanner := NewScanner(
		WithAnnotationFilter(annotations...),
		WithScannerVerbose(opts.Verbose),
	)
	result, err := scanner.Scan(ctx, opts.Patterns...)
	if err != nil {
		return nil, fmt.Errorf("扫描失败: %w", err)
	}
	stats.ScanDuration = time.Since(scanStart)

	if len(result.All()) == 0 {
		if opts.Verbose {
			fmt.Println("没有找到任何带注解的目标")
		}
		stats.TotalDuration = time.Since(totalStart)
		return stats, nil
	}

	stats.TargetCount = len(result.All())
	if opts.Verbose {
		fmt.Printf("找到 %d 个带注解的目标 (扫描耗时: %v)\n", stats.TargetCount, stats.ScanDuration)
	}

	generateStart := time.Now()

	// 分发目标
	dispatch := registry.DispatchTargets(result)

	// 收集所有 gg 定义，按输出路径分组
	// key: 输出文件路径, value: []*gg.Generator (多个生成器可能输出到同一文件)
	fileDefinitions := make(map[string][]*gg.Generator)
	var allErrors []error

	// 按优先级排序生成器名称（优先级数字越小越靠前）
	genNames := make([]string, 0, len(dispatch))
	for genName := range dispatch {
		genNames = append(genNames, genName)
	}
	slices.SortFunc(genNames, func(a, b string) int {
		genA, _ := registry.GetByName(a)
		genB, _ := registry.GetByName(b)
		return genA.Priority() - genB.Priority()
	})

	// key: 输出文件路径, value: 生成器名称列表（按优先级顺序）
	fileGenNames := make(map[string][]string)

	// genResultItem 存储单个生成器的执行结果
	type genResultItem struct {
		genName string
		result  *GenerateResult
		err     error
	}

	executeGenerator := func(genName string) genResultItem {
		targets := dispatch[genName]
		gen, ok := registry.GetByName(genName)
		if !ok {
			return genResultItem{genName: genName}
		}

		if opts.Verbose {
			fmt.Printf("执行生成器: %s (开始处理 %d 个目标)\n", genName, len(targets))
		}

		genCtx := &GenerateContext{
			Targets:        targets,
			PackageConfigs: result.PackageConfigs,
			DefaultOutput:  opts.Output,
			Verbose:        opts.Verbose,
		}

		nt1 := time.Now()
		genResult, err := gen.Generate(genCtx)
		if opts.Verbose {
			fmt.Printf("执行生成器: %s (耗时: %v)\n", genName, time.Since(nt1))
		}

		return genResultItem{genName: genName, result: genResult, err: err}
	}

	genResults := make(map[string]*GenerateResult)

	if opts.Async {
		// 异步执行每个生成器
		resultChan := make(chan genResultItem, len(genNames))
		var wg sync.WaitGroup

		for _, genName := range genNames {
			wg.Add(1)
			go func(genName string) {
				defer wg.Done()
				resultChan <- executeGenerator(genName)
			}(genName)
		}

		go func() {
			wg.Wait()
			close(resultChan)
		}()

		for item := range resultChan {
			if item.err != nil {
				allErrors = append(allErrors, fmt.Errorf("生成器 %s 执行失败: %w", item.genName, item.err))
				continue
			}
			if item.result != nil {
				genResults[item.genName] = item.result
			}
		}
	} else {
		// 同步执行每个生成器
		for _, genName := range genNames {
			item := executeGenerator(genName)
			if item.err != nil {
				allErrors = append(allErrors, fmt.Errorf("生成器 %s 执行失败: %w", item.genName, item.err))
				continue
			}
			if item.result != nil {
				genResults[item.genName] = item.result
			}
		}
	}

	// 按优先级顺序处理结果
	for _, genName := range genNames {
		genResult, ok := genResults[genName]
		if !ok {
			continue
		}

		for path, def := range genResult.Definitions {
			fileDefinitions[path] = append(fileDefinitions[path], def)
			fileGenNames[path] = append(fileGenNames[path], genName)
		}

		allErrors = append(allErrors, genResult.Errors...)
	}

	// 诊断发生时不写任何文件：要么整体成功，要么诊断即是全部输出
	if len(allErrors) > 0 {
		stats.GenerateDuration = time.Since(generateStart)
		stats.TotalDuration = time.Since(totalStart)
		for _, e := range allErrors {
			fmt.Fprintf(os.Stderr, "错误: %v\n", e)
		}
		return stats, fmt.Errorf("生成过程中出现 %d 个错误", len(allErrors))
	}

	// 合并同一文件的定义并写入（或检查）
	outputPaths := make([]string, 0, len(fileDefinitions))
	for path := range fileDefinitions {
		outputPaths = append(outputPaths, path)
	}
	slices.Sort(outputPaths)

	for _, path := range outputPaths {
		merged, err := mergeDefinitions(fileDefinitions[path], fileGenNames[path])
		if err != nil {
			allErrors = append(allErrors, fmt.Errorf("合并文件 %s 的定义失败: %w", path, err))
			continue
		}

		formatted, err := formatSource(path, merged.Bytes())
		if err != nil {
			allErrors = append(allErrors, fmt.Errorf("格式化 %s 失败: %w", path, err))
			continue
		}

		if opts.Check {
			stale, diff, err := checkFile(path, formatted)
			if err != nil {
				allErrors = append(allErrors, err)
				continue
			}
			if stale {
				stats.StaleCount++
				fmt.Fprintf(os.Stderr, "文件已过期: %s\n%s", path, diff)
			}
			continue
		}

		if err := writeFile(path, formatted); err != nil {
			allErrors = append(allErrors, fmt.Errorf("写入文件 %s 失败: %w", path, err))
		} else {
			stats.FileCount++
			fmt.Printf("生成文件: %s\n", path)
		}
	}

	stats.GenerateDuration = time.Since(generateStart)
	stats.TotalDuration = time.Since(totalStart)

	if len(allErrors) > 0 {
		for _, e := range allErrors {
			fmt.Fprintf(os.Stderr, "错误: %v\n", e)
		}
		return stats, fmt.Errorf("生成过程中出现 %d 个错误", len(allErrors))
	}

	if stats.StaleCount > 0 {
		return stats, fmt.Errorf("检查失败: %d 个生成文件已过期，请重新运行 eqgen", stats.StaleCount)
	}

	return stats, nil
}

// mergeDefinitions 合并多个 gg.Generator 定义到一个文件，并添加分隔符
func mergeDefinitions(definitions []*gg.Generator, genNames []string) (*gg.Generator, error) {
	if len(definitions) == 0 {
		return nil, fmt.Errorf("没有定义需要合并")
	}

	merged := gg.New()
	merged.SetHeader("Code generated by eqgen. DO NOT EDIT.")

	// 收集包名
	var pkgName string
	for _, def := range definitions {
		if def.PackageName() != "" {
			if pkgName == "" {
				pkgName = def.PackageName()
			} else if pkgName != def.PackageName() {
				return nil, fmt.Errorf("包名不一致: %s vs %s", pkgName, def.PackageName())
			}
		}
	}
	if pkgName != "" {
		merged.SetPackage(pkgName)
	}

	// 合并每个定义的 body
	// 多个生成器输出到同一文件时添加分隔符注释
	for i, def := range definitions {
		if len(definitions) > 1 {
			genName := "unknown"
			if i < len(genNames) {
				genName = genNames[i]
			}
			merged.Body().AddLine()
			merged.Body().AddString(fmt.Sprintf("// ================ %s ================", genName))
			merged.Body().AddLine()
		}
		merged.Merge(def)
	}

	return merged, nil
}

// formatSource 用 goimports 格式化生成的源代码
func formatSource(path string, src []byte) ([]byte, error) {
	return imports.Process(path, src, &imports.Options{
		Comments:  true,
		TabIndent: true,
		TabWidth:  8,
	})
}

// writeFile 写入生成文件，确保目录存在
func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("创建目录失败: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// checkFile 对比生成内容与磁盘上的已有文件
// 返回是否过期以及统一 diff 文本
func checkFile(path string, want []byte) (bool, string, error) {
	got, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		got = nil
	} else if err != nil {
		return false, "", fmt.Errorf("读取文件 %s 失败: %w", path, err)
	}

	if string(got) == string(want) {
		return false, "", nil
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(got)),
		B:        difflib.SplitLines(string(want)),
		FromFile: path,
		ToFile:   path + " (eqgen)",
		Context:  3,
	})
	if err != nil {
		return false, "", fmt.Errorf("生成 diff 失败: %w", err)
	}

	return true, diff, nil
}

// GetOutputPath 根据默认规则计算输出路径
// 优先级：包级配置 > 命令行参数 > 默认文件名
// 模板变量：
//   - $FILE: 源文件名（不含 .go 后缀）
//   - $PACKAGE: 包名
func GetOutputPath(target *Target, defaultFileName string, pkgConfig *PackageConfig, cmdOutput string) string {
	output := pkgConfig.GetOutput()

	if output == "" && cmdOutput != "" {
		output = cmdOutput
	}

	if output == "" {
		return GetDefaultOutputPath(target, defaultFileName)
	}

	output = replaceTemplateVars(output, target)

	if !strings.HasSuffix(output, ".go") {
		output += ".go"
	}

	if filepath.IsAbs(output) {
		return output
	}
	// 相对于源文件目录
	return filepath.Join(filepath.Dir(target.FilePath), output)
}

// replaceTemplateVars 替换模板变量
func replaceTemplateVars(template string, target *Target) string {
	fileName := strings.TrimSuffix(filepath.Base(target.FilePath), ".go")
	template = strings.ReplaceAll(template, "$FILE", fileName)
	template = strings.ReplaceAll(template, "$PACKAGE", target.PackageName)
	return template
}

// GetDefaultOutputPath 获取默认输出路径
func GetDefaultOutputPath(target *Target, defaultFileName string) string {
	if defaultFileName == "" {
		defaultFileName = "generate.go"
	}
	defaultFileName = replaceTemplateVars(defaultFileName, target)
	return filepath.Join(filepath.Dir(target.FilePath), defaultFileName)
}
