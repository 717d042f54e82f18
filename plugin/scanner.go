package plugin

import (
	"bufio"
	"context"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"sync"
)

// Scanner 两阶段并行注解扫描器
// 第一阶段：快速文本匹配，找出可能包含注解的文件
// 第二阶段：对匹配的文件进行 AST 解析
type Scanner struct {
	workers int
	verbose bool

	// 注解过滤器（可选）
	annotationFilter []string
}

// ScannerOption 扫描器选项
type ScannerOption func(*Scanner)

func WithWorkers(n int) ScannerOption {
	return func(s *Scanner) {
		if n > 0 {
			s.workers = n
		}
	}
}

func WithScannerVerbose(v bool) ScannerOption {
	return func(s *Scanner) {
		s.verbose = v
	}
}

func WithAnnotationFilter(annotations ...string) ScannerOption {
	return func(s *Scanner) {
		s.annotationFilter = annotations
	}
}

func NewScanner(opts ...ScannerOption) *Scanner {
	s := &Scanner{
		workers: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// quickMatchRegex 快速匹配注解的正则
// 只用于第一阶段筛选文件，精确解析交给 ParseAnnotations
var quickMatchRegex = regexp.MustCompile(`@(\w+)`)

// Scan 扫描指定路径
// 支持: ./... ./pkg/... ./pkg /abs/path/...
func (s *Scanner) Scan(ctx context.Context, patterns ...string) (*ScanResult, error) {
	allFiles, err := s.collectFiles(patterns)
	if err != nil {
		return nil, err
	}

	if len(allFiles) == 0 {
		return &ScanResult{}, nil
	}

	// ========== 第一阶段：快速匹配 ==========
	matchedFiles, err := s.quickMatch(ctx, allFiles)
	if err != nil {
		return nil, err
	}

	if len(matchedFiles) == 0 {
		return &ScanResult{}, nil
	}

	// ========== 第二阶段：AST 解析 ==========
	return s.parseFiles(ctx, matchedFiles)
}

// quickMatch 第一阶段：快速文本匹配
// 并行读取文件，检查是否包含 @xxx 模式
func (s *Scanner) quickMatch(ctx context.Context, files []string) ([]string, error) {
	type matchResult struct {
		file    string
		matched bool
		err     error
	}

	resultCh := make(chan matchResult, len(files))
	fileCh := make(chan string, len(files))

	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case file, ok := <-fileCh:
					if !ok {
						return
					}
					matched, err := s.QuickMatchFile(file)
					resultCh <- matchResult{file: file, matched: matched, err: err}
				}
			}
		}()
	}

	go func() {
		for _, file := range files {
			select {
			case <-ctx.Done():
				break
			case fileCh <- file:
			}
		}
		close(fileCh)
	}()

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	var matchedFiles []string
	for r := range resultCh {
		if r.err != nil {
			continue // 跳过错误文件
		}
		if r.matched {
			matchedFiles = append(matchedFiles, r.file)
		}
	}

	return matchedFiles, nil
}

// QuickMatchFile 快速检查文件是否包含注解或 go:eqgen 配置
// 用于 dev 模式判断文件是否需要触发代码生成
func (s *Scanner) QuickMatchFile(filePath string) (bool, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return false, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		// 只检查注释行
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "//") && !strings.HasPrefix(trimmed, "/*") {
			continue
		}

		// 检查 go:eqgen: 配置（支持 //go:eqgen: 和 // go:eqgen:）
		if strings.Contains(trimmed, "go:eqgen:") {
			return true, nil
		}

		matches := quickMatchRegex.FindAllStringSubmatch(line, -1)
		for _, match := range matches {
			if len(match) > 1 {
				annName := match[1]
				if len(s.annotationFilter) > 0 {
					for _, filter := range s.annotationFilter {
						if annName == filter {
							return true, nil
						}
					}
				} else {
					return true, nil
				}
			}
		}
	}

	return false, scanner.Err()
}

// fileParseResult 单个文件的解析结果
type fileParseResult struct {
	structs   []*AnnotatedTarget
	types     []*AnnotatedTarget
	funcs     []*AnnotatedTarget
	pkgConfig *PackageConfig
	err       error
}

// parseFiles 第二阶段：AST 解析
func (s *Scanner) parseFiles(ctx context.Context, files []string) (*ScanResult, error) {
	resultCh := make(chan fileParseResult, len(files))
	fileCh := make(chan string, len(files))

	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case file, ok := <-fileCh:
					if !ok {
						return
					}
					resultCh <- s.parseFile(file)
				}
			}
		}()
	}

	go func() {
		for _, file := range files {
			select {
			case <-ctx.Done():
				break
			case fileCh <- file:
			}
		}
		close(fileCh)
	}()

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	result := &ScanResult{
		PackageConfigs: make(map[string]*PackageConfig),
	}
	for r := range resultCh {
		if r.err != nil {
			continue
		}
		result.Structs = append(result.Structs, r.structs...)
		result.Types = append(result.Types, r.types...)
		result.Funcs = append(result.Funcs, r.funcs...)
		if r.pkgConfig != nil {
			pkgDir := r.pkgConfig.PackageDir
			if existing, ok := result.PackageConfigs[pkgDir]; ok {
				if r.pkgConfig.DefaultOutput != "" {
					if existing.DefaultOutput != "" && existing.DefaultOutput != r.pkgConfig.DefaultOutput {
						fmt.Printf("警告: 包 %s 中存在多个不同的 go:eqgen 输出配置，使用后发现的配置\n", pkgDir)
					}
					existing.DefaultOutput = r.pkgConfig.DefaultOutput
				}
			} else {
				result.PackageConfigs[pkgDir] = r.pkgConfig
			}
		}
	}

	return result, nil
}

// parseFile AST 解析单个文件
func (s *Scanner) parseFile(filePath string) (result fileParseResult) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filePath, nil, parser.ParseComments)
	if err != nil {
		result.err = err
		return
	}

	packageName := file.Name.Name

	// 解析包级 go:eqgen: 配置
	result.pkgConfig = s.parsePackageConfig(file, filePath)

	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.GenDecl:
			if d.Tok == token.TYPE {
				s.parseTypeDecl(fset, filePath, packageName, d, &result)
			}
		case *ast.FuncDecl:
			s.parseFuncDecl(fset, filePath, packageName, d, &result)
		}
	}

	return
}

// parseTypeDecl 解析类型声明
// 结构体归入 Structs；其余类型（接口、别名、枚举式定义）归入 Types，
// 以便生成器对错误的声明类型给出定位到声明处的诊断
func (s *Scanner) parseTypeDecl(fset *token.FileSet, filePath, packageName string, decl *ast.GenDecl, result *fileParseResult) {
	declAnnotations := ParseAnnotations(decl.Doc, fset)

	for _, spec := range decl.Specs {
		typeSpec, ok := spec.(*ast.TypeSpec)
		if !ok {
			continue
		}

		// 注解可能写在 GenDecl 或 TypeSpec 的文档注释上
		annotations := append([]*Annotation{}, declAnnotations...)
		annotations = append(annotations, ParseAnnotations(typeSpec.Doc, fset)...)

		if len(s.annotationFilter) > 0 {
			annotations = FilterByNames(annotations, s.annotationFilter...)
		}
		if len(annotations) == 0 {
			continue
		}

		target := &Target{
			Name:        typeSpec.Name.Name,
			PackageName: packageName,
			FilePath:    filePath,
			Position:    fset.Position(typeSpec.Pos()),
			Node:        typeSpec,
		}

		at := &AnnotatedTarget{
			Target:      target,
			Annotations: annotations,
		}

		if _, isStruct := typeSpec.Type.(*ast.StructType); isStruct {
			target.Kind = TargetStruct
			result.structs = append(result.structs, at)
		} else {
			target.Kind = TargetType
			result.types = append(result.types, at)
		}
	}
}

// parseFuncDecl 解析函数声明
func (s *Scanner) parseFuncDecl(fset *token.FileSet, filePath, packageName string, decl *ast.FuncDecl, result *fileParseResult) {
	annotations := ParseAnnotations(decl.Doc, fset)
	if len(annotations) == 0 {
		return
	}

	if len(s.annotationFilter) > 0 {
		annotations = FilterByNames(annotations, s.annotationFilter...)
		if len(annotations) == 0 {
			return
		}
	}

	target := &Target{
		Kind:        TargetFunc,
		Name:        decl.Name.Name,
		PackageName: packageName,
		FilePath:    filePath,
		Position:    fset.Position(decl.Pos()),
		Node:        decl,
	}

	result.funcs = append(result.funcs, &AnnotatedTarget{
		Target:      target,
		Annotations: annotations,
	})
}

// collectFiles 收集所有需要扫描的文件
func (s *Scanner) collectFiles(patterns []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)

	for _, pattern := range patterns {
		recursive := strings.HasSuffix(pattern, "/...")
		if recursive {
			pattern = strings.TrimSuffix(pattern, "/...")
		}

		absPath, err := filepath.Abs(pattern)
		if err != nil {
			return nil, err
		}

		info, err := os.Stat(absPath)
		if err != nil {
			return nil, err
		}

		if info.IsDir() {
			err := filepath.Walk(absPath, func(path string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}

				if info.IsDir() {
					name := info.Name()
					if strings.HasPrefix(name, ".") || name == "vendor" || name == "testdata" {
						return filepath.SkipDir
					}
					if !recursive && path != absPath {
						return filepath.SkipDir
					}
					return nil
				}

				if strings.HasSuffix(path, ".go") &&
					!strings.HasSuffix(path, "_test.go") &&
					!strings.HasSuffix(path, "_subseteq.go") {
					if !seen[path] {
						seen[path] = true
						files = append(files, path)
					}
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
		} else if strings.HasSuffix(absPath, ".go") {
			if !seen[absPath] {
				seen[absPath] = true
				files = append(files, absPath)
			}
		}
	}

	return files, nil
}

// 默认扫描器
var defaultScanner = NewScanner()

func Scan(ctx context.Context, patterns ...string) (*ScanResult, error) {
	return defaultScanner.Scan(ctx, patterns...)
}

func ScanWithFilter(ctx context.Context, annotations []string, patterns ...string) (*ScanResult, error) {
	scanner := NewScanner(WithAnnotationFilter(annotations...))
	return scanner.Scan(ctx, patterns...)
}

// eqgenRegex 匹配 go:eqgen: 指令
// 支持两种格式：//go:eqgen: 和 // go:eqgen:
var eqgenRegex = regexp.MustCompile(`go:eqgen:\s*(.*)`)

// parsePackageConfig 解析包级 go:eqgen: 配置
// 支持格式:
//
//	//go:eqgen: -output `$FILE_subseteq`
func (s *Scanner) parsePackageConfig(file *ast.File, filePath string) *PackageConfig {
	var configLines []string

	for _, cg := range file.Comments {
		for _, c := range cg.List {
			text := strings.TrimPrefix(c.Text, "//")
			text = strings.TrimPrefix(text, "/*")
			text = strings.TrimSuffix(text, "*/")
			text = strings.TrimSpace(text)

			if matches := eqgenRegex.FindStringSubmatch(text); len(matches) > 1 {
				configLines = append(configLines, matches[1])
			}
		}
	}

	if len(configLines) == 0 {
		return nil
	}

	if len(configLines) > 1 {
		fmt.Printf("警告: 文件 %s 定义了多个 go:eqgen: 指令，将被忽略\n", filePath)
		return nil
	}

	return parseConfigLine(configLines[0], filePath)
}

// parseConfigLine 解析单行 go:eqgen: 配置
// 格式:
//
//	-output `xxx`
func parseConfigLine(line string, filePath string) *PackageConfig {
	config := &PackageConfig{
		PackageDir: filepath.Dir(filePath),
	}

	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	parts := splitConfigArgs(line)
	for i := 0; i < len(parts); i++ {
		if parts[i] == "-output" && i+1 < len(parts) {
			i++
			config.DefaultOutput = trimQuotes(parts[i])
		}
	}

	if config.DefaultOutput == "" {
		return nil
	}

	return config
}

// splitConfigArgs 分割配置参数，支持引号内的空格
func splitConfigArgs(line string) []string {
	var parts []string
	var current strings.Builder
	inQuote := false
	quoteChar := byte(0)

	for i := 0; i < len(line); i++ {
		c := line[i]

		if !inQuote && (c == '`' || c == '"' || c == '\'') {
			inQuote = true
			quoteChar = c
			current.WriteByte(c)
		} else if inQuote && c == quoteChar {
			inQuote = false
			current.WriteByte(c)
			quoteChar = 0
		} else if !inQuote && c == ' ' {
			if current.Len() > 0 {
				parts = append(parts, current.String())
				current.Reset()
			}
		} else {
			current.WriteByte(c)
		}
	}

	if current.Len() > 0 {
		parts = append(parts, current.String())
	}

	return parts
}

// trimQuotes 去除引号
func trimQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '`' && s[len(s)-1] == '`') ||
			(s[0] == '"' && s[len(s)-1] == '"') ||
			(s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
