package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/donutnomad/eqgen/plugin"
	"github.com/fsnotify/fsnotify"
	"golang.org/x/tools/imports"
)

// watchRunner dev 模式的事件循环状态
type watchRunner struct {
	patterns []string
	verbose  bool
	output   string
	async    bool
	debounce time.Duration

	registry *plugin.Registry
	watcher  *fsnotify.Watcher
	scanner  *plugin.Scanner
	ctx      context.Context

	mu      sync.Mutex
	pending map[string]*time.Timer // 包目录 -> 待触发的定时器
}

// runDev 启动开发模式
func runDev(args []string) {
	patterns := args
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}

	registry := plugin.Global()
	if len(registry.Generators()) == 0 {
		fmt.Fprintln(os.Stderr, "错误: 没有已注册的生成器")
		os.Exit(1)
	}

	outputPath := *output
	if *noOutput {
		outputPath = ""
	}

	r := &watchRunner{
		patterns: patterns,
		verbose:  *verbose,
		output:   outputPath,
		async:    *async,
		debounce: 2 * time.Second,
		registry: registry,
		scanner:  plugin.NewScanner(plugin.WithAnnotationFilter(registry.Annotations()...)),
		pending:  make(map[string]*time.Timer),
	}

	if err := r.run(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func (r *watchRunner) run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r.ctx = ctx

	// Ctrl+C / SIGTERM 取消事件循环
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\n正在退出...")
		cancel()
	}()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("创建文件监听器失败: %w", err)
	}
	defer watcher.Close()
	r.watcher = watcher

	defer r.stopPending()

	dirs, err := watchDirs(r.patterns)
	if err != nil {
		return fmt.Errorf("收集监听目录失败: %w", err)
	}
	if len(dirs) == 0 {
		return fmt.Errorf("没有找到需要监听的目录")
	}

	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("添加监听目录失败 %s: %w", dir, err)
		}
		if r.verbose {
			fmt.Printf("监听目录: %s\n", dir)
		}
	}

	fmt.Printf("开发模式已启动，监听 %d 个目录\n", len(dirs))
	fmt.Println("按 Ctrl+C 退出")
	fmt.Println()

	return r.loop()
}

// loop 消费 watcher 事件直到 context 取消
func (r *watchRunner) loop() error {
	for {
		select {
		case <-r.ctx.Done():
			return nil

		case ev, ok := <-r.watcher.Events:
			if !ok {
				return nil
			}
			r.onEvent(ev)

		case err, ok := <-r.watcher.Errors:
			if !ok {
				return nil
			}
			if r.verbose {
				fmt.Printf("监听错误: %v\n", err)
			}
		}
	}
}

// onEvent 过滤出需要重新生成的源码变更
// 测试文件和生成的 _subseteq.go 不会反向触发生成
func (r *watchRunner) onEvent(ev fsnotify.Event) {
	if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}

	path := ev.Name
	base := filepath.Base(path)
	if !strings.HasSuffix(base, ".go") ||
		strings.HasSuffix(base, "_test.go") ||
		strings.HasSuffix(base, "_subseteq.go") {
		return
	}

	if r.verbose {
		fmt.Printf("检测到文件变化: %s\n", path)
	}

	matched, err := r.scanner.QuickMatchFile(path)
	if err != nil {
		if r.verbose {
			fmt.Printf("检查注解失败 %s: %v\n", path, err)
		}
		return
	}
	if !matched {
		if r.verbose {
			fmt.Printf("跳过文件（无注解）: %s\n", path)
		}
		return
	}

	// 语法有误时不触发生成，等文件修好再说
	if err := checkSyntax(path); err != nil {
		fmt.Printf("语法错误 %s: %v\n", path, err)
		return
	}

	r.schedule(filepath.Dir(path))
}

// schedule 防抖动：同一包目录在窗口内的多次变更只触发一次生成
func (r *watchRunner) schedule(pkgDir string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if timer, ok := r.pending[pkgDir]; ok {
		timer.Stop()
	}

	r.pending[pkgDir] = time.AfterFunc(r.debounce, func() {
		select {
		case <-r.ctx.Done():
			return
		default:
		}

		r.generate(pkgDir)

		r.mu.Lock()
		delete(r.pending, pkgDir)
		r.mu.Unlock()
	})
}

// generate 只对变动的包目录执行生成
func (r *watchRunner) generate(pkgDir string) {
	if r.verbose {
		fmt.Printf("触发代码生成: %s\n", pkgDir)
	}

	stats, err := plugin.RunWithOptionsAndStats(r.ctx, &plugin.RunOptions{
		Registry: r.registry,
		Patterns: []string{pkgDir},
		Verbose:  r.verbose,
		Output:   r.output,
		Async:    r.async,
	})
	if err != nil {
		fmt.Printf("生成失败: %v\n", err)
		return
	}

	if stats != nil && stats.FileCount > 0 {
		fmt.Printf("生成完成: %d 个文件 (耗时: %v)\n", stats.FileCount, stats.TotalDuration)
	} else if r.verbose {
		fmt.Println("生成完成: 无文件生成")
	}
}

// stopPending 退出前停掉尚未触发的定时器
func (r *watchRunner) stopPending() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, timer := range r.pending {
		timer.Stop()
	}
}

// checkSyntax 只做语法检查，不改动 imports
func checkSyntax(path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	_, err = imports.Process(path, src, &imports.Options{
		Fragment:   true,
		AllErrors:  true,
		Comments:   true,
		FormatOnly: true,
	})
	return err
}

// watchDirs 展开路径模式为需要监听的目录集合
// 形如 dir/... 的模式递归展开，普通路径只取目录本身
func watchDirs(patterns []string) ([]string, error) {
	var dirs []string
	seen := make(map[string]bool)

	add := func(dir string) {
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}

	for _, pattern := range patterns {
		recursive := strings.HasSuffix(pattern, "/...")
		base := strings.TrimSuffix(pattern, "/...")

		absDir, err := filepath.Abs(base)
		if err != nil {
			return nil, err
		}

		info, err := os.Stat(absDir)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			continue
		}

		if !recursive {
			add(absDir)
			continue
		}

		err = filepath.WalkDir(absDir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				return nil
			}
			name := d.Name()
			if path != absDir && (strings.HasPrefix(name, ".") || name == "vendor" || name == "testdata") {
				return filepath.SkipDir
			}
			add(path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return dirs, nil
}
