package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/donutnomad/eqgen/plugin"
	"github.com/donutnomad/eqgen/subseteq"
	"github.com/samber/lo"
)

func init() {
	plugin.MustRegister(subseteq.NewGenerator())
}

var (
	verbose  = flag.Bool("v", false, "详细输出")
	help     = flag.Bool("h", false, "显示帮助信息")
	output   = flag.String("output", "", "默认输出路径（支持模板变量 $FILE, $PACKAGE）")
	noOutput = flag.Bool("no-output", false, "禁用默认输出（每个生成器输出到独立文件）")
	async    = flag.Bool("async", true, "异步执行生成器（默认 true）")
)

func main() {
	flag.Usage = usage
	flag.Parse()

	if *help {
		usage()
		os.Exit(0)
	}

	args := flag.Args()

	// 默认命令是 gen
	if len(args) == 0 {
		runGen([]string{"./..."}, false)
		return
	}

	cmd := args[0]
	switch cmd {
	case "gen":
		runGen(args[1:], false)
	case "check":
		runGen(args[1:], true)
	case "dev":
		runDev(args[1:])
	default:
		// 不是子命令，当作路径参数处理，执行 gen
		runGen(args, false)
	}
}

func runGen(args []string, check bool) {
	patterns := args
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}

	registry := plugin.Global()
	if len(registry.Generators()) == 0 {
		fmt.Fprintln(os.Stderr, "错误: 没有已注册的生成器")
		os.Exit(1)
	}

	if *verbose {
		fmt.Printf("已注册 %d 个生成器:\n", len(registry.Generators()))
		for _, gen := range registry.Generators() {
			anns := lo.Map(gen.Annotations(), func(item string, index int) string {
				return "@" + item
			})
			fmt.Printf("  - %s (%s)\n", gen.Name(), strings.Join(anns, ","))
		}
		fmt.Println()
	}

	ctx := context.Background()

	outputPath := *output
	if *noOutput {
		outputPath = ""
	}

	opts := &plugin.RunOptions{
		Registry: registry,
		Patterns: patterns,
		Verbose:  *verbose,
		Output:   outputPath,
		Async:    *async,
		Check:    check,
	}

	stats, err := plugin.RunWithOptionsAndStats(ctx, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}

	if stats != nil && (stats.FileCount > 0 || *verbose) {
		verb := "生成"
		if check {
			verb = "检查"
		}
		fmt.Printf("\n统计: 扫描 %d 个目标, %s %d 个文件\n", stats.TargetCount, verb, stats.FileCount)
		fmt.Printf("耗时: 扫描 %v, 生成 %v, 总计 %v\n", stats.ScanDuration, stats.GenerateDuration, stats.TotalDuration)
	}
}

func usage() {
	_, _ = fmt.Fprintf(os.Stderr, `eqgen - 结构体子集比较代码生成工具

用法:
  eqgen [选项] [路径...]
  eqgen gen [选项] [路径...]
  eqgen check [选项] [路径...]
  eqgen dev [选项] [路径...]

命令:
  gen     执行代码生成（默认）
  check   检查模式，不写文件，生成文件过期时报错退出
  dev     启动开发模式，监听文件变动自动生成

路径:
  支持 Go 包路径模式，如:
    ./...          递归扫描当前目录及子目录（默认）
    ./pkg/...      递归扫描指定目录
    ./models/...   递归扫描 models 目录

选项:
`)
	flag.PrintDefaults()

	// 动态生成注解帮助信息
	registry := plugin.Global()
	if len(registry.Generators()) > 0 {
		_, _ = fmt.Fprintf(os.Stderr, "\n支持的注解:\n")
		_, _ = fmt.Fprint(os.Stderr, plugin.FormatHelpText(registry))
	}

	_, _ = fmt.Fprintf(os.Stderr, `模板变量:
  $FILE     - 源文件名（不含 .go 后缀）
  $PACKAGE  - 包名

示例:
  eqgen                                     扫描当前目录（默认 ./...）
  eqgen ./...                               递归扫描当前目录
  eqgen -v ./models/...                     详细模式扫描 models 目录
  eqgen -output $FILE_eq ./...              指定输出文件名
  eqgen check ./...                         CI 中校验生成文件是否最新
  eqgen dev ./...                           开发模式，监听文件变动
`)
}
