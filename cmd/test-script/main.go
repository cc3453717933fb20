package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"

	"github.com/BUPT-a-out/test-script/internal/cases"
	"github.com/BUPT-a-out/test-script/internal/conf"
	"github.com/BUPT-a-out/test-script/internal/constants"
	"github.com/BUPT-a-out/test-script/internal/model"
	"github.com/BUPT-a-out/test-script/internal/service"
	"github.com/BUPT-a-out/test-script/internal/task"
	"github.com/BUPT-a-out/test-script/internal/task/compiler"
	"github.com/BUPT-a-out/test-script/internal/task/runner"
	"github.com/BUPT-a-out/test-script/pkg/errors"
	"github.com/BUPT-a-out/test-script/pkg/logging"
)

const (
	exitOK     = 0 // 全部用例通过
	exitFailed = 1 // 存在未通过的用例
	exitConfig = 2 // 配置错误，未开始任何用例
)

// Globals 各子命令共享的选项
type Globals struct {
	Config    string `help:"配置文件路径" type:"path"`
	Lib       string `help:"运行时静态库路径"`
	Simulator string `help:"模拟器 (默认: qemu-riscv64)"`
	Timeout   int    `help:"单次运行超时（秒）"`
	LogLevel  string `name:"log-level" help:"日志级别 (debug/info/warn/error)"`
}

// CLI 命令行定义
type CLI struct {
	Globals

	Run   RunCmd   `cmd:"" help:"编译并运行测试（源文件或目录）"`
	Debug DebugCmd `cmd:"" help:"调试模式编译并启动调试器"`
	Bench BenchCmd `cmd:"" help:"多个编译器配置的性能对比测试"`
}

// RunCmd run子命令：单文件或批量测试
type RunCmd struct {
	Source   string   `arg:"" help:"源文件或目录"`
	In       string   `help:"输入文件（覆盖自动查找）" type:"path"`
	Out      string   `help:"期望输出文件（覆盖自动查找）" type:"path"`
	Compiler []string `arg:"" optional:"" passthrough:"" help:"编译器命令"`
}

// DebugCmd debug子命令：仅支持单个源文件
type DebugCmd struct {
	Source   string   `arg:"" help:"源文件"`
	Compiler []string `arg:"" optional:"" passthrough:"" help:"编译器命令"`
}

// BenchCmd bench子命令：用分号分隔多个编译器配置
type BenchCmd struct {
	Source   string   `arg:"" help:"源文件或目录"`
	In       string   `help:"输入文件（覆盖自动查找）" type:"path"`
	Runs     int      `help:"每个配置的运行次数" default:"3"`
	Compiler []string `arg:"" optional:"" passthrough:"" help:"编译器命令，用分号(;)分隔多个配置"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("test-script"),
		kong.Description("编译器测试脚本：编译、运行、比对与性能对比"),
	)

	app, err := newApp(&cli.Globals)
	if err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(exitConfig)
	}

	code := exitOK
	if ee, ok := ctx.Run(app).(*exitError); ok {
		code = ee.code
	}
	app.Close()
	os.Exit(code)
}

// exitError 子命令的退出码载体，kong的Run返回值统一走这里
type exitError struct{ code int }

func (e *exitError) Error() string { return fmt.Sprintf("exit %d", e.code) }

func exit(code int) error { return &exitError{code: code} }

// App 初始化完成的运行环境
type App struct {
	Toolchain *conf.ToolchainConfig
	logger    *zap.Logger
	ctx       context.Context
	stop      context.CancelFunc
}

// newApp 加载配置并初始化日志，用户中断通过context传播
func newApp(g *Globals) (*App, error) {
	cfg, err := conf.Load(g.Config)
	if err != nil {
		return nil, fmt.Errorf("加载配置失败: %w", err)
	}
	if g.LogLevel != "" {
		cfg.Set("log.level", g.LogLevel)
	}

	logger, err := logging.NewLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("初始化日志失败: %w", err)
	}
	zap.ReplaceGlobals(logger)

	toolchain := conf.LoadToolchainConfig(cfg)
	if g.Lib != "" {
		toolchain.LibPath = g.Lib
	}
	if g.Simulator != "" {
		toolchain.Simulator = g.Simulator
	}
	if g.Timeout > 0 {
		toolchain.RunTimeout = time.Duration(g.Timeout) * time.Second
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	return &App{
		Toolchain: toolchain,
		logger:    logger,
		ctx:       ctx,
		stop:      stop,
	}, nil
}

// Close 释放运行环境
func (a *App) Close() {
	a.stop()
	_ = a.logger.Sync()
}

// Run 执行run子命令
func (c *RunCmd) Run(app *App) error {
	cmd, err := compiler.NewCommand(c.Compiler)
	if err != nil {
		return configError(err)
	}

	info, err := os.Stat(c.Source)
	if err != nil {
		return configError(errors.NewPathNotFoundError(c.Source))
	}

	workDir, err := os.MkdirTemp("", constants.TempDirPrefix)
	if err != nil {
		return configError(fmt.Errorf("创建临时目录失败: %w", err))
	}
	defer os.RemoveAll(workDir)

	pipeline := task.NewPipeline(cmd, app.Toolchain, workDir, false)
	// 单文件缺少期望输出时允许用本机编译器生成参考输出；
	// 批量模式只认.out文件
	pipeline.UseReference = !info.IsDir()

	if info.IsDir() {
		if c.In != "" || c.Out != "" {
			return configError(errors.NewInvalidParamError("--in/--out", "批量测试不支持覆盖输入输出文件"))
		}
		testCases, err := cases.Resolve(c.Source)
		if err != nil {
			return configError(err)
		}
		summary := service.NewBatchRunner(pipeline).Run(app.ctx, testCases)
		printSummary(summary)
		if summary.AllPassed() {
			return exit(exitOK)
		}
		return exit(exitFailed)
	}

	tc, err := cases.ResolveSingle(c.Source, c.In, c.Out)
	if err != nil {
		return configError(err)
	}

	// 单文件、既无输入也无期望输出时进入交互模式
	if !tc.HasInput() && !tc.HasExpected() {
		return runInteractive(app, pipeline, tc)
	}

	res := pipeline.RunCase(app.ctx, tc)
	printCaseResult(res)
	if res.Verdict == model.VerdictPass {
		return exit(exitOK)
	}
	return exit(exitFailed)
}

// runInteractive 交互模式：模拟器直接接管终端
func runInteractive(app *App, pipeline *task.Pipeline, tc model.TestCase) error {
	exePath, compileRes := preparePlain(app, pipeline, tc)
	if compileRes != nil {
		printCaseResult(*compileRes)
		return exit(exitFailed)
	}

	fmt.Println("进入交互模式 (输入完成后按Ctrl+D结束):")
	qemu := runner.NewQemuRunner(app.Toolchain.Simulator, app.Toolchain.RunTimeout)
	status, err := qemu.RunInteractive(exePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		return exit(exitFailed)
	}
	fmt.Printf("退出码: %d\n", status.Sentinel())
	return exit(exitOK)
}

// preparePlain 编译单个用例，失败时返回结果
func preparePlain(app *App, pipeline *task.Pipeline, tc model.TestCase) (string, *model.CaseResult) {
	exePath, compileErr, err := pipeline.Compiler.Compile(app.ctx, tc.SourceFile, pipeline.WorkDir)
	if err != nil {
		detail := compileErr
		if detail == "" {
			detail = err.Error()
		}
		return "", &model.CaseResult{
			Case:    tc,
			Verdict: model.VerdictCompileError,
			Detail:  detail,
		}
	}
	return exePath, nil
}

// Run 执行debug子命令
func (c *DebugCmd) Run(app *App) error {
	cmd, err := compiler.NewCommand(c.Compiler)
	if err != nil {
		return configError(err)
	}

	info, err := os.Stat(c.Source)
	if err != nil {
		return configError(errors.NewPathNotFoundError(c.Source))
	}
	if info.IsDir() {
		return configError(errors.NewInvalidParamError("source", "debug模式不支持批量运行"))
	}

	workDir, err := os.MkdirTemp("", constants.TempDirPrefix)
	if err != nil {
		return configError(fmt.Errorf("创建临时目录失败: %w", err))
	}
	defer os.RemoveAll(workDir)

	tc := cases.FromSource(c.Source)
	pipeline := task.NewPipeline(cmd, app.Toolchain, workDir, true)

	debugExe, res := pipeline.PrepareDebug(app.ctx, tc)
	if res != nil {
		printCaseResult(*res)
		return exit(exitFailed)
	}

	fmt.Printf("调试程序已复制到: %s\n", debugExe)
	fmt.Printf("启动调试器: %s %s\n", app.Toolchain.Debugger, debugExe)
	fmt.Println("调试提示:")
	fmt.Printf("  (gdb) target remote | %s -g 1234 ./%s\n", app.Toolchain.Simulator, debugExe)
	fmt.Println("  或者直接: (gdb) run")

	if err := launchDebugger(app.Toolchain.Debugger, debugExe); err != nil {
		fmt.Fprintf(os.Stderr, "启动调试器失败: %v\n", err)
		return exit(exitFailed)
	}
	return exit(exitOK)
}

// Run 执行bench子命令
func (c *BenchCmd) Run(app *App) error {
	configs, err := compiler.SplitConfigurations(c.Compiler)
	if err != nil {
		return configError(err)
	}

	var testCases []model.TestCase
	info, err := os.Stat(c.Source)
	if err != nil {
		return configError(errors.NewPathNotFoundError(c.Source))
	}
	if info.IsDir() {
		if testCases, err = cases.Resolve(c.Source); err != nil {
			return configError(err)
		}
	} else {
		tc, err := cases.ResolveSingle(c.Source, c.In, "")
		if err != nil {
			return configError(err)
		}
		testCases = []model.TestCase{tc}
	}

	workDir, err := os.MkdirTemp("", constants.TempDirPrefix)
	if err != nil {
		return configError(fmt.Errorf("创建临时目录失败: %w", err))
	}
	defer os.RemoveAll(workDir)

	runs := c.Runs
	if runs == 0 {
		runs = app.Toolchain.BenchRuns
	}

	// 每个配置独立的产物目录，避免同名产物相互覆盖
	index := 0
	bench := &service.BenchRunner{
		Configs: configs,
		Runs:    runs,
		Pipeline: func(cmd model.CompilerCommand) service.BenchPipeline {
			index++
			dir := filepath.Join(workDir, fmt.Sprintf("config%d", index))
			_ = os.MkdirAll(dir, 0755)
			return task.NewPipeline(cmd, app.Toolchain, dir, false)
		},
	}

	report, err := bench.Run(app.ctx, testCases)
	if err != nil {
		return configError(err)
	}
	printBenchReport(report)
	if benchPassed(report) {
		return exit(exitOK)
	}
	return exit(exitFailed)
}

// benchPassed 所有用例在所有配置下判定一致且全部通过
func benchPassed(report *model.BenchReport) bool {
	if !report.AllConsistent() {
		return false
	}
	for _, c := range report.Cases {
		for _, rec := range c.Records {
			if rec.Verdict != model.VerdictPass {
				return false
			}
		}
	}
	return true
}

// configError 打印配置错误并以配置错误码退出
func configError(err error) error {
	fmt.Fprintf(os.Stderr, "错误: %v\n", err)
	return exit(exitConfig)
}
