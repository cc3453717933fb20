package task

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/BUPT-a-out/test-script/internal/conf"
	"github.com/BUPT-a-out/test-script/internal/constants"
	"github.com/BUPT-a-out/test-script/internal/model"
	"github.com/BUPT-a-out/test-script/internal/task/compiler"
	"github.com/BUPT-a-out/test-script/internal/task/result"
	"github.com/BUPT-a-out/test-script/internal/task/runner"
	file_util "github.com/BUPT-a-out/test-script/internal/util/file"
)

// Pipeline 单用例测试流水线：编译 → 模拟器运行 → 结果判定
// 一个流水线绑定一条编译器命令；bench模式为每个配置各建一条
type Pipeline struct {
	Compiler  compiler.Compiler
	Runner    runner.Runner
	Toolchain *conf.ToolchainConfig
	WorkDir   string // 编译产物目录，产物路径由用例名唯一确定

	// UseReference 为真时，缺少期望输出文件的用例会尝试用本机
	// clang/gcc编译源程序生成参考输出作为期望结果
	UseReference bool
}

// NewPipeline 创建流水线
func NewPipeline(cmd model.CompilerCommand, tc *conf.ToolchainConfig, workDir string, debug bool) *Pipeline {
	return &Pipeline{
		Compiler:  compiler.NewSyCompiler(cmd, tc, debug),
		Runner:    runner.NewQemuRunner(tc.Simulator, tc.RunTimeout),
		Toolchain: tc,
		WorkDir:   workDir,
	}
}

// RunCase 执行单个测试用例的完整流程
// 所有失败都折算为判定结果，不向上传播error，保证批量测试不中断
func (p *Pipeline) RunCase(ctx context.Context, tc model.TestCase) model.CaseResult {
	exePath, res := p.compile(ctx, tc)
	if res != nil {
		return *res
	}

	input, err := p.loadInput(tc)
	if err != nil {
		return caseError(tc, "读取输入文件失败: "+err.Error())
	}

	outcome := p.Runner.Run(ctx, exePath, input)

	expected, err := p.resolveExpected(ctx, tc, input)
	if err != nil {
		return caseError(tc, err.Error())
	}

	judgement := result.Judge(outcome, expected)
	zap.L().Info("用例评测完成",
		zap.String("case", tc.Name),
		zap.String("verdict", judgement.Verdict),
		zap.Duration("elapsed", outcome.Duration),
	)
	return model.CaseResult{
		Case:     tc,
		Verdict:  judgement.Verdict,
		Detail:   judgement.Detail,
		Mismatch: judgement.Mismatch,
		Outcome:  outcome,
	}
}

// RunBench 对单个用例做基准测试：编译一次，连续运行runs次并记录每次耗时
// 判定只用首次运行的结果计算，计时运行假定输出是确定的
func (p *Pipeline) RunBench(ctx context.Context, tc model.TestCase, runs int) model.BenchmarkRecord {
	rec := model.BenchmarkRecord{Config: p.configName()}

	exePath, res := p.compile(ctx, tc)
	if res != nil {
		rec.Verdict = res.Verdict
		rec.Detail = res.Detail
		return rec
	}

	input, err := p.loadInput(tc)
	if err != nil {
		rec.Verdict = model.VerdictRuntimeError
		rec.Detail = "读取输入文件失败: " + err.Error()
		return rec
	}
	expected, err := p.resolveExpected(ctx, tc, input)
	if err != nil {
		rec.Verdict = model.VerdictRuntimeError
		rec.Detail = err.Error()
		return rec
	}

	for i := 0; i < runs; i++ {
		outcome := p.Runner.Run(ctx, exePath, input)
		rec.Runs = append(rec.Runs, outcome.Duration)
		if i == 0 {
			judgement := result.Judge(outcome, expected)
			rec.Verdict = judgement.Verdict
			rec.Detail = judgement.Detail
		}
		zap.L().Debug("基准运行",
			zap.String("case", tc.Name),
			zap.String("config", rec.Config),
			zap.Int("run", i+1),
			zap.Duration("elapsed", outcome.Duration),
		)
	}
	rec.ComputeAverage()
	return rec
}

// PrepareDebug 调试模式编译：产物复制到当前目录保留，供调试器加载
func (p *Pipeline) PrepareDebug(ctx context.Context, tc model.TestCase) (string, *model.CaseResult) {
	exePath, res := p.compile(ctx, tc)
	if res != nil {
		return "", res
	}

	debugExe := tc.Name + constants.DebugExeSuffix
	if err := file_util.CopyFile(exePath, debugExe); err != nil {
		r := caseError(tc, "保留调试程序失败: "+err.Error())
		return "", &r
	}
	zap.L().Info("调试程序已保留", zap.String("path", debugExe))
	return debugExe, nil
}

// compile 编译用例，失败时返回COMPILE_ERROR结果
func (p *Pipeline) compile(ctx context.Context, tc model.TestCase) (string, *model.CaseResult) {
	exePath, compileErr, err := p.Compiler.Compile(ctx, tc.SourceFile, p.WorkDir)
	if err != nil {
		detail := truncateLines(compileErr, constants.MaxErrorLines)
		if detail == "" {
			detail = err.Error()
		}
		zap.L().Warn("编译失败",
			zap.String("case", tc.Name),
			zap.Error(err),
		)
		return "", &model.CaseResult{
			Case:    tc,
			Verdict: model.VerdictCompileError,
			Detail:  detail,
		}
	}
	return exePath, nil
}

// loadInput 读取输入文件内容，无输入文件时返回空串
func (p *Pipeline) loadInput(tc model.TestCase) (string, error) {
	if !tc.HasInput() {
		return "", nil
	}
	return file_util.ReadFileToString(tc.InputFile)
}

// resolveExpected 确定用例的期望结果
// 有期望输出文件时解析它；没有时按配置生成参考输出，
// 参考输出生成失败退化为只检查退出状态为0；
// 不尝试参考输出时返回nil，表示只记录不比较
func (p *Pipeline) resolveExpected(ctx context.Context, tc model.TestCase, input string) (*model.ExpectedResult, error) {
	if tc.HasExpected() {
		return result.LoadExpected(tc.OutputFile)
	}
	if p.UseReference {
		expected, err := GenerateReference(ctx, tc.SourceFile, input, p.Toolchain.LibDir())
		if err != nil {
			zap.L().Warn("无法生成参考输出，退回只检查退出状态",
				zap.String("case", tc.Name),
				zap.Error(err),
			)
			return &model.ExpectedResult{StatusOnly: true}, nil
		}
		return expected, nil
	}
	return nil, nil
}

func (p *Pipeline) configName() string {
	if c, ok := p.Compiler.(*compiler.SyCompiler); ok {
		return c.Command.Name
	}
	return ""
}

// caseError 构造一个以RUNTIME_ERROR记录的用例级错误结果
func caseError(tc model.TestCase, detail string) model.CaseResult {
	return model.CaseResult{
		Case:    tc,
		Verdict: model.VerdictRuntimeError,
		Detail:  detail,
	}
}

// truncateLines 取前n行（失败摘要展示用）
func truncateLines(s string, n int) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return s
	}
	return strings.Join(lines[:n], "\n")
}
