package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/BUPT-a-out/test-script/internal/constants"
	"github.com/BUPT-a-out/test-script/internal/model"
	"github.com/BUPT-a-out/test-script/pkg/errors"
)

// BenchPipeline 基准流水线接口：编译一次后连续计时运行
type BenchPipeline interface {
	RunBench(ctx context.Context, tc model.TestCase, runs int) model.BenchmarkRecord
}

// BenchRunner 基准对比执行器
// 对每个用例依次用每个编译器配置编译并计时运行，
// 以配置列表中的第一个为基准计算相对加速比
type BenchRunner struct {
	Configs  []model.CompilerCommand
	Runs     int
	Pipeline func(cmd model.CompilerCommand) BenchPipeline // 每个配置的流水线工厂
}

// Run 执行基准对比并生成报告
// 某用例在各配置间判定不一致时标记为不一致并剔除其计时对比：
// 比较错误输出与正确输出的速度没有意义，但差异本身要报告
func (b *BenchRunner) Run(ctx context.Context, testCases []model.TestCase) (*model.BenchReport, error) {
	if len(b.Configs) < constants.MinBenchConfigs {
		return nil, errors.NewInsufficientConfigurationsError(len(b.Configs), constants.MinBenchConfigs)
	}
	if b.Runs < constants.MinBenchRuns {
		return nil, errors.NewInvalidParamError("--runs", "运行次数必须大于0")
	}

	pipelines := make([]BenchPipeline, len(b.Configs))
	for i, cmd := range b.Configs {
		pipelines[i] = b.Pipeline(cmd)
	}

	report := &model.BenchReport{
		Baseline: b.Configs[0].Name,
		Runs:     b.Runs,
	}

	for _, tc := range testCases {
		select {
		case <-ctx.Done():
			zap.L().Warn("基准测试被中断",
				zap.Int("processed", len(report.Cases)),
				zap.Int("total", len(testCases)),
			)
			return report, nil
		default:
		}

		cb := model.CaseBenchmark{Case: tc.Name}
		for i, p := range pipelines {
			rec := p.RunBench(ctx, tc, b.Runs)
			rec.Config = b.Configs[i].Name
			cb.Records = append(cb.Records, rec)
		}

		cb.Consistent = consistent(cb.Records)
		if cb.Consistent {
			applySpeedups(cb.Records)
		} else {
			zap.L().Warn("各配置判定不一致，该用例计时不参与对比",
				zap.String("case", tc.Name),
				zap.Strings("verdicts", verdictsOf(cb.Records)),
			)
		}
		report.Cases = append(report.Cases, cb)
	}

	return report, nil
}

// consistent 判断所有配置对同一用例的判定是否一致
func consistent(records []model.BenchmarkRecord) bool {
	for i := 1; i < len(records); i++ {
		if records[i].Verdict != records[0].Verdict {
			return false
		}
	}
	return true
}

// applySpeedups 计算各配置相对基准配置（第一个）的加速比
func applySpeedups(records []model.BenchmarkRecord) {
	if len(records) == 0 {
		return
	}
	base := records[0].Average
	for i := range records {
		if records[i].Average > 0 {
			records[i].Speedup = float64(base) / float64(records[i].Average)
		}
	}
}

func verdictsOf(records []model.BenchmarkRecord) []string {
	vs := make([]string, len(records))
	for i, r := range records {
		vs[i] = r.Verdict
	}
	return vs
}
