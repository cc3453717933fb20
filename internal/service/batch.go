package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/BUPT-a-out/test-script/internal/model"
)

// CasePipeline 单用例流水线接口（批量测试注入，便于测试替身）
type CasePipeline interface {
	RunCase(ctx context.Context, tc model.TestCase) model.CaseResult
}

// BatchRunner 批量测试执行器
// 用固定的一条编译器命令顺序处理全部用例，单个用例失败不中断批次
type BatchRunner struct {
	Pipeline CasePipeline
}

// NewBatchRunner 创建批量测试执行器
func NewBatchRunner(p CasePipeline) *BatchRunner {
	return &BatchRunner{Pipeline: p}
}

// Run 顺序执行所有用例并汇总
// 取消（如用户中断）停止处理后续用例，已处理部分的汇总保持一致
func (b *BatchRunner) Run(ctx context.Context, testCases []model.TestCase) *model.BatchSummary {
	summary := model.NewBatchSummary()

	for _, tc := range testCases {
		select {
		case <-ctx.Done():
			zap.L().Warn("批量测试被中断",
				zap.Int("processed", summary.Total),
				zap.Int("total", len(testCases)),
			)
			return summary
		default:
		}

		res := b.Pipeline.RunCase(ctx, tc)
		summary.Add(res)
	}

	zap.L().Info("批量测试完成",
		zap.Int("total", summary.Total),
		zap.Int("passed", summary.Passed()),
	)
	return summary
}
