package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/BUPT-a-out/test-script/internal/model"
)

// fakePipeline 按用例名返回预设判定的流水线替身
type fakePipeline struct {
	verdicts map[string]model.Verdict
	ran      []string
}

func (f *fakePipeline) RunCase(_ context.Context, tc model.TestCase) model.CaseResult {
	f.ran = append(f.ran, tc.Name)
	v, ok := f.verdicts[tc.Name]
	if !ok {
		v = model.VerdictPass
	}
	return model.CaseResult{Case: tc, Verdict: v}
}

func makeCases(n int) []model.TestCase {
	testCases := make([]model.TestCase, n)
	for i := range testCases {
		testCases[i] = model.TestCase{Name: fmt.Sprintf("case%d", i+1)}
	}
	return testCases
}

func TestBatchRunner_ContinuesPastFailures(t *testing.T) {
	// 5个用例，第3个编译失败，批次不中断
	fake := &fakePipeline{verdicts: map[string]model.Verdict{
		"case3": model.VerdictCompileError,
	}}
	b := NewBatchRunner(fake)

	summary := b.Run(context.Background(), makeCases(5))

	if summary.Total != 5 {
		t.Fatalf("Total = %d, want 5", summary.Total)
	}
	if summary.Counts[model.VerdictCompileError] != 1 {
		t.Errorf("COMPILE_ERROR数 = %d, want 1", summary.Counts[model.VerdictCompileError])
	}
	if summary.Counts[model.VerdictPass] != 4 {
		t.Errorf("PASS数 = %d, want 4", summary.Counts[model.VerdictPass])
	}
	if got := summary.Buckets[model.VerdictCompileError]; len(got) != 1 || got[0] != "case3" {
		t.Errorf("COMPILE_ERROR用例 = %v, want [case3]", got)
	}
	if summary.AllPassed() {
		t.Error("存在失败用例时AllPassed应为false")
	}
}

func TestBatchRunner_MixedVerdicts(t *testing.T) {
	fake := &fakePipeline{verdicts: map[string]model.Verdict{
		"case1": model.VerdictFailOutput,
		"case2": model.VerdictFailStatus,
		"case4": model.VerdictRuntimeError,
	}}
	b := NewBatchRunner(fake)

	summary := b.Run(context.Background(), makeCases(4))

	wantCounts := map[model.Verdict]int{
		model.VerdictFailOutput:   1,
		model.VerdictFailStatus:   1,
		model.VerdictPass:         1,
		model.VerdictRuntimeError: 1,
	}
	for v, want := range wantCounts {
		if summary.Counts[v] != want {
			t.Errorf("Counts[%s] = %d, want %d", v, summary.Counts[v], want)
		}
	}
}

func TestBatchRunner_Cancellation(t *testing.T) {
	// 取消后停止处理，部分汇总的计数与已处理用例一致
	ctx, cancel := context.WithCancel(context.Background())
	fake := &fakePipeline{}
	cancelAfter := 2
	wrapped := pipelineFunc(func(c context.Context, tc model.TestCase) model.CaseResult {
		res := fake.RunCase(c, tc)
		if len(fake.ran) == cancelAfter {
			cancel()
		}
		return res
	})
	b := NewBatchRunner(wrapped)

	summary := b.Run(ctx, makeCases(10))

	if summary.Total != cancelAfter {
		t.Errorf("Total = %d, want %d", summary.Total, cancelAfter)
	}
	if len(summary.Results) != summary.Total {
		t.Errorf("Results长度 %d 与 Total %d 不一致", len(summary.Results), summary.Total)
	}
	totalCounted := 0
	for _, n := range summary.Counts {
		totalCounted += n
	}
	if totalCounted != summary.Total {
		t.Errorf("计数合计 %d 与 Total %d 不一致", totalCounted, summary.Total)
	}
}

// pipelineFunc 函数式流水线适配
type pipelineFunc func(ctx context.Context, tc model.TestCase) model.CaseResult

func (f pipelineFunc) RunCase(ctx context.Context, tc model.TestCase) model.CaseResult {
	return f(ctx, tc)
}
