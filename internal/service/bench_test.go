package service

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/BUPT-a-out/test-script/internal/model"
	"github.com/BUPT-a-out/test-script/pkg/errors"
)

// fakeBenchPipeline 返回预设耗时与判定的基准流水线替身
type fakeBenchPipeline struct {
	verdict model.Verdict
	runs    []time.Duration
}

func (f *fakeBenchPipeline) RunBench(_ context.Context, _ model.TestCase, runs int) model.BenchmarkRecord {
	rec := model.BenchmarkRecord{
		Verdict: f.verdict,
		Runs:    f.runs[:runs],
	}
	rec.ComputeAverage()
	return rec
}

func twoConfigs() []model.CompilerCommand {
	return []model.CompilerCommand{
		{Name: "compiler -O0", Args: []string{"compiler", "-O0"}},
		{Name: "compiler -O2", Args: []string{"compiler", "-O2"}},
	}
}

func TestBenchRunner_SpeedupAgainstBaseline(t *testing.T) {
	// 基准配置每次运行[10,20,30]ms，对比配置[5,5,5]ms：
	// 平均20ms和5ms，相对基准加速比4.0
	fakes := map[string]*fakeBenchPipeline{
		"compiler -O0": {
			verdict: model.VerdictPass,
			runs:    []time.Duration{10 * time.Millisecond, 20 * time.Millisecond, 30 * time.Millisecond},
		},
		"compiler -O2": {
			verdict: model.VerdictPass,
			runs:    []time.Duration{5 * time.Millisecond, 5 * time.Millisecond, 5 * time.Millisecond},
		},
	}
	b := &BenchRunner{
		Configs: twoConfigs(),
		Runs:    3,
		Pipeline: func(cmd model.CompilerCommand) BenchPipeline {
			return fakes[cmd.Name]
		},
	}

	report, err := b.Run(context.Background(), []model.TestCase{{Name: "fib"}})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Baseline != "compiler -O0" {
		t.Errorf("基准配置 = %s, want compiler -O0", report.Baseline)
	}
	if len(report.Cases) != 1 {
		t.Fatalf("用例数 = %d, want 1", len(report.Cases))
	}

	cb := report.Cases[0]
	if !cb.Consistent {
		t.Fatal("判定一致的用例不应被标记为不一致")
	}
	if cb.Records[0].Average != 20*time.Millisecond {
		t.Errorf("基准平均 = %v, want 20ms", cb.Records[0].Average)
	}
	if cb.Records[1].Average != 5*time.Millisecond {
		t.Errorf("对比平均 = %v, want 5ms", cb.Records[1].Average)
	}
	if math.Abs(cb.Records[1].Speedup-4.0) > 1e-9 {
		t.Errorf("加速比 = %f, want 4.0", cb.Records[1].Speedup)
	}
	if math.Abs(cb.Records[0].Speedup-1.0) > 1e-9 {
		t.Errorf("基准自身加速比 = %f, want 1.0", cb.Records[0].Speedup)
	}
}

func TestBenchRunner_InconsistentVerdicts(t *testing.T) {
	// 两个配置判定不一致：用例标记为不一致，计时不参与对比
	fakes := map[string]*fakeBenchPipeline{
		"compiler -O0": {
			verdict: model.VerdictPass,
			runs:    []time.Duration{10 * time.Millisecond},
		},
		"compiler -O2": {
			verdict: model.VerdictFailOutput,
			runs:    []time.Duration{time.Millisecond},
		},
	}
	b := &BenchRunner{
		Configs: twoConfigs(),
		Runs:    1,
		Pipeline: func(cmd model.CompilerCommand) BenchPipeline {
			return fakes[cmd.Name]
		},
	}

	report, err := b.Run(context.Background(), []model.TestCase{{Name: "bad"}})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	cb := report.Cases[0]
	if cb.Consistent {
		t.Fatal("判定不一致的用例应被标记")
	}
	for _, rec := range cb.Records {
		if rec.Speedup != 0 {
			t.Errorf("不一致用例的加速比应为0，got %f", rec.Speedup)
		}
	}
	if report.AllConsistent() {
		t.Error("AllConsistent() 应为 false")
	}
}

func TestBenchRunner_InsufficientConfigurations(t *testing.T) {
	b := &BenchRunner{
		Configs: twoConfigs()[:1],
		Runs:    3,
		Pipeline: func(model.CompilerCommand) BenchPipeline {
			return &fakeBenchPipeline{}
		},
	}

	_, err := b.Run(context.Background(), []model.TestCase{{Name: "x"}})
	if err == nil {
		t.Fatal("少于2个配置应返回错误")
	}
	if !errors.IsErrorCode(err, errors.ErrCodeInsufficientConfigs) {
		t.Errorf("错误码 = %d, want ErrCodeInsufficientConfigs", errors.GetErrorCode(err))
	}
}

func TestBenchRunner_InvalidRuns(t *testing.T) {
	b := &BenchRunner{
		Configs: twoConfigs(),
		Runs:    0,
		Pipeline: func(model.CompilerCommand) BenchPipeline {
			return &fakeBenchPipeline{}
		},
	}

	if _, err := b.Run(context.Background(), nil); err == nil {
		t.Fatal("运行次数为0应返回错误")
	}
}
