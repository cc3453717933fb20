package model

import "time"

// BenchmarkRecord 单个（用例, 编译器配置）的基准测试记录
type BenchmarkRecord struct {
	Config  string          `json:"config"`  // 编译器配置展示名
	Verdict Verdict         `json:"verdict"` // 以首次运行结果计算的判定
	Detail  string          `json:"detail"`  // 非PASS时的失败详情
	Runs    []time.Duration `json:"runs"`    // 每次运行的耗时
	Average time.Duration   `json:"average"` // 平均耗时
	Speedup float64         `json:"speedup"` // 相对基准配置的加速比（基准平均/本配置平均）
}

// ComputeAverage 根据各次运行耗时计算平均值
func (r *BenchmarkRecord) ComputeAverage() {
	if len(r.Runs) == 0 {
		r.Average = 0
		return
	}
	var total time.Duration
	for _, d := range r.Runs {
		total += d
	}
	r.Average = total / time.Duration(len(r.Runs))
}

// CaseBenchmark 单个用例在所有配置下的对比结果
type CaseBenchmark struct {
	Case       string            `json:"case"`
	Records    []BenchmarkRecord `json:"records"`
	Consistent bool              `json:"consistent"` // 各配置判定是否一致；不一致时计时不参与对比
}

// BenchReport 基准对比报告
type BenchReport struct {
	Baseline string          `json:"baseline"` // 基准配置（配置列表中的第一个）
	Runs     int             `json:"runs"`     // 每个配置的运行次数
	Cases    []CaseBenchmark `json:"cases"`
}

// AllConsistent 是否所有用例在各配置间判定一致
func (r *BenchReport) AllConsistent() bool {
	for _, c := range r.Cases {
		if !c.Consistent {
			return false
		}
	}
	return true
}
