package model

import (
	"time"

	"github.com/BUPT-a-out/test-script/internal/constants"
)

// Verdict 单个用例的判定结果
type Verdict = string

const (
	VerdictPass         Verdict = "PASS"          // 通过
	VerdictFailOutput   Verdict = "FAIL_OUTPUT"   // 输出不匹配
	VerdictFailStatus   Verdict = "FAIL_STATUS"   // 退出状态不匹配
	VerdictCompileError Verdict = "COMPILE_ERROR" // 编译/链接失败
	VerdictRuntimeError Verdict = "RUNTIME_ERROR" // 运行失败（启动失败或超时）
)

// ExitKind 进程退出方式
type ExitKind int

const (
	ExitNormal   ExitKind = iota // 正常退出
	ExitSignaled                 // 被信号终止
)

// ExitStatus 进程退出状态
// 内部保留正常退出与信号终止的区分，只在比较边界折算为整数
type ExitStatus struct {
	Kind   ExitKind `json:"kind"`
	Code   int      `json:"code"`   // 正常退出码（Kind==ExitNormal时有效）
	Signal int      `json:"signal"` // 终止信号值（Kind==ExitSignaled时有效）
}

// Sentinel 折算为单一整数：信号终止映射为 256+信号值
func (s ExitStatus) Sentinel() int {
	if s.Kind == ExitSignaled {
		return constants.SignalExitBase + s.Signal
	}
	return s.Code
}

// ExecutionOutcome 一次模拟器运行的实际结果
type ExecutionOutcome struct {
	Exit     ExitStatus    `json:"exit"`     // 退出状态
	Stdout   string        `json:"stdout"`   // 捕获的标准输出
	Stderr   string        `json:"stderr"`   // 捕获的标准错误
	Duration time.Duration `json:"duration"` // 运行耗时
	Failed   bool          `json:"failed"`   // 运行本身失败（启动失败或超时）
	Error    string        `json:"error"`    // 失败原因
}

// OutputMismatch 输出比较的首个不匹配位置
type OutputMismatch struct {
	Line     int    `json:"line"`     // 行号（从1开始）
	Expected string `json:"expected"` // 期望行（该行不存在时为空）
	Actual   string `json:"actual"`   // 实际行（该行不存在时为空）
}

// CaseResult 单个用例的完整评测结果
type CaseResult struct {
	Case     TestCase          `json:"case"`
	Verdict  Verdict           `json:"verdict"`
	Detail   string            `json:"detail"`   // 失败详情（编译错误、首个不匹配行等）
	Mismatch *OutputMismatch   `json:"mismatch"` // 输出不匹配的位置（仅FAIL_OUTPUT）
	Outcome  *ExecutionOutcome `json:"outcome"`  // 运行结果（未运行到则为nil）
}

// BatchSummary 批量测试汇总
type BatchSummary struct {
	Total   int                 `json:"total"`   // 已处理的用例数
	Counts  map[Verdict]int     `json:"counts"`  // 各判定结果的数量
	Buckets map[Verdict][]string `json:"buckets"` // 非PASS判定对应的用例名
	Results []CaseResult        `json:"results"` // 按处理顺序的全部结果
}

// NewBatchSummary 创建空的批量测试汇总
func NewBatchSummary() *BatchSummary {
	return &BatchSummary{
		Counts:  make(map[Verdict]int),
		Buckets: make(map[Verdict][]string),
	}
}

// Add 记录一个用例结果，保持计数与已处理用例一致
func (s *BatchSummary) Add(r CaseResult) {
	s.Total++
	s.Counts[r.Verdict]++
	if r.Verdict != VerdictPass {
		s.Buckets[r.Verdict] = append(s.Buckets[r.Verdict], r.Case.Name)
	}
	s.Results = append(s.Results, r)
}

// Passed 通过的用例数
func (s *BatchSummary) Passed() int {
	return s.Counts[VerdictPass]
}

// AllPassed 是否全部通过（空汇总视为通过）
func (s *BatchSummary) AllPassed() bool {
	return s.Passed() == s.Total
}
