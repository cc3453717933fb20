package main

import (
	"fmt"
	"os"
	"os/exec"
	"sort"
	"time"

	"github.com/BUPT-a-out/test-script/internal/model"
)

// printCaseResult 输出单个用例的判定结果
func printCaseResult(r model.CaseResult) {
	fmt.Printf("[%s] %s\n", r.Verdict, r.Case.Name)
	if r.Verdict == model.VerdictPass {
		if r.Outcome != nil {
			fmt.Printf("  耗时: %s\n", formatDuration(r.Outcome.Duration))
		}
		return
	}
	if r.Detail != "" {
		fmt.Printf("  %s\n", r.Detail)
	}
	if r.Mismatch != nil {
		fmt.Printf("  第%d行不匹配:\n", r.Mismatch.Line)
		fmt.Printf("    期望: %q\n", r.Mismatch.Expected)
		fmt.Printf("    实际: %q\n", r.Mismatch.Actual)
	}
	if r.Verdict == model.VerdictFailStatus && r.Outcome != nil {
		fmt.Printf("  实际退出码: %d\n", r.Outcome.Exit.Sentinel())
	}
}

// printSummary 输出批量测试汇总
func printSummary(s *model.BatchSummary) {
	for _, r := range s.Results {
		printCaseResult(r)
	}

	fmt.Println("========================================")
	fmt.Printf("总计: %d  通过: %d\n", s.Total, s.Passed())

	verdicts := make([]string, 0, len(s.Buckets))
	for v := range s.Buckets {
		verdicts = append(verdicts, v)
	}
	sort.Strings(verdicts)
	for _, v := range verdicts {
		names := s.Buckets[v]
		fmt.Printf("%s (%d):\n", v, len(names))
		for _, name := range names {
			fmt.Printf("  - %s\n", name)
		}
	}
}

// printBenchReport 输出基准对比报告
func printBenchReport(r *model.BenchReport) {
	fmt.Printf("基准配置: %s  每配置运行%d次\n", r.Baseline, r.Runs)
	for _, c := range r.Cases {
		fmt.Printf("\n用例: %s\n", c.Case)
		if !c.Consistent {
			fmt.Println("  警告: 各配置判定不一致，计时不参与对比")
		}
		for _, rec := range c.Records {
			fmt.Printf("  %-40s [%s]", rec.Config, rec.Verdict)
			if rec.Verdict != model.VerdictPass {
				if rec.Detail != "" {
					fmt.Printf("  %s", rec.Detail)
				}
				fmt.Println()
				continue
			}
			fmt.Printf("  平均 %s", formatDuration(rec.Average))
			if c.Consistent && rec.Speedup > 0 {
				fmt.Printf("  加速比 %.2fx", rec.Speedup)
			}
			fmt.Println()
		}
	}
}

// formatDuration 耗时统一展示为毫秒
func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%.1fms", float64(d)/float64(time.Millisecond))
}

// launchDebugger 前台启动调试器，终端完全交给调试器
func launchDebugger(debugger, exePath string) error {
	cmd := exec.Command(debugger, exePath)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
