package result

import (
	"fmt"
	"strings"

	"github.com/BUPT-a-out/test-script/internal/model"
)

// Judgement 判定结果及细节
type Judgement struct {
	Verdict  model.Verdict
	Detail   string                // 失败详情描述
	Mismatch *model.OutputMismatch // 输出不匹配的位置（仅FAIL_OUTPUT）
}

// Judge 根据实际运行结果与期望结果给出判定
// 纯函数，不做任何IO：
//   - 运行本身失败（启动失败/超时）直接判RUNTIME_ERROR
//   - 没有期望结果时，运行成功即判PASS，状态与输出只记录不检查
//   - StatusOnly的期望结果跳过输出比较，只检查退出状态
//   - 先比较输出（逐行精确比较，仅去掉末尾换行），再比较退出状态；
//     输出不匹配优先于状态不匹配
func Judge(outcome *model.ExecutionOutcome, expected *model.ExpectedResult) Judgement {
	if outcome.Failed {
		return Judgement{
			Verdict: model.VerdictRuntimeError,
			Detail:  outcome.Error,
		}
	}

	if expected == nil {
		return Judgement{Verdict: model.VerdictPass}
	}

	if !expected.StatusOnly {
		if mismatch := compareOutput(expected.Stdout, outcome.Stdout); mismatch != nil {
			return Judgement{
				Verdict:  model.VerdictFailOutput,
				Detail:   formatMismatch(mismatch),
				Mismatch: mismatch,
			}
		}
	}

	actual := outcome.Exit.Sentinel()
	if actual != expected.ExitStatus {
		return Judgement{
			Verdict: model.VerdictFailStatus,
			Detail:  fmt.Sprintf("返回值不匹配 (期望: %d, 实际: %d)", expected.ExitStatus, actual),
		}
	}

	return Judgement{Verdict: model.VerdictPass}
}

// compareOutput 逐行精确比较期望输出与实际输出
// 只去掉实际输出末尾的换行符，不做其他空白归一化；
// 返回首个不匹配位置，完全一致时返回nil
func compareOutput(expected, actual string) *model.OutputMismatch {
	expLines := splitLines(expected)
	actLines := splitLines(actual)

	n := len(expLines)
	if len(actLines) > n {
		n = len(actLines)
	}
	for i := 0; i < n; i++ {
		var exp, act string
		hasExp := i < len(expLines)
		hasAct := i < len(actLines)
		if hasExp {
			exp = expLines[i]
		}
		if hasAct {
			act = actLines[i]
		}
		if !hasExp || !hasAct || exp != act {
			return &model.OutputMismatch{
				Line:     i + 1,
				Expected: exp,
				Actual:   act,
			}
		}
	}
	return nil
}

// formatMismatch 生成首个不匹配行的描述
func formatMismatch(m *model.OutputMismatch) string {
	var b strings.Builder
	fmt.Fprintf(&b, "输出不匹配 (第%d行)", m.Line)
	fmt.Fprintf(&b, "\n期望: %q", m.Expected)
	fmt.Fprintf(&b, "\n实际: %q", m.Actual)
	return b.String()
}
