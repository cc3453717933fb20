package runner

import (
	"context"

	"github.com/BUPT-a-out/test-script/internal/model"
)

// Runner 模拟器运行器接口
// Run 在模拟器下执行编译产物：输入经标准输入送入，捕获标准输出、
// 退出状态与运行耗时；超时或无法启动时返回失败的结果，不返回error
type Runner interface {
	Run(ctx context.Context, exePath string, input string) *model.ExecutionOutcome
}
