package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/BUPT-a-out/test-script/internal/constants"
	"github.com/BUPT-a-out/test-script/internal/model"
)

// QemuRunner 指令集模拟器运行器
// 通过用户态模拟器（默认qemu-riscv64）运行交叉编译产物
type QemuRunner struct {
	Simulator string        // 模拟器可执行文件名
	Timeout   time.Duration // 单次运行的硬超时
}

// NewQemuRunner 创建模拟器运行器
func NewQemuRunner(simulator string, timeout time.Duration) *QemuRunner {
	return &QemuRunner{
		Simulator: simulator,
		Timeout:   timeout,
	}
}

// Run 在模拟器下运行程序并捕获结果
// 超时到期后进程被强制终止，结果标记为运行失败；
// 信号终止与正常退出在结果中保持区分
func (r *QemuRunner) Run(ctx context.Context, exePath string, input string) *model.ExecutionOutcome {
	if _, err := exec.LookPath(r.Simulator); err != nil {
		return &model.ExecutionOutcome{
			Failed: true,
			Error:  fmt.Sprintf("模拟器 '%s' 不存在或不在PATH中", r.Simulator),
		}
	}

	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.Simulator, exePath)
	// 被测程序放进独立进程组，超时时整组终止；
	// 否则残留子进程会占住stdout管道，Wait直到子进程自然退出才返回
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	cmd.WaitDelay = constants.KillWaitDelay
	if input != "" {
		cmd.Stdin = strings.NewReader(input)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	outcome := &model.ExecutionOutcome{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: elapsed,
	}

	// 超时：进程已被终止，状态与输出不可信
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		outcome.Failed = true
		outcome.Error = fmt.Sprintf("运行超时 (%.0fs)", r.Timeout.Seconds())
		zap.L().Warn("程序运行超时",
			zap.String("exe", exePath),
			zap.Duration("timeout", r.Timeout),
		)
		return outcome
	}

	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			// 进程未能启动
			outcome.Failed = true
			outcome.Error = fmt.Sprintf("模拟器启动失败: %v", err)
			return outcome
		}
		outcome.Exit = parseExitStatus(exitErr)
	} else {
		outcome.Exit = model.ExitStatus{Kind: model.ExitNormal, Code: 0}
	}

	zap.L().Debug("程序运行完成",
		zap.String("exe", exePath),
		zap.Int("status", outcome.Exit.Sentinel()),
		zap.Duration("elapsed", elapsed),
	)
	return outcome
}

// RunInteractive 交互式运行：模拟器直接接管当前终端的标准输入输出
// 只返回退出状态，不捕获输出
func (r *QemuRunner) RunInteractive(exePath string) (model.ExitStatus, error) {
	if _, err := exec.LookPath(r.Simulator); err != nil {
		return model.ExitStatus{}, fmt.Errorf("模拟器 '%s' 不存在或不在PATH中", r.Simulator)
	}

	cmd := exec.Command(r.Simulator, exePath)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return parseExitStatus(exitErr), nil
		}
		return model.ExitStatus{}, err
	}
	return model.ExitStatus{Kind: model.ExitNormal, Code: 0}, nil
}

// parseExitStatus 从进程退出错误中还原退出方式
// 信号终止保留信号值，折算推迟到比较边界
func parseExitStatus(exitErr *exec.ExitError) model.ExitStatus {
	if waitStatus, ok := exitErr.Sys().(syscall.WaitStatus); ok {
		if waitStatus.Signaled() {
			return model.ExitStatus{
				Kind:   model.ExitSignaled,
				Signal: int(waitStatus.Signal()),
			}
		}
		return model.ExitStatus{Kind: model.ExitNormal, Code: waitStatus.ExitStatus()}
	}
	return model.ExitStatus{Kind: model.ExitNormal, Code: exitErr.ExitCode()}
}
