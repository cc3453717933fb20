package task

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/BUPT-a-out/test-script/internal/constants"
	"github.com/BUPT-a-out/test-script/internal/model"
	file_util "github.com/BUPT-a-out/test-script/internal/util/file"
)

// GenerateReference 用本机编译器生成参考输出
// 源程序与运行时库sylib.c一起在本机编译（优先clang，退回gcc），
// 本机运行的标准输出与退出状态作为期望结果。
// 源文件前插入sylib.h的include；头文件中的变量定义改写为extern
// 声明，避免与sylib.c中的定义重复
func GenerateReference(ctx context.Context, sourceFile, input, libDir string) (*model.ExpectedResult, error) {
	sylibC := filepath.Join(libDir, constants.SylibSourceName)
	sylibH := filepath.Join(libDir, constants.SylibHeaderName)
	if !file_util.Exists(sylibC) || !file_util.Exists(sylibH) {
		return nil, fmt.Errorf("运行时库文件不存在: %s", libDir)
	}

	cc, err := findNativeCompiler()
	if err != nil {
		return nil, err
	}

	tempDir, err := os.MkdirTemp("", constants.TempDirPrefix+"ref-")
	if err != nil {
		return nil, fmt.Errorf("创建临时目录失败: %w", err)
	}
	defer os.RemoveAll(tempDir)

	source, err := file_util.ReadFileToString(sourceFile)
	if err != nil {
		return nil, err
	}
	tempC := filepath.Join(tempDir, "ref_program.c")
	if err := os.WriteFile(tempC, []byte("#include \"sylib.h\"\n"+source), 0644); err != nil {
		return nil, fmt.Errorf("创建临时C文件失败: %w", err)
	}
	if err := writeExternHeader(sylibH, filepath.Join(tempDir, constants.SylibHeaderName)); err != nil {
		return nil, err
	}

	// 一次编译链接所有文件
	refExe := filepath.Join(tempDir, "ref_program")
	compileCtx, cancel := context.WithTimeout(ctx, constants.DefaultReferenceTimeout)
	defer cancel()

	cmd := exec.CommandContext(compileCtx, cc, tempC, sylibC, "-o", refExe, "-lm")
	cmd.WaitDelay = constants.KillWaitDelay
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		zap.L().Warn("参考程序编译失败",
			zap.String("compiler", cc),
			zap.String("stderr", truncateLines(stderr.String(), constants.MaxErrorLines)),
		)
		return nil, fmt.Errorf("参考程序编译失败: %w", err)
	}

	return runReference(ctx, refExe, input)
}

// findNativeCompiler 优先使用clang，不存在时使用gcc
func findNativeCompiler() (string, error) {
	for _, cc := range []string{"clang", "gcc"} {
		if _, err := exec.LookPath(cc); err == nil {
			return cc, nil
		}
	}
	return "", fmt.Errorf("未找到clang或gcc编译器")
}

// writeExternHeader 把sylib.h中的变量定义改写为extern声明后写入目标路径
func writeExternHeader(src, dst string) error {
	content, err := file_util.ReadFileToString(src)
	if err != nil {
		return err
	}
	for _, def := range []string{
		"struct timeval _sysy_start, _sysy_end;",
		"int _sysy_l1[_SYSY_N], _sysy_l2[_SYSY_N];",
		"int _sysy_h[_SYSY_N], _sysy_m[_SYSY_N], _sysy_s[_SYSY_N], _sysy_us[_SYSY_N];",
		"int _sysy_idx;",
	} {
		content = strings.ReplaceAll(content, def, "extern "+def)
	}
	if err := os.WriteFile(dst, []byte(content), 0644); err != nil {
		return fmt.Errorf("创建改写后的sylib.h失败: %w", err)
	}
	return nil
}

// runReference 本机运行参考程序，产出期望结果
func runReference(ctx context.Context, refExe, input string) (*model.ExpectedResult, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultReferenceTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, refExe)
	// 参考程序fork出的子进程同样不能让超时失效
	cmd.WaitDelay = constants.KillWaitDelay
	if input != "" {
		cmd.Stdin = strings.NewReader(input)
	}
	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	err := cmd.Run()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, fmt.Errorf("参考程序运行超时")
	}

	status := 0
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("参考程序运行失败: %w", err)
		}
		status = referenceExitStatus(exitErr)
	}

	expected := &model.ExpectedResult{
		Stdout:     strings.TrimRight(stdout.String(), "\n"),
		ExitStatus: status,
	}
	zap.L().Debug("参考输出生成完成", zap.Int("status", status))
	return expected, nil
}

// referenceExitStatus 参考程序的退出状态，信号终止按同一折算约定处理
func referenceExitStatus(exitErr *exec.ExitError) int {
	if waitStatus, ok := exitErr.Sys().(syscall.WaitStatus); ok {
		if waitStatus.Signaled() {
			return constants.SignalExitBase + int(waitStatus.Signal())
		}
		return waitStatus.ExitStatus()
	}
	return exitErr.ExitCode()
}
