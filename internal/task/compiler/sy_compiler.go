package compiler

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/BUPT-a-out/test-script/internal/conf"
	"github.com/BUPT-a-out/test-script/internal/constants"
	"github.com/BUPT-a-out/test-script/internal/model"
)

// SyCompiler 两阶段交叉编译器
// 第一阶段由被测编译器把源文件编译为汇编，第二阶段由交叉gcc
// 汇编并与运行时静态库链接为可执行文件。
// 产物路径由用例名唯一确定，重复编译时覆盖而不是累积
type SyCompiler struct {
	Command   model.CompilerCommand // 被测编译器调用
	Toolchain *conf.ToolchainConfig // 链接器与静态库配置
	Debug     bool                  // 调试模式：编译加-g，链接加-g -O0
}

// NewSyCompiler 创建两阶段编译器
func NewSyCompiler(cmd model.CompilerCommand, tc *conf.ToolchainConfig, debug bool) *SyCompiler {
	return &SyCompiler{
		Command:   cmd,
		Toolchain: tc,
		Debug:     debug,
	}
}

// Compile 编译源文件，返回可执行文件路径
// 任一阶段失败都返回该阶段的stderr文本，供报告展示
func (c *SyCompiler) Compile(ctx context.Context, sourceFile, workDir string) (string, string, error) {
	base := strings.TrimSuffix(filepath.Base(sourceFile), filepath.Ext(sourceFile))
	asmFile := filepath.Join(workDir, base+constants.AsmFileExt)
	exeFile := filepath.Join(workDir, base)

	if stderr, err := c.emitAsm(ctx, sourceFile, asmFile); err != nil {
		return "", stderr, err
	}
	if stderr, err := c.link(ctx, asmFile, exeFile); err != nil {
		return "", stderr, err
	}
	return exeFile, "", nil
}

// emitAsm 调用被测编译器生成汇编文件
func (c *SyCompiler) emitAsm(ctx context.Context, sourceFile, asmFile string) (string, error) {
	args := c.Command.Args
	if _, err := exec.LookPath(args[0]); err != nil {
		return "", fmt.Errorf("编译器不存在: %s, 错误: %w", args[0], err)
	}

	cmdArgs := append([]string{}, args[1:]...)
	if c.Debug {
		cmdArgs = append(cmdArgs, "-g")
	}
	cmdArgs = append(cmdArgs, sourceFile, "-o", asmFile)

	ctx, cancel := context.WithTimeout(ctx, c.Toolchain.CompileTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, args[0], cmdArgs...)
	// 编译器fork出的子进程不能让超时失效
	cmd.WaitDelay = constants.KillWaitDelay
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	zap.L().Debug("编译源文件",
		zap.String("compiler", c.Command.Name),
		zap.String("source", sourceFile),
		zap.String("asm", asmFile),
	)
	if err := cmd.Run(); err != nil {
		compileErr := stderr.String()
		return compileErr, fmt.Errorf("编译失败: %w", err)
	}

	// 检查汇编文件是否生成
	if _, err := os.Stat(asmFile); os.IsNotExist(err) {
		return "", fmt.Errorf("编译失败: 汇编文件未生成: %s", asmFile)
	}
	return "", nil
}

// link 汇编并与运行时静态库链接
func (c *SyCompiler) link(ctx context.Context, asmFile, exeFile string) (string, error) {
	linker := c.Toolchain.Linker
	if _, err := exec.LookPath(linker); err != nil {
		return "", fmt.Errorf("链接器不存在: %s, 错误: %w", linker, err)
	}

	args := []string{"-static", "-march=rv64gc"}
	if c.Debug {
		args = append(args, "-g", "-O0")
	}
	args = append(args, asmFile, c.Toolchain.LibPath, "-o", exeFile)

	ctx, cancel := context.WithTimeout(ctx, c.Toolchain.CompileTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, linker, args...)
	cmd.WaitDelay = constants.KillWaitDelay
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	zap.L().Debug("汇编链接",
		zap.String("linker", linker),
		zap.String("asm", asmFile),
		zap.String("exe", exeFile),
	)
	if err := cmd.Run(); err != nil {
		linkErr := stderr.String()
		return linkErr, fmt.Errorf("链接失败: %w", err)
	}

	if _, err := os.Stat(exeFile); os.IsNotExist(err) {
		return "", fmt.Errorf("链接失败: 可执行文件未生成: %s", exeFile)
	}
	return "", nil
}
