package errors

import (
	"fmt"
)

// ErrorCode 错误码类型
type ErrorCode int

const (
	// 系统错误 (1000-1999)
	ErrCodeSystem ErrorCode = 1000 + iota
	ErrCodeInternal
	ErrCodeTimeout

	// 配置错误 (2000-2999)：在任何用例开始前即中止整次运行
	ErrCodeConfig ErrorCode = 2000 + iota
	ErrCodePathNotFound
	ErrCodeNoTestCases
	ErrCodeInsufficientConfigs
	ErrCodeInvalidParam

	// 编译错误 (3000-3999)
	ErrCodeCompile ErrorCode = 3000 + iota
	ErrCodeCompilerNotFound
	ErrCodeLink

	// 运行错误 (4000-4999)
	ErrCodeRuntime ErrorCode = 4000 + iota
	ErrCodeSimulatorNotFound
	ErrCodeExecutionTimeout
)

// HarnessError 测试工具错误
type HarnessError struct {
	Code    ErrorCode
	Message string
	Err     error
}

// Error 实现 error 接口
func (e *HarnessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 支持错误链
func (e *HarnessError) Unwrap() error {
	return e.Err
}

// New 创建新的错误
func New(code ErrorCode, message string) *HarnessError {
	return &HarnessError{
		Code:    code,
		Message: message,
	}
}

// Wrap 包装已有错误
func Wrap(code ErrorCode, message string, err error) *HarnessError {
	return &HarnessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// 预定义的错误创建函数

// NewPathNotFoundError 路径不存在
func NewPathNotFoundError(path string) *HarnessError {
	return New(ErrCodePathNotFound, fmt.Sprintf("路径不存在: %s", path))
}

// NewNoTestCasesError 目录中没有测试用例
func NewNoTestCasesError(dir string) *HarnessError {
	return New(ErrCodeNoTestCases, fmt.Sprintf("目录中没有找到测试用例: %s", dir))
}

// NewInsufficientConfigurationsError bench模式配置数不足
func NewInsufficientConfigurationsError(got, min int) *HarnessError {
	return New(ErrCodeInsufficientConfigs,
		fmt.Sprintf("bench模式需要至少%d个编译器配置（用分号分隔），当前只有%d个", min, got))
}

// NewInvalidParamError 参数无效
func NewInvalidParamError(param string, reason string) *HarnessError {
	return New(ErrCodeInvalidParam, fmt.Sprintf("参数 %s 无效: %s", param, reason))
}

// NewCompileError 编译失败
func NewCompileError(message string, err error) *HarnessError {
	return Wrap(ErrCodeCompile, message, err)
}

// NewTimeoutError 操作超时
func NewTimeoutError(operation string) *HarnessError {
	return New(ErrCodeTimeout, fmt.Sprintf("操作超时: %s", operation))
}

// IsErrorCode 判断错误是否为指定错误码
func IsErrorCode(err error, code ErrorCode) bool {
	if harnessErr, ok := err.(*HarnessError); ok {
		return harnessErr.Code == code
	}
	return false
}

// GetErrorCode 获取错误码
func GetErrorCode(err error) ErrorCode {
	if harnessErr, ok := err.(*HarnessError); ok {
		return harnessErr.Code
	}
	return ErrCodeInternal
}

// IsConfigError 判断是否为配置错误（应在任何用例开始前中止）
func IsConfigError(err error) bool {
	code := GetErrorCode(err)
	return code >= ErrCodeConfig && code < ErrCodeCompile
}
