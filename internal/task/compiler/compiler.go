package compiler

import "context"

// Compiler 编译器接口
// Compile 将源文件编译为模拟器可运行的可执行文件；
// 返回可执行文件路径，编译/链接失败时返回捕获的stderr文本
type Compiler interface {
	Compile(ctx context.Context, sourceFile, workDir string) (exePath string, compileErr string, err error)
}
