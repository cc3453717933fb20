package model

// TestCase 单个测试用例：一个源文件及可选的同名输入/期望输出文件
type TestCase struct {
	Name       string `json:"name"`        // 用例名（源文件去掉扩展名）
	SourceFile string `json:"source_file"` // 源文件路径
	InputFile  string `json:"input_file"`  // 输入文件路径（空表示无输入）
	OutputFile string `json:"output_file"` // 期望输出文件路径（空表示无期望输出）
}

// HasInput 是否存在输入文件
func (tc TestCase) HasInput() bool {
	return tc.InputFile != ""
}

// HasExpected 是否存在期望输出文件
func (tc TestCase) HasExpected() bool {
	return tc.OutputFile != ""
}

// ExpectedResult 期望结果，从期望输出文件解析得到：
// 文件最后一行是期望退出状态，其余行是期望的标准输出
type ExpectedResult struct {
	Stdout     string `json:"stdout"`      // 期望的标准输出（不含末尾换行）
	ExitStatus int    `json:"exit_status"` // 期望的退出状态
	StatusOnly bool   `json:"status_only"` // 只检查退出状态，不比较输出
}

// CompilerCommand 一条编译器调用命令（参数向量）
// 编译时在末尾追加源文件路径与 "-o 输出路径"
type CompilerCommand struct {
	Name string   `json:"name"` // 展示名称
	Args []string `json:"args"` // 参数向量
}

// String 返回命令的完整展示形式
func (c CompilerCommand) String() string {
	if c.Name != "" {
		return c.Name
	}
	s := ""
	for i, a := range c.Args {
		if i > 0 {
			s += " "
		}
		s += a
	}
	return s
}
