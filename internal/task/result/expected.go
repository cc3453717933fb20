package result

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/BUPT-a-out/test-script/internal/model"
	file_util "github.com/BUPT-a-out/test-script/internal/util/file"
)

// ParseExpected 解析期望输出内容
// 约定：最后一行是期望退出状态（整数），前面的行是期望的标准输出；
// 只有一行时表示没有标准输出、只检查退出状态。
// 该文本约定沿用既有测试数据格式，解析集中在这里，比较逻辑不感知它
func ParseExpected(content string) (*model.ExpectedResult, error) {
	lines := splitLines(content)
	if len(lines) == 0 {
		return nil, fmt.Errorf("期望输出文件为空")
	}

	last := strings.TrimSpace(lines[len(lines)-1])
	status, err := strconv.Atoi(last)
	if err != nil {
		return nil, fmt.Errorf("期望输出最后一行不是合法的退出状态: %q", last)
	}

	return &model.ExpectedResult{
		Stdout:     strings.Join(lines[:len(lines)-1], "\n"),
		ExitStatus: status,
	}, nil
}

// LoadExpected 读取并解析期望输出文件
func LoadExpected(path string) (*model.ExpectedResult, error) {
	content, err := file_util.ReadFileToString(path)
	if err != nil {
		return nil, err
	}
	return ParseExpected(content)
}

// splitLines 按行切分，忽略末尾的单个换行符
// 空字符串产生零行，而不是一个空行
func splitLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
