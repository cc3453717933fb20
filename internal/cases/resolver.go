package cases

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/BUPT-a-out/test-script/internal/constants"
	"github.com/BUPT-a-out/test-script/internal/model"
	file_util "github.com/BUPT-a-out/test-script/internal/util/file"
	"github.com/BUPT-a-out/test-script/pkg/errors"
)

// Resolve 解析路径为测试用例集合
// 普通文件产生单个用例；目录按扩展名非递归扫描，按文件名字典序排序，
// 保证批量测试结果可复现
func Resolve(path string) ([]model.TestCase, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.NewPathNotFoundError(path)
	}

	if !info.IsDir() {
		return []model.TestCase{FromSource(path)}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodePathNotFound, "读取目录失败", err)
	}

	var sources []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(entry.Name(), constants.SourceFileExt) {
			sources = append(sources, filepath.Join(path, entry.Name()))
		}
	}
	if len(sources) == 0 {
		return nil, errors.NewNoTestCasesError(path)
	}
	sort.Strings(sources)

	testCases := make([]model.TestCase, 0, len(sources))
	for _, src := range sources {
		testCases = append(testCases, FromSource(src))
	}
	zap.L().Debug("解析测试目录完成",
		zap.String("dir", path),
		zap.Int("cases", len(testCases)),
	)
	return testCases, nil
}

// FromSource 由源文件构造测试用例，自动查找同目录下同名的.in/.out文件
// 缺失的输入/期望输出文件不视为错误
func FromSource(sourceFile string) model.TestCase {
	base := strings.TrimSuffix(filepath.Base(sourceFile), filepath.Ext(sourceFile))
	dir := filepath.Dir(sourceFile)

	tc := model.TestCase{
		Name:       base,
		SourceFile: sourceFile,
	}
	if in := filepath.Join(dir, base+constants.InputFileExt); file_util.Exists(in) {
		tc.InputFile = in
	}
	if out := filepath.Join(dir, base+constants.ExpectedFileExt); file_util.Exists(out) {
		tc.OutputFile = out
	}
	return tc
}

// ResolveSingle 解析单个源文件，允许显式指定输入/期望输出文件覆盖自动查找
// 显式指定的文件必须存在
func ResolveSingle(sourceFile, inputFile, outputFile string) (model.TestCase, error) {
	if !file_util.Exists(sourceFile) {
		return model.TestCase{}, errors.NewPathNotFoundError(sourceFile)
	}

	tc := FromSource(sourceFile)
	if inputFile != "" {
		if !file_util.Exists(inputFile) {
			return model.TestCase{}, errors.NewInvalidParamError("--in", "输入文件不存在: "+inputFile)
		}
		tc.InputFile = inputFile
	}
	if outputFile != "" {
		if !file_util.Exists(outputFile) {
			return model.TestCase{}, errors.NewInvalidParamError("--out", "期望输出文件不存在: "+outputFile)
		}
		tc.OutputFile = outputFile
	}
	return tc, nil
}
