package file_util

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// CopyFile 复制文件（调试模式下把可执行文件保留到当前目录时使用）
// 保留源文件权限，目标文件已存在时覆盖
func CopyFile(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("源文件错误: %v", err)
	}
	if !srcInfo.Mode().IsRegular() {
		return fmt.Errorf("%s 不是常规文件", src)
	}

	// 确保目标目录存在
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("创建目录失败: %v", err)
	}

	srcFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("打开源文件失败: %v", err)
	}
	defer srcFile.Close()

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, srcInfo.Mode())
	if err != nil {
		return fmt.Errorf("创建目标文件失败: %v", err)
	}
	defer func() {
		dstFile.Close()
		if err != nil {
			os.Remove(dst) // 如果出错，清理目标文件
		}
	}()

	if _, err = io.Copy(dstFile, srcFile); err != nil {
		return fmt.Errorf("复制内容失败: %v", err)
	}
	if err = dstFile.Sync(); err != nil {
		return fmt.Errorf("同步到磁盘失败: %v", err)
	}

	return nil
}
