package conf

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/BUPT-a-out/test-script/internal/constants"
)

// ToolchainConfig 工具链配置
// 库路径、模拟器等全局配置显式传入各执行组件，不读取进程环境
type ToolchainConfig struct {
	LibPath        string        // 运行时静态库路径
	Simulator      string        // 模拟器可执行文件名
	Linker         string        // 交叉链接器
	Debugger       string        // 调试器
	CompileTimeout time.Duration // 单次编译/链接超时
	RunTimeout     time.Duration // 单次运行超时
	BenchRuns      int           // bench模式每个配置的运行次数
}

// Load 加载配置文件，参数是配置文件的路径；路径为空时返回空配置
func Load(confPath string) (*viper.Viper, error) {
	conf := viper.New()
	if confPath == "" {
		return conf, nil
	}
	conf.SetConfigFile(confPath)
	if err := conf.ReadInConfig(); err != nil {
		return nil, err
	}
	return conf, nil
}

// LoadToolchainConfig 从配置文件加载工具链配置，未设置的项使用默认值
func LoadToolchainConfig(cfg *viper.Viper) *ToolchainConfig {
	tc := GetDefaultToolchainConfig()
	if v := cfg.GetString("toolchain.lib"); v != "" {
		tc.LibPath = v
	}
	if v := cfg.GetString("toolchain.simulator"); v != "" {
		tc.Simulator = v
	}
	if v := cfg.GetString("toolchain.linker"); v != "" {
		tc.Linker = v
	}
	if v := cfg.GetString("toolchain.debugger"); v != "" {
		tc.Debugger = v
	}
	if v := cfg.GetInt("toolchain.compile_timeout"); v > 0 {
		tc.CompileTimeout = time.Duration(v) * time.Second
	}
	if v := cfg.GetInt("toolchain.run_timeout"); v > 0 {
		tc.RunTimeout = time.Duration(v) * time.Second
	}
	if v := cfg.GetInt("bench.runs"); v > 0 {
		tc.BenchRuns = v
	}
	return tc
}

// GetDefaultToolchainConfig 获取默认工具链配置
func GetDefaultToolchainConfig() *ToolchainConfig {
	return &ToolchainConfig{
		LibPath:        defaultLibPath(),
		Simulator:      constants.DefaultSimulator,
		Linker:         constants.DefaultLinker,
		Debugger:       constants.DefaultDebugger,
		CompileTimeout: constants.DefaultCompileTimeout,
		RunTimeout:     constants.DefaultRunTimeout,
		BenchRuns:      constants.DefaultBenchRuns,
	}
}

// defaultLibPath 默认静态库路径：工具可执行文件同目录下的lib/
func defaultLibPath() string {
	exe, err := os.Executable()
	if err != nil {
		return constants.DefaultLibName
	}
	return filepath.Join(filepath.Dir(exe), constants.DefaultLibName)
}

// LibDir 静态库所在目录（sylib.c/sylib.h 与静态库同目录）
func (tc *ToolchainConfig) LibDir() string {
	return filepath.Dir(tc.LibPath)
}
