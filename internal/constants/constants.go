package constants

import "time"

// 测试用例文件约定
const (
	SourceFileExt   = ".sy"  // 源文件扩展名
	InputFileExt    = ".in"  // 输入文件扩展名
	ExpectedFileExt = ".out" // 期望输出文件扩展名
	AsmFileExt      = ".s"   // 编译器输出的汇编文件扩展名

	DebugExeSuffix = "_debug" // 调试模式下保留在当前目录的可执行文件后缀
)

// 工具链默认值
const (
	DefaultSimulator = "qemu-riscv64"          // 默认模拟器
	DefaultLinker    = "riscv64-linux-gnu-gcc" // 默认交叉链接器
	DefaultDebugger  = "riscv64-linux-gnu-gdb" // 默认调试器
	DefaultLibName   = "lib/libsysy_riscv.a"   // 默认运行时静态库（相对工具所在目录）

	SylibSourceName = "sylib.c" // 运行时库源文件（生成参考输出时使用）
	SylibHeaderName = "sylib.h" // 运行时库头文件
)

// 超时配置
const (
	DefaultCompileTimeout   = 60 * time.Second // 单次编译/链接超时
	DefaultRunTimeout       = 60 * time.Second // 单次运行超时
	DefaultReferenceTimeout = 30 * time.Second // 参考程序编译与运行超时

	// 进程被终止后等待输出管道关闭的宽限期，到期强制让Wait返回，
	// 防止残留子进程占住管道导致超时形同虚设
	KillWaitDelay = time.Second
)

// benchmark 配置
const (
	DefaultBenchRuns = 3 // 默认每个配置的运行次数
	MinBenchConfigs  = 2 // bench模式最少编译器配置数
	MinBenchRuns     = 1 // bench模式最少运行次数
)

// 退出状态约定
const (
	// 信号终止的退出状态基准值：折算为 256+信号值，保证与正常退出码（0-255）不冲突
	SignalExitBase = 256
)

// 输出限制
const (
	MaxStderrSize = 4 * 1024 // 保留的编译/运行错误信息最大长度
	MaxErrorLines = 5        // 失败摘要中保留的错误行数
)

// 临时文件
const (
	TempDirPrefix = "sy-test-" // 临时工作目录前缀
)

// 日志相关常量
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"

	DefaultLogMaxSize = 200 // MB
	DefaultLogMaxAge  = 30  // days
	DefaultLogBackups = 7
)
