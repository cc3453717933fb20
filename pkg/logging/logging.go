package logging

import (
	"os"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/BUPT-a-out/test-script/internal/constants"
)

// NewLogger 根据配置构造日志记录器
// 控制台始终输出，配置了log.file时同时写入带轮转的日志文件
func NewLogger(cfg *viper.Viper) (*zap.Logger, error) {
	level := parseLevel(cfg.GetString("log.level"))

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(os.Stderr),
		level,
	)

	logFile := cfg.GetString("log.file")
	if logFile == "" {
		return zap.New(consoleCore), nil
	}

	rotator := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    intOrDefault(cfg, "log.max_size", constants.DefaultLogMaxSize),
		MaxAge:     intOrDefault(cfg, "log.max_age", constants.DefaultLogMaxAge),
		MaxBackups: intOrDefault(cfg, "log.max_backups", constants.DefaultLogBackups),
	}
	fileCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(rotator),
		level,
	)

	return zap.New(zapcore.NewTee(consoleCore, fileCore)), nil
}

// parseLevel 解析日志级别，无法识别时回退到warn（命令行工具默认安静）
func parseLevel(s string) zapcore.Level {
	switch s {
	case constants.LogLevelDebug:
		return zapcore.DebugLevel
	case constants.LogLevelInfo:
		return zapcore.InfoLevel
	case constants.LogLevelWarn:
		return zapcore.WarnLevel
	case constants.LogLevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.WarnLevel
	}
}

func intOrDefault(cfg *viper.Viper, key string, def int) int {
	if cfg.IsSet(key) {
		return cfg.GetInt(key)
	}
	return def
}
