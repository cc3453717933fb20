package compiler

import (
	"strings"

	"github.com/google/shlex"

	"github.com/BUPT-a-out/test-script/internal/constants"
	"github.com/BUPT-a-out/test-script/internal/model"
	"github.com/BUPT-a-out/test-script/pkg/errors"
)

// ParseCommand 将字符串形式的编译器命令切分为参数向量（shell引号语法）
// 配置文件中的编译器命令以单个字符串给出时走这里
func ParseCommand(s string) (model.CompilerCommand, error) {
	args, err := shlex.Split(s)
	if err != nil {
		return model.CompilerCommand{}, errors.NewInvalidParamError("compiler", "编译器命令解析失败: "+err.Error())
	}
	if len(args) == 0 {
		return model.CompilerCommand{}, errors.NewInvalidParamError("compiler", "编译器命令为空")
	}
	return model.CompilerCommand{
		Name: strings.Join(args, " "),
		Args: args,
	}, nil
}

// NewCommand 由已切分的参数向量构造编译器命令
func NewCommand(args []string) (model.CompilerCommand, error) {
	if len(args) == 0 {
		return model.CompilerCommand{}, errors.NewInvalidParamError("compiler", "编译器命令为空")
	}
	return model.CompilerCommand{
		Name: strings.Join(args, " "),
		Args: args,
	}, nil
}

// SplitConfigurations 按";"把bench模式的参数切分为多个编译器配置
// 例如: clang -S -O0 ; clang -S -O2 ; gcc -S -O1
// 分号可以独立成参数，也可以嵌在参数里（比如整条命令加了引号）
func SplitConfigurations(args []string) ([]model.CompilerCommand, error) {
	var (
		configs []model.CompilerCommand
		current []string
	)
	flush := func() error {
		if len(current) == 0 {
			return nil
		}
		cmd, err := NewCommand(current)
		if err != nil {
			return err
		}
		configs = append(configs, cmd)
		current = nil
		return nil
	}

	for _, arg := range args {
		if !strings.Contains(arg, ";") {
			current = append(current, arg)
			continue
		}
		parts := strings.Split(arg, ";")
		for i, part := range parts {
			for _, field := range strings.Fields(part) {
				current = append(current, field)
			}
			if i < len(parts)-1 {
				if err := flush(); err != nil {
					return nil, err
				}
			}
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}

	if len(configs) < constants.MinBenchConfigs {
		return nil, errors.NewInsufficientConfigurationsError(len(configs), constants.MinBenchConfigs)
	}
	return configs, nil
}
