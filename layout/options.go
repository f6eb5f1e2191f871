package layout

import (
	"io"

	"github.com/charmbracelet/log"
)

// BuildOptions 配置布局阶段所需的依赖，例如排版后端。
type BuildOptions struct {
	Typesetter Typesetter
	Logger     *log.Logger
	Debug      DebugOptions
	// SinglePage 禁止分页：最后一栏放不下的内容被截断并记录警告。
	SinglePage bool
	// StrictOverflow 让单个分组高于一栏时返回 ErrPageOverflow，而不是截断。
	StrictOverflow bool
}

// DebugOptions 控制调试相关输出。
type DebugOptions struct {
	KeepTrees bool // 在 ElementBox 中保留归一化后的布局树，写入调试 JSON
}

func (o BuildOptions) logger() *log.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return discardLogger
}

var discardLogger = log.New(io.Discard)

// Typesetter 是文本测量能力：给定文本与字体，返回布局单位下的宽度与行高。
// 实现必须是只读的，可在多个文档之间并发共享。
type Typesetter interface {
	TextWidth(text string, font Font) float64
	LineHeight(font Font) float64
}
