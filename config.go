package main

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// config 是 --config 指定的 TOML 文件，为 render 提供默认值；命令行显式给出的参数优先。
//
//	store = "examples/store"
//	font_dir = "fonts"
//	format = "pdf"
//	dpi = 150
//	strict = false
//	single_page = false
//	debug = false
type config struct {
	Store      string  `toml:"store"`
	FontDir    string  `toml:"font_dir"`
	Format     string  `toml:"format"`
	Out        string  `toml:"out"`
	DPI        float64 `toml:"dpi"`
	Cell       float64 `toml:"cell"`
	Strict     bool    `toml:"strict"`
	SinglePage bool    `toml:"single_page"`
	Debug      bool    `toml:"debug"`
}

func loadConfig(path string) (config, error) {
	var cfg config
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); err != nil {
		return cfg, fmt.Errorf("读取配置文件失败: %w", err)
	}
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("解析配置文件 %s 失败: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return cfg, fmt.Errorf("配置文件 %s 含未知的键 %v", path, undecoded)
	}
	return cfg, nil
}

// apply 把配置写入未在命令行显式设置的参数。
func (c config) apply(changed func(name string) bool, opts *renderOpts) {
	set := func(name string) bool { return !changed(name) }
	if c.Store != "" && set("store") {
		opts.store = c.Store
	}
	if c.FontDir != "" && set("font-dir") {
		opts.fontDir = c.FontDir
	}
	if c.Format != "" && set("format") {
		opts.format = c.Format
	}
	if c.Out != "" && set("out") {
		opts.output = c.Out
	}
	if c.DPI > 0 && set("dpi") {
		opts.dpi = c.DPI
	}
	if c.Cell > 0 && set("cell") {
		opts.cell = c.Cell
	}
	if set("strict") {
		opts.strict = opts.strict || c.Strict
	}
	if set("single-page") {
		opts.singlePage = opts.singlePage || c.SinglePage
	}
	if set("debug") {
		opts.debug = opts.debug || c.Debug
	}
}
