package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ByLCY/folio/fonts"
	"github.com/ByLCY/folio/layout"
	"github.com/ByLCY/folio/renderer"
	canvasrenderer "github.com/ByLCY/folio/renderer/canvas"
	textrenderer "github.com/ByLCY/folio/renderer/text"
	"github.com/ByLCY/folio/storage"
)

const (
	formatPDF  = "pdf"
	formatPNG  = "png"
	formatText = "txt"
	formatJSON = "json"
)

var formats = []string{formatPDF, formatPNG, formatText, formatJSON}

type renderOpts struct {
	config string

	store string
	page  string

	resumePath  string
	layoutPaths []string
	dataPaths   []string

	format     string
	output     string
	debugJSON  string
	fontDir    string
	dpi        float64
	cell       float64
	strict     bool
	singlePage bool
	debug      bool
}

func newRenderCmd() *cobra.Command {
	opts := renderOpts{format: formatPDF, cell: 2.5}

	cmd := &cobra.Command{
		Use:   "render [resume]",
		Short: "排版一份简历",
		Long: `排版一份简历并输出 PDF、PNG、纯文本或布局 JSON。

给出简历名时从 --store 目录读取简历、页面版式与全部模板；
也可以用 --resume、--page、--layout-schemas、--data-schemas 直接指定文件。`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts.config)
			if err != nil {
				return err
			}
			cfg.apply(cmd.Flags().Changed, &opts)

			logger := loggerFromContext(cmd.Context())
			in, name, err := loadInput(args, opts, logger)
			if err != nil {
				return err
			}
			return run(cmd.OutOrStdout(), in, name, opts, logger)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.config, "config", "", "TOML 配置文件，提供各参数的默认值")
	f.StringVar(&opts.store, "store", ".", "存储目录，按简历名读取时使用")
	f.StringVar(&opts.page, "page", "", "页面版式：存储模式下为名称，文件模式下为路径")
	f.StringVar(&opts.resumePath, "resume", "", "简历文件路径（文件模式）")
	f.StringSliceVar(&opts.layoutPaths, "layout-schemas", nil, "布局模板文件（文件模式，可重复）")
	f.StringSliceVar(&opts.dataPaths, "data-schemas", nil, "数据模板文件（文件模式，可重复）")
	f.StringVarP(&opts.format, "format", "f", opts.format, "输出格式: "+strings.Join(formats, ", "))
	f.StringVarP(&opts.output, "out", "o", "", "输出路径，默认 output/<简历名>.<格式>；txt 默认写到标准输出")
	f.StringVar(&opts.debugJSON, "debug-json", "", "额外输出布局调试 JSON 的路径")
	f.StringVar(&opts.fontDir, "font-dir", "", "本地字体目录")
	f.Float64Var(&opts.dpi, "dpi", 150, "PNG 输出的分辨率")
	f.Float64Var(&opts.cell, "cell", opts.cell, "txt 输出中一个字符格子的宽度（mm）")
	f.BoolVar(&opts.strict, "strict", false, "分组高于一栏时报错，而不是截断")
	f.BoolVar(&opts.singlePage, "single-page", false, "只输出一页，放不下的内容截断")
	f.BoolVar(&opts.debug, "debug", false, "绘制分组边框")
	return cmd
}

// loadInput 按存储模式或文件模式读取排版输入，返回输入与用于命名输出的简历名。
func loadInput(args []string, opts renderOpts, logger *log.Logger) (layout.Input, string, error) {
	if len(args) == 1 {
		if opts.resumePath != "" {
			return layout.Input{}, "", fmt.Errorf("简历名与 --resume 不能同时使用")
		}
		store, err := storage.Open(opts.store)
		if err != nil {
			return layout.Input{}, "", err
		}
		store.Logger = logger
		in, err := store.LoadInput(args[0], opts.page)
		return in, args[0], err
	}

	if opts.resumePath == "" || opts.page == "" {
		return layout.Input{}, "", fmt.Errorf("需要简历名，或同时给出 --resume 与 --page")
	}
	resume, err := storage.ReadResume(opts.resumePath)
	if err != nil {
		return layout.Input{}, "", err
	}
	page, err := storage.ReadPageLayout(opts.page)
	if err != nil {
		return layout.Input{}, "", err
	}
	in := layout.Input{Resume: resume, Page: page}
	for _, p := range opts.layoutPaths {
		schemas, err := storage.ReadLayoutSchemas(p)
		if err != nil {
			return layout.Input{}, "", err
		}
		in.Schemas = append(in.Schemas, schemas...)
	}
	for _, p := range opts.dataPaths {
		schemas, err := storage.ReadDataSchemas(p)
		if err != nil {
			return layout.Input{}, "", err
		}
		in.DataSchemas = append(in.DataSchemas, schemas...)
	}
	name := strings.TrimSuffix(filepath.Base(opts.resumePath), filepath.Ext(opts.resumePath))
	return in, name, nil
}

// run 串联字体加载、布局与渲染。
func run(stdout io.Writer, in layout.Input, name string, opts renderOpts, logger *log.Logger) error {
	format := strings.ToLower(opts.format)

	var (
		ts layout.Typesetter
		r  renderer.Renderer
	)
	switch format {
	case formatText:
		tr := textrenderer.NewRenderer(textrenderer.Options{Frames: opts.debug, Cell: opts.cell})
		ts, r = tr.Typesetter(), tr
	case formatPDF, formatPNG, formatJSON:
		dict, err := fonts.Load(fonts.Collect(in.Schemas), fonts.Options{Dir: opts.fontDir, Logger: logger})
		if err != nil {
			return fmt.Errorf("加载字体失败: %w", err)
		}
		cr := canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{
			Fonts:        dict,
			DebugBorders: opts.debug,
			DPI:          opts.dpi,
			Logger:       logger,
		})
		ts, r = cr, cr
	default:
		return fmt.Errorf("不支持的输出格式 %q，可选: %s", opts.format, strings.Join(formats, ", "))
	}

	result, err := layout.Build(in, layout.BuildOptions{
		Typesetter:     ts,
		Logger:         logger,
		SinglePage:     opts.singlePage,
		StrictOverflow: opts.strict,
		Debug:          layout.DebugOptions{KeepTrees: format == formatJSON || opts.debugJSON != ""},
	})
	if err != nil {
		return fmt.Errorf("布局计算失败: %w", err)
	}
	logger.Debug("布局完成", "resume", name, "pages", len(result.Pages))

	if opts.debugJSON != "" {
		if err := layout.WriteDebugJSON(result, opts.debugJSON); err != nil {
			return fmt.Errorf("输出调试 JSON 失败: %w", err)
		}
	}

	output := opts.output
	if output == "" && format != formatText {
		output = filepath.Join("output", name+"."+format)
	}

	switch format {
	case formatJSON:
		if err := layout.WriteDebugJSON(result, output); err != nil {
			return fmt.Errorf("输出布局 JSON 失败: %w", err)
		}
	case formatPNG:
		pr, ok := r.(renderer.PageRenderer)
		if !ok {
			return fmt.Errorf("渲染器不支持按页输出")
		}
		pages, err := pr.RenderPages(result)
		if err != nil {
			return fmt.Errorf("渲染 PNG 失败: %w", err)
		}
		for i, data := range pages {
			if err := writeOutput(pagePath(output, i, len(pages)), data); err != nil {
				return err
			}
		}
	default:
		data, err := r.Render(result)
		if err != nil {
			return fmt.Errorf("渲染 %s 失败: %w", format, err)
		}
		if output == "" {
			_, err := stdout.Write(data)
			return err
		}
		if err := writeOutput(output, data); err != nil {
			return err
		}
	}
	logger.Info("已生成", "format", format, "out", output, "pages", len(result.Pages))
	return nil
}

// pagePath 为多页 PNG 生成 out-1.png、out-2.png……；单页时原样返回。
func pagePath(out string, i, total int) string {
	if total <= 1 {
		return out
	}
	ext := filepath.Ext(out)
	return fmt.Sprintf("%s-%d%s", strings.TrimSuffix(out, ext), i+1, ext)
}

func writeOutput(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("写入 %s 失败: %w", path, err)
	}
	return nil
}
