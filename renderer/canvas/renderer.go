package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/color"
	"image/png"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"
	"github.com/tdewolff/canvas/renderers/rasterizer"

	"github.com/ByLCY/folio/fonts"
	"github.com/ByLCY/folio/layout"
	"github.com/ByLCY/folio/renderer"
)

const (
	debugBorderWidth = 0.2
	defaultDPI       = 150.0
)

var (
	defaultTextColor   = color.RGBA{R: 30, G: 30, B: 30, A: 255}
	defaultLinkColor   = color.RGBA{R: 15, G: 98, B: 254, A: 255}
	defaultBorderColor = color.RGBA{R: 220, G: 50, B: 47, A: 255}
)

// Renderer draws layout results via github.com/tdewolff/canvas.
// It also measures text with the same font dictionary, so it can serve as the layout typesetter.
type Renderer struct {
	fonts        *fonts.Dictionary
	debugBorders bool
	dpi          float64
	textColor    color.Color
	linkColor    color.Color
	logger       *log.Logger
}

var (
	_ renderer.Renderer     = (*Renderer)(nil)
	_ renderer.PageRenderer = (*Renderer)(nil)
	_ layout.Typesetter     = (*Renderer)(nil)
)

// Options configures the canvas renderer.
type Options struct {
	Fonts *fonts.Dictionary
	// DebugBorders 为每个分组绘制边框。
	DebugBorders bool
	// DPI 仅用于 PNG 输出，默认 150。
	DPI       float64
	TextColor color.Color
	LinkColor color.Color
	Logger    *log.Logger
}

// NewRenderer creates a canvas-based renderer using the given font dictionary.
func NewRenderer(dict *fonts.Dictionary) *Renderer {
	return NewRendererWithOptions(Options{Fonts: dict})
}

// NewRendererWithOptions creates a renderer with explicit colours, debug borders and DPI.
func NewRendererWithOptions(opts Options) *Renderer {
	r := &Renderer{
		fonts:        opts.Fonts,
		debugBorders: opts.DebugBorders,
		dpi:          opts.DPI,
		textColor:    opts.TextColor,
		linkColor:    opts.LinkColor,
		logger:       opts.Logger,
	}
	if r.dpi <= 0 {
		r.dpi = defaultDPI
	}
	if r.textColor == nil {
		r.textColor = defaultTextColor
	}
	if r.linkColor == nil {
		r.linkColor = defaultLinkColor
	}
	if r.logger == nil {
		r.logger = log.New(io.Discard)
	}
	return r
}

// TextWidth implements layout.Typesetter.
func (r *Renderer) TextWidth(text string, font layout.Font) float64 {
	return r.fonts.TextWidth(text, font)
}

// LineHeight implements layout.Typesetter.
func (r *Renderer) LineHeight(font layout.Font) float64 {
	return r.fonts.LineHeight(font)
}

// Render renders the result into a PDF byte slice.
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if err := r.check(result); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := pdf.New(&buf, result.Pages[0].Width, result.Pages[0].Height, nil)
	r.applyMeta(writer, result.Meta)
	for i, page := range result.Pages {
		if i > 0 {
			writer.NewPage(page.Width, page.Height)
		}
		c := r.drawPage(page, false)
		c.RenderTo(writer)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderPages rasterizes every page into a PNG image.
func (r *Renderer) RenderPages(result *layout.Result) ([][]byte, error) {
	if err := r.check(result); err != nil {
		return nil, err
	}
	out := make([][]byte, 0, len(result.Pages))
	for _, page := range result.Pages {
		c := r.drawPage(page, true)
		img := rasterizer.Draw(c, canvas.DPI(r.dpi), canvas.DefaultColorSpace)
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("编码第 %d 页 PNG 失败: %w", page.Number, err)
		}
		out = append(out, buf.Bytes())
	}
	return out, nil
}

func (r *Renderer) check(result *layout.Result) error {
	if result == nil {
		return fmt.Errorf("渲染结果为空")
	}
	if len(result.Pages) == 0 {
		return fmt.Errorf("缺少可渲染的页面")
	}
	if r.fonts == nil {
		return fmt.Errorf("渲染器缺少字体字典")
	}
	return nil
}

func (r *Renderer) applyMeta(writer *pdf.PDF, meta layout.DocumentMeta) {
	if writer == nil {
		return
	}
	keywords := strings.Join(meta.Keywords, ", ")
	writer.SetInfo(meta.Title, meta.Subject, keywords, meta.Author, meta.Creator)
}

// drawPage 在新画布上绘制一页；坐标与布局一致，左上角为原点。
func (r *Renderer) drawPage(page layout.Page, background bool) *canvas.Canvas {
	c := canvas.New(page.Width, page.Height)
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV)

	if background {
		ctx.SetFillColor(canvas.White)
		ctx.SetStrokeColor(canvas.Transparent)
		ctx.DrawPath(0, 0, canvas.Rectangle(page.Width, page.Height))
	}
	for _, g := range page.Groups {
		if r.debugBorders {
			r.drawBorder(ctx, g.BoundingBox)
		}
		for _, p := range g.Elements {
			r.drawElement(ctx, p)
		}
	}
	r.logger.Debug("已绘制页面", "page", page.Number, "groups", len(page.Groups))
	return c
}

// drawElement 在矩形左上角绘制文本，基线位于行顶加上升部处。
func (r *Renderer) drawElement(ctx *canvas.Context, p layout.Placed) {
	e := p.Element
	if e.Item == "" {
		return
	}
	col := r.textColor
	if e.Link != "" {
		col = r.linkColor
	}
	face := r.fonts.Face(e.Font, col)
	line := canvas.NewTextLine(face, e.Item, canvas.Left)
	baseline := p.Box.TopLeft.Y + r.fonts.Ascent(e.Font)
	ctx.DrawText(p.Box.TopLeft.X, baseline, line)
}

func (r *Renderer) drawBorder(ctx *canvas.Context, box layout.SpatialBox) {
	ctx.SetFillColor(canvas.Transparent)
	ctx.SetStrokeColor(defaultBorderColor)
	ctx.SetStrokeWidth(debugBorderWidth)
	ctx.DrawPath(box.TopLeft.X, box.TopLeft.Y, canvas.Rectangle(box.Width(), box.Height()))
}
