package textrenderer

import (
	"fmt"
	"math"
	"strings"

	"github.com/ByLCY/folio/layout"
	"github.com/ByLCY/folio/renderer"
)

// pageBreak 分隔输出中的各页。
const pageBreak = "\f\n"

// continuation 标记被前一个全角字符占据的格子。
const continuation = rune(-1)

// Options configures the text renderer.
type Options struct {
	// Frames 用 +、-、| 绘制每个分组的边框。
	Frames bool
	// Cell 与 Monospace.Cell 含义相同，零值按 1 处理。
	Cell float64
}

// Renderer 把布局结果画到字符网格上，适合终端预览与快照测试。
type Renderer struct {
	frames bool
	cell   float64
}

var _ renderer.Renderer = (*Renderer)(nil)

func NewRenderer(opts Options) *Renderer {
	cell := opts.Cell
	if cell <= 0 {
		cell = 1
	}
	return &Renderer{frames: opts.Frames, cell: cell}
}

// Typesetter 返回与网格一致的排版后端。
func (r *Renderer) Typesetter() layout.Typesetter { return Monospace{Cell: r.cell} }

// Render 输出所有页，页与页之间以换页符分隔；每行去掉行尾空格。
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	pages := make([]string, 0, len(result.Pages))
	for _, page := range result.Pages {
		pages = append(pages, r.renderPage(page))
	}
	return []byte(strings.Join(pages, pageBreak)), nil
}

type grid struct {
	cells [][]rune
}

func newGrid(cols, rows int) *grid {
	g := &grid{cells: make([][]rune, rows)}
	for i := range g.cells {
		g.cells[i] = []rune(strings.Repeat(" ", cols))
	}
	return g
}

func (g *grid) set(x, y int, r rune) bool {
	if y < 0 || y >= len(g.cells) || x < 0 || x >= len(g.cells[y]) {
		return false
	}
	g.cells[y][x] = r
	return true
}

func (g *grid) String() string {
	lines := make([]string, len(g.cells))
	for i, row := range g.cells {
		var b strings.Builder
		for _, r := range row {
			if r != continuation {
				b.WriteRune(r)
			}
		}
		lines[i] = strings.TrimRight(b.String(), " ")
	}
	return strings.Join(lines, "\n")
}

func (r *Renderer) renderPage(page layout.Page) string {
	cols := int(math.Ceil(page.Width / r.cell))
	rows := int(math.Ceil(page.Height / r.cell))
	g := newGrid(cols, rows)
	if r.frames {
		for _, group := range page.Groups {
			r.drawFrame(g, group.BoundingBox)
		}
	}
	for _, p := range page.Placements() {
		r.drawText(g, p)
	}
	return g.String()
}

func (r *Renderer) toCells(box layout.SpatialBox) layout.SpatialBox {
	scale := func(p layout.Point) layout.Point {
		return layout.Point{X: p.X / r.cell, Y: p.Y / r.cell}
	}
	return layout.NewSpatialBox(scale(box.TopLeft), scale(box.BottomRight))
}

func (r *Renderer) drawFrame(g *grid, box layout.SpatialBox) {
	b := r.toCells(box)
	x0, y0 := math.Floor(b.TopLeft.X), math.Floor(b.TopLeft.Y)
	x1, y1 := math.Floor(b.BottomRight.X), math.Floor(b.BottomRight.Y)
	for _, p := range b.FramePoints() {
		horizontal := p.Y == y0 || p.Y == y1
		vertical := p.X == x0 || p.X == x1
		ch := '|'
		switch {
		case horizontal && vertical:
			ch = '+'
		case horizontal:
			ch = '-'
		}
		g.set(int(p.X), int(p.Y), ch)
	}
}

func (r *Renderer) drawText(g *grid, p layout.Placed) {
	b := r.toCells(p.Box)
	x := int(math.Round(b.TopLeft.X))
	y := int(math.Floor(b.TopLeft.Y))
	for _, ch := range p.Element.Item {
		n := runeCells(ch)
		if n == 0 {
			continue
		}
		if !g.set(x, y, ch) {
			return
		}
		if n == 2 {
			g.set(x+1, y, continuation)
		}
		x += n
	}
}
