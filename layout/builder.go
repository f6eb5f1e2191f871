package layout

import (
	"fmt"

	"github.com/ByLCY/folio/binding"
	"github.com/ByLCY/folio/schema"
)

const creator = "folio"

// Build 按分节顺序实例化、归一化并定位每个分组，分栏、分页后返回布局结果。
// 每个分节先放头部，再依次放条目；分组放不下时先换栏，再换页。
func Build(in Input, opts BuildOptions) (*Result, error) {
	if opts.Typesetter == nil {
		return nil, fmt.Errorf("layout: 缺少排版后端 Typesetter")
	}
	if err := in.Page.Validate(); err != nil {
		return nil, fmt.Errorf("页面版式无效: %w", err)
	}

	layouts := make(map[string]LayoutSchema, len(in.Schemas))
	for _, s := range in.Schemas {
		layouts[s.Name] = s
	}
	datas := make(map[string]schema.DataSchema, len(in.DataSchemas))
	for _, s := range in.DataSchemas {
		datas[s.Name] = s
	}

	collector := newPageCollector(in.Page)
	root := &flowContext{
		collector:  collector,
		typesetter: opts.Typesetter,
		opts:       opts,
		cursorY:    collector.contentTop(),
	}

	for _, sec := range in.Resume.Sections {
		ls, ok := layouts[sec.LayoutSchema]
		if !ok {
			return nil, &SchemaNotFoundError{Kind: "layout", Name: sec.LayoutSchema, Section: sec.Name}
		}
		var ds *schema.DataSchema
		if sec.DataSchema != "" {
			found, ok := datas[sec.DataSchema]
			if !ok {
				return nil, &SchemaNotFoundError{Kind: "data", Name: sec.DataSchema, Section: sec.Name}
			}
			ds = &found
		}

		root.validate(ds, sec.Name, sec.Header, schema.PartHeader)
		if err := root.place(sec.Name, ls.Header, sec.Header); err != nil {
			return nil, err
		}
		for _, item := range sec.Items {
			root.validate(ds, sec.Name, item, schema.PartItem)
			if err := root.place(sec.Name, ls.Item, item); err != nil {
				return nil, err
			}
		}
	}

	return &Result{
		Pages: collector.pages(),
		Meta:  collectMeta(in),
	}, nil
}

type pageAccumulator struct {
	groups []ElementBox
}

func (p *pageAccumulator) appendGroup(g ElementBox) {
	p.groups = append(p.groups, g)
}

type pageCollector struct {
	page    PageLayout
	accs    []*pageAccumulator
	current int
	column  int
}

func newPageCollector(page PageLayout) *pageCollector {
	pc := &pageCollector{page: page}
	pc.newPage()
	return pc
}

func (pc *pageCollector) newPage() *pageAccumulator {
	acc := &pageAccumulator{}
	pc.accs = append(pc.accs, acc)
	pc.current = len(pc.accs) - 1
	pc.column = 0
	return acc
}

func (pc *pageCollector) curr() *pageAccumulator {
	if len(pc.accs) == 0 {
		return pc.newPage()
	}
	return pc.accs[pc.current]
}

func (pc *pageCollector) contentTop() float64 { return pc.page.Margin.Top }

func (pc *pageCollector) contentBottom() float64 { return pc.page.Height - pc.page.Margin.Bottom }

// columnX 返回当前栏左边缘的横坐标。
func (pc *pageCollector) columnX() float64 {
	return pc.page.Margin.Left + float64(pc.column)*(pc.page.ColumnWidth()+pc.page.Columns.Gap())
}

// nextColumn 切换到下一栏，当前页的栏已用完时返回 false。
func (pc *pageCollector) nextColumn() bool {
	if pc.column+1 >= pc.page.Columns.Count() {
		return false
	}
	pc.column++
	return true
}

func (pc *pageCollector) pages() []Page {
	out := make([]Page, len(pc.accs))
	for i, acc := range pc.accs {
		out[i] = Page{
			Number: i + 1,
			Width:  pc.page.Width,
			Height: pc.page.Height,
			Margin: pc.page.Margin,
			Groups: acc.groups,
		}
	}
	return out
}

type flowContext struct {
	collector  *pageCollector
	typesetter Typesetter
	opts       BuildOptions
	cursorY    float64
}

func (ctx *flowContext) validate(ds *schema.DataSchema, section string, rec binding.Record, part schema.Part) {
	if ds == nil {
		return
	}
	for _, err := range ds.Validate(rec, part) {
		ctx.opts.logger().Warn("记录与数据模板不符", "section", section, "err", err)
	}
}

// place 实例化并归一化一个分组，计算几何后放到当前游标处，必要时换栏或换页。
func (ctx *flowContext) place(section string, tmpl Layout, rec binding.Record) error {
	pc := ctx.collector
	tree, err := tmpl.Instantiate(rec).Normalize(pc.page.ColumnWidth(), ctx.typesetter)
	if err != nil {
		return fmt.Errorf("分节 %q: %w", section, err)
	}
	height, boxes, err := tree.ComputeBoxes(0, ctx.typesetter)
	if err != nil {
		return fmt.Errorf("分节 %q: %w", section, err)
	}
	if height <= 0 && len(boxes) == 0 {
		return nil
	}

	fits := ctx.ensureSpace(height)
	limit := pc.contentBottom() - ctx.cursorY
	if !fits {
		overflow := &PageOverflowError{Section: section, Height: height, Limit: limit}
		if ctx.opts.StrictOverflow {
			return overflow
		}
		ctx.opts.logger().Warn("内容超出页面，已截断", "section", section, "err", overflow)
	}

	dx, dy := pc.columnX(), ctx.cursorY
	placed := make([]Placed, 0, len(boxes))
	for _, b := range boxes {
		b.Box = b.Box.Translate(dx, dy)
		if !fits && b.Box.BottomRight.Y > pc.contentBottom()+epsilon {
			continue
		}
		placed = append(placed, b)
	}
	groupHeight := height
	if !fits {
		groupHeight = limit
	}
	group := ElementBox{
		BoundingBox: BoxAt(Point{X: dx, Y: dy}, pc.page.ColumnWidth(), groupHeight),
		Section:     section,
		Column:      pc.column,
		Elements:    placed,
	}
	if ctx.opts.Debug.KeepTrees {
		group.Tree = &tree
	}
	pc.curr().appendGroup(group)
	ctx.cursorY += groupHeight
	return nil
}

// ensureSpace 在剩余高度放不下 height 时换栏或换页。
// 返回 false 表示即使换栏/换页后仍放不下（分组高于一栏，或禁止分页且栏已用完）。
func (ctx *flowContext) ensureSpace(height float64) bool {
	pc := ctx.collector
	if ctx.cursorY+height <= pc.contentBottom()+epsilon {
		return true
	}
	if ctx.cursorY > pc.contentTop()+epsilon {
		if !ctx.columnBreak() {
			return false
		}
	}
	return ctx.cursorY+height <= pc.contentBottom()+epsilon
}

// columnBreak 移动到下一栏；栏已用完时换页。禁止分页且无栏可用时返回 false。
func (ctx *flowContext) columnBreak() bool {
	pc := ctx.collector
	if !pc.nextColumn() {
		if ctx.opts.SinglePage {
			return false
		}
		pc.newPage()
	}
	ctx.cursorY = pc.contentTop()
	return true
}

func collectMeta(in Input) DocumentMeta {
	var first binding.Record
	if len(in.Resume.Sections) > 0 {
		first = in.Resume.Sections[0].Header
	}
	meta := DocumentMeta{Creator: creator}
	if in.Page.Title != "" {
		meta.Title = binding.Interpolate(in.Page.Title, first)
	}
	if in.Page.Author != "" {
		meta.Author = binding.Interpolate(in.Page.Author, first)
	}
	for _, sec := range in.Resume.Sections {
		if sec.Name != "" {
			meta.Keywords = append(meta.Keywords, sec.Name)
		}
	}
	return meta
}
