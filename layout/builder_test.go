package layout

import (
	"errors"
	"math"
	"testing"
	"unicode/utf8"

	"github.com/ByLCY/folio/binding"
	"github.com/ByLCY/folio/schema"
)

// stubTypesetter 是测试用的等宽排版后端：12pt 时每个字符宽 2，行高 6。
type stubTypesetter struct{}

func (stubTypesetter) TextWidth(text string, font Font) float64 {
	return float64(utf8.RuneCountInString(text)) * font.Size / 6
}

func (stubTypesetter) LineHeight(font Font) float64 { return font.Size / 2 }

func eq(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func lineTemplate(field string) Layout { return NewRef(field) }

func twoLineTemplate(a, b string) Layout { return NewStack(NewRef(a), NewRef(b)) }

func testPage(columns ColumnType) PageLayout {
	return PageLayout{
		Columns: columns,
		Margin:  Margin{Top: 5, Bottom: 5, Left: 5, Right: 5},
		Width:   100,
		Height:  40,
	}
}

// twoSectionInput：第一节头部 + 3 个条目共 24 高，游标停在 29；第二节头部高 12，
// 29+12 超过内容底部 35，应当另起一栏或一页。
func twoSectionInput(page PageLayout) Input {
	line := binding.Record{"Line": binding.String("text")}
	return Input{
		Schemas: []LayoutSchema{
			{Name: "List", Header: lineTemplate("Title"), Item: lineTemplate("Line")},
			{Name: "Block", Header: twoLineTemplate("Title", "Subtitle"), Item: lineTemplate("Line")},
		},
		Resume: Resume{Sections: []Section{
			{
				Name:         "Experience",
				LayoutSchema: "List",
				Header:       binding.Record{"Title": binding.String("Experience")},
				Items:        []binding.Record{line, line, line},
			},
			{
				Name:         "Education",
				LayoutSchema: "Block",
				Header:       binding.Record{"Title": binding.String("Education"), "Subtitle": binding.String("Degrees")},
			},
		}},
		Page: page,
	}
}

func TestBuildStartsNewPageWhenSectionDoesNotFit(t *testing.T) {
	res, err := Build(twoSectionInput(testPage(ColumnType{})), BuildOptions{Typesetter: stubTypesetter{}})
	if err != nil {
		t.Fatalf("布局计算失败: %v", err)
	}
	if len(res.Pages) != 2 {
		t.Fatalf("期望 2 页，实际 %d 页", len(res.Pages))
	}
	if got := len(res.Pages[0].Groups); got != 4 {
		t.Fatalf("第一页应有 4 个分组，实际 %d", got)
	}
	second := res.Pages[1].Groups
	if len(second) != 1 || second[0].Section != "Education" {
		t.Fatalf("第二页应只包含 Education 头部: %+v", second)
	}
	if y := second[0].BoundingBox.TopLeft.Y; !eq(y, 5) {
		t.Fatalf("新页游标应重置到上边距 5，实际 %g", y)
	}
	els := second[0].Elements
	if len(els) != 2 || !eq(els[0].Box.TopLeft.Y, 5) || !eq(els[1].Box.TopLeft.Y, 11) {
		t.Fatalf("第二页元素位置错误: %+v", els)
	}
	if res.Pages[1].Number != 2 {
		t.Fatalf("页码错误: %d", res.Pages[1].Number)
	}
}

func TestBuildFillsSecondColumnBeforeNewPage(t *testing.T) {
	page := testPage(ColumnType{Kind: DoubleColumn, VerticalMargin: 10})
	res, err := Build(twoSectionInput(page), BuildOptions{Typesetter: stubTypesetter{}})
	if err != nil {
		t.Fatalf("布局计算失败: %v", err)
	}
	if len(res.Pages) != 1 {
		t.Fatalf("双栏时不应换页，实际 %d 页", len(res.Pages))
	}
	groups := res.Pages[0].Groups
	last := groups[len(groups)-1]
	if last.Column != 1 {
		t.Fatalf("Education 应进入第二栏，实际第 %d 栏", last.Column)
	}
	// 栏宽 (90-10)/2 = 40，第二栏左边缘 5+40+10 = 55
	if !eq(last.BoundingBox.TopLeft.X, 55) || !eq(last.BoundingBox.TopLeft.Y, 5) {
		t.Fatalf("第二栏位置错误: %+v", last.BoundingBox)
	}
	if !eq(last.Elements[0].Box.TopLeft.X, 55) {
		t.Fatalf("元素应随栏平移: %+v", last.Elements[0].Box)
	}
}

func TestBuildReportsMissingSchemas(t *testing.T) {
	in := twoSectionInput(testPage(ColumnType{}))
	in.Resume.Sections[1].LayoutSchema = "Nope"
	_, err := Build(in, BuildOptions{Typesetter: stubTypesetter{}})
	if !errors.Is(err, ErrSchemaNotFound) {
		t.Fatalf("期望 ErrSchemaNotFound，实际 %v", err)
	}
	var nf *SchemaNotFoundError
	if !errors.As(err, &nf) || nf.Name != "Nope" || nf.Kind != "layout" {
		t.Fatalf("错误信息不完整: %#v", nf)
	}

	in = twoSectionInput(testPage(ColumnType{}))
	in.Resume.Sections[0].DataSchema = "Ghost"
	if _, err := Build(in, BuildOptions{Typesetter: stubTypesetter{}}); !errors.Is(err, ErrSchemaNotFound) {
		t.Fatalf("缺失数据模板也应报 ErrSchemaNotFound，实际 %v", err)
	}
}

func TestBuildValidatesAgainstDataSchema(t *testing.T) {
	in := twoSectionInput(testPage(ColumnType{}))
	title, _ := schema.ParseType("String")
	in.DataSchemas = []schema.DataSchema{{Name: "ListData", HeaderFields: []schema.Field{{Name: "Title", Type: title}}}}
	in.Resume.Sections[0].DataSchema = "ListData"
	// 条目字段 Line 未声明只会产生警告，不影响排版。
	if _, err := Build(in, BuildOptions{Typesetter: stubTypesetter{}}); err != nil {
		t.Fatalf("字段校验不应中断排版: %v", err)
	}
}

func tallInput() Input {
	tall := NewStack(NewRef("A"), NewRef("A"), NewRef("A"), NewRef("A"), NewRef("A"), NewRef("A"))
	return Input{
		Schemas: []LayoutSchema{{Name: "Tall", Header: tall, Item: NewRef("A")}},
		Resume: Resume{Sections: []Section{{
			Name:         "Tall",
			LayoutSchema: "Tall",
			Header:       binding.Record{"A": binding.String("x")},
		}}},
		Page: testPage(ColumnType{}),
	}
}

func TestBuildOverflowTruncatesOrFails(t *testing.T) {
	// 6 行共 36 高，内容区只有 30。
	_, err := Build(tallInput(), BuildOptions{Typesetter: stubTypesetter{}, StrictOverflow: true})
	if !errors.Is(err, ErrPageOverflow) {
		t.Fatalf("严格模式应返回 ErrPageOverflow，实际 %v", err)
	}

	res, err := Build(tallInput(), BuildOptions{Typesetter: stubTypesetter{}})
	if err != nil {
		t.Fatalf("默认模式应截断而非报错: %v", err)
	}
	els := res.Pages[0].Placements()
	if len(els) != 5 {
		t.Fatalf("应保留 5 行（底部 35 以内），实际 %d", len(els))
	}
	for _, e := range els {
		if e.Box.BottomRight.Y > 35+1e-9 {
			t.Fatalf("截断后不应有超出底部的元素: %+v", e.Box)
		}
	}
}

func TestBuildSinglePageTruncatesInsteadOfPaging(t *testing.T) {
	res, err := Build(twoSectionInput(testPage(ColumnType{})), BuildOptions{Typesetter: stubTypesetter{}, SinglePage: true})
	if err != nil {
		t.Fatalf("布局计算失败: %v", err)
	}
	if len(res.Pages) != 1 {
		t.Fatalf("禁止分页时只应有 1 页，实际 %d", len(res.Pages))
	}
	// 游标停在 29，剩余 6：Education 的第一行恰好放下，第二行被截断。
	last := res.Pages[0].Groups[len(res.Pages[0].Groups)-1]
	if len(last.Elements) != 1 || last.Elements[0].Element.Item != "Education" {
		t.Fatalf("放不下的部分应被截断: %+v", last.Elements)
	}
	if !eq(last.BoundingBox.Height(), 6) {
		t.Fatalf("截断后的分组高度应为剩余高度 6，实际 %g", last.BoundingBox.Height())
	}
}

func TestBuildMetaAndDebugTrees(t *testing.T) {
	in := twoSectionInput(testPage(ColumnType{}))
	in.Page.Title = "${Title} - CV"
	res, err := Build(in, BuildOptions{Typesetter: stubTypesetter{}, Debug: DebugOptions{KeepTrees: true}})
	if err != nil {
		t.Fatalf("布局计算失败: %v", err)
	}
	if res.Meta.Title != "Experience - CV" || res.Meta.Creator != "folio" {
		t.Fatalf("文档信息错误: %+v", res.Meta)
	}
	if res.Pages[0].Groups[0].Tree == nil {
		t.Fatalf("KeepTrees 时应保留布局树")
	}
	data, err := EncodeDebugJSON(res)
	if err != nil || len(data) == 0 {
		t.Fatalf("调试 JSON 编码失败: %v", err)
	}
}

func TestBuildRequiresTypesetterAndValidPage(t *testing.T) {
	if _, err := Build(twoSectionInput(testPage(ColumnType{})), BuildOptions{}); err == nil {
		t.Fatalf("缺少 Typesetter 应报错")
	}
	in := twoSectionInput(PageLayout{Width: 10, Height: 10, Margin: Margin{Left: 6, Right: 6}})
	if _, err := Build(in, BuildOptions{Typesetter: stubTypesetter{}}); err == nil {
		t.Fatalf("边距超过页宽应报错")
	}
}

func TestBuildPropagatesFrozenRowOverflow(t *testing.T) {
	in := twoSectionInput(testPage(ColumnType{}))
	in.Schemas[0].Header = NewFrozenRow(
		NewRef("Title").WithWidth(Fixed(60)),
		NewRef("Title").WithWidth(Fixed(60)),
	).WithWidth(Fixed(80))
	_, err := Build(in, BuildOptions{Typesetter: stubTypesetter{}})
	if !errors.Is(err, ErrFrozenRowOverflow) {
		t.Fatalf("期望 ErrFrozenRowOverflow，实际 %v", err)
	}
}
