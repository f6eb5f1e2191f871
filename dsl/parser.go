package dsl

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/ByLCY/folio/layout"
)

// 文本布局模板是一种紧凑的布局写法，例如：
//
//	{School} - {Degree} \t\t {Date-Started} - {Date-Finished} \n {Department}
//
// 换行分隔纵向排列的行；行内的制表符把内容分成两端对齐的列；
// {Field} 引用记录中的字段，其余文字原样输出。

var (
	textLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Ref", Pattern: `\{[^{}\n]*\}`},
		{Name: "Tab", Pattern: `\t+`},
		{Name: "Newline", Pattern: `\r?\n`},
		{Name: "Text", Pattern: `[^{}\t\r\n]+`},
	})

	textParser = participle.MustBuild[TextLayout](
		participle.Lexer(textLexer),
	)
)

// TextLayout is the root AST node of a text layout template.
type TextLayout struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Lines []*Line        `parser:"( @@ | Newline )*"`
}

// Line is one non-empty template line.
type Line struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Cells []*Cell        `parser:"@@+"`
}

// Cell is a single piece of a line: a field reference, a column break or literal text.
type Cell struct {
	Ref  *FieldRef `parser:"  @Ref"`
	Tab  bool      `parser:"| @Tab"`
	Text *string   `parser:"| @Text"`
}

// FieldRef strips the surrounding braces on capture.
type FieldRef string

// Capture implements participle.Capture.
func (f *FieldRef) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("field reference capture requires value")
	}
	name := strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(values[0], "{"), "}"))
	if name == "" {
		return fmt.Errorf("空的字段引用 %q", values[0])
	}
	*f = FieldRef(name)
	return nil
}

// Parse parses a text layout template from an io.Reader.
func Parse(r io.Reader) (*TextLayout, error) {
	return textParser.Parse("", r)
}

// ParseString parses a text layout template from a string.
func ParseString(input string) (*TextLayout, error) {
	return textParser.ParseString("", input)
}

// ParseTextLayout 解析模板并转换为布局树。
func ParseTextLayout(input string) (layout.Layout, error) {
	doc, err := ParseString(input)
	if err != nil {
		return layout.Layout{}, fmt.Errorf("文本布局 %q: %w", input, err)
	}
	return doc.Layout(), nil
}

// MustParseTextLayout 与 ParseTextLayout 相同，解析失败时 panic。
func MustParseTextLayout(input string) layout.Layout {
	l, err := ParseTextLayout(input)
	if err != nil {
		panic(err)
	}
	return l
}

// Layout 把模板转换为 Stack：每行一个子节点，多列的行是两端对齐的 FlexRow，
// 每列是左对齐的 FlexRow；只有一个节点的列或行直接使用该节点。
func (t *TextLayout) Layout() layout.Layout {
	var lines []layout.Layout
	for _, line := range t.Lines {
		if l, ok := line.layout(); ok {
			lines = append(lines, l)
		}
	}
	return layout.NewStack(lines...)
}

func (l *Line) layout() (layout.Layout, bool) {
	var columns []layout.Layout
	for _, cells := range l.columns() {
		if c, ok := columnLayout(cells); ok {
			columns = append(columns, c)
		}
	}
	switch len(columns) {
	case 0:
		return layout.Layout{}, false
	case 1:
		return columns[0], true
	default:
		return layout.NewFlexRow(columns...).WithAlignment(layout.AlignJustified), true
	}
}

// columns 按制表符切分行内的单元。
func (l *Line) columns() [][]*Cell {
	var out [][]*Cell
	var current []*Cell
	for _, c := range l.Cells {
		if c.Tab {
			out = append(out, current)
			current = nil
			continue
		}
		current = append(current, c)
	}
	return append(out, current)
}

// columnLayout 转换一列；列首尾的空白被去掉，中间的文字保留原有空格。
func columnLayout(cells []*Cell) (layout.Layout, bool) {
	var pieces []layout.Layout
	for i, c := range cells {
		if c.Ref != nil {
			pieces = append(pieces, layout.NewRef(string(*c.Ref)))
			continue
		}
		if c.Text == nil {
			continue
		}
		text := *c.Text
		if i == 0 {
			text = strings.TrimLeft(text, " ")
		}
		if i == len(cells)-1 {
			text = strings.TrimRight(text, " ")
		}
		if text != "" {
			pieces = append(pieces, layout.NewText(text))
		}
	}
	switch len(pieces) {
	case 0:
		return layout.Layout{}, false
	case 1:
		return pieces[0], true
	default:
		return layout.NewFlexRow(pieces...), true
	}
}
