package textrenderer

import (
	"unicode"

	"golang.org/x/text/width"

	"github.com/ByLCY/folio/layout"
)

// Monospace 是字符网格的排版后端：每个字符占一格，东亚全角字符占两格，行高一格。
// Cell 是一格对应的布局单位，零值按 1 处理，此时布局坐标即网格坐标。
type Monospace struct {
	Cell float64
}

var _ layout.Typesetter = Monospace{}

func (m Monospace) cell() float64 {
	if m.Cell <= 0 {
		return 1
	}
	return m.Cell
}

// TextWidth implements layout.Typesetter.
func (m Monospace) TextWidth(text string, _ layout.Font) float64 {
	return float64(Cells(text)) * m.cell()
}

// LineHeight implements layout.Typesetter.
func (m Monospace) LineHeight(layout.Font) float64 { return m.cell() }

// Cells 返回文本占用的格数。
func Cells(text string) int {
	n := 0
	for _, r := range text {
		n += runeCells(r)
	}
	return n
}

func runeCells(r rune) int {
	switch {
	case unicode.Is(unicode.Mn, r), unicode.IsControl(r):
		return 0
	}
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	default:
		return 1
	}
}
