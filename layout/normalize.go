package layout

import (
	"fmt"
	"math"
	"strings"
)

// epsilon 吸收宽度累加时的浮点误差。
const epsilon = 1e-9

// Normalize 依次执行 Scale → Bound → FillFonts → BreakLines，得到可计算几何的树。
// width 是页面或栏的宽度，百分比宽度相对它换算，同时作为最外层的上界。
func (l Layout) Normalize(width float64, ts Typesetter) (Layout, error) {
	if ts == nil {
		return Layout{}, fmt.Errorf("layout: 缺少排版后端 Typesetter")
	}
	if !l.IsInstantiated() {
		return Layout{}, unbounded("模板尚未实例化")
	}
	out, err := l.Scale(width).Bound(width).FillFonts(ts).BreakLines(ts)
	if err != nil {
		return Layout{}, err
	}
	if !out.IsBounded() {
		return Layout{}, unbounded("归一化后仍存在未确定的宽度")
	}
	return out, nil
}

// Scale 把所有百分比宽度换算为相对 reference 的固定宽度。
func (l Layout) Scale(reference float64) Layout {
	if !l.IsContainer() {
		l.Element.Width = l.Element.Width.Scale(reference)
		return l
	}
	children := make([]Layout, len(l.Container.Children))
	for i, c := range l.Container.Children {
		children[i] = c.Scale(reference)
	}
	l.Container.Width = l.Container.Width.Scale(reference)
	return l.withChildren(children)
}

// Bound 自顶向下传播上界 b：不超过 b 的固定宽度保持不变，其余收窄到 b；
// Fill 宽度被设为 b 并打上 IsFill 标记。子节点收到的上界是本节点扣除左右留白后的宽度。
// 对同一个 b 重复执行结果不变。
func (l Layout) Bound(b float64) Layout {
	if b < 0 {
		b = 0
	}
	if !l.IsContainer() {
		l.Element.Width, l.Element.IsFill = resolveBound(l.Element.Width, l.Element.IsFill, b)
		return l
	}
	l.Container.Width, l.Container.IsFill = resolveBound(l.Container.Width, l.Container.IsFill, b)
	inner := l.Container.ContentWidth()
	children := make([]Layout, len(l.Container.Children))
	for i, c := range l.Container.Children {
		children[i] = c.Bound(inner)
	}
	return l.withChildren(children)
}

func resolveBound(w Width, fill bool, b float64) (Width, bool) {
	w = w.Scale(b)
	switch {
	case w.IsFixed() && w.Value <= b:
		return w, fill
	case w.IsFixed():
		return Fixed(b), fill
	default:
		return Fixed(b), true
	}
}

// FillFonts 为每个文本叶子写入测量宽度。带 IsFill 标记的叶子收缩到 min(宽度, 测量宽度)；
// 带 IsFill 标记且左对齐的容器收缩到内容宽度（行取子节点之和，Stack 取最宽子节点）。
func (l Layout) FillFonts(ts Typesetter) Layout {
	if !l.IsContainer() {
		e := l.Element
		measured := ts.TextWidth(e.Item, e.Font)
		e.MeasuredWidth = Fixed(measured)
		if e.IsFill {
			e.Width = e.Width.Min(measured + e.Margin.Horizontal())
		}
		l.Element = e
		return l
	}
	children := make([]Layout, len(l.Container.Children))
	for i, c := range l.Container.Children {
		children[i] = c.FillFonts(ts)
	}
	out := l.withChildren(children)
	if out.Container.IsFill && out.Container.Alignment == AlignLeft {
		out.Container.Width = out.Container.Width.Min(out.intrinsicWidth() + out.Container.Margin.Horizontal())
	}
	return out
}

// intrinsicWidth 返回容器子节点实际占用的宽度。
func (l Layout) intrinsicWidth() float64 {
	if l.Kind == KindStack {
		widest := 0.0
		for _, c := range l.Container.Children {
			widest = math.Max(widest, c.Width().Units())
		}
		return widest
	}
	return sumWidths(l.Container.Children)
}

func sumWidths(children []Layout) float64 {
	total := 0.0
	for _, c := range children {
		total += c.Width().Units()
	}
	return total
}

// BreakLines 对超宽文本做贪心折行，对超宽 FlexRow 重新分行，并把可放下的 FrozenRow 转为 FlexRow。
// FrozenRow 放不下时返回 *FrozenRowOverflowError。
func (l Layout) BreakLines(ts Typesetter) (Layout, error) {
	switch l.Kind {
	case KindRef:
		return Layout{}, unbounded("Ref %q 尚未实例化", l.Element.Item)
	case KindText:
		return l.breakText(ts), nil
	case KindFrozenRow:
		avail := l.Container.ContentWidth()
		if need := sumWidths(l.Container.Children); need > avail+epsilon {
			return Layout{}, &FrozenRowOverflowError{Width: avail, Required: need}
		}
	}

	children := make([]Layout, len(l.Container.Children))
	for i, c := range l.Container.Children {
		broken, err := c.BreakLines(ts)
		if err != nil {
			return Layout{}, err
		}
		children[i] = broken
	}

	switch l.Kind {
	case KindFrozenRow:
		out := l.withChildren(children)
		out.Kind = KindFlexRow
		return out, nil
	case KindFlexRow:
		avail := l.Container.ContentWidth()
		if sumWidths(children) <= avail+epsilon {
			return l.withChildren(children), nil
		}
		return l.reflow(children, avail), nil
	default:
		return l.withChildren(children), nil
	}
}

// reflow 把放不下的行拆成多个 FlexRow，再用 Stack 纵向排列；Stack 继承原行的留白与宽度。
func (l Layout) reflow(children []Layout, avail float64) Layout {
	var rows [][]Layout
	var current []Layout
	used := 0.0
	for _, c := range children {
		w := c.Width().Units()
		if len(current) > 0 && used+w > avail+epsilon {
			rows = append(rows, current)
			current, used = nil, 0
		}
		current = append(current, c)
		used += w
	}
	if len(current) > 0 {
		rows = append(rows, current)
	}

	lines := make([]Layout, len(rows))
	for i, row := range rows {
		lines[i] = Layout{Kind: KindFlexRow, Container: Container{
			Children:  row,
			Alignment: l.Container.Alignment,
			Width:     Fixed(avail),
		}}
	}
	return Layout{Kind: KindStack, Container: Container{
		Children:  lines,
		Margin:    l.Container.Margin,
		Alignment: l.Container.Alignment,
		Width:     l.Container.Width,
		IsFill:    l.Container.IsFill,
	}}
}

// breakText 在测量宽度超过可用宽度时按单词贪心折行，每行成为一个 Text，由 Stack 承载原有留白与对齐。
func (l Layout) breakText(ts Typesetter) Layout {
	e := l.Element
	if !e.MeasuredWidth.IsFixed() {
		e.MeasuredWidth = Fixed(ts.TextWidth(e.Item, e.Font))
	}
	l.Element = e
	avail := e.ContentWidth()
	if e.MeasuredWidth.Value <= avail+epsilon || avail <= 0 {
		return l
	}

	measure := func(s string) float64 { return ts.TextWidth(s, e.Font) }
	lines := wrapWords(e.Item, avail, measure)
	children := make([]Layout, len(lines))
	for i, line := range lines {
		le := e
		le.Item = line
		le.Margin = Margin{}
		le.Width = Fixed(avail)
		le.MeasuredWidth = Fixed(measure(line))
		children[i] = Layout{Kind: KindText, Element: le}
	}
	return Layout{Kind: KindStack, Container: Container{
		Children:  children,
		Margin:    e.Margin,
		Alignment: e.Alignment,
		Width:     e.Width,
		IsFill:    e.IsFill,
	}}
}

// wrapWords 按空白分词后贪心装行：候选行为 "当前行 + 空格 + 单词"，超出 limit 即另起一行。
// 单个单词本身超宽时按字符切分。
func wrapWords(text string, limit float64, measure func(string) float64) []string {
	var lines []string
	line := ""
	for _, word := range strings.Fields(text) {
		if measure(word) > limit+epsilon {
			if line != "" {
				lines = append(lines, line)
			}
			chunks := splitWordByWidth(word, limit, measure)
			lines = append(lines, chunks[:len(chunks)-1]...)
			line = chunks[len(chunks)-1]
			continue
		}
		if line == "" {
			line = word
			continue
		}
		candidate := line + " " + word
		if measure(candidate) > limit+epsilon {
			lines = append(lines, line)
			line = word
			continue
		}
		line = candidate
	}
	if line != "" || len(lines) == 0 {
		lines = append(lines, line)
	}
	return lines
}

// splitWordByWidth 把超宽单词切成不超过 limit 的若干段，每段至少一个字符。
func splitWordByWidth(word string, limit float64, measure func(string) float64) []string {
	var parts []string
	var builder strings.Builder
	for _, r := range word {
		builder.WriteRune(r)
		if measure(builder.String()) > limit+epsilon && builder.Len() > len(string(r)) {
			runes := []rune(builder.String())
			parts = append(parts, string(runes[:len(runes)-1]))
			builder.Reset()
			builder.WriteRune(r)
		}
	}
	if builder.Len() > 0 {
		parts = append(parts, builder.String())
	}
	return parts
}
