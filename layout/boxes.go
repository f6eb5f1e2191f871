package layout

import (
	"fmt"
	"math"
)

// Placed 是定位后的文本叶子：绝对矩形 + 元素（文本、字体、链接）。
type Placed struct {
	Box     SpatialBox `json:"box"`
	Element Element    `json:"element"`
}

// ComputeBoxes 从 (0, offset) 开始放置归一化后的树，返回新的纵向位置与定位结果。
func (l Layout) ComputeBoxes(offset float64, ts Typesetter) (float64, []Placed, error) {
	return l.ComputeBoxesAt(Point{Y: offset}, ts)
}

// ComputeBoxesAt 与 ComputeBoxes 相同，但从任意左上角开始。
// 树中仍有 Ref、FrozenRow 或非 Fixed 宽度时返回 ErrUnboundedGeometry。
func (l Layout) ComputeBoxesAt(origin Point, ts Typesetter) (float64, []Placed, error) {
	if ts == nil {
		return origin.Y, nil, fmt.Errorf("layout: 缺少排版后端 Typesetter")
	}
	if !l.IsBounded() {
		return origin.Y, nil, unbounded("布局树尚未归一化")
	}
	var out []Placed
	depth, err := l.place(origin, ts, &out)
	if err != nil {
		return origin.Y, nil, err
	}
	return depth, out, nil
}

// place 把节点放在左上角 p，返回节点底部（含下留白）的纵向位置。
func (l Layout) place(p Point, ts Typesetter, out *[]Placed) (float64, error) {
	m := l.Margin()
	inner := p.Translate(m.Left, m.Top)

	switch l.Kind {
	case KindText:
		e := l.Element
		height := ts.LineHeight(e.Font)
		avail := e.ContentWidth()
		width := avail
		if e.MeasuredWidth.IsFixed() {
			width = e.MeasuredWidth.Value
		}
		x := inner.X + e.Alignment.offset(avail, width)
		*out = append(*out, Placed{Box: BoxAt(Point{X: x, Y: inner.Y}, width, height), Element: e})
		return inner.Y + height + m.Bottom, nil

	case KindStack:
		children := l.Container.Children
		if len(children) == 0 {
			return p.Y, nil
		}
		avail := l.Container.ContentWidth()
		y := inner.Y
		for _, c := range children {
			x := inner.X + l.Container.Alignment.offset(avail, c.Width().Units())
			depth, err := c.place(Point{X: x, Y: y}, ts, out)
			if err != nil {
				return p.Y, err
			}
			y = depth
		}
		return y + m.Bottom, nil

	case KindFlexRow:
		children := l.Container.Children
		if len(children) == 0 {
			return p.Y, nil
		}
		start, gap := rowDistribution(l.Container.Alignment, l.Container.ContentWidth(), sumWidths(children), len(children))
		x := inner.X + start
		depth := inner.Y
		for _, c := range children {
			d, err := c.place(Point{X: x, Y: inner.Y}, ts, out)
			if err != nil {
				return p.Y, err
			}
			depth = math.Max(depth, d)
			x += c.Width().Units() + gap
		}
		return depth + m.Bottom, nil

	case KindFrozenRow:
		return p.Y, unbounded("FrozenRow 未经归一化")
	default:
		return p.Y, unbounded("Ref %q 尚未实例化", l.Element.Item)
	}
}

// rowDistribution 计算行内起始偏移与子节点间距。
// Justified 在只有一个子节点时按左对齐处理。
func rowDistribution(align Alignment, avail, used float64, count int) (start, gap float64) {
	leftover := math.Max(avail-used, 0)
	switch align {
	case AlignCenter:
		return leftover / 2, 0
	case AlignRight:
		return leftover, 0
	case AlignJustified:
		if count > 1 {
			return 0, leftover / float64(count-1)
		}
		return 0, 0
	default:
		return 0, 0
	}
}
