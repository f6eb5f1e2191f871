package layout

// 该文件定义布局树：模板（含 Ref 占位）与实例（Ref 已解析为 Text）共用同一结构。

// Kind 标识布局节点的类型。
type Kind uint8

const (
	KindStack     Kind = iota // 纵向排列
	KindFrozenRow             // 横向排列，不允许换行
	KindFlexRow               // 横向排列，可换行
	KindText                  // 已解析的文本叶子
	KindRef                   // 未解析的占位叶子，Item 为字段名
)

func (k Kind) String() string {
	switch k {
	case KindStack:
		return "Stack"
	case KindFrozenRow:
		return "FrozenRow"
	case KindFlexRow:
		return "FlexRow"
	case KindText:
		return "Text"
	case KindRef:
		return "Ref"
	default:
		return "Unknown"
	}
}

// IsContainer 报告该类型是否持有子节点。
func (k Kind) IsContainer() bool { return k <= KindFlexRow }

// Element 是文本叶子。
type Element struct {
	Item          string    `json:"item"`
	Margin        Margin    `json:"margin"`
	Alignment     Alignment `json:"alignment"`
	Width         Width     `json:"width"`
	MeasuredWidth Width     `json:"text_width"`
	Font          Font      `json:"font"`
	IsFill        bool      `json:"is_fill"`
	Link          string    `json:"url,omitempty"`
}

// ContentWidth 返回扣除左右留白后的可用宽度。
func (e Element) ContentWidth() float64 { return contentWidth(e.Width, e.Margin) }

// Container 持有有序的子节点。
type Container struct {
	Children  []Layout  `json:"elements"`
	Margin    Margin    `json:"margin"`
	Alignment Alignment `json:"alignment"`
	Width     Width     `json:"width"`
	IsFill    bool      `json:"is_fill"`
}

// ContentWidth 返回扣除左右留白后的可用宽度。
func (c Container) ContentWidth() float64 { return contentWidth(c.Width, c.Margin) }

func contentWidth(w Width, m Margin) float64 {
	v := w.Units() - m.Horizontal()
	if v < 0 {
		return 0
	}
	return v
}

// Layout 是布局树节点。Kind 为容器类型时 Container 有效，否则 Element 有效。
// 所有变换都返回新的树，不会修改已有节点。
type Layout struct {
	Kind      Kind
	Container Container
	Element   Element
}

func newContainer(kind Kind, children []Layout) Layout {
	return Layout{Kind: kind, Container: Container{
		Children: append([]Layout(nil), children...),
		Width:    Fill(),
	}}
}

func newElement(kind Kind, item string) Layout {
	return Layout{Kind: kind, Element: Element{
		Item:          item,
		Width:         Fill(),
		MeasuredWidth: Fill(),
		Font:          DefaultFont(),
	}}
}

func NewStack(children ...Layout) Layout     { return newContainer(KindStack, children) }
func NewFrozenRow(children ...Layout) Layout { return newContainer(KindFrozenRow, children) }
func NewFlexRow(children ...Layout) Layout   { return newContainer(KindFlexRow, children) }
func NewText(text string) Layout             { return newElement(KindText, text) }
func NewRef(field string) Layout             { return newElement(KindRef, field) }

// emptyStack 是缺失数据时的占位：没有子节点，宽度为 0。
func emptyStack() Layout {
	l := NewStack()
	l.Container.Width = Fixed(0)
	return l
}

func (l Layout) IsContainer() bool { return l.Kind.IsContainer() }

func (l Layout) Width() Width {
	if l.IsContainer() {
		return l.Container.Width
	}
	return l.Element.Width
}

func (l Layout) Margin() Margin {
	if l.IsContainer() {
		return l.Container.Margin
	}
	return l.Element.Margin
}

func (l Layout) Alignment() Alignment {
	if l.IsContainer() {
		return l.Container.Alignment
	}
	return l.Element.Alignment
}

// Children 返回子节点；叶子返回 nil。
func (l Layout) Children() []Layout {
	if l.IsContainer() {
		return l.Container.Children
	}
	return nil
}

func (l Layout) WithWidth(w Width) Layout {
	if l.IsContainer() {
		l.Container.Width = w
	} else {
		l.Element.Width = w
	}
	return l
}

func (l Layout) WithMargin(m Margin) Layout {
	if l.IsContainer() {
		l.Container.Margin = m
	} else {
		l.Element.Margin = m
	}
	return l
}

func (l Layout) WithAlignment(a Alignment) Layout {
	if l.IsContainer() {
		l.Container.Alignment = a
	} else {
		l.Element.Alignment = a
	}
	return l
}

// WithFont 仅作用于叶子节点。
func (l Layout) WithFont(f Font) Layout {
	if !l.IsContainer() {
		l.Element.Font = f.withDefaults()
	}
	return l
}

// withChildren 返回同类型、同样式但子节点不同的容器。
func (l Layout) withChildren(children []Layout) Layout {
	l.Container.Children = children
	return l
}

// IsInstantiated 报告子树中是否已不含 Ref。
func (l Layout) IsInstantiated() bool {
	switch l.Kind {
	case KindRef:
		return false
	case KindText:
		return true
	}
	for _, c := range l.Container.Children {
		if !c.IsInstantiated() {
			return false
		}
	}
	return true
}

// IsBounded 报告子树中每个节点的宽度是否均已是 Fixed，且不含 Ref。
func (l Layout) IsBounded() bool {
	switch l.Kind {
	case KindRef:
		return false
	case KindText:
		return l.Element.Width.IsFixed()
	}
	if !l.Container.Width.IsFixed() {
		return false
	}
	for _, c := range l.Container.Children {
		if !c.IsBounded() {
			return false
		}
	}
	return true
}

// Fonts 按首次出现的顺序返回子树引用的字体，重复的字体只出现一次。
func (l Layout) Fonts() []Font {
	seen := map[Font]bool{}
	var out []Font
	l.walk(func(n Layout) {
		if n.IsContainer() {
			return
		}
		f := n.Element.Font.withDefaults()
		if seen[f] {
			return
		}
		seen[f] = true
		out = append(out, f)
	})
	return out
}

// Leaves 返回子树中的全部叶子，按深度优先顺序。
func (l Layout) Leaves() []Element {
	var out []Element
	l.walk(func(n Layout) {
		if !n.IsContainer() {
			out = append(out, n.Element)
		}
	})
	return out
}

func (l Layout) walk(fn func(Layout)) {
	fn(l)
	for _, c := range l.Children() {
		c.walk(fn)
	}
}
