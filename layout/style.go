package layout

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Margin 是节点四周的留白，单位与布局单位一致，默认全为 0。
type Margin struct {
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
}

// Horizontal 返回左右留白之和。
func (m Margin) Horizontal() float64 { return m.Left + m.Right }

// Vertical 返回上下留白之和。
func (m Margin) Vertical() float64 { return m.Top + m.Bottom }

func (m Margin) IsZero() bool { return m == Margin{} }

func (m Margin) WithTop(v float64) Margin    { m.Top = v; return m }
func (m Margin) WithBottom(v float64) Margin { m.Bottom = v; return m }
func (m Margin) WithLeft(v float64) Margin   { m.Left = v; return m }
func (m Margin) WithRight(v float64) Margin  { m.Right = v; return m }

// ParseMargin 解析类似 CSS 的简写：
// 1 个值：四边相同；2 个值：上下/左右；3 个值：上/左右/下；4 个值：上/右/下/左。
func ParseMargin(value string) (Margin, error) {
	fields := strings.Fields(value)
	if len(fields) == 0 || len(fields) > 4 {
		return Margin{}, fmt.Errorf("margin 需要 1-4 个长度值: %q", value)
	}
	vals := make([]float64, 0, len(fields))
	for _, f := range fields {
		l, err := ParseLength(f)
		if err != nil {
			return Margin{}, fmt.Errorf("margin %q: %w", value, err)
		}
		vals = append(vals, l.Units())
	}
	switch len(vals) {
	case 1:
		v := vals[0]
		return Margin{Top: v, Right: v, Bottom: v, Left: v}, nil
	case 2:
		return Margin{Top: vals[0], Right: vals[1], Bottom: vals[0], Left: vals[1]}, nil
	case 3:
		return Margin{Top: vals[0], Right: vals[1], Bottom: vals[2], Left: vals[1]}, nil
	default:
		return Margin{Top: vals[0], Right: vals[1], Bottom: vals[2], Left: vals[3]}, nil
	}
}

// UnmarshalJSON 接受对象、单个数字或简写字符串。
func (m *Margin) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*m = Margin{}
		return nil
	}
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		if num < 0 {
			return fmt.Errorf("margin 不能为负数: %g", num)
		}
		*m = Margin{Top: num, Bottom: num, Left: num, Right: num}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := ParseMargin(s)
		if err != nil {
			return err
		}
		*m = parsed
		return nil
	}
	type plain Margin
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("无法解析 margin: %w", err)
	}
	if p.Top < 0 || p.Bottom < 0 || p.Left < 0 || p.Right < 0 {
		return fmt.Errorf("margin 不能为负数: %s", string(data))
	}
	*m = Margin(p)
	return nil
}

// Alignment 决定行内剩余水平空间的分配方式。
type Alignment uint8

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
	AlignJustified
)

func (a Alignment) String() string {
	switch a {
	case AlignCenter:
		return "Center"
	case AlignRight:
		return "Right"
	case AlignJustified:
		return "Justified"
	default:
		return "Left"
	}
}

// ParseAlignment 不区分大小写，并兼容 start/end/middle/justify 等别名。
func ParseAlignment(value string) (Alignment, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "left", "start":
		return AlignLeft, nil
	case "center", "centre", "middle":
		return AlignCenter, nil
	case "right", "end":
		return AlignRight, nil
	case "justified", "justify", "space-between":
		return AlignJustified, nil
	default:
		return AlignLeft, fmt.Errorf("未知的对齐方式 %q", value)
	}
}

func (a Alignment) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

func (a *Alignment) UnmarshalText(text []byte) error {
	parsed, err := ParseAlignment(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// offset 返回宽度为 width 的内容在 available 中按对齐方式放置时的起始偏移。
// Justified 对单个节点等同于 Left。
func (a Alignment) offset(available, width float64) float64 {
	if available <= width {
		return 0
	}
	switch a {
	case AlignCenter:
		return (available - width) / 2
	case AlignRight:
		return available - width
	default:
		return 0
	}
}
