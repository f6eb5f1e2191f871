package layout

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// WidthKind 区分宽度约束的三种形态。
type WidthKind uint8

const (
	WidthFill WidthKind = iota // 等待父节点给出上界
	WidthFixed
	WidthPercentage
)

// Width 是节点的宽度约束。零值为 Fill。
// Percentage 只在 Scale 之前有意义，缩放后统一变为 Fixed。
type Width struct {
	Kind  WidthKind
	Value float64 // Fixed 为布局单位，Percentage 为 0..100
}

func Fixed(v float64) Width      { return Width{Kind: WidthFixed, Value: v} }
func Percentage(p float64) Width { return Width{Kind: WidthPercentage, Value: p} }
func Fill() Width                { return Width{Kind: WidthFill} }

func (w Width) IsFixed() bool      { return w.Kind == WidthFixed }
func (w Width) IsFill() bool       { return w.Kind == WidthFill }
func (w Width) IsPercentage() bool { return w.Kind == WidthPercentage }

// Scale 将百分比换算为相对 reference 的固定宽度，其余形态原样返回。
func (w Width) Scale(reference float64) Width {
	if w.Kind == WidthPercentage {
		return Fixed(w.Value / 100 * reference)
	}
	return w
}

// Units 返回固定宽度的数值；非 Fixed 返回 0。
func (w Width) Units() float64 {
	if w.Kind == WidthFixed {
		return w.Value
	}
	return 0
}

// Min 返回 Fixed(min(w, v))；非 Fixed 宽度直接视为 v。
func (w Width) Min(v float64) Width {
	if w.Kind != WidthFixed {
		return Fixed(v)
	}
	return Fixed(math.Min(w.Value, v))
}

func (w Width) String() string {
	switch w.Kind {
	case WidthFixed:
		return strconv.FormatFloat(w.Value, 'f', -1, 64)
	case WidthPercentage:
		return strconv.FormatFloat(w.Value, 'f', -1, 64) + "%"
	default:
		return "fill"
	}
}

// ParseWidth 解析 "fill"、"50%"、"70"、"70mm"、"12pt" 等写法。
func ParseWidth(value string) (Width, error) {
	v := strings.TrimSpace(value)
	switch strings.ToLower(v) {
	case "", "fill", "auto":
		return Fill(), nil
	}
	if strings.HasSuffix(v, "%") {
		num := strings.TrimSpace(strings.TrimSuffix(v, "%"))
		p, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return Width{}, fmt.Errorf("无法解析百分比宽度 %q", value)
		}
		if p < 0 || p > 100 {
			return Width{}, fmt.Errorf("百分比宽度超出 0..100: %q", value)
		}
		return Percentage(p), nil
	}
	l, err := ParseLength(v)
	if err != nil {
		return Width{}, err
	}
	return Fixed(l.Units()), nil
}

// MarshalJSON 输出数字（Fixed）、"50%" 或 "fill"。
func (w Width) MarshalJSON() ([]byte, error) {
	if w.Kind == WidthFixed {
		return json.Marshal(w.Value)
	}
	return json.Marshal(w.String())
}

// UnmarshalJSON 接受数字、字符串以及 {"Fixed": 70} / {"Percentage": 50} / "Fill" 形式。
func (w *Width) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*w = Fill()
		return nil
	}
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		if num < 0 {
			return fmt.Errorf("宽度不能为负数: %g", num)
		}
		*w = Fixed(num)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := ParseWidth(s)
		if err != nil {
			return err
		}
		*w = parsed
		return nil
	}
	var tagged map[string]float64
	if err := json.Unmarshal(data, &tagged); err != nil || len(tagged) != 1 {
		return fmt.Errorf("无法解析宽度: %s", string(data))
	}
	for k, v := range tagged {
		switch strings.ToLower(k) {
		case "fixed":
			*w = Fixed(v)
		case "percentage":
			*w = Percentage(v)
		default:
			return fmt.Errorf("未知的宽度类型 %q", k)
		}
	}
	return nil
}
