package layout

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// 模板以外部标签的树字面量表示，例如：
//
//	{"Stack": {"elements": [{"Ref": {"item": "School", "width": "60%"}}], "margin": {"top": 2}}}
//
// 叶子也可以简写为 {"Ref": "School"}。

// ParseKind 解析节点类型名，不区分大小写。
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "stack":
		return KindStack, nil
	case "frozenrow", "frozen-row":
		return KindFrozenRow, nil
	case "flexrow", "flex-row":
		return KindFlexRow, nil
	case "text":
		return KindText, nil
	case "ref":
		return KindRef, nil
	default:
		return 0, fmt.Errorf("未知的布局节点类型 %q", name)
	}
}

func (l Layout) MarshalJSON() ([]byte, error) {
	if l.IsContainer() {
		return json.Marshal(map[string]Container{l.Kind.String(): l.Container})
	}
	return json.Marshal(map[string]Element{l.Kind.String(): l.Element})
}

func (l *Layout) UnmarshalJSON(data []byte) error {
	var tagged map[string]json.RawMessage
	if err := json.Unmarshal(data, &tagged); err != nil {
		return fmt.Errorf("布局节点必须是带类型标签的对象: %w", err)
	}
	if len(tagged) != 1 {
		return fmt.Errorf("布局节点必须恰好有一个类型标签，实际 %d 个", len(tagged))
	}
	for name, raw := range tagged {
		kind, err := ParseKind(name)
		if err != nil {
			return err
		}
		if kind.IsContainer() {
			c, err := decodeContainer(raw)
			if err != nil {
				return fmt.Errorf("%s: %w", kind, err)
			}
			*l = Layout{Kind: kind, Container: c}
			return nil
		}
		e, err := decodeElement(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", kind, err)
		}
		*l = Layout{Kind: kind, Element: e}
	}
	return nil
}

func decodeContainer(raw json.RawMessage) (Container, error) {
	var c struct {
		Elements  []Layout  `json:"elements"`
		Children  []Layout  `json:"children"`
		Margin    Margin    `json:"margin"`
		Alignment Alignment `json:"alignment"`
		Width     *Width    `json:"width"`
	}
	if err := json.Unmarshal(raw, &c); err != nil {
		return Container{}, err
	}
	out := Container{
		Children:  append(c.Elements, c.Children...),
		Margin:    c.Margin,
		Alignment: c.Alignment,
		Width:     Fill(),
	}
	if c.Width != nil {
		out.Width = *c.Width
	}
	return out, nil
}

func decodeElement(raw json.RawMessage) (Element, error) {
	out := Element{Width: Fill(), MeasuredWidth: Fill(), Font: DefaultFont()}
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		if err := json.Unmarshal(raw, &out.Item); err != nil {
			return Element{}, err
		}
		return out, nil
	}
	var e struct {
		Item      string    `json:"item"`
		Margin    Margin    `json:"margin"`
		Alignment Alignment `json:"alignment"`
		Width     *Width    `json:"width"`
		Font      *Font     `json:"font"`
		URL       string    `json:"url"`
	}
	if err := json.Unmarshal(raw, &e); err != nil {
		return Element{}, err
	}
	out.Item = e.Item
	out.Margin = e.Margin
	out.Alignment = e.Alignment
	out.Link = e.URL
	if e.Width != nil {
		out.Width = *e.Width
	}
	if e.Font != nil {
		out.Font = e.Font.withDefaults()
	}
	return out, nil
}
