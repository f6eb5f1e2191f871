package binding

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

const listSeparator = ", "

// ContentKind 区分记录字段的内容形态。
type ContentKind uint8

const (
	ContentNone ContentKind = iota
	ContentString
	ContentList
	ContentURL
)

// ItemContent 是记录中单个字段的值：字符串、字符串列表、带标签的链接或缺失。
type ItemContent struct {
	Kind ContentKind
	Text string // 字符串内容，或链接的显示文本
	List []string
	URL  string
}

// String 构造字符串内容。
func String(s string) ItemContent { return ItemContent{Kind: ContentString, Text: s} }

// List 构造列表内容。
func List(items ...string) ItemContent {
	return ItemContent{Kind: ContentList, List: append([]string(nil), items...)}
}

// URL 构造带标签的链接，label 为空时显示链接本身。
func URL(label, target string) ItemContent {
	return ItemContent{Kind: ContentURL, Text: label, URL: target}
}

// IsAbsent 报告字段是否缺失。
func (c ItemContent) IsAbsent() bool { return c.Kind == ContentNone }

// String 返回字段的展示文本：列表以 ", " 连接，链接显示其标签。
func (c ItemContent) String() string {
	switch c.Kind {
	case ContentString:
		return c.Text
	case ContentList:
		return strings.Join(c.List, listSeparator)
	case ContentURL:
		if c.Text != "" {
			return c.Text
		}
		return c.URL
	default:
		return ""
	}
}

// Link 返回链接目标，非链接内容返回空串。
func (c ItemContent) Link() string {
	if c.Kind == ContentURL {
		return c.URL
	}
	return ""
}

func (c ItemContent) value() any {
	switch c.Kind {
	case ContentString:
		return c.Text
	case ContentList:
		out := make([]interface{}, len(c.List))
		for i, s := range c.List {
			out[i] = s
		}
		return out
	case ContentURL:
		return map[string]interface{}{"url": c.URL, "text": c.Text}
	default:
		return nil
	}
}

// contentOf 把 resolvePath 的结果转换回 ItemContent。
func contentOf(val any) ItemContent {
	switch v := val.(type) {
	case nil:
		return ItemContent{}
	case string:
		return String(v)
	case []interface{}:
		items := make([]string, 0, len(v))
		for _, item := range v {
			items = append(items, stringify(item))
		}
		return List(items...)
	case map[string]interface{}:
		target := firstString(v, "url", "href", "link")
		label := firstString(v, "text", "label", "name")
		if target == "" && label == "" {
			return ItemContent{}
		}
		return URL(label, target)
	default:
		return String(fmt.Sprint(v))
	}
}

func firstString(m map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return fmt.Sprint(v)
		}
	}
	return ""
}

// UnmarshalJSON 接受字符串、数字、布尔、字符串数组、{url,text} 对象或 null。
func (c *ItemContent) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*c = ItemContent{}
		return nil
	}
	var raw any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("binding: 无法解析字段内容: %w", err)
	}
	*c = contentOf(raw)
	return nil
}

// MarshalJSON 输出与 UnmarshalJSON 对称的形态。
func (c ItemContent) MarshalJSON() ([]byte, error) {
	switch c.Kind {
	case ContentString:
		return json.Marshal(c.Text)
	case ContentList:
		return json.Marshal(c.List)
	case ContentURL:
		return json.Marshal(map[string]string{"url": c.URL, "text": c.Text})
	default:
		return []byte("null"), nil
	}
}
