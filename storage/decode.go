package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/ByLCY/folio/dsl"
	"github.com/ByLCY/folio/layout"
)

// extensions 是可识别的文档扩展名，同名文件按此顺序优先。
var extensions = []string{".json", ".yaml", ".yml", ".toml"}

// listKey 是 TOML 文档中承载多个对象的数组表名，例如 [[schemas]]。
const listKey = "schemas"

// readDocument 读取文件并统一转换为 JSON，由各类型自己的 UnmarshalJSON 解析。
func readDocument(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return toJSON(filepath.Ext(path), data)
}

func toJSON(ext string, data []byte) ([]byte, error) {
	var doc any
	switch strings.ToLower(ext) {
	case ".json":
		return data, nil
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("解析 YAML 失败: %w", err)
		}
	case ".toml":
		var table map[string]any
		if err := toml.Unmarshal(data, &table); err != nil {
			return nil, fmt.Errorf("解析 TOML 失败: %w", err)
		}
		doc = table
		if list, ok := table[listKey]; ok && len(table) == 1 {
			doc = list
		}
	default:
		return nil, fmt.Errorf("不支持的文档格式 %q", ext)
	}
	return json.Marshal(doc)
}

// decodeMany 解析单个对象或对象数组。
func decodeMany[T any](data []byte) ([]T, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var out []T
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, err
		}
		return out, nil
	}
	var one T
	if err := json.Unmarshal(data, &one); err != nil {
		return nil, err
	}
	return []T{one}, nil
}

// layoutSchemaDoc 允许模板写成布局树，也可以写成文本布局字符串。
type layoutSchemaDoc struct {
	Name   string          `json:"schema-name"`
	Header json.RawMessage `json:"header-layout-schema"`
	Item   json.RawMessage `json:"item-layout-schema"`
}

func (d layoutSchemaDoc) schema() (layout.LayoutSchema, error) {
	if d.Name == "" {
		return layout.LayoutSchema{}, fmt.Errorf("布局模板缺少 schema-name")
	}
	header, err := decodeTemplate(d.Header)
	if err != nil {
		return layout.LayoutSchema{}, fmt.Errorf("布局模板 %q 的头部: %w", d.Name, err)
	}
	item, err := decodeTemplate(d.Item)
	if err != nil {
		return layout.LayoutSchema{}, fmt.Errorf("布局模板 %q 的条目: %w", d.Name, err)
	}
	return layout.LayoutSchema{Name: d.Name, Header: header, Item: item}, nil
}

func decodeTemplate(raw json.RawMessage) (layout.Layout, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return layout.NewStack(), nil
	}
	if raw[0] == '"' {
		var src string
		if err := json.Unmarshal(raw, &src); err != nil {
			return layout.Layout{}, err
		}
		return dsl.ParseTextLayout(src)
	}
	var l layout.Layout
	if err := json.Unmarshal(raw, &l); err != nil {
		return layout.Layout{}, err
	}
	return l, nil
}
