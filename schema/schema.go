package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/ByLCY/folio/binding"
)

var (
	// ErrUnknownField 表示记录中出现了模板未声明的字段。
	ErrUnknownField = errors.New("schema: unknown field")
	// ErrTypeMismatch 表示字段内容与声明的类型不符。
	ErrTypeMismatch = errors.New("schema: type mismatch")
)

// Part 区分分节头部记录与条目记录。
type Part uint8

const (
	PartHeader Part = iota
	PartItem
)

func (p Part) String() string {
	if p == PartHeader {
		return "header"
	}
	return "item"
}

// Field 是一个具名字段及其类型。
type Field struct {
	Name string
	Type Type
}

// DataSchema 描述一类分节的数据：头部字段与条目字段。
type DataSchema struct {
	Name         string  `json:"schema-name"`
	HeaderFields []Field `json:"header-schema"`
	ItemFields   []Field `json:"item-schema"`
}

// UnmarshalJSON 兼容旧格式的 "element-schema"（视为条目字段）。
func (s *DataSchema) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name    string  `json:"schema-name"`
		Header  []Field `json:"header-schema"`
		Item    []Field `json:"item-schema"`
		Element []Field `json:"element-schema"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Name == "" {
		return fmt.Errorf("schema: 数据模板缺少 schema-name")
	}
	s.Name = raw.Name
	s.HeaderFields = raw.Header
	s.ItemFields = append(raw.Item, raw.Element...)
	return nil
}

// Fields 返回指定部分的字段。
func (s DataSchema) Fields(part Part) []Field {
	if part == PartHeader {
		return s.HeaderFields
	}
	return s.ItemFields
}

// Field 按名称查找字段。
func (s DataSchema) Field(part Part, name string) (Field, bool) {
	for _, f := range s.Fields(part) {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Validate 检查记录：未声明的字段与类型不符的字段各产生一个错误。
// 声明了但缺失的字段不算错误。错误按字段名排序，便于稳定输出。
func (s DataSchema) Validate(rec binding.Record, part Part) []error {
	names := make([]string, 0, len(rec))
	for name := range rec {
		names = append(names, name)
	}
	sort.Strings(names)

	var errs []error
	for _, name := range names {
		content := rec[name]
		f, ok := s.Field(part, name)
		if !ok {
			errs = append(errs, fmt.Errorf("%w: %s.%s 字段 %q", ErrUnknownField, s.Name, part, name))
			continue
		}
		if !f.Type.Accepts(content) {
			errs = append(errs, fmt.Errorf("%w: %s.%s 字段 %q 期望 %s", ErrTypeMismatch, s.Name, part, name, f.Type))
		}
	}
	return errs
}

// UnmarshalJSON 解析 {"name": ..., "type": ...}，type 可以是表达式字符串或类型数组（视为联合）。
func (f *Field) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name string          `json:"name"`
		Type json.RawMessage `json:"type"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Name == "" {
		return fmt.Errorf("schema: 字段缺少 name")
	}
	t, err := decodeType(raw.Type)
	if err != nil {
		return fmt.Errorf("schema: 字段 %q: %w", raw.Name, err)
	}
	f.Name = raw.Name
	f.Type = t
	return nil
}

// MarshalJSON 以表达式字符串输出类型。
func (f Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{"name": f.Name, "type": f.Type.String()})
}

func decodeType(data json.RawMessage) (Type, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return Type{Kind: TypeScalar, Name: "String"}, nil
	}
	var expr string
	if err := json.Unmarshal(data, &expr); err == nil {
		return ParseType(expr)
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return Type{}, fmt.Errorf("无法解析类型: %s", string(data))
	}
	if len(items) == 0 {
		return Type{}, fmt.Errorf("类型数组为空")
	}
	variants := make([]Type, 0, len(items))
	for _, item := range items {
		t, err := decodeType(item)
		if err != nil {
			return Type{}, err
		}
		if t.Kind == TypeUnion {
			variants = append(variants, t.Variants...)
			continue
		}
		variants = append(variants, t)
	}
	return unionOf(variants), nil
}
