package layout

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ByLCY/folio/binding"
	"github.com/ByLCY/folio/schema"
)

// 该文件定义布局的输入（模板、简历数据、页面版式）与输出（页面、分组），供布局计算、渲染与调试 JSON 共用。

// Result 保存分页后的页面与文档信息。
type Result struct {
	Pages []Page       `json:"pages"`
	Meta  DocumentMeta `json:"meta"`
}

// DocumentMeta 写入 PDF 的文档信息。
type DocumentMeta struct {
	Title    string   `json:"title"`
	Subject  string   `json:"subject"`
	Keywords []string `json:"keywords"`
	Author   string   `json:"author"`
	Creator  string   `json:"creator"`
}

// Page 记录页面尺寸、边距与按分组排列的定位结果。
type Page struct {
	Number int          `json:"number"`
	Width  float64      `json:"width"`
	Height float64      `json:"height"`
	Margin Margin       `json:"margin"`
	Groups []ElementBox `json:"groups"`
}

// Placements 按顺序返回页面上的全部定位结果。
func (p Page) Placements() []Placed {
	var out []Placed
	for _, g := range p.Groups {
		out = append(out, g.Elements...)
	}
	return out
}

// ElementBox 是一个分组（分节头部或一个条目）的定位结果，分组边框可在调试模式下绘制。
type ElementBox struct {
	BoundingBox SpatialBox `json:"boundingBox"`
	Section     string     `json:"section"`
	Column      int        `json:"column"`
	Elements    []Placed   `json:"elements"`
	Tree        *Layout    `json:"tree,omitempty"`
}

// ColumnKind 区分单栏与双栏版式。
type ColumnKind uint8

const (
	SingleColumn ColumnKind = iota
	DoubleColumn
)

// ColumnType 描述分栏方式，VerticalMargin 是双栏之间的间距。
type ColumnType struct {
	Kind           ColumnKind
	VerticalMargin float64
}

// Count 返回栏数。
func (c ColumnType) Count() int {
	if c.Kind == DoubleColumn {
		return 2
	}
	return 1
}

// Gap 返回栏间距，单栏为 0。
func (c ColumnType) Gap() float64 {
	if c.Kind == DoubleColumn {
		return c.VerticalMargin
	}
	return 0
}

// UnmarshalJSON 接受 "SingleColumn"、"DoubleColumn" 与 {"DoubleColumn": {"vertical_margin": 5}}。
func (c *ColumnType) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		switch strings.ToLower(name) {
		case "", "singlecolumn", "single":
			*c = ColumnType{Kind: SingleColumn}
		case "doublecolumn", "double":
			*c = ColumnType{Kind: DoubleColumn}
		default:
			return fmt.Errorf("未知的分栏方式 %q", name)
		}
		return nil
	}
	var tagged map[string]struct {
		VerticalMargin float64 `json:"vertical_margin"`
	}
	if err := json.Unmarshal(data, &tagged); err != nil || len(tagged) != 1 {
		return fmt.Errorf("无法解析分栏方式: %s", string(data))
	}
	for k, v := range tagged {
		switch strings.ToLower(k) {
		case "doublecolumn", "double":
			if v.VerticalMargin < 0 {
				return fmt.Errorf("栏间距不能为负数: %g", v.VerticalMargin)
			}
			*c = ColumnType{Kind: DoubleColumn, VerticalMargin: v.VerticalMargin}
		case "singlecolumn", "single":
			*c = ColumnType{Kind: SingleColumn}
		default:
			return fmt.Errorf("未知的分栏方式 %q", k)
		}
	}
	return nil
}

func (c ColumnType) MarshalJSON() ([]byte, error) {
	if c.Kind == DoubleColumn {
		return json.Marshal(map[string]any{"DoubleColumn": map[string]float64{"vertical_margin": c.VerticalMargin}})
	}
	return json.Marshal("SingleColumn")
}

// PageLayout 是页面版式：尺寸、边距与分栏。Title/Author 可用 ${Field} 引用首个分节的头部字段。
type PageLayout struct {
	Name    string     `json:"name,omitempty"`
	Columns ColumnType `json:"column_type"`
	Margin  Margin     `json:"margin"`
	Width   float64    `json:"width"`
	Height  float64    `json:"height"`
	Title   string     `json:"title,omitempty"`
	Author  string     `json:"author,omitempty"`
}

// ContentWidth 返回左右边距之间的宽度。
func (p PageLayout) ContentWidth() float64 { return p.Width - p.Margin.Horizontal() }

// ColumnWidth 返回单栏宽度。
func (p PageLayout) ColumnWidth() float64 {
	n := float64(p.Columns.Count())
	return (p.ContentWidth() - p.Columns.Gap()*(n-1)) / n
}

// Validate 检查页面尺寸能容纳边距与分栏。
func (p PageLayout) Validate() error {
	if p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf("页面尺寸无效: %gx%g", p.Width, p.Height)
	}
	if p.ColumnWidth() <= 0 {
		return fmt.Errorf("页面宽度 %g 不足以容纳边距与分栏", p.Width)
	}
	if p.Height-p.Margin.Vertical() <= 0 {
		return fmt.Errorf("页面高度 %g 不足以容纳上下边距", p.Height)
	}
	return nil
}

// LayoutSchema 为一类分节提供头部模板与条目模板。
type LayoutSchema struct {
	Name   string `json:"schema-name"`
	Header Layout `json:"header-layout-schema"`
	Item   Layout `json:"item-layout-schema"`
}

// Fonts 返回两个模板引用的全部字体。
func (s LayoutSchema) Fonts() []Font {
	return NewStack(s.Header, s.Item).Fonts()
}

// Section 是简历中的一个分节：一条头部记录与若干条目记录。
type Section struct {
	Name         string           `json:"section-name"`
	DataSchema   string           `json:"data-schema"`
	LayoutSchema string           `json:"layout-schema"`
	Header       binding.Record   `json:"data"`
	Items        []binding.Record `json:"items"`
}

// Resume 是一份简历：引用的页面版式名与有序的分节。
type Resume struct {
	Layout   string    `json:"layout"`
	Sections []Section `json:"sections"`
}

// Input 汇总一次排版所需的全部输入。
type Input struct {
	Schemas     []LayoutSchema
	DataSchemas []schema.DataSchema
	Resume      Resume
	Page        PageLayout
}
