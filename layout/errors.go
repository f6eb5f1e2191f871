package layout

import (
	"errors"
	"fmt"
)

var (
	// ErrSchemaNotFound 表示分节引用了不存在的布局或数据模板。
	ErrSchemaNotFound = errors.New("layout: schema not found")
	// ErrFrozenRowOverflow 表示 FrozenRow 的子节点总宽超过了它的宽度。
	ErrFrozenRowOverflow = errors.New("layout: frozen row overflow")
	// ErrUnboundedGeometry 表示在未实例化或未归一化的树上计算几何。
	ErrUnboundedGeometry = errors.New("layout: unbounded geometry")
	// ErrMissingFontFace 表示字体字典中找不到对应字体，调用方通常回退到默认字体。
	ErrMissingFontFace = errors.New("layout: missing font face")
	// ErrPageOverflow 表示内容高度超出页面且无法分页。
	ErrPageOverflow = errors.New("layout: page overflow")
)

// SchemaNotFoundError 记录缺失的模板名与引用它的分节。
type SchemaNotFoundError struct {
	Kind    string // "layout" 或 "data"
	Name    string
	Section string
}

func (e *SchemaNotFoundError) Error() string {
	return fmt.Sprintf("分节 %q 引用的%s模板 %q 不存在", e.Section, schemaKindLabel(e.Kind), e.Name)
}

func (e *SchemaNotFoundError) Unwrap() error { return ErrSchemaNotFound }

func schemaKindLabel(kind string) string {
	if kind == "data" {
		return "数据"
	}
	return "布局"
}

// FrozenRowOverflowError 记录溢出的 FrozenRow 的宽度与子节点总宽。
type FrozenRowOverflowError struct {
	Width    float64
	Required float64
}

func (e *FrozenRowOverflowError) Error() string {
	return fmt.Sprintf("FrozenRow 子节点总宽 %.2f 超过可用宽度 %.2f", e.Required, e.Width)
}

func (e *FrozenRowOverflowError) Unwrap() error { return ErrFrozenRowOverflow }

// PageOverflowError 记录无法放入页面的分组。
type PageOverflowError struct {
	Section string
	Height  float64
	Limit   float64
}

func (e *PageOverflowError) Error() string {
	return fmt.Sprintf("分节 %q 的内容高度 %.2f 超出可用高度 %.2f", e.Section, e.Height, e.Limit)
}

func (e *PageOverflowError) Unwrap() error { return ErrPageOverflow }

func unbounded(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrUnboundedGeometry}, args...)...)
}
