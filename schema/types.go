package schema

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/ByLCY/folio/binding"
)

var (
	typeLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
		{Name: "Pipe", Pattern: `\|`},
	})

	typeParser = participle.MustBuild[typeExpr](
		participle.Lexer(typeLexer),
		participle.Elide("Whitespace"),
	)
)

// typeExpr 是类型表达式的语法树：以 | 分隔的若干类型名。
type typeExpr struct {
	Variants []*typeAtom `parser:"@@ ( Pipe @@ )*"`
}

type typeAtom struct {
	Name string `parser:"@Ident"`
}

// TypeKind 区分标量、列表与联合类型。
type TypeKind uint8

const (
	TypeScalar TypeKind = iota
	TypeList
	TypeUnion
)

// Type 是字段的类型：String、Date、Url 等标量，ListX 列表，或 A | B 联合。
type Type struct {
	Kind     TypeKind
	Name     string // 标量类型名
	Elem     *Type  // 列表元素类型
	Variants []Type // 联合的成员
}

// ParseType 解析类型表达式，例如 "String"、"Date | String"、"ListString"。
func ParseType(expr string) (Type, error) {
	ast, err := typeParser.ParseString("", expr)
	if err != nil {
		return Type{}, fmt.Errorf("schema: 无法解析类型 %q: %w", expr, err)
	}
	variants := make([]Type, 0, len(ast.Variants))
	for _, v := range ast.Variants {
		variants = append(variants, namedType(v.Name))
	}
	return unionOf(variants), nil
}

// namedType 展开 List 前缀：ListString → List(String)，可以嵌套。
func namedType(name string) Type {
	if strings.HasPrefix(name, "List") && len(name) > len("List") {
		elem := namedType(strings.TrimPrefix(name, "List"))
		return Type{Kind: TypeList, Elem: &elem}
	}
	return Type{Kind: TypeScalar, Name: name}
}

func unionOf(variants []Type) Type {
	if len(variants) == 1 {
		return variants[0]
	}
	return Type{Kind: TypeUnion, Variants: variants}
}

func (t Type) String() string {
	switch t.Kind {
	case TypeList:
		if t.Elem == nil {
			return "List"
		}
		return "List" + t.Elem.String()
	case TypeUnion:
		parts := make([]string, len(t.Variants))
		for i, v := range t.Variants {
			parts[i] = v.String()
		}
		return strings.Join(parts, " | ")
	default:
		return t.Name
	}
}

// Accepts 报告内容是否符合类型。缺失的内容总是被接受，字段均为可选。
func (t Type) Accepts(c binding.ItemContent) bool {
	if c.IsAbsent() {
		return true
	}
	switch t.Kind {
	case TypeUnion:
		for _, v := range t.Variants {
			if v.Accepts(c) {
				return true
			}
		}
		return false
	case TypeList:
		return c.Kind == binding.ContentList || c.Kind == binding.ContentString
	}
	switch strings.ToLower(t.Name) {
	case "url", "link":
		return c.Kind == binding.ContentURL || c.Kind == binding.ContentString
	case "string", "date", "text", "number":
		return c.Kind == binding.ContentString
	default:
		return c.Kind != binding.ContentList
	}
}
