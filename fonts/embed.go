package fonts

import (
	"fmt"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomediumitalic"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/ByLCY/folio/layout"
)

// 内置 Go 字体族没有 Light 字重，Light 使用 Regular 的字形。
var embedded = map[string][]byte{
	"Go-Light":         goregular.TTF,
	"Go-LightItalic":   goitalic.TTF,
	"Go-Regular":       goregular.TTF,
	"Go-RegularItalic": goitalic.TTF,
	"Go-Medium":        gomedium.TTF,
	"Go-MediumItalic":  gomediumitalic.TTF,
	"Go-Bold":          gobold.TTF,
	"Go-BoldItalic":    gobolditalic.TTF,
}

// ReadEmbedded 返回内置字体的 TTF 数据，name 可写为 "embed:Go-Bold" 或直接 "Go-Bold"。
func ReadEmbedded(name string) ([]byte, error) {
	name = strings.TrimSuffix(strings.TrimPrefix(name, "embed:"), ".ttf")
	data, ok := embedded[name]
	if !ok {
		return nil, fmt.Errorf("读取内置字体 %s 失败: %w", name, layout.ErrMissingFontFace)
	}
	return data, nil
}

// fallbackName 是找不到字体时使用的内置字体。
var fallbackName = layout.DefaultFont().FullName()
