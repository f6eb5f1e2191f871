package layout

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DefaultFontName 是内置 Go 字体族，缺失字体时回退到它。
const (
	DefaultFontName = "Go"
	DefaultFontSize = 12.0
)

// FontWeight 字重。
type FontWeight string

const (
	WeightLight   FontWeight = "Light"
	WeightRegular FontWeight = "Regular"
	WeightMedium  FontWeight = "Medium"
	WeightBold    FontWeight = "Bold"
)

// FontStyle 字形倾斜。
type FontStyle string

const (
	StyleNormal FontStyle = "Normal"
	StyleItalic FontStyle = "Italic"
)

// FontSource 指明字体文件从何处加载。
type FontSource string

const (
	SourceSystem   FontSource = "System"
	SourceLocal    FontSource = "Local"
	SourceEmbedded FontSource = "Embedded"
)

// Font 引用一个可测量的字体，本身不持有字形数据。
// Size 以 pt 计。
type Font struct {
	Name   string     `json:"name"`
	Size   float64    `json:"size"`
	Weight FontWeight `json:"weight"`
	Style  FontStyle  `json:"style"`
	Source FontSource `json:"source"`
}

// DefaultFont 返回默认字体：Go Medium 12pt。
func DefaultFont() Font {
	return Font{
		Name:   DefaultFontName,
		Size:   DefaultFontSize,
		Weight: WeightMedium,
		Style:  StyleNormal,
		Source: SourceSystem,
	}
}

// withDefaults 为空字段填入默认值。
func (f Font) withDefaults() Font {
	d := DefaultFont()
	if f.Name == "" {
		f.Name = d.Name
	}
	if f.Size <= 0 {
		f.Size = d.Size
	}
	if f.Weight == "" {
		f.Weight = d.Weight
	}
	if f.Style == "" {
		f.Style = d.Style
	}
	if f.Source == "" {
		f.Source = d.Source
	}
	return f
}

// FullName 返回字体字典的键：族名-字重[Italic]，例如 "Go-Bold"、"Go-MediumItalic"。
func (f Font) FullName() string {
	f = f.withDefaults()
	name := f.Name + "-" + string(f.Weight)
	if f.Style == StyleItalic {
		name += "Italic"
	}
	return name
}

func (f Font) IsItalic() bool { return f.Style == StyleItalic }

// UnmarshalJSON 解析字体对象，缺失字段取默认值；"slope" 作为 "style" 的别名。
func (f *Font) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name   string  `json:"name"`
		Size   float64 `json:"size"`
		Weight string  `json:"weight"`
		Style  string  `json:"style"`
		Slope  string  `json:"slope"`
		Source string  `json:"source"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("无法解析字体: %w", err)
	}
	out := Font{Name: raw.Name, Size: raw.Size}
	var err error
	if out.Weight, err = parseFontWeight(raw.Weight); err != nil {
		return err
	}
	style := raw.Style
	if style == "" {
		style = raw.Slope
	}
	if out.Style, err = parseFontStyle(style); err != nil {
		return err
	}
	if out.Source, err = parseFontSource(raw.Source); err != nil {
		return err
	}
	*f = out.withDefaults()
	return nil
}

func parseFontWeight(v string) (FontWeight, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "":
		return "", nil
	case "light":
		return WeightLight, nil
	case "regular", "normal":
		return WeightRegular, nil
	case "medium":
		return WeightMedium, nil
	case "bold":
		return WeightBold, nil
	default:
		return "", fmt.Errorf("未知的字重 %q", v)
	}
}

func parseFontStyle(v string) (FontStyle, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "":
		return "", nil
	case "normal", "regular":
		return StyleNormal, nil
	case "italic", "oblique":
		return StyleItalic, nil
	default:
		return "", fmt.Errorf("未知的字形 %q", v)
	}
}

func parseFontSource(v string) (FontSource, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "":
		return "", nil
	case "system":
		return SourceSystem, nil
	case "local":
		return SourceLocal, nil
	case "embedded", "embed", "builtin":
		return SourceEmbedded, nil
	default:
		return "", fmt.Errorf("未知的字体来源 %q", v)
	}
}
