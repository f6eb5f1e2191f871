package fonts

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/flopp/go-findfont"
	"github.com/tdewolff/canvas"

	"github.com/ByLCY/folio/layout"
)

// Options 配置字体加载。
type Options struct {
	// Dir 是本地字体目录，按 <Dir>/<Name>/static/<FullName>.ttf 或 <Dir>/<FullName>.ttf 查找。
	Dir    string
	Logger *log.Logger
}

// Dictionary 以字体全名为键保存已加载的字体，加载完成后只读，可在多个 goroutine 间共享。
// 它实现 layout.Typesetter，宽度与高度的单位为 mm，字号为 pt。
type Dictionary struct {
	entries  map[string]*entry
	fallback *entry
	missing  []string
}

var _ layout.Typesetter = (*Dictionary)(nil)

type entry struct {
	family *canvas.FontFamily
	source layout.FontSource
	path   string
}

// Collect 按出现顺序收集布局模板引用的字体，默认字体总是排在第一位。
func Collect(schemas []layout.LayoutSchema) []layout.Font {
	seen := map[string]bool{}
	out := []layout.Font{layout.DefaultFont()}
	seen[layout.DefaultFont().FullName()] = true
	for _, s := range schemas {
		for _, f := range s.Fonts() {
			if seen[f.FullName()] {
				continue
			}
			seen[f.FullName()] = true
			out = append(out, f)
		}
	}
	return out
}

// Load 加载给定字体。找不到的字体记录一条警告并回退到内置的默认字体；
// 只有内置字体本身无法解析时才返回错误。
func Load(fonts []layout.Font, opts Options) (*Dictionary, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	fb, err := embeddedEntry(fallbackName)
	if err != nil {
		return nil, fmt.Errorf("加载默认字体失败: %w", err)
	}
	d := &Dictionary{entries: map[string]*entry{fallbackName: fb}, fallback: fb}

	for _, f := range fonts {
		name := f.FullName()
		if _, ok := d.entries[name]; ok {
			continue
		}
		e, err := loadEntry(f, opts.Dir)
		if err != nil {
			logger.Warn("找不到字体，使用默认字体", "font", name, "fallback", fallbackName, "err", err)
			d.missing = append(d.missing, name)
			continue
		}
		logger.Debug("已加载字体", "font", name, "source", e.source, "path", e.path)
		d.entries[name] = e
	}
	sort.Strings(d.missing)
	return d, nil
}

// loadEntry 先尝试字体声明的来源，再依次尝试其余来源；Go 字体族总是优先使用内置字体。
func loadEntry(f layout.Font, dir string) (*entry, error) {
	name := f.FullName()
	first := f.Source
	if f.Name == layout.DefaultFontName {
		first = layout.SourceEmbedded
	}
	order := []layout.FontSource{first}
	for _, s := range []layout.FontSource{layout.SourceEmbedded, layout.SourceLocal, layout.SourceSystem} {
		if s != first {
			order = append(order, s)
		}
	}
	for _, src := range order {
		switch src {
		case layout.SourceEmbedded:
			if e, err := embeddedEntry(name); err == nil {
				return e, nil
			}
		case layout.SourceLocal:
			if dir == "" {
				continue
			}
			for _, path := range localCandidates(dir, f) {
				if e, err := fileEntry(name, path, layout.SourceLocal); err == nil {
					return e, nil
				}
			}
		case layout.SourceSystem:
			path, err := findfont.Find(name + ".ttf")
			if err != nil {
				continue
			}
			if e, err := fileEntry(name, path, layout.SourceSystem); err == nil {
				return e, nil
			}
		}
	}
	return nil, fmt.Errorf("%s: %w", name, layout.ErrMissingFontFace)
}

func localCandidates(dir string, f layout.Font) []string {
	name := f.FullName()
	return []string{
		filepath.Join(dir, f.Name, "static", name+".ttf"),
		filepath.Join(dir, name+".ttf"),
		filepath.Join(dir, name+".otf"),
	}
}

func embeddedEntry(name string) (*entry, error) {
	data, err := ReadEmbedded(name)
	if err != nil {
		return nil, err
	}
	return newEntry(name, data, layout.SourceEmbedded, "embed:"+name)
}

func fileEntry(name, path string, src layout.FontSource) (*entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return newEntry(name, data, src, path)
}

// newEntry 每个全名使用独立的字体族，字形以 Regular 样式载入。
func newEntry(name string, data []byte, src layout.FontSource, path string) (*entry, error) {
	family := canvas.NewFontFamily(name)
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, fmt.Errorf("解析字体 %s 失败: %w", path, err)
	}
	return &entry{family: family, source: src, path: path}, nil
}

func (d *Dictionary) lookup(f layout.Font) *entry {
	if e, ok := d.entries[f.FullName()]; ok {
		return e
	}
	return d.fallback
}

// Has 报告字体是否已加载（不含回退）。
func (d *Dictionary) Has(f layout.Font) bool {
	_, ok := d.entries[f.FullName()]
	return ok
}

// Source 返回字体实际的加载来源；未加载的字体返回默认字体的来源。
func (d *Dictionary) Source(f layout.Font) layout.FontSource { return d.lookup(f).source }

// Path 返回字体文件路径，内置字体为 "embed:<FullName>"。
func (d *Dictionary) Path(f layout.Font) string { return d.lookup(f).path }

// Missing 返回加载时找不到的字体全名。
func (d *Dictionary) Missing() []string { return append([]string(nil), d.missing...) }

// Names 返回已加载字体的全名，按字母排序。
func (d *Dictionary) Names() []string {
	out := make([]string, 0, len(d.entries))
	for name := range d.entries {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Face 返回指定颜色的字体面，字体未加载时使用默认字体。
func (d *Dictionary) Face(f layout.Font, col color.Color) *canvas.FontFace {
	size := f.Size
	if size <= 0 {
		size = layout.DefaultFontSize
	}
	return d.lookup(f).family.Face(size, col, canvas.FontRegular, canvas.FontNormal)
}

// TextWidth 返回文本宽度（mm）。
func (d *Dictionary) TextWidth(text string, f layout.Font) float64 {
	if text == "" {
		return 0
	}
	return d.Face(f, canvas.Black).TextWidth(text)
}

// LineHeight 返回字体高度：上升部与下降部之和（mm）。
func (d *Dictionary) LineHeight(f layout.Font) float64 {
	m := d.Face(f, canvas.Black).Metrics()
	return m.Ascent + math.Abs(m.Descent)
}

// Ascent 返回基线到行顶的距离（mm），渲染器据此放置基线。
func (d *Dictionary) Ascent(f layout.Font) float64 {
	return d.Face(f, canvas.Black).Metrics().Ascent
}
