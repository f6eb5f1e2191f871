package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/ByLCY/folio/layout"
	"github.com/ByLCY/folio/schema"
)

// Kind 是存储目录下的一类文档，值即子目录名。
type Kind string

const (
	DataSchemas   Kind = "data-schemas"
	LayoutSchemas Kind = "layout-schemas"
	ResumeLayouts Kind = "resume-layouts"
	Resumes       Kind = "resumes"
)

// Kinds 按加载顺序列出全部文档类型。
var Kinds = []Kind{DataSchemas, LayoutSchemas, ResumeLayouts, Resumes}

// ErrNotFound 表示存储中没有该名称的文档。
var ErrNotFound = errors.New("storage: document not found")

// Store 是本地文件存储，每类文档一个子目录，文件可以是 JSON、YAML 或 TOML。
// 一个文件可以包含单个对象，也可以是对象数组。
type Store struct {
	Root   string
	Logger *log.Logger
}

// Open 打开已存在的存储目录。
func Open(root string) (*Store, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("打开存储目录失败: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("存储路径 %s 不是目录", root)
	}
	return &Store{Root: root}, nil
}

// Init 创建存储目录及其子目录，已存在时不做修改。
func Init(root string) (*Store, error) {
	for _, k := range Kinds {
		if err := os.MkdirAll(filepath.Join(root, string(k)), 0o755); err != nil {
			return nil, fmt.Errorf("创建存储目录失败: %w", err)
		}
	}
	return &Store{Root: root}, nil
}

func (s *Store) logger() *log.Logger {
	if s.Logger == nil {
		return log.New(io.Discard)
	}
	return s.Logger
}

func (s *Store) dir(kind Kind) string { return filepath.Join(s.Root, string(kind)) }

// files 返回某类文档的全部文件，按文件名排序。
func (s *Store) files(kind Kind) ([]string, error) {
	entries, err := os.ReadDir(s.dir(kind))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !supported(e.Name()) {
			continue
		}
		out = append(out, filepath.Join(s.dir(kind), e.Name()))
	}
	sort.Strings(out)
	return out, nil
}

func supported(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range extensions {
		if e == ext {
			return true
		}
	}
	return false
}

func baseName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// List 返回某类文档的名称（文件名去掉扩展名），去重并排序。
func (s *Store) List(kind Kind) ([]string, error) {
	files, err := s.files(kind)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	var names []string
	for _, f := range files {
		name := baseName(f)
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names, nil
}

// find 返回名为 name 的文件，按扩展名优先级选择。
func (s *Store) find(kind Kind, name string) (string, error) {
	for _, ext := range extensions {
		path := filepath.Join(s.dir(kind), name+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%s/%s: %w", kind, name, ErrNotFound)
}

// LoadResume 读取简历数据。
func (s *Store) LoadResume(name string) (layout.Resume, error) {
	path, err := s.find(Resumes, name)
	if err != nil {
		return layout.Resume{}, err
	}
	return ReadResume(path)
}

// LoadPageLayout 读取页面版式，未设置名称时使用文件名。
func (s *Store) LoadPageLayout(name string) (layout.PageLayout, error) {
	path, err := s.find(ResumeLayouts, name)
	if err != nil {
		return layout.PageLayout{}, err
	}
	return ReadPageLayout(path)
}

// LoadLayoutSchemas 读取全部布局模板；同名模板以先读到的为准。
func (s *Store) LoadLayoutSchemas() ([]layout.LayoutSchema, error) {
	files, err := s.files(LayoutSchemas)
	if err != nil {
		return nil, err
	}
	var out []layout.LayoutSchema
	seen := map[string]string{}
	for _, f := range files {
		schemas, err := ReadLayoutSchemas(f)
		if err != nil {
			return nil, err
		}
		for _, ls := range schemas {
			if prev, dup := seen[ls.Name]; dup {
				s.logger().Warn("布局模板重名，忽略后者", "schema", ls.Name, "kept", prev, "ignored", f)
				continue
			}
			seen[ls.Name] = f
			out = append(out, ls)
		}
	}
	return out, nil
}

// LoadDataSchemas 读取全部数据模板；同名模板以先读到的为准。
func (s *Store) LoadDataSchemas() ([]schema.DataSchema, error) {
	files, err := s.files(DataSchemas)
	if err != nil {
		return nil, err
	}
	var out []schema.DataSchema
	seen := map[string]bool{}
	for _, f := range files {
		schemas, err := ReadDataSchemas(f)
		if err != nil {
			return nil, err
		}
		for _, ds := range schemas {
			if seen[ds.Name] {
				s.logger().Warn("数据模板重名，忽略后者", "schema", ds.Name, "ignored", f)
				continue
			}
			seen[ds.Name] = true
			out = append(out, ds)
		}
	}
	return out, nil
}

// LoadInput 读取一份简历及其引用的页面版式与全部模板。
// pageName 为空时使用简历中的 layout 字段。
func (s *Store) LoadInput(resumeName, pageName string) (layout.Input, error) {
	resume, err := s.LoadResume(resumeName)
	if err != nil {
		return layout.Input{}, err
	}
	if pageName == "" {
		pageName = resume.Layout
	}
	if pageName == "" {
		return layout.Input{}, fmt.Errorf("简历 %q 未指定页面版式", resumeName)
	}
	page, err := s.LoadPageLayout(pageName)
	if err != nil {
		return layout.Input{}, err
	}
	layouts, err := s.LoadLayoutSchemas()
	if err != nil {
		return layout.Input{}, err
	}
	datas, err := s.LoadDataSchemas()
	if err != nil {
		return layout.Input{}, err
	}
	s.logger().Debug("已读取简历", "resume", resumeName, "page", pageName,
		"layoutSchemas", len(layouts), "dataSchemas", len(datas))
	return layout.Input{Schemas: layouts, DataSchemas: datas, Resume: resume, Page: page}, nil
}

// SaveLayoutSchema 以 JSON 写入布局模板，文件名为模板名。
func (s *Store) SaveLayoutSchema(ls layout.LayoutSchema) error {
	if ls.Name == "" {
		return fmt.Errorf("布局模板缺少名称")
	}
	data, err := json.MarshalIndent(ls, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir(LayoutSchemas), 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.dir(LayoutSchemas), ls.Name+".json"), data, 0o644)
}

// ReadResume 从任意路径读取简历。
func ReadResume(path string) (layout.Resume, error) {
	data, err := readDocument(path)
	if err != nil {
		return layout.Resume{}, fmt.Errorf("读取简历 %s 失败: %w", path, err)
	}
	var r layout.Resume
	if err := json.Unmarshal(data, &r); err != nil {
		return layout.Resume{}, fmt.Errorf("解析简历 %s 失败: %w", path, err)
	}
	return r, nil
}

// ReadPageLayout 从任意路径读取页面版式。
func ReadPageLayout(path string) (layout.PageLayout, error) {
	data, err := readDocument(path)
	if err != nil {
		return layout.PageLayout{}, fmt.Errorf("读取页面版式 %s 失败: %w", path, err)
	}
	var p layout.PageLayout
	if err := json.Unmarshal(data, &p); err != nil {
		return layout.PageLayout{}, fmt.Errorf("解析页面版式 %s 失败: %w", path, err)
	}
	if p.Name == "" {
		p.Name = baseName(path)
	}
	return p, nil
}

// ReadLayoutSchemas 从任意路径读取一个或多个布局模板。
func ReadLayoutSchemas(path string) ([]layout.LayoutSchema, error) {
	data, err := readDocument(path)
	if err != nil {
		return nil, fmt.Errorf("读取布局模板 %s 失败: %w", path, err)
	}
	docs, err := decodeMany[layoutSchemaDoc](data)
	if err != nil {
		return nil, fmt.Errorf("解析布局模板 %s 失败: %w", path, err)
	}
	out := make([]layout.LayoutSchema, 0, len(docs))
	for _, d := range docs {
		ls, err := d.schema()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		out = append(out, ls)
	}
	return out, nil
}

// ReadDataSchemas 从任意路径读取一个或多个数据模板。
func ReadDataSchemas(path string) ([]schema.DataSchema, error) {
	data, err := readDocument(path)
	if err != nil {
		return nil, fmt.Errorf("读取数据模板 %s 失败: %w", path, err)
	}
	out, err := decodeMany[schema.DataSchema](data)
	if err != nil {
		return nil, fmt.Errorf("解析数据模板 %s 失败: %w", path, err)
	}
	return out, nil
}
