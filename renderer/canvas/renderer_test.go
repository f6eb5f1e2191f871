package canvasrenderer

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/ByLCY/folio/binding"
	"github.com/ByLCY/folio/fonts"
	"github.com/ByLCY/folio/layout"
)

func newTestRenderer(t *testing.T, opts Options) *Renderer {
	t.Helper()
	dict, err := fonts.Load(nil, fonts.Options{})
	if err != nil {
		t.Fatalf("load fonts: %v", err)
	}
	opts.Fonts = dict
	return NewRendererWithOptions(opts)
}

// buildResume 以渲染器作为排版后端生成两页的布局结果。
func buildResume(t *testing.T, r *Renderer) *layout.Result {
	t.Helper()
	item := layout.NewFlexRow(layout.NewRef("Role"), layout.NewRef("Site")).WithAlignment(layout.AlignJustified)
	var items []binding.Record
	for i := 0; i < 40; i++ {
		items = append(items, binding.Record{
			"Role": binding.String("Engineer"),
			"Site": binding.URL("example.com", "https://example.com"),
		})
	}
	res, err := layout.Build(layout.Input{
		Schemas: []layout.LayoutSchema{{Name: "Jobs", Header: layout.NewRef("Title"), Item: item}},
		Resume: layout.Resume{Sections: []layout.Section{{
			Name:         "Work",
			LayoutSchema: "Jobs",
			Header:       binding.Record{"Title": binding.String("Work")},
			Items:        items,
		}}},
		Page: layout.PageLayout{
			Width:  210,
			Height: 100,
			Margin: layout.Margin{Top: 10, Bottom: 10, Left: 10, Right: 10},
			Title:  "${Title}",
		},
	}, layout.BuildOptions{Typesetter: r})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if len(res.Pages) < 2 {
		t.Fatalf("expected the list to span pages, got %d", len(res.Pages))
	}
	return res
}

func TestRenderPDF(t *testing.T) {
	r := newTestRenderer(t, Options{DebugBorders: true})
	res := buildResume(t, r)
	data, err := r.Render(res)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("output is not a PDF: %q", data[:min(len(data), 8)])
	}
}

func TestRenderPNGPerPage(t *testing.T) {
	r := newTestRenderer(t, Options{DPI: 72})
	res := buildResume(t, r)
	pages, err := r.RenderPages(res)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if len(pages) != len(res.Pages) {
		t.Fatalf("expected %d images, got %d", len(res.Pages), len(pages))
	}
	img, err := png.Decode(bytes.NewReader(pages[0]))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	// 210mm 在 72 DPI 下约 595 像素。
	if w := img.Bounds().Dx(); w < 590 || w > 600 {
		t.Fatalf("unexpected image width %d", w)
	}
}

func TestRenderRejectsEmptyResult(t *testing.T) {
	r := newTestRenderer(t, Options{})
	if _, err := r.Render(nil); err == nil {
		t.Fatalf("expected error for nil result")
	}
	if _, err := r.RenderPages(&layout.Result{}); err == nil {
		t.Fatalf("expected error for result without pages")
	}
	if _, err := NewRenderer(nil).Render(&layout.Result{Pages: []layout.Page{{Width: 10, Height: 10}}}); err == nil {
		t.Fatalf("expected error without font dictionary")
	}
}

func TestRendererMeasuresLikeDictionary(t *testing.T) {
	r := newTestRenderer(t, Options{})
	f := layout.DefaultFont()
	if r.TextWidth("Hello", f) != r.fonts.TextWidth("Hello", f) || r.LineHeight(f) <= 0 {
		t.Fatalf("renderer should delegate measurement to the font dictionary")
	}
}
