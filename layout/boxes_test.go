package layout

import (
	"errors"
	"testing"

	"github.com/ByLCY/folio/binding"
)

func computeAt(t *testing.T, tree Layout, width float64) (float64, []Placed) {
	t.Helper()
	normalized, err := tree.Normalize(width, stubTypesetter{})
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	depth, boxes, err := normalized.ComputeBoxes(0, stubTypesetter{})
	if err != nil {
		t.Fatalf("compute boxes failed: %v", err)
	}
	return depth, boxes
}

func TestComputeBoxesSingleRecord(t *testing.T) {
	tmpl := NewRef("School").WithWidth(Fixed(100))
	inst := tmpl.Instantiate(binding.Record{"School": binding.String("MIT")})
	if inst.Kind != KindText || inst.Element.Item != "MIT" {
		t.Fatalf("实例化结果错误: %+v", inst)
	}
	depth, boxes := computeAt(t, inst, 200)
	if len(boxes) != 1 {
		t.Fatalf("期望 1 个矩形，实际 %d", len(boxes))
	}
	want := NewSpatialBox(Point{}, Point{X: 6, Y: 6})
	if boxes[0].Box != want {
		t.Fatalf("矩形 %+v，期望 %+v", boxes[0].Box, want)
	}
	if !eq(depth, 6) {
		t.Fatalf("深度应为行高 6，实际 %g", depth)
	}
}

func TestComputeBoxesMissingFieldCollapses(t *testing.T) {
	inst := NewRef("Missing").Instantiate(binding.Record{"Other": binding.String("x")})
	if inst.Kind != KindStack || len(inst.Children()) != 0 || !eq(inst.Width().Value, 0) {
		t.Fatalf("缺失字段应变为空 Stack: %+v", inst)
	}
	depth, boxes := computeAt(t, inst, 100)
	if len(boxes) != 0 || !eq(depth, 0) {
		t.Fatalf("空 Stack 不应产生矩形或高度: depth=%g boxes=%+v", depth, boxes)
	}
}

func TestComputeBoxesJustifiedRow(t *testing.T) {
	row := NewFlexRow(NewText("ab"), NewText("ab"), NewText("ab")).
		WithWidth(Fixed(100)).
		WithAlignment(AlignJustified)
	_, boxes := computeAt(t, row, 100)
	if len(boxes) != 3 {
		t.Fatalf("期望 3 个矩形，实际 %d", len(boxes))
	}
	// 剩余 100-12=88，两个间隔各 44。
	for i, want := range []float64{0, 48, 96} {
		if !eq(boxes[i].Box.TopLeft.X, want) {
			t.Fatalf("第 %d 个矩形 x=%g，期望 %g", i, boxes[i].Box.TopLeft.X, want)
		}
	}
}

func TestComputeBoxesJustifiedSingleChildIsLeft(t *testing.T) {
	row := NewFlexRow(NewText("ab")).WithWidth(Fixed(100)).WithAlignment(AlignJustified)
	_, boxes := computeAt(t, row, 100)
	if !eq(boxes[0].Box.TopLeft.X, 0) {
		t.Fatalf("单个子节点的 Justified 应按左对齐，实际 x=%g", boxes[0].Box.TopLeft.X)
	}
}

func TestComputeBoxesRowAlignment(t *testing.T) {
	cases := []struct {
		align Alignment
		want  float64
	}{
		{AlignLeft, 0},
		{AlignCenter, 44},
		{AlignRight, 88},
	}
	for _, tc := range cases {
		row := NewFlexRow(NewText("ab"), NewText("ab"), NewText("ab")).
			WithWidth(Fixed(100)).
			WithAlignment(tc.align)
		_, boxes := computeAt(t, row, 100)
		if !eq(boxes[0].Box.TopLeft.X, tc.want) {
			t.Errorf("%s: 起始 x=%g，期望 %g", tc.align, boxes[0].Box.TopLeft.X, tc.want)
		}
		if !eq(boxes[1].Box.TopLeft.X-boxes[0].Box.TopLeft.X, 4) {
			t.Errorf("%s: 非 Justified 行不应有间隔", tc.align)
		}
	}
}

func TestComputeBoxesStackAndTextAlignment(t *testing.T) {
	stack := NewStack(NewText("ab")).WithWidth(Fixed(100)).WithAlignment(AlignCenter)
	_, boxes := computeAt(t, stack, 100)
	if !eq(boxes[0].Box.TopLeft.X, 48) {
		t.Fatalf("居中 Stack 中的子节点 x=%g，期望 48", boxes[0].Box.TopLeft.X)
	}

	text := NewText("ab").WithWidth(Fixed(50)).WithAlignment(AlignRight)
	_, boxes = computeAt(t, text, 100)
	if !eq(boxes[0].Box.TopLeft.X, 46) || !eq(boxes[0].Box.Width(), 4) {
		t.Fatalf("右对齐文本矩形错误: %+v", boxes[0].Box)
	}
}

func TestComputeBoxesMargins(t *testing.T) {
	stack := NewStack(NewText("ab")).
		WithWidth(Fixed(50)).
		WithMargin(Margin{Top: 2, Bottom: 3, Left: 4})
	depth, boxes := computeAt(t, stack, 100)
	if got := boxes[0].Box.TopLeft; !eq(got.X, 4) || !eq(got.Y, 2) {
		t.Fatalf("留白后的起点应为 (4,2)，实际 %+v", got)
	}
	if !eq(depth, 11) {
		t.Fatalf("深度应为 2+6+3=11，实际 %g", depth)
	}
}

func TestComputeBoxesRowDepthIsTallestChild(t *testing.T) {
	row := NewFlexRow(NewText("a"), NewStack(NewText("b"), NewText("c"))).WithWidth(Fixed(100))
	depth, boxes := computeAt(t, row, 100)
	if len(boxes) != 3 || !eq(depth, 12) {
		t.Fatalf("行深度应取最高子节点 12，实际 %g (%d 个矩形)", depth, len(boxes))
	}
	if !eq(boxes[2].Box.TopLeft.Y, 6) {
		t.Fatalf("Stack 第二行应在 y=6，实际 %g", boxes[2].Box.TopLeft.Y)
	}
}

func TestComputeBoxesOffsetAndOrigin(t *testing.T) {
	tree, err := NewText("ab").Normalize(100, stubTypesetter{})
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	depth, boxes, err := tree.ComputeBoxes(10, stubTypesetter{})
	if err != nil || !eq(depth, 16) || !eq(boxes[0].Box.TopLeft.Y, 10) {
		t.Fatalf("偏移 10 后深度应为 16: depth=%g err=%v", depth, err)
	}
	_, boxes, err = tree.ComputeBoxesAt(Point{X: 3, Y: 1}, stubTypesetter{})
	if err != nil || boxes[0].Box.TopLeft != (Point{X: 3, Y: 1}) {
		t.Fatalf("原点错误: %+v err=%v", boxes, err)
	}
}

func TestComputeBoxesRejectsUnnormalizedTree(t *testing.T) {
	_, _, err := NewStack(NewRef("Name")).ComputeBoxes(0, stubTypesetter{})
	if !errors.Is(err, ErrUnboundedGeometry) {
		t.Fatalf("期望 ErrUnboundedGeometry，实际 %v", err)
	}
	_, _, err = NewText("fill width").ComputeBoxes(0, stubTypesetter{})
	if !errors.Is(err, ErrUnboundedGeometry) {
		t.Fatalf("Fill 宽度未归一化时应报错，实际 %v", err)
	}
}

func TestInstantiatePropagatesLinks(t *testing.T) {
	tmpl := NewFlexRow(NewRef("Site"), NewText("static"))
	inst := tmpl.Instantiate(binding.Record{"Site": binding.URL("home", "https://example.com")})
	site := inst.Children()[0]
	if site.Kind != KindText || site.Element.Item != "home" || site.Element.Link != "https://example.com" {
		t.Fatalf("链接字段实例化错误: %+v", site.Element)
	}
	if inst.Children()[1].Element.Item != "static" {
		t.Fatalf("Text 叶子应原样保留")
	}
	if tmpl.Children()[0].Kind != KindRef {
		t.Fatalf("Instantiate 不应修改模板")
	}
	if !inst.IsInstantiated() || tmpl.IsInstantiated() {
		t.Fatalf("IsInstantiated 判断错误")
	}
}

func TestLayoutFontsAreDeduplicated(t *testing.T) {
	bold := DefaultFont()
	bold.Weight = WeightBold
	tree := NewStack(NewText("a"), NewRef("b").WithFont(bold), NewText("c"))
	fonts := tree.Fonts()
	if len(fonts) != 2 || fonts[0] != DefaultFont() || fonts[1] != bold {
		t.Fatalf("字体列表错误: %+v", fonts)
	}
}
