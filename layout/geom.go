package layout

import "math"

// This file defines the geometry primitives shared by box computation and renderers.
// Coordinates grow to the right (x) and downwards (y), in layout units.

// Point is an immutable 2D coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Point) Translate(dx, dy float64) Point { return Point{X: p.X + dx, Y: p.Y + dy} }
func (p Point) Add(o Point) Point             { return Point{X: p.X + o.X, Y: p.Y + o.Y} }
func (p Point) WithX(x float64) Point         { return Point{X: x, Y: p.Y} }
func (p Point) WithY(y float64) Point         { return Point{X: p.X, Y: y} }

// SpatialBox is an axis-aligned rectangle. TopLeft is never right of or below BottomRight.
type SpatialBox struct {
	TopLeft     Point `json:"topLeft"`
	BottomRight Point `json:"bottomRight"`
}

// NewSpatialBox builds a box from two corners, swapping coordinates when needed.
func NewSpatialBox(a, b Point) SpatialBox {
	return SpatialBox{
		TopLeft:     Point{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y)},
		BottomRight: Point{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y)},
	}
}

// BoxAt builds a box from its top-left corner and size.
func BoxAt(p Point, width, height float64) SpatialBox {
	return NewSpatialBox(p, p.Translate(width, height))
}

func (b SpatialBox) Width() float64  { return b.BottomRight.X - b.TopLeft.X }
func (b SpatialBox) Height() float64 { return b.BottomRight.Y - b.TopLeft.Y }

func (b SpatialBox) Translate(dx, dy float64) SpatialBox {
	return SpatialBox{TopLeft: b.TopLeft.Translate(dx, dy), BottomRight: b.BottomRight.Translate(dx, dy)}
}

// Contains reports whether p lies inside the box, borders included.
func (b SpatialBox) Contains(p Point) bool {
	return p.X >= b.TopLeft.X && p.X <= b.BottomRight.X && p.Y >= b.TopLeft.Y && p.Y <= b.BottomRight.Y
}

// Union returns the smallest box covering both boxes.
func (b SpatialBox) Union(o SpatialBox) SpatialBox {
	return SpatialBox{
		TopLeft:     Point{X: math.Min(b.TopLeft.X, o.TopLeft.X), Y: math.Min(b.TopLeft.Y, o.TopLeft.Y)},
		BottomRight: Point{X: math.Max(b.BottomRight.X, o.BottomRight.X), Y: math.Max(b.BottomRight.Y, o.BottomRight.Y)},
	}
}

// InnerBox shrinks the box by one unit on every side. Boxes too small to shrink
// collapse onto their centre line.
func (b SpatialBox) InnerBox() SpatialBox {
	tl := b.TopLeft.Translate(1, 1)
	br := b.BottomRight.Translate(-1, -1)
	if tl.X > br.X {
		mid := (b.TopLeft.X + b.BottomRight.X) / 2
		tl.X, br.X = mid, mid
	}
	if tl.Y > br.Y {
		mid := (b.TopLeft.Y + b.BottomRight.Y) / 2
		tl.Y, br.Y = mid, mid
	}
	return SpatialBox{TopLeft: tl, BottomRight: br}
}

// FramePoints returns the integer lattice points on the border of the box, row by row.
// Corners are included once. Used by character-grid renderers to draw frames.
func (b SpatialBox) FramePoints() []Point {
	x0, y0 := math.Floor(b.TopLeft.X), math.Floor(b.TopLeft.Y)
	x1, y1 := math.Floor(b.BottomRight.X), math.Floor(b.BottomRight.Y)
	var pts []Point
	for y := y0; y <= y1; y++ {
		if y == y0 || y == y1 {
			for x := x0; x <= x1; x++ {
				pts = append(pts, Point{X: x, Y: y})
			}
			continue
		}
		pts = append(pts, Point{X: x0, Y: y})
		if x1 != x0 {
			pts = append(pts, Point{X: x1, Y: y})
		}
	}
	return pts
}
