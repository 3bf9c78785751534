// Package geometry holds the pure coordinate math of the editor: logical
// rectangles, pointer mapping between the displayed canvas and logical space,
// and fitting an image into the editing area.
package geometry

import "math"

// MaxDisplayWidth and MaxDisplayHeight bound the logical canvas.
const (
	MaxDisplayWidth  = 600
	MaxDisplayHeight = 400
)

// Point is a position in logical (or display) pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Rect is an axis-aligned box, origin top-left.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Right 返回右边界。
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom 返回下边界。
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Center returns the center of r.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Contains reports whether p lies inside r. Edges are inclusive.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.Right() && p.Y >= r.Y && p.Y <= r.Bottom()
}

// Size is an integer pixel size.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Empty reports whether either dimension is zero or negative.
func (s Size) Empty() bool { return s.Width <= 0 || s.Height <= 0 }

// Center returns the center point of a canvas of size s.
func (s Size) Center() Point {
	return Point{X: float64(s.Width) / 2, Y: float64(s.Height) / 2}
}

// FitWithin scales (width, height) down to fit maxW x maxH while preserving
// the aspect ratio. The width limit is applied first, then the height limit,
// and the result is rounded. Images that already fit are kept as is.
func FitWithin(width, height int, maxW, maxH float64) Size {
	if width <= 0 || height <= 0 {
		return Size{}
	}
	w, h := float64(width), float64(height)
	if w > maxW {
		h = h * maxW / w
		w = maxW
	}
	if h > maxH {
		w = w * maxH / h
		h = maxH
	}
	return Size{Width: int(math.Round(w)), Height: int(math.Round(h))}
}

// MapPointerToLogical converts a pointer position in display space into
// logical canvas coordinates. display is the on-screen rectangle of the
// canvas (already zoomed); an axis with a non-positive display extent is
// mapped without scaling.
func MapPointerToLogical(pointer Point, display Rect, logical Size) Point {
	sx, sy := 1.0, 1.0
	if display.Width > 0 {
		sx = float64(logical.Width) / display.Width
	}
	if display.Height > 0 {
		sy = float64(logical.Height) / display.Height
	}
	return Point{
		X: (pointer.X - display.X) * sx,
		Y: (pointer.Y - display.Y) * sy,
	}
}
