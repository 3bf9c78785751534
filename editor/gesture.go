package editor

import (
	"math"

	"github.com/ByLCY/vellum/geometry"
	"github.com/ByLCY/vellum/layer"
)

// GestureKind is the state of the pointer interaction.
type GestureKind int

const (
	Idle GestureKind = iota
	Moving
	Resizing
)

func (k GestureKind) String() string {
	switch k {
	case Moving:
		return "moving"
	case Resizing:
		return "resizing"
	default:
		return "idle"
	}
}

// Gesture is an in-progress drag. Snapshot is the layer as it was at pointer
// down; every move is computed from it rather than from the live layer.
type Gesture struct {
	Kind     GestureKind
	LayerID  int
	Corner   geometry.Corner
	Origin   geometry.Point
	Snapshot layer.TextLayer
}

// Active reports whether a drag is in progress.
func (g Gesture) Active() bool { return g.Kind != Idle }

// Apply returns live updated for pointer position p. Text and style come from
// live; geometry (and, for resizes, font size) comes from the snapshot.
func (g Gesture) Apply(live layer.TextLayer, p geometry.Point) layer.TextLayer {
	d := p.Sub(g.Origin)
	switch g.Kind {
	case Moving:
		live.Bounds = MoveBounds(g.Snapshot.Bounds, d.X, d.Y)
	case Resizing:
		live.Bounds = ResizeBounds(g.Snapshot.Bounds, g.Corner, d.X, d.Y)
		live.FontSize = ScaleFontSize(g.Snapshot.FontSize, g.Snapshot.Bounds.Width, live.Bounds.Width)
	}
	return live
}

// MoveBounds translates r by (dx, dy).
func MoveBounds(r geometry.Rect, dx, dy float64) geometry.Rect {
	r.X += dx
	r.Y += dy
	return r
}

// ResizeBounds drags corner c of r by (dx, dy) with the opposite corner
// anchored. Each dimension is floored at layer.MinBoxSize; when clamped, the
// anchored edge stays where it was.
func ResizeBounds(r geometry.Rect, c geometry.Corner, dx, dy float64) geometry.Rect {
	out := r
	switch c {
	case geometry.SE:
		out.Width = clampBox(r.Width + dx)
		out.Height = clampBox(r.Height + dy)
	case geometry.SW:
		out.Width = clampBox(r.Width - dx)
		out.Height = clampBox(r.Height + dy)
		out.X = anchor(r.X, r.Width, out.Width)
	case geometry.NE:
		out.Width = clampBox(r.Width + dx)
		out.Height = clampBox(r.Height - dy)
		out.Y = anchor(r.Y, r.Height, out.Height)
	case geometry.NW:
		out.Width = clampBox(r.Width - dx)
		out.Height = clampBox(r.Height - dy)
		out.X = anchor(r.X, r.Width, out.Width)
		out.Y = anchor(r.Y, r.Height, out.Height)
	}
	return out
}

// anchor keeps the far edge (pos+oldSize) fixed for the new size. An
// unchanged size returns pos untouched so a zero drag is exact.
func anchor(pos, oldSize, newSize float64) float64 {
	if newSize == oldSize {
		return pos
	}
	return pos + oldSize - newSize
}

func clampBox(v float64) float64 { return math.Max(layer.MinBoxSize, v) }

// ScaleFontSize rescales a font size by the width ratio only.
func ScaleFontSize(size int, oldWidth, newWidth float64) int {
	if oldWidth <= 0 {
		return size
	}
	return max(layer.MinFontSize, int(math.Round(float64(size)*newWidth/oldWidth)))
}
