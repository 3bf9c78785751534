package viewport

import (
	"math"

	"github.com/ByLCY/vellum/geometry"
)

// Viewport combines the logical canvas size with zoom and device pixel ratio.
type Viewport struct {
	Logical geometry.Size
	Zoom    float64
	DPR     float64
}

func (v Viewport) dpr() float64 {
	if v.DPR <= 0 {
		return 1
	}
	return v.DPR
}

// DisplaySize 是 CSS 层面的显示尺寸：逻辑尺寸 × 缩放。
func (v Viewport) DisplaySize() geometry.Size {
	return scale(v.Logical, v.Zoom)
}

// BufferSize 是后备缓冲区尺寸：逻辑尺寸 × DPR × 缩放。
func (v Viewport) BufferSize() geometry.Size {
	return scale(v.Logical, v.RenderScale())
}

// RenderScale is the factor from logical units to buffer pixels.
func (v Viewport) RenderScale() float64 { return v.dpr() * v.Zoom }

// DisplayRect is the on-screen rectangle of the canvas relative to its own
// top-left corner, as used for pointer mapping.
func (v Viewport) DisplayRect() geometry.Rect {
	d := v.DisplaySize()
	return geometry.Rect{Width: float64(d.Width), Height: float64(d.Height)}
}

// ToLogical maps a pointer position relative to the canvas element into
// logical coordinates.
func (v Viewport) ToLogical(p geometry.Point) geometry.Point {
	return geometry.MapPointerToLogical(p, v.DisplayRect(), v.Logical)
}

// ScaledSize rounds size × factor per axis.
func ScaledSize(size geometry.Size, factor float64) geometry.Size { return scale(size, factor) }

func scale(s geometry.Size, f float64) geometry.Size {
	return geometry.Size{
		Width:  int(math.Round(float64(s.Width) * f)),
		Height: int(math.Round(float64(s.Height) * f)),
	}
}
