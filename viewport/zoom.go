// Package viewport holds the zoom level and the sizing rules that derive the
// displayed and backing-buffer canvas sizes from it.
package viewport

import "math"

// 缩放约束。
const (
	MinZoom     = 0.5
	MaxZoom     = 4.0
	ZoomStep    = 0.25
	DefaultZoom = 1.0
)

// Zoom is the quantized zoom level. The zero value is not usable; use NewZoom.
type Zoom struct {
	level float64
}

// NewZoom returns a controller at 100%.
func NewZoom() *Zoom { return &Zoom{level: DefaultZoom} }

// Level returns the current zoom factor.
func (z *Zoom) Level() float64 { return z.level }

// Percent returns the zoom as a whole percentage for display.
func (z *Zoom) Percent() int { return int(math.Round(z.level * 100)) }

// In steps the zoom up. It reports whether the level changed.
func (z *Zoom) In() bool { return z.set(Step(z.level, ZoomStep)) }

// Out steps the zoom down. It reports whether the level changed.
func (z *Zoom) Out() bool { return z.set(Step(z.level, -ZoomStep)) }

// Reset snaps back to 100%.
func (z *Zoom) Reset() bool { return z.set(DefaultZoom) }

// Wheel maps a wheel event to a zoom step. Without the modifier the event is
// left to the host (scrolling) and nothing changes.
func (z *Zoom) Wheel(deltaY float64, modifier bool) bool {
	switch {
	case !modifier || deltaY == 0:
		return false
	case deltaY > 0:
		return z.Out()
	default:
		return z.In()
	}
}

func (z *Zoom) set(level float64) bool {
	if level == z.level {
		return false
	}
	z.level = level
	return true
}

// Step applies delta to level, clamps to [MinZoom, MaxZoom] and rounds to two
// decimals so that repeated steps never accumulate drift.
func Step(level, delta float64) float64 {
	next := math.Round((level+delta)*100) / 100
	return math.Min(MaxZoom, math.Max(MinZoom, next))
}
