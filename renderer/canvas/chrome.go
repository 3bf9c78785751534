package canvasrenderer

import (
	"github.com/tdewolff/canvas"

	"github.com/ByLCY/vellum/geometry"
)

var (
	chromeAccent = canvas.Hex("#d97757")
	chromeInk    = canvas.Hex("#1a1a1a")
	deleteFill   = canvas.Hex("#c0392b")
)

const (
	outlineWidth = 2.0
	crossRadius  = 4.0
)

// drawChrome 绘制选中框：虚线边框、四个缩放手柄与删除按钮。
func drawChrome(ctx *canvas.Context, b geometry.Rect) {
	ctx.SetFillColor(canvas.Transparent)
	ctx.SetStrokeColor(chromeAccent)
	ctx.SetStrokeWidth(outlineWidth)
	ctx.SetDashes(0, 6, 4)
	ctx.DrawPath(b.X, b.Y, canvas.Rectangle(b.Width, b.Height))
	ctx.SetDashes(0)

	const half = geometry.HandleSize / 2.0
	ctx.SetFillColor(chromeAccent)
	ctx.SetStrokeColor(chromeInk)
	ctx.SetStrokeWidth(1)
	for _, h := range geometry.Handles(b) {
		ctx.DrawPath(h.Point.X-half, h.Point.Y-half, canvas.Rectangle(geometry.HandleSize, geometry.HandleSize))
	}

	c := geometry.DeleteButtonCenter(b)
	ctx.SetFillColor(deleteFill)
	ctx.SetStrokeColor(chromeInk)
	ctx.SetStrokeWidth(1)
	ctx.DrawPath(c.X, c.Y, canvas.Circle(geometry.DeleteButtonRadius))

	cross := &canvas.Path{}
	cross.MoveTo(-crossRadius, -crossRadius)
	cross.LineTo(crossRadius, crossRadius)
	cross.MoveTo(crossRadius, -crossRadius)
	cross.LineTo(-crossRadius, crossRadius)
	ctx.SetFillColor(canvas.Transparent)
	ctx.SetStrokeColor(canvas.White)
	ctx.SetStrokeWidth(2)
	ctx.SetStrokeCapper(canvas.RoundCap)
	ctx.DrawPath(c.X, c.Y, cross)
}
