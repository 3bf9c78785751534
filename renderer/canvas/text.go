package canvasrenderer

import (
	"fmt"
	"image/color"

	"github.com/tdewolff/canvas"

	"github.com/ByLCY/vellum/layout"
)

// glyphFlip turns y-up glyph outlines into the y-down space of the context.
var glyphFlip = canvas.Identity.ReflectY()

// drawBlock 逐行先以黑色圆角描边、再以图层颜色填充。
func drawBlock(ctx *canvas.Context, block layout.Block, face *canvas.FontFace, fill color.Color) error {
	ascent := face.Metrics().Ascent
	for _, line := range block.Lines {
		if line.Blank() {
			continue
		}
		glyphs, advance, err := face.ToPath(line.Content)
		if err != nil {
			return fmt.Errorf("生成字形路径失败: %w", err)
		}
		glyphs = glyphs.Transform(glyphFlip)
		x := line.CenterX - advance/2
		baseline := line.Top + ascent

		ctx.SetFillColor(canvas.Transparent)
		ctx.SetStrokeColor(canvas.Black)
		ctx.SetStrokeWidth(block.StrokeWidth)
		ctx.SetStrokeJoiner(canvas.RoundJoin)
		ctx.SetStrokeCapper(canvas.RoundCap)
		ctx.DrawPath(x, baseline, glyphs)

		ctx.SetStrokeColor(canvas.Transparent)
		ctx.SetFillColor(fill)
		ctx.DrawPath(x, baseline, glyphs)
	}
	return nil
}
