package layout

import (
	"math"

	"github.com/ByLCY/vellum/geometry"
)

// LineHeight 返回字号对应的行高。
func LineHeight(fontSize float64) float64 { return fontSize * LineHeightFactor }

// StrokeWidth 返回文字描边宽度：max(1, fontSize/15)。
func StrokeWidth(fontSize float64) float64 { return math.Max(1, fontSize/15) }

// Place 将已换行的文本在 box 内垂直居中、逐行水平居中。
// 文本总高度超过 box 时从顶部开始排布，超出部分由渲染端裁剪。
func Place(box geometry.Rect, fontSize float64, lines []TextLine) Block {
	lh := LineHeight(fontSize)
	total := float64(len(lines)) * lh
	startY := box.Y + math.Max(0, (box.Height-total)/2)
	centerX := box.X + box.Width/2

	placed := make([]PlacedLine, len(lines))
	for i, l := range lines {
		l.Index = i
		placed[i] = PlacedLine{
			TextLine: l,
			CenterX:  centerX,
			Top:      startY + float64(i)*lh,
		}
	}
	return Block{
		Box:         box,
		FontSize:    fontSize,
		LineHeight:  lh,
		StrokeWidth: StrokeWidth(fontSize),
		Lines:       placed,
	}
}

// Layout wraps text to the box width and places it.
func Layout(text string, box geometry.Rect, fontSize float64, m Measurer) Block {
	return Place(box, fontSize, Wrap(text, box.Width, m))
}
