package layout

// 该文件定义文本排版结果，供实时渲染、导出渲染与调试 JSON 共用。

import "github.com/ByLCY/vellum/geometry"

// LineHeightFactor 是行高相对字号的倍数。
const LineHeightFactor = 1.25

// TextLine 是换行后的一行文本。
type TextLine struct {
	Index   int     `json:"index"` // 在块内的行号，从 0 开始
	Content string  `json:"content"`
	Width   float64 `json:"width"` // 测量宽度（逻辑像素）
}

// Blank reports whether the line came from an empty paragraph.
func (l TextLine) Blank() bool { return l.Content == "" }

// PlacedLine 是定位后的行：CenterX 为水平中心，Top 为行顶部。
type PlacedLine struct {
	TextLine
	CenterX float64 `json:"centerX"`
	Top     float64 `json:"top"`
}

// Block 描述一个文本框内全部行的排布。
type Block struct {
	Box         geometry.Rect `json:"box"`
	FontSize    float64       `json:"fontSize"`
	LineHeight  float64       `json:"lineHeight"`
	StrokeWidth float64       `json:"strokeWidth"`
	Lines       []PlacedLine  `json:"lines"`
}

// Height 返回所有行的总高度。
func (b Block) Height() float64 { return float64(len(b.Lines)) * b.LineHeight }
