package layout

// Measurer 根据当前字体测量单行文本宽度（逻辑像素）。
// 实时渲染与导出渲染必须使用同一个 Measurer，换行结果才能一致。
type Measurer interface {
	TextWidth(s string) float64
}

// MeasureFunc adapts a plain function to Measurer.
type MeasureFunc func(s string) float64

// TextWidth implements Measurer.
func (f MeasureFunc) TextWidth(s string) float64 { return f(s) }
