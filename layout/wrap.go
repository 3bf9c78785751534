package layout

import "strings"

// Wrap 使用贪心算法按 maxWidth 换行。
//
// 文本按 "\n" 拆分为段落；空段落产生一个空行。段落内按单个空格拆词，
// 逐词追加，直到测量宽度超过 maxWidth 才另起一行。单词本身超宽时独占一行，
// 不会被截断。
func Wrap(text string, maxWidth float64, m Measurer) []TextLine {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var lines []TextLine
	for _, para := range strings.Split(text, "\n") {
		if para == "" {
			lines = append(lines, TextLine{})
			continue
		}
		current := ""
		for _, word := range strings.Split(para, " ") {
			candidate := word
			if current != "" {
				candidate = current + " " + word
			}
			if current != "" && m.TextWidth(candidate) > maxWidth {
				lines = append(lines, measured(current, m))
				current = word
				continue
			}
			current = candidate
		}
		if current != "" {
			lines = append(lines, measured(current, m))
		}
	}
	for i := range lines {
		lines[i].Index = i
	}
	return lines
}

func measured(s string, m Measurer) TextLine {
	return TextLine{Content: s, Width: m.TextWidth(s)}
}

// Contents returns the text of each line.
func Contents(lines []TextLine) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Content
	}
	return out
}
