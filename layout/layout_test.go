package layout

import (
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/ByLCY/vellum/geometry"
)

// monospace 是测试用的等宽测量器：每个字符 10 个逻辑像素。
var monospace = MeasureFunc(func(s string) float64 {
	return float64(utf8.RuneCountInString(s)) * 10
})

func TestWrapParagraphsAndBlankLines(t *testing.T) {
	got := Contents(Wrap("A B C\n\nD", 30, monospace))
	want := []string{"A B", "C", "", "D"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Wrap = %q, want %q", got, want)
	}
}

func TestWrapKeepsLongWordWhole(t *testing.T) {
	lines := Wrap("hi supercalifragilistic yo", 50, monospace)
	got := Contents(lines)
	want := []string{"hi", "supercalifragilistic", "yo"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Wrap = %q, want %q", got, want)
	}
	if lines[1].Width != 200 {
		t.Fatalf("超宽单词的测量宽度应保留: %v", lines[1].Width)
	}
}

func TestWrapNormalisesCRLF(t *testing.T) {
	got := Contents(Wrap("TOP\r\nBOTTOM", 1000, monospace))
	want := []string{"TOP", "BOTTOM"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Wrap = %q, want %q", got, want)
	}
}

func TestWrapIdempotent(t *testing.T) {
	inputs := []string{
		"ONE DOES NOT SIMPLY WALK INTO MORDOR",
		"a bb ccc dddd eeeee ffffff\n\nsecond paragraph here",
		"x",
		"",
		"trailing space ",
	}
	for _, width := range []float64{30, 75, 120, 400} {
		for _, in := range inputs {
			first := Contents(Wrap(in, width, monospace))
			second := Contents(Wrap(strings.Join(first, "\n"), width, monospace))
			if !reflect.DeepEqual(first, second) {
				t.Fatalf("width %v input %q: %q != %q", width, in, first, second)
			}
		}
	}
}

func TestPlaceCentersVertically(t *testing.T) {
	box := geometry.Rect{X: 200, Y: 175, Width: 200, Height: 50}
	block := Place(box, 32, []TextLine{{Content: "Text", Width: 40}})
	if block.LineHeight != 40 {
		t.Fatalf("行高应为 40，得到 %v", block.LineHeight)
	}
	if len(block.Lines) != 1 {
		t.Fatalf("expected one line, got %d", len(block.Lines))
	}
	line := block.Lines[0]
	if line.Top != 180 || line.CenterX != 300 {
		t.Fatalf("unexpected placement %+v", line)
	}
}

func TestPlaceOverflowStartsAtTop(t *testing.T) {
	box := geometry.Rect{X: 0, Y: 10, Width: 100, Height: 30}
	lines := []TextLine{{Content: "a"}, {Content: "b"}, {Content: "c"}}
	block := Place(box, 20, lines)
	if block.Lines[0].Top != 10 {
		t.Fatalf("溢出时首行应从顶部开始，得到 %v", block.Lines[0].Top)
	}
	if block.Lines[2].Top != 60 {
		t.Fatalf("第三行顶部应为 60，得到 %v", block.Lines[2].Top)
	}
	if block.Height() != 75 {
		t.Fatalf("总高度应为 75，得到 %v", block.Height())
	}
}

func TestStrokeWidth(t *testing.T) {
	cases := map[float64]float64{8: 1, 15: 1, 30: 2, 45: 3}
	for size, want := range cases {
		if got := StrokeWidth(size); got != want {
			t.Fatalf("StrokeWidth(%v) = %v, want %v", size, got, want)
		}
	}
}

func TestLayoutUsesBoxWidth(t *testing.T) {
	box := geometry.Rect{Width: 30, Height: 200}
	block := Layout("A B C", box, 10, monospace)
	got := Contents(linesOf(block))
	if !reflect.DeepEqual(got, []string{"A B", "C"}) {
		t.Fatalf("unexpected lines %q", got)
	}
}

func linesOf(b Block) []TextLine {
	out := make([]TextLine, len(b.Lines))
	for i, l := range b.Lines {
		out[i] = l.TextLine
	}
	return out
}

func TestLinesCarryIndex(t *testing.T) {
	box := geometry.Rect{Width: 30, Height: 200}
	block := Layout("A B C\n\nD", box, 10, monospace)
	for i, l := range block.Lines {
		if l.Index != i {
			t.Fatalf("line %d (%q) has index %d", i, l.Content, l.Index)
		}
	}
	lines := Wrap("x y", 10, monospace)
	if len(lines) != 2 || lines[1].Index != 1 {
		t.Fatalf("Wrap should number lines, got %+v", lines)
	}
}
