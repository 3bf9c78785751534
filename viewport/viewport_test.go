package viewport

import (
	"math"
	"testing"

	"github.com/ByLCY/vellum/geometry"
)

func TestZoomSequence(t *testing.T) {
	z := NewZoom()
	steps := []struct {
		op   func() bool
		want float64
	}{
		{z.In, 1.25},
		{z.In, 1.5},
		{z.Out, 1.25},
		{z.Reset, 1.0},
	}
	for i, s := range steps {
		s.op()
		if z.Level() != s.want {
			t.Fatalf("step %d: level = %v, want %v", i, z.Level(), s.want)
		}
	}
}

func TestZoomNoDrift(t *testing.T) {
	z := NewZoom()
	for i := 0; i < 100; i++ {
		z.In()
		z.Out()
	}
	if z.Level() != 1.0 {
		t.Fatalf("缩放出现漂移: %v", z.Level())
	}
	for i := 0; i < 3; i++ {
		z.Out()
	}
	for i := 0; i < 3; i++ {
		z.In()
	}
	if z.Level() != 1.25 {
		// 第三次 Out 在 0.5 处被钳制
		t.Fatalf("expected 1.25 after clamped round trip, got %v", z.Level())
	}
}

func TestZoomClamp(t *testing.T) {
	z := NewZoom()
	for i := 0; i < 40; i++ {
		z.In()
	}
	if z.Level() != MaxZoom {
		t.Fatalf("expected max zoom, got %v", z.Level())
	}
	if z.In() {
		t.Fatalf("In at max zoom should report no change")
	}
	for i := 0; i < 40; i++ {
		z.Out()
	}
	if z.Level() != MinZoom {
		t.Fatalf("expected min zoom, got %v", z.Level())
	}
	if z.Percent() != 50 {
		t.Fatalf("expected 50%%, got %d", z.Percent())
	}
}

func TestWheel(t *testing.T) {
	z := NewZoom()
	if z.Wheel(-120, false) {
		t.Fatalf("wheel without modifier must not zoom")
	}
	if !z.Wheel(-120, true) || z.Level() != 1.25 {
		t.Fatalf("wheel up should zoom in, got %v", z.Level())
	}
	if !z.Wheel(120, true) || z.Level() != 1.0 {
		t.Fatalf("wheel down should zoom out, got %v", z.Level())
	}
	if z.Wheel(0, true) {
		t.Fatalf("zero delta must not zoom")
	}
}

func TestViewportSizes(t *testing.T) {
	v := Viewport{Logical: geometry.Size{Width: 533, Height: 400}, Zoom: 1.5, DPR: 2}
	if got := v.DisplaySize(); got != (geometry.Size{Width: 800, Height: 600}) {
		t.Fatalf("display size = %+v", got)
	}
	if got := v.BufferSize(); got != (geometry.Size{Width: 1599, Height: 1200}) {
		t.Fatalf("buffer size = %+v", got)
	}
	p := v.ToLogical(geometry.Point{X: 400, Y: 300})
	if math.Abs(p.X-266.5) > 1e-9 || math.Abs(p.Y-200) > 1e-9 {
		t.Fatalf("unexpected logical point %+v", p)
	}
}
