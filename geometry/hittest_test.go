package geometry

import "testing"

func TestHitTestDeleteBeatsEverything(t *testing.T) {
	sel := Target{ID: 1, Bounds: Rect{X: 200, Y: 175, Width: 200, Height: 50}}
	// 另一个图层完全覆盖删除按钮，且位于更高的 z 序
	above := Target{ID: 2, Bounds: Rect{X: 300, Y: 150, Width: 200, Height: 100}}
	targets := []Target{sel, above}

	c := DeleteButtonCenter(sel.Bounds)
	if c != (Point{X: 388, Y: 187}) {
		t.Fatalf("unexpected delete center %+v", c)
	}
	hit := HitTest(c, targets, &sel)
	if hit.Kind != HitDelete || hit.ID != 1 {
		t.Fatalf("expected delete hit on layer 1, got %+v", hit)
	}

	// 删除按钮半径 + 3 的边缘仍然命中
	hit = HitTest(Point{X: c.X, Y: c.Y + 12}, targets, &sel)
	if hit.Kind != HitDelete {
		t.Fatalf("expected delete hit at tolerance edge, got %+v", hit)
	}
}

func TestHitTestDeleteBeatsHandle(t *testing.T) {
	// 小盒子里删除按钮与右上角手柄重叠
	sel := Target{ID: 7, Bounds: Rect{X: 0, Y: 0, Width: 30, Height: 30}}
	hit := HitTest(Point{X: 27, Y: 6}, []Target{sel}, &sel)
	if hit.Kind != HitDelete {
		t.Fatalf("expected delete to win over ne handle, got %+v", hit)
	}
}

func TestHitTestHandles(t *testing.T) {
	sel := Target{ID: 3, Bounds: Rect{X: 100, Y: 100, Width: 200, Height: 100}}
	cases := []struct {
		p    Point
		want Corner
	}{
		{Point{X: 100, Y: 100}, NW},
		{Point{X: 94, Y: 106}, NW},
		{Point{X: 300, Y: 195}, SE},
		{Point{X: 100, Y: 200}, SW},
		{Point{X: 105, Y: 205}, SW},
	}
	for _, tc := range cases {
		hit := HitTest(tc.p, []Target{sel}, &sel)
		if hit.Kind != HitResize || hit.Corner != tc.want {
			t.Fatalf("HitTest(%+v) = %+v, want resize %s", tc.p, hit, tc.want)
		}
	}
	hit := HitTest(Point{X: 93, Y: 100}, []Target{sel}, &sel)
	if hit.Kind != HitNone {
		t.Fatalf("point beyond handle tolerance should miss, got %+v", hit)
	}
}

func TestHitTestTopmostWins(t *testing.T) {
	a := Target{ID: 1, Bounds: Rect{X: 0, Y: 0, Width: 100, Height: 100}}
	b := Target{ID: 2, Bounds: Rect{X: 50, Y: 50, Width: 100, Height: 100}}
	hit := HitTest(Point{X: 75, Y: 75}, []Target{a, b}, nil)
	if hit.Kind != HitSelect || hit.ID != 2 {
		t.Fatalf("expected topmost layer 2, got %+v", hit)
	}
	hit = HitTest(Point{X: 25, Y: 25}, []Target{a, b}, nil)
	if hit.ID != 1 {
		t.Fatalf("expected layer 1, got %+v", hit)
	}
	hit = HitTest(Point{X: 500, Y: 500}, []Target{a, b}, nil)
	if hit.Kind != HitNone {
		t.Fatalf("expected miss, got %+v", hit)
	}
}

func TestHandlesIgnoredWithoutSelection(t *testing.T) {
	a := Target{ID: 1, Bounds: Rect{X: 0, Y: 0, Width: 100, Height: 100}}
	hit := HitTest(Point{X: 100, Y: 100}, []Target{a}, nil)
	if hit.Kind != HitSelect {
		t.Fatalf("corner of unselected layer should select, got %+v", hit)
	}
}

func TestParseCorner(t *testing.T) {
	for _, c := range []Corner{NW, NE, SW, SE} {
		got, err := ParseCorner(c.String())
		if err != nil || got != c {
			t.Fatalf("ParseCorner(%q) = %v, %v", c.String(), got, err)
		}
	}
	if _, err := ParseCorner("north"); err == nil {
		t.Fatalf("expected error for unknown corner")
	}
}
