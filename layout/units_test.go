package layout

import (
	"math"
	"testing"
)

func TestPxToPt(t *testing.T) {
	cases := map[float64]float64{25.4: 72, 0: 0, 12.7: 36}
	for px, want := range cases {
		if got := PxToPt(px); math.Abs(got-want) > 1e-9 {
			t.Fatalf("PxToPt(%v) = %v, want %v", px, got, want)
		}
	}
}
