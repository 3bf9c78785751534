package geometry

import (
	"fmt"
	"math"
)

// Selection chrome dimensions shared by hit testing and drawing.
const (
	HandleSize         = 8
	DeleteButtonRadius = 9
	deleteButtonInset  = 3
	deleteHitSlop      = 3
	handleHitSlop      = 2
)

// Corner identifies one of the four resize handles.
type Corner int

const (
	NW Corner = iota
	NE
	SW
	SE
)

var cornerNames = [...]string{NW: "nw", NE: "ne", SW: "sw", SE: "se"}

func (c Corner) String() string {
	if c < NW || c > SE {
		return fmt.Sprintf("Corner(%d)", int(c))
	}
	return cornerNames[c]
}

// ParseCorner parses "nw", "ne", "sw" or "se".
func ParseCorner(s string) (Corner, error) {
	for i, name := range cornerNames {
		if name == s {
			return Corner(i), nil
		}
	}
	return 0, fmt.Errorf("未知的缩放角: %q", s)
}

// Handle is the center of a resize handle.
type Handle struct {
	Corner Corner
	Point  Point
}

// Handles returns the four handle centers of r in nw, ne, sw, se order.
func Handles(r Rect) [4]Handle {
	return [4]Handle{
		{Corner: NW, Point: Point{X: r.X, Y: r.Y}},
		{Corner: NE, Point: Point{X: r.Right(), Y: r.Y}},
		{Corner: SW, Point: Point{X: r.X, Y: r.Bottom()}},
		{Corner: SE, Point: Point{X: r.Right(), Y: r.Bottom()}},
	}
}

// DeleteButtonCenter returns the center of the delete badge drawn inside the
// top-right corner of r.
func DeleteButtonCenter(r Rect) Point {
	return Point{
		X: r.Right() - DeleteButtonRadius - deleteButtonInset,
		Y: r.Y + DeleteButtonRadius + deleteButtonInset,
	}
}

// HitKind classifies what a pointer position lands on.
type HitKind int

const (
	HitNone HitKind = iota
	HitDelete
	HitResize
	HitSelect
)

func (k HitKind) String() string {
	switch k {
	case HitDelete:
		return "delete"
	case HitResize:
		return "resize"
	case HitSelect:
		return "select"
	default:
		return "none"
	}
}

// Target is a hit-testable box. Targets are passed in z-order, bottom first.
type Target struct {
	ID     int
	Bounds Rect
}

// Hit is the result of HitTest. Corner is meaningful for HitResize only;
// ID is set for every kind except HitNone.
type Hit struct {
	Kind   HitKind
	ID     int
	Corner Corner
}

// HitTest resolves p against the selected target's chrome first (delete
// badge, then handles) and then against all targets from topmost down.
// selected may be nil.
func HitTest(p Point, targets []Target, selected *Target) Hit {
	if selected != nil {
		c := DeleteButtonCenter(selected.Bounds)
		if math.Hypot(p.X-c.X, p.Y-c.Y) <= DeleteButtonRadius+deleteHitSlop {
			return Hit{Kind: HitDelete, ID: selected.ID}
		}
		if corner, ok := HandleAt(p, selected.Bounds); ok {
			return Hit{Kind: HitResize, ID: selected.ID, Corner: corner}
		}
	}
	for i := len(targets) - 1; i >= 0; i-- {
		if targets[i].Bounds.Contains(p) {
			return Hit{Kind: HitSelect, ID: targets[i].ID}
		}
	}
	return Hit{Kind: HitNone}
}

// HandleAt returns the first handle of r (nw, ne, sw, se order) within
// tolerance of p.
func HandleAt(p Point, r Rect) (Corner, bool) {
	const tol = HandleSize/2 + handleHitSlop
	for _, h := range Handles(r) {
		if math.Abs(p.X-h.Point.X) <= tol && math.Abs(p.Y-h.Point.Y) <= tol {
			return h.Corner, true
		}
	}
	return 0, false
}
