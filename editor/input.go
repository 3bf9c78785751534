package editor

import "github.com/ByLCY/vellum/geometry"

// Cursor is a presentation hint for the pointer shape.
type Cursor string

const (
	CursorDefault    Cursor = "default"
	CursorPointer    Cursor = "pointer"
	CursorGrab       Cursor = "grab"
	CursorResizeNWSE Cursor = "nwse-resize"
	CursorResizeNESW Cursor = "nesw-resize"
)

// CursorFor maps a hit to its hover cursor.
func CursorFor(h geometry.Hit) Cursor {
	switch h.Kind {
	case geometry.HitDelete:
		return CursorPointer
	case geometry.HitResize:
		if h.Corner == geometry.NW || h.Corner == geometry.SE {
			return CursorResizeNWSE
		}
		return CursorResizeNESW
	case geometry.HitSelect:
		return CursorGrab
	default:
		return CursorDefault
	}
}

// Key names handled by KeyDown.
type Key string

const (
	KeyDelete    Key = "Delete"
	KeyBackspace Key = "Backspace"
	KeyEscape    Key = "Escape"
)

// Gesture returns the current gesture.
func (s *Session) Gesture() Gesture { return s.gesture }

// Cursor returns the last hover cursor hint.
func (s *Session) Cursor() Cursor { return s.cursor }

// HitTest resolves a logical point against the current layers.
func (s *Session) HitTest(p geometry.Point) geometry.Hit {
	var selected *geometry.Target
	if l, ok := s.layers.Selected(); ok {
		t := l.Target()
		selected = &t
	}
	return geometry.HitTest(p, s.layers.Targets(), selected)
}

// PointerDown starts an interaction at logical point p. It reports whether
// the event was consumed and the host should suppress its default action.
func (s *Session) PointerDown(p geometry.Point) bool {
	if !s.Ready() {
		return false
	}
	hit := s.HitTest(p)
	switch hit.Kind {
	case geometry.HitDelete:
		s.gesture = Gesture{}
		s.layers.Delete(hit.ID)
		s.log.Debug("删除图层", "id", hit.ID)
		return true
	case geometry.HitResize:
		snap, _ := s.layers.Get(hit.ID)
		s.gesture = Gesture{Kind: Resizing, LayerID: hit.ID, Corner: hit.Corner, Origin: p, Snapshot: snap}
		return true
	case geometry.HitSelect:
		s.layers.Select(hit.ID)
		snap, _ := s.layers.Get(hit.ID)
		s.gesture = Gesture{Kind: Moving, LayerID: hit.ID, Origin: p, Snapshot: snap}
		return true
	default:
		s.gesture = Gesture{}
		if s.layers.SelectedID() != 0 {
			s.layers.ClearSelection()
		}
		return false
	}
}

// PointerMove advances the gesture, or updates the hover cursor when idle.
func (s *Session) PointerMove(p geometry.Point) {
	if !s.Ready() {
		return
	}
	if !s.gesture.Active() {
		s.setCursor(CursorFor(s.HitTest(p)))
		return
	}
	live, ok := s.layers.Get(s.gesture.LayerID)
	if !ok {
		s.gesture = Gesture{}
		return
	}
	next := s.gesture.Apply(live, p)
	if next != live {
		s.layers.Replace(next)
	}
}

// PointerUp ends the gesture.
func (s *Session) PointerUp() {
	s.gesture = Gesture{}
}

// Drag is PointerDown at from, PointerMove to to, then PointerUp.
func (s *Session) Drag(from, to geometry.Point) bool {
	consumed := s.PointerDown(from)
	s.PointerMove(to)
	s.PointerUp()
	return consumed
}

// KeyDown handles editor shortcuts. editingText must be true while focus is
// in a text input so that Delete and Backspace edit text instead of layers.
func (s *Session) KeyDown(key Key, editingText bool) bool {
	switch key {
	case KeyDelete, KeyBackspace:
		if editingText {
			return false
		}
		return s.DeleteSelected()
	case KeyEscape:
		if s.layers.SelectedID() == 0 {
			return false
		}
		s.gesture = Gesture{}
		s.layers.ClearSelection()
		return true
	}
	return false
}

func (s *Session) setCursor(c Cursor) {
	if s.cursor == c {
		return
	}
	s.cursor = c
	s.emit(Event{Kind: CursorChanged, Cursor: c})
}
