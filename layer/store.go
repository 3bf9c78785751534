package layer

import "github.com/ByLCY/vellum/geometry"

// ChangeKind describes a store mutation.
type ChangeKind int

const (
	Added ChangeKind = iota + 1
	Updated
	Deleted
	SelectionChanged
	Reset
	Reordered
)

func (k ChangeKind) String() string {
	switch k {
	case Added:
		return "added"
	case Updated:
		return "updated"
	case Deleted:
		return "deleted"
	case SelectionChanged:
		return "selection"
	case Reset:
		return "reset"
	case Reordered:
		return "reordered"
	default:
		return "unknown"
	}
}

// Change is reported to the store observer after every mutation.
type Change struct {
	Kind    ChangeKind
	LayerID int
}

// Store owns the ordered layer list (index order is z-order, bottom first)
// and the selected layer id.
//
// Mutations never modify a slice that was handed out: every change builds a
// new backing slice, so values returned by Layers stay valid snapshots.
type Store struct {
	layers   []TextLayer
	nextID   int
	selected int
	observer func(Change)
}

// NewStore returns an empty store. observer may be nil.
func NewStore(observer func(Change)) *Store {
	return &Store{nextID: 1, observer: observer}
}

func (s *Store) notify(kind ChangeKind, id int) {
	if s.observer != nil {
		s.observer(Change{Kind: kind, LayerID: id})
	}
}

// Layers returns the current layers in z-order. The store never mutates the
// returned slice; callers must not either.
func (s *Store) Layers() []TextLayer { return s.layers }

// Len returns the number of layers.
func (s *Store) Len() int { return len(s.layers) }

// Targets returns the hit-test view of all layers in z-order.
func (s *Store) Targets() []geometry.Target {
	out := make([]geometry.Target, len(s.layers))
	for i, l := range s.layers {
		out[i] = l.Target()
	}
	return out
}

func (s *Store) index(id int) int {
	if id == 0 {
		return -1
	}
	for i, l := range s.layers {
		if l.ID == id {
			return i
		}
	}
	return -1
}

// Get looks a layer up by id.
func (s *Store) Get(id int) (TextLayer, bool) {
	if i := s.index(id); i >= 0 {
		return s.layers[i], true
	}
	return TextLayer{}, false
}

// SelectedID returns the selected id, or 0 when the selection does not
// resolve to a live layer.
func (s *Store) SelectedID() int {
	if s.index(s.selected) < 0 {
		return 0
	}
	return s.selected
}

// Selected resolves the selection.
func (s *Store) Selected() (TextLayer, bool) { return s.Get(s.selected) }

// Add appends a default layer centered on center and selects it.
func (s *Store) Add(center geometry.Point) TextLayer {
	l := New(s.nextID, center)
	s.nextID++
	next := make([]TextLayer, len(s.layers), len(s.layers)+1)
	copy(next, s.layers)
	s.layers = append(next, l)
	s.notify(Added, l.ID)
	s.setSelected(l.ID)
	return l
}

// Replace swaps the layer with l.ID for l. It reports false when no such
// layer exists.
func (s *Store) Replace(l TextLayer) bool {
	i := s.index(l.ID)
	if i < 0 {
		return false
	}
	next := make([]TextLayer, len(s.layers))
	copy(next, s.layers)
	next[i] = l
	s.layers = next
	s.notify(Updated, l.ID)
	return true
}

// UpdateSelected applies p to the selected layer. It reports whether a layer
// was updated; with no selection it does nothing.
func (s *Store) UpdateSelected(p Patch) (bool, error) {
	if err := p.Validate(); err != nil {
		return false, err
	}
	cur, ok := s.Selected()
	if !ok || p.Empty() {
		return false, nil
	}
	return s.Replace(cur.Apply(p)), nil
}

// Delete removes the layer and clears the selection if it pointed at it.
func (s *Store) Delete(id int) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	next := make([]TextLayer, 0, len(s.layers)-1)
	next = append(next, s.layers[:i]...)
	next = append(next, s.layers[i+1:]...)
	s.layers = next
	s.notify(Deleted, id)
	if s.selected == id {
		s.setSelected(0)
	}
	return true
}

// Raise moves the layer to the top of the z-order.
func (s *Store) Raise(id int) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	if i == len(s.layers)-1 {
		return true
	}
	l := s.layers[i]
	next := make([]TextLayer, 0, len(s.layers))
	next = append(next, s.layers[:i]...)
	next = append(next, s.layers[i+1:]...)
	s.layers = append(next, l)
	s.notify(Reordered, id)
	return true
}

// Select selects id. Unknown ids are ignored and reported as false.
func (s *Store) Select(id int) bool {
	if s.index(id) < 0 {
		return false
	}
	s.setSelected(id)
	return true
}

// ClearSelection drops the selection.
func (s *Store) ClearSelection() { s.setSelected(0) }

func (s *Store) setSelected(id int) {
	if s.selected == id {
		return
	}
	s.selected = id
	s.notify(SelectionChanged, id)
}

// Reset removes every layer and the selection. Ids keep increasing.
func (s *Store) Reset() {
	if len(s.layers) == 0 && s.selected == 0 {
		return
	}
	s.layers = nil
	s.selected = 0
	s.notify(Reset, 0)
}
