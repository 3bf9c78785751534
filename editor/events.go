package editor

import "github.com/ByLCY/vellum/layer"

// EventKind identifies a session change.
type EventKind int

const (
	LayerAdded EventKind = iota + 1
	LayerUpdated
	LayerDeleted
	LayersReordered
	LayersReset
	SelectionChanged
	ZoomChanged
	ImageChanged
	CursorChanged
)

var eventNames = map[EventKind]string{
	LayerAdded:       "layer-added",
	LayerUpdated:     "layer-updated",
	LayerDeleted:     "layer-deleted",
	LayersReordered:  "layers-reordered",
	LayersReset:      "layers-reset",
	SelectionChanged: "selection-changed",
	ZoomChanged:      "zoom-changed",
	ImageChanged:     "image-changed",
	CursorChanged:    "cursor-changed",
}

func (k EventKind) String() string {
	if name, ok := eventNames[k]; ok {
		return name
	}
	return "unknown"
}

// Event is delivered synchronously to listeners after each change.
type Event struct {
	Kind    EventKind
	LayerID int
	Zoom    float64
	Cursor  Cursor
}

// Listener receives session events.
type Listener func(Event)

func eventFromChange(c layer.Change) Event {
	kind := LayerUpdated
	switch c.Kind {
	case layer.Added:
		kind = LayerAdded
	case layer.Deleted:
		kind = LayerDeleted
	case layer.SelectionChanged:
		kind = SelectionChanged
	case layer.Reset:
		kind = LayersReset
	case layer.Reordered:
		kind = LayersReordered
	}
	return Event{Kind: kind, LayerID: c.LayerID}
}

type subscription struct {
	id int
	fn Listener
}
