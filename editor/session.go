// Package editor is the editing engine: it owns the base image, the layer
// store, zoom and the pointer gesture of one canvas session, and notifies
// listeners synchronously on every change.
//
// A Session is not safe for concurrent use; drive it from one goroutine.
package editor

import (
	"context"
	"log/slog"

	"github.com/ByLCY/vellum/geometry"
	"github.com/ByLCY/vellum/layer"
	"github.com/ByLCY/vellum/renderer"
	"github.com/ByLCY/vellum/source"
	"github.com/ByLCY/vellum/viewport"
)

// ErrNoImage is returned by operations that need a base image.
var ErrNoImage = renderer.ErrNoImage

// Session is one editing canvas.
type Session struct {
	image   *source.Image
	logical geometry.Size
	maxW    float64
	maxH    float64

	layers  *layer.Store
	zoom    *viewport.Zoom
	gesture Gesture
	cursor  Cursor

	subs   []subscription
	nextID int
	log    *slog.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// WithListener registers a listener at construction time.
func WithListener(fn Listener) Option {
	return func(s *Session) { s.Subscribe(fn) }
}

// WithMaxDisplay overrides the 600x400 fitting area.
func WithMaxDisplay(w, h float64) Option {
	return func(s *Session) {
		if w > 0 && h > 0 {
			s.maxW, s.maxH = w, h
		}
	}
}

// New creates a session with no image.
func New(opts ...Option) *Session {
	s := &Session{
		maxW:   geometry.MaxDisplayWidth,
		maxH:   geometry.MaxDisplayHeight,
		zoom:   viewport.NewZoom(),
		cursor: CursorDefault,
		log:    slog.Default(),
	}
	s.layers = layer.NewStore(func(c layer.Change) { s.emit(eventFromChange(c)) })
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers fn and returns a function that removes it.
func (s *Session) Subscribe(fn Listener) (cancel func()) {
	if fn == nil {
		return func() {}
	}
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscription{id: id, fn: fn})
	return func() {
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

func (s *Session) emit(e Event) {
	if e.Zoom == 0 {
		e.Zoom = s.zoom.Level()
	}
	for _, sub := range s.subs {
		sub.fn(e)
	}
}

// SetImage replaces the base image. Layers, selection and any gesture are
// discarded and the logical size is recomputed. A nil image returns the
// session to its empty state.
func (s *Session) SetImage(img *source.Image) {
	s.layers.Reset()
	s.gesture = Gesture{}
	s.image = img
	if img == nil {
		s.logical = geometry.Size{}
	} else {
		s.logical = geometry.FitWithin(img.Width(), img.Height(), s.maxW, s.maxH)
		s.log.Debug("底图已加载", "name", img.Name, "width", img.Width(), "height", img.Height(),
			"logicalWidth", s.logical.Width, "logicalHeight", s.logical.Height)
	}
	s.emit(Event{Kind: ImageChanged})
}

// LoadImage validates and decodes an upload off the caller's goroutine and
// installs it. On failure or cancellation the session is left unchanged.
func (s *Session) LoadImage(ctx context.Context, name, mimeType string, data []byte) error {
	img, err := source.DecodeContext(ctx, name, mimeType, data)
	if err != nil {
		s.log.Warn("加载底图失败", "name", name, "error", err)
		return err
	}
	s.SetImage(img)
	return nil
}

// Ready reports whether a base image is loaded.
func (s *Session) Ready() bool { return s.image != nil }

// Image returns the base image, or nil.
func (s *Session) Image() *source.Image { return s.image }

// LogicalSize returns the logical canvas size (zero without an image).
func (s *Session) LogicalSize() geometry.Size { return s.logical }

// Layers returns the layers in z-order as an immutable snapshot.
func (s *Session) Layers() []layer.TextLayer { return s.layers.Layers() }

// Layer looks a layer up by id.
func (s *Session) Layer(id int) (layer.TextLayer, bool) { return s.layers.Get(id) }

// Selected resolves the current selection.
func (s *Session) Selected() (layer.TextLayer, bool) { return s.layers.Selected() }

// SelectedID returns the selected layer id or 0.
func (s *Session) SelectedID() int { return s.layers.SelectedID() }

// AddLayer adds a default text layer centered on the canvas and selects it.
func (s *Session) AddLayer() (layer.TextLayer, error) {
	if !s.Ready() {
		return layer.TextLayer{}, ErrNoImage
	}
	return s.layers.Add(s.logical.Center()), nil
}

// UpdateSelected applies a style or text patch to the selected layer. With no
// selection it is a no-op.
func (s *Session) UpdateSelected(p layer.Patch) error {
	_, err := s.layers.UpdateSelected(p)
	return err
}

// DeleteLayer removes a layer by id.
func (s *Session) DeleteLayer(id int) bool {
	if s.gesture.LayerID == id {
		s.gesture = Gesture{}
	}
	return s.layers.Delete(id)
}

// DeleteSelected removes the selected layer.
func (s *Session) DeleteSelected() bool {
	id := s.layers.SelectedID()
	if id == 0 {
		return false
	}
	return s.DeleteLayer(id)
}

// Select selects a layer. Unknown ids are ignored.
func (s *Session) Select(id int) bool { return s.layers.Select(id) }

// ClearSelection drops the selection.
func (s *Session) ClearSelection() { s.layers.ClearSelection() }

// Raise brings a layer to the top of the z-order.
func (s *Session) Raise(id int) bool { return s.layers.Raise(id) }

// Zoom returns the current zoom level.
func (s *Session) Zoom() float64 { return s.zoom.Level() }

// ZoomIn steps the zoom up.
func (s *Session) ZoomIn() bool { return s.zoomed(s.zoom.In()) }

// ZoomOut steps the zoom down.
func (s *Session) ZoomOut() bool { return s.zoomed(s.zoom.Out()) }

// ZoomReset returns to 100%.
func (s *Session) ZoomReset() bool { return s.zoomed(s.zoom.Reset()) }

// Wheel handles a wheel event. It reports true when the event zoomed and the
// host should suppress its default scrolling.
func (s *Session) Wheel(deltaY float64, modifier bool) bool {
	return s.zoomed(s.zoom.Wheel(deltaY, modifier))
}

func (s *Session) zoomed(changed bool) bool {
	if changed {
		s.emit(Event{Kind: ZoomChanged})
	}
	return changed
}

// Viewport returns the sizing for the current zoom and the given device
// pixel ratio.
func (s *Session) Viewport(dpr float64) viewport.Viewport {
	return viewport.Viewport{Logical: s.logical, Zoom: s.zoom.Level(), DPR: dpr}
}

// Scene snapshots the session for rendering.
func (s *Session) Scene() renderer.Scene {
	scene := renderer.Scene{
		Logical:  s.logical,
		Layers:   s.layers.Layers(),
		Selected: s.layers.SelectedID(),
	}
	if s.image != nil {
		scene.Image = s.image.Bitmap
	}
	return scene
}
