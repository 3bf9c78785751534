package renderer

import (
	"errors"
	"image"

	"github.com/ByLCY/vellum/geometry"
	"github.com/ByLCY/vellum/layer"
	"github.com/ByLCY/vellum/layout"
	"github.com/ByLCY/vellum/viewport"
)

// ExportScale is the fixed supersampling factor of exported images.
const ExportScale = 2

// ErrNoImage is returned when a render needs a base image and the scene has none.
var ErrNoImage = errors.New("尚未加载底图")

// Scene is an immutable snapshot of everything a render needs.
type Scene struct {
	Image    image.Image
	Logical  geometry.Size
	Layers   []layer.TextLayer
	Selected int // 0 表示没有选中
}

// Empty reports whether the scene has no base image.
func (s Scene) Empty() bool { return s.Image == nil || s.Logical.Empty() }

// SelectedLayer resolves the selection.
func (s Scene) SelectedLayer() (layer.TextLayer, bool) {
	if s.Selected == 0 {
		return layer.TextLayer{}, false
	}
	for _, l := range s.Layers {
		if l.ID == s.Selected {
			return l, true
		}
	}
	return layer.TextLayer{}, false
}

// Options controls one render pass.
type Options struct {
	Scale  float64 // logical units to output pixels
	Chrome bool    // draw selection outline, handles and delete badge
}

// Renderer draws a scene into a raster.
type Renderer interface {
	Render(scene Scene, opts Options) (*image.RGBA, error)
}

// Typesetter lays a layer's text out inside its box. Implementations must
// use the same measurement for every render path.
type Typesetter interface {
	LayoutLayer(l layer.TextLayer) (layout.Block, error)
}

// Interactive renders the editing view: buffer = logical × DPR × zoom, with
// the selection chrome.
func Interactive(r Renderer, scene Scene, vp viewport.Viewport) (*image.RGBA, error) {
	return r.Render(scene, Options{Scale: vp.RenderScale(), Chrome: true})
}

// Export renders the flattened result at ExportScale with no chrome. The
// result depends only on the scene, never on the current zoom.
func Export(r Renderer, scene Scene) (*image.RGBA, error) {
	if scene.Empty() {
		return nil, ErrNoImage
	}
	scene.Selected = 0
	return r.Render(scene, Options{Scale: ExportScale})
}
