package editor

import (
	"encoding/json"
	"os"

	"github.com/ByLCY/vellum/geometry"
	"github.com/ByLCY/vellum/layer"
	"github.com/ByLCY/vellum/layout"
	"github.com/ByLCY/vellum/renderer"
)

// DebugSnapshot is the diagnostic view written by WriteDebugJSON.
type DebugSnapshot struct {
	Image    string            `json:"image,omitempty"`
	Logical  geometry.Size     `json:"logical"`
	Zoom     float64           `json:"zoom"`
	Selected int               `json:"selected"`
	Gesture  string            `json:"gesture"`
	Layers   []layer.TextLayer `json:"layers"`
	Blocks   []layout.Block    `json:"blocks,omitempty"`
}

// Debug builds a snapshot of the session. When ts is non-nil the text layout
// of every layer is included.
func (s *Session) Debug(ts renderer.Typesetter) (DebugSnapshot, error) {
	snap := DebugSnapshot{
		Logical:  s.logical,
		Zoom:     s.zoom.Level(),
		Selected: s.layers.SelectedID(),
		Gesture:  s.gesture.Kind.String(),
		Layers:   s.layers.Layers(),
	}
	if s.image != nil {
		snap.Image = s.image.Name
	}
	if ts == nil {
		return snap, nil
	}
	for _, l := range snap.Layers {
		block, err := ts.LayoutLayer(l)
		if err != nil {
			return snap, err
		}
		snap.Blocks = append(snap.Blocks, block)
	}
	return snap, nil
}

// WriteDebugJSON 将会话状态输出为 JSON，便于调试或可视化。
// 该文件仅用于诊断，不会被重新加载。
func (s *Session) WriteDebugJSON(path string, ts renderer.Typesetter) error {
	snap, err := s.Debug(ts)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
