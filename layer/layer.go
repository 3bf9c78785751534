// Package layer defines text layers and the copy-on-write store that owns
// them for one editing session.
package layer

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/ByLCY/vellum/geometry"
)

// 图层默认值与约束。
const (
	DefaultText     = "Text"
	DefaultWidth    = 200
	DefaultHeight   = 50
	DefaultFontSize = 32

	MinBoxSize  = 30
	MinFontSize = 8
)

// ErrUnknownFamily is returned for font families outside the supported set.
var ErrUnknownFamily = errors.New("不支持的字体")

// FontFamily is one of the font families offered by the style panel.
type FontFamily string

const (
	Impact     FontFamily = "Impact"
	ArialBlack FontFamily = "Arial Black"
	ComicSans  FontFamily = "Comic Sans MS"
	Verdana    FontFamily = "Verdana"
	Georgia    FontFamily = "Georgia"
)

var families = []FontFamily{Impact, ArialBlack, ComicSans, Verdana, Georgia}

// Families returns the supported font families in menu order.
func Families() []FontFamily {
	out := make([]FontFamily, len(families))
	copy(out, families)
	return out
}

// Valid reports whether f is a supported family.
func (f FontFamily) Valid() bool {
	for _, known := range families {
		if f == known {
			return true
		}
	}
	return false
}

// ParseFontFamily matches name case-insensitively against the supported set.
func ParseFontFamily(name string) (FontFamily, error) {
	for _, known := range families {
		if strings.EqualFold(string(known), strings.TrimSpace(name)) {
			return known, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFamily, name)
}

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

var (
	White = Color{R: 0xff, G: 0xff, B: 0xff}
	Black = Color{}
)

// ParseColor parses "#RRGGBB" or "#RGB".
func ParseColor(s string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return Color{}, fmt.Errorf("无效的颜色值: %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("无效的颜色值 %q: %w", s, err)
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// Hex formats c as "#RRGGBB".
func (c Color) Hex() string { return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B) }

// RGBA converts c to an opaque color.RGBA.
func (c Color) RGBA() color.RGBA { return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff} }

func (c Color) String() string { return c.Hex() }

// TextLayer is one movable, resizable caption box.
type TextLayer struct {
	ID         int           `json:"id"`
	Text       string        `json:"text"`
	Bounds     geometry.Rect `json:"bounds"`
	FontSize   int           `json:"fontSize"`
	FontFamily FontFamily    `json:"fontFamily"`
	Color      Color         `json:"color"`
}

// New returns a layer with default text and style, centered on center.
func New(id int, center geometry.Point) TextLayer {
	return TextLayer{
		ID:   id,
		Text: DefaultText,
		Bounds: geometry.Rect{
			X:      math.Round(center.X - DefaultWidth/2),
			Y:      math.Round(center.Y - DefaultHeight/2),
			Width:  DefaultWidth,
			Height: DefaultHeight,
		},
		FontSize:   DefaultFontSize,
		FontFamily: Impact,
		Color:      White,
	}
}

// Target returns the hit-test view of the layer.
func (l TextLayer) Target() geometry.Target {
	return geometry.Target{ID: l.ID, Bounds: l.Bounds}
}

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	Text       *string
	FontSize   *int
	FontFamily *FontFamily
	Color      *Color
	Bounds     *geometry.Rect
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Text == nil && p.FontSize == nil && p.FontFamily == nil && p.Color == nil && p.Bounds == nil
}

// Validate rejects patches that would break layer invariants outright.
func (p Patch) Validate() error {
	if p.FontFamily != nil && !p.FontFamily.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownFamily, string(*p.FontFamily))
	}
	return nil
}

// Apply returns a copy of l with p applied. Font size and box size are
// clamped to their minimums.
func (l TextLayer) Apply(p Patch) TextLayer {
	if p.Text != nil {
		l.Text = *p.Text
	}
	if p.FontSize != nil {
		l.FontSize = max(MinFontSize, *p.FontSize)
	}
	if p.FontFamily != nil {
		l.FontFamily = *p.FontFamily
	}
	if p.Color != nil {
		l.Color = *p.Color
	}
	if p.Bounds != nil {
		b := *p.Bounds
		b.Width = math.Max(MinBoxSize, b.Width)
		b.Height = math.Max(MinBoxSize, b.Height)
		l.Bounds = b
	}
	return l
}
