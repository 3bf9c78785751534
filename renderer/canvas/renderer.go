package canvasrenderer

import (
	"fmt"
	"image"
	"log/slog"
	"math"
	"sync"

	"github.com/anthonynsimon/bild/transform"
	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"
	"golang.org/x/image/draw"

	"github.com/ByLCY/vellum/fonts"
	"github.com/ByLCY/vellum/geometry"
	"github.com/ByLCY/vellum/layer"
	"github.com/ByLCY/vellum/layout"
	"github.com/ByLCY/vellum/renderer"
	"github.com/ByLCY/vellum/viewport"
)

// Renderer rasterizes scenes via github.com/tdewolff/canvas.
type Renderer struct {
	log *slog.Logger

	fontMu         sync.Mutex
	fontFamilies   map[layer.FontFamily]*canvas.FontFamily
	fallbackFamily *canvas.FontFamily
}

var (
	_ renderer.Renderer   = (*Renderer)(nil)
	_ renderer.Typesetter = (*Renderer)(nil)
)

// NewRenderer creates a renderer. logger may be nil.
func NewRenderer(logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{
		log:          logger,
		fontFamilies: map[layer.FontFamily]*canvas.FontFamily{},
	}
}

// Render draws the base image, every layer's text clipped to its box and,
// when requested, the selection chrome. A scene without an image renders to
// an empty raster.
func (r *Renderer) Render(scene renderer.Scene, opts renderer.Options) (*image.RGBA, error) {
	if scene.Empty() {
		return image.NewRGBA(image.Rectangle{}), nil
	}
	scale := opts.Scale
	if scale <= 0 {
		scale = 1
	}
	size := viewport.ScaledSize(scene.Logical, scale)
	dst := image.NewRGBA(image.Rect(0, 0, size.Width, size.Height))

	base := transform.Resize(scene.Image, size.Width, size.Height, transform.Linear)
	draw.Draw(dst, dst.Bounds(), base, image.Point{}, draw.Src)

	for _, l := range scene.Layers {
		if err := r.drawLayer(dst, scene.Logical, l, scale); err != nil {
			return nil, fmt.Errorf("绘制图层 %d 失败: %w", l.ID, err)
		}
	}

	if opts.Chrome {
		if sel, ok := scene.SelectedLayer(); ok {
			c, ctx := newCanvas(scene.Logical)
			drawChrome(ctx, sel.Bounds)
			draw.Draw(dst, dst.Bounds(), rasterize(c, scale), image.Point{}, draw.Over)
		}
	}
	return dst, nil
}

// LayoutLayer 实现 renderer.Typesetter：使用图层字体测量并排布文本。
func (r *Renderer) LayoutLayer(l layer.TextLayer) (layout.Block, error) {
	m, err := r.Measurer(l.FontFamily, l.FontSize)
	if err != nil {
		return layout.Block{}, err
	}
	return layout.Layout(l.Text, l.Bounds, float64(l.FontSize), m), nil
}

// Measurer returns the text measurer for a family and pixel size.
func (r *Renderer) Measurer(family layer.FontFamily, fontSize int) (layout.Measurer, error) {
	return r.fontFace(family, fontSize, layer.Black)
}

func (r *Renderer) drawLayer(dst *image.RGBA, logical geometry.Size, l layer.TextLayer, scale float64) error {
	face, err := r.fontFace(l.FontFamily, l.FontSize, l.Color)
	if err != nil {
		return err
	}
	block := layout.Layout(l.Text, l.Bounds, float64(l.FontSize), face)

	c, ctx := newCanvas(logical)
	if err := drawBlock(ctx, block, face, l.Color.RGBA()); err != nil {
		return err
	}

	// 文本严格裁剪在图层框内
	clip := scaledRect(l.Bounds, scale).Intersect(dst.Bounds())
	if clip.Empty() {
		return nil
	}
	draw.Draw(dst, clip, rasterize(c, scale), clip.Min, draw.Over)
	return nil
}

func (r *Renderer) fontFace(family layer.FontFamily, sizePx int, col layer.Color) (*canvas.FontFace, error) {
	ff, err := r.ensureFontFamily(family)
	if err != nil {
		return nil, err
	}
	return ff.Face(layout.PxToPt(float64(sizePx)), col.RGBA(), canvas.FontRegular, canvas.FontNormal), nil
}

func (r *Renderer) ensureFontFamily(family layer.FontFamily) (*canvas.FontFamily, error) {
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if ff, ok := r.fontFamilies[family]; ok {
		return ff, nil
	}

	ff := canvas.NewFontFamily(string(family))
	data, err := fonts.Load(string(family))
	if err == nil {
		err = ff.LoadFont(data, 0, canvas.FontRegular)
	}
	if err != nil {
		r.log.Warn("字体加载失败，使用后备字体", "family", family, "error", err)
		fallback, fbErr := r.fallback()
		if fbErr != nil {
			return nil, fmt.Errorf("加载字体 %s 失败: %w", family, err)
		}
		ff = fallback
	}
	r.fontFamilies[family] = ff
	return ff, nil
}

// fallback must be called with fontMu held.
func (r *Renderer) fallback() (*canvas.FontFamily, error) {
	if r.fallbackFamily != nil {
		return r.fallbackFamily, nil
	}
	family := canvas.NewFontFamily(fonts.FallbackName)
	if err := family.LoadFont(fonts.Fallback(), 0, canvas.FontRegular); err != nil {
		return nil, err
	}
	r.fallbackFamily = family
	return family, nil
}

// newCanvas 创建与逻辑画布同尺寸的画布，坐标原点在左上角。
func newCanvas(logical geometry.Size) (*canvas.Canvas, *canvas.Context) {
	c := canvas.New(float64(logical.Width), float64(logical.Height))
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV)
	return c, ctx
}

func rasterize(c *canvas.Canvas, scale float64) *image.RGBA {
	return rasterizer.Draw(c, canvas.DPMM(scale), canvas.DefaultColorSpace)
}

func scaledRect(b geometry.Rect, scale float64) image.Rectangle {
	return image.Rect(
		int(math.Round(b.X*scale)),
		int(math.Round(b.Y*scale)),
		int(math.Round(b.Right()*scale)),
		int(math.Round(b.Bottom()*scale)),
	)
}
