package source

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/anthonynsimon/bild/transform"

	"github.com/ByLCY/vellum/geometry"
)

// Template is a selectable base image: a display name plus its encoded bytes.
type Template struct {
	Name string
	MIME string
	Data []byte
}

// Open validates and decodes the template.
func (t Template) Open() (*Image, error) {
	return FromUpload(t.Name, t.MIME, t.Data)
}

var builtin = sync.OnceValue(func() []Template {
	specs := []struct {
		name string
		w, h int
		fill func(x, y, w, h int) color.RGBA
	}{
		{"Midnight", 800, 600, verticalGradient(color.RGBA{0x10, 0x14, 0x2b, 0xff}, color.RGBA{0x3a, 0x1c, 0x5c, 0xff})},
		{"Sunset", 600, 400, verticalGradient(color.RGBA{0xf7, 0x9d, 0x4d, 0xff}, color.RGBA{0x6b, 0x2d, 0x6e, 0xff})},
		{"Panorama", 1200, 300, stripes(color.RGBA{0x2e, 0x86, 0xab, 0xff}, color.RGBA{0xa2, 0x3b, 0x72, 0xff}, 150)},
		{"Portrait", 400, 600, checker(color.RGBA{0xee, 0xee, 0xee, 0xff}, color.RGBA{0x99, 0x99, 0x99, 0xff}, 50)},
	}
	out := make([]Template, 0, len(specs))
	for _, s := range specs {
		img := image.NewRGBA(image.Rect(0, 0, s.w, s.h))
		for y := 0; y < s.h; y++ {
			for x := 0; x < s.w; x++ {
				img.SetRGBA(x, y, s.fill(x, y, s.w, s.h))
			}
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			panic(fmt.Sprintf("编码内置模板 %s 失败: %v", s.name, err))
		}
		out = append(out, Template{Name: s.name, MIME: "image/png", Data: buf.Bytes()})
	}
	return out
})

// Builtin returns the built-in templates.
func Builtin() []Template {
	return append([]Template(nil), builtin()...)
}

// Find looks a template up by case-insensitive name.
func Find(templates []Template, name string) (Template, bool) {
	for _, t := range templates {
		if strings.EqualFold(t.Name, name) {
			return t, true
		}
	}
	return Template{}, false
}

// LoadTemplateDir reads every image file in dir as a template, named after
// the file without its extension. Files that are not images are skipped.
func LoadTemplateDir(dir string) ([]Template, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("读取模板目录 %s 失败: %w", dir, err)
	}
	var out []Template
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("读取模板 %s 失败: %w", path, err)
		}
		mimeType := mimeFromPath(path)
		if Validate(mimeType, data) != nil {
			continue
		}
		name := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		out = append(out, Template{Name: name, MIME: mimeType, Data: data})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Thumbnail scales img down to fit maxW x maxH.
func Thumbnail(img image.Image, maxW, maxH int) image.Image {
	b := img.Bounds()
	size := geometry.FitWithin(b.Dx(), b.Dy(), float64(maxW), float64(maxH))
	if size.Empty() {
		return image.NewRGBA(image.Rect(0, 0, 0, 0))
	}
	return transform.Resize(img, size.Width, size.Height, transform.Linear)
}

func verticalGradient(top, bottom color.RGBA) func(x, y, w, h int) color.RGBA {
	return func(_, y, _, h int) color.RGBA {
		t := float64(y) / float64(max(1, h-1))
		return color.RGBA{
			R: lerp(top.R, bottom.R, t),
			G: lerp(top.G, bottom.G, t),
			B: lerp(top.B, bottom.B, t),
			A: 0xff,
		}
	}
}

func stripes(a, b color.RGBA, width int) func(x, y, w, h int) color.RGBA {
	return func(x, _, _, _ int) color.RGBA {
		if (x/width)%2 == 0 {
			return a
		}
		return b
	}
}

func checker(a, b color.RGBA, cell int) func(x, y, w, h int) color.RGBA {
	return func(x, y, _, _ int) color.RGBA {
		if (x/cell+y/cell)%2 == 0 {
			return a
		}
		return b
	}
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*t + 0.5)
}
