// Package source loads base images for the editor: built-in templates,
// template directories and user uploads all end up as one *Image.
package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrNotImage is returned for uploads that are not image files.
var ErrNotImage = errors.New("不是图片文件")

// Image is a decoded base image.
type Image struct {
	Name   string
	Format string
	Bitmap image.Image
}

// Width returns the intrinsic pixel width.
func (i *Image) Width() int { return i.Bitmap.Bounds().Dx() }

// Height returns the intrinsic pixel height.
func (i *Image) Height() int { return i.Bitmap.Bounds().Dy() }

// Validate checks an upload before decoding. A declared MIME type, when
// present, must be image/*; the content itself must sniff as an image.
func Validate(mimeType string, data []byte) error {
	if mimeType != "" {
		mediaType, _, err := mime.ParseMediaType(mimeType)
		if err != nil || !strings.HasPrefix(mediaType, "image/") {
			return fmt.Errorf("%w: 声明类型为 %q", ErrNotImage, mimeType)
		}
	}
	if !filetype.IsImage(data) {
		kind, _ := filetype.Match(data)
		return fmt.Errorf("%w: 检测到类型 %q", ErrNotImage, kind.MIME.Value)
	}
	return nil
}

// Decode decodes data with every registered image format.
func Decode(name string, data []byte) (*Image, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("解码图片 %s 失败: %w", name, err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("图片 %s 尺寸为空", name)
	}
	return &Image{Name: name, Format: format, Bitmap: img}, nil
}

// FromUpload validates and decodes an uploaded file.
func FromUpload(name, mimeType string, data []byte) (*Image, error) {
	if err := Validate(mimeType, data); err != nil {
		return nil, err
	}
	return Decode(name, data)
}

// DecodeContext runs FromUpload on its own goroutine so that a slow decode
// can be abandoned through ctx.
func DecodeContext(ctx context.Context, name, mimeType string, data []byte) (*Image, error) {
	type result struct {
		img *Image
		err error
	}
	done := make(chan result, 1)
	go func() {
		img, err := FromUpload(name, mimeType, data)
		done <- result{img: img, err: err}
	}()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		return r.img, r.err
	}
}

// ReadFile loads an image file from disk, guessing the declared type from
// the extension.
func ReadFile(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取图片 %s 失败: %w", path, err)
	}
	return FromUpload(filepath.Base(path), mimeFromPath(path), data)
}

func mimeFromPath(path string) string {
	return mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
}
