package export

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/vellum/geometry"
	"github.com/ByLCY/vellum/renderer"
)

// fakeRenderer 返回指定倍率尺寸的空白图片，可选地阻塞直到 release 关闭。
type fakeRenderer struct {
	release chan struct{}
	scales  []float64
	chrome  []bool
}

func (f *fakeRenderer) Render(scene renderer.Scene, opts renderer.Options) (*image.RGBA, error) {
	f.scales = append(f.scales, opts.Scale)
	f.chrome = append(f.chrome, opts.Chrome)
	if f.release != nil {
		<-f.release
	}
	w := int(float64(scene.Logical.Width) * opts.Scale)
	h := int(float64(scene.Logical.Height) * opts.Scale)
	return image.NewRGBA(image.Rect(0, 0, w, h)), nil
}

func testScene() renderer.Scene {
	return renderer.Scene{
		Image:    image.NewRGBA(image.Rect(0, 0, 10, 10)),
		Logical:  geometry.Size{Width: 300, Height: 200},
		Selected: 3,
	}
}

func TestExportEncodesJPEGAtDoubleScale(t *testing.T) {
	fr := &fakeRenderer{}
	clock := func() time.Time { return time.UnixMilli(1700000000123) }
	e := New(fr, WithClock(clock))

	res, err := e.Export(context.Background(), testScene())
	require.NoError(t, err)
	assert.Equal(t, "meme-1700000000123.jpg", res.Filename)
	assert.Equal(t, 600, res.Width)
	assert.Equal(t, 400, res.Height)
	assert.Equal(t, []float64{renderer.ExportScale}, fr.scales)
	assert.Equal(t, []bool{false}, fr.chrome)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(res.Data))
	require.NoError(t, err)
	assert.Equal(t, 600, cfg.Width)
	assert.False(t, e.Busy())
}

func TestExportIsSingleFlight(t *testing.T) {
	fr := &fakeRenderer{release: make(chan struct{})}
	e := New(fr)

	errc := make(chan error, 1)
	go func() {
		_, err := e.Export(context.Background(), testScene())
		errc <- err
	}()
	require.Eventually(t, e.Busy, time.Second, time.Millisecond)

	_, err := e.Export(context.Background(), testScene())
	assert.ErrorIs(t, err, ErrBusy)

	close(fr.release)
	require.NoError(t, <-errc)
	assert.False(t, e.Busy())
}

func TestExportTimeoutReleasesGuard(t *testing.T) {
	fr := &fakeRenderer{release: make(chan struct{})}
	defer close(fr.release)
	e := New(fr)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := e.Export(ctx, testScene())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, e.Busy())
}

func TestExportWithoutImage(t *testing.T) {
	e := New(&fakeRenderer{})
	_, err := e.Export(context.Background(), renderer.Scene{})
	assert.ErrorIs(t, err, renderer.ErrNoImage)
}
