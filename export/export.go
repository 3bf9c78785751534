// Package export flattens a scene into the downloadable/publishable JPEG.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/ByLCY/vellum/renderer"
)

// Quality is the JPEG quality of exported images.
const Quality = 95

// ContentType of exported data.
const ContentType = "image/jpeg"

// ErrBusy is returned when an export is already running.
var ErrBusy = errors.New("导出正在进行中")

// Result is one exported image.
type Result struct {
	Data     []byte
	Filename string
	Width    int
	Height   int
}

// Filename returns the download name for an export taken at t.
func Filename(t time.Time) string {
	return fmt.Sprintf("meme-%d.jpg", t.UnixMilli())
}

// EncodeJPEG writes img as JPEG.
func EncodeJPEG(w io.Writer, img image.Image, quality int) error {
	return jpeg.Encode(w, img, &jpeg.Options{Quality: quality})
}

// Exporter renders and encodes scenes, one at a time.
type Exporter struct {
	renderer renderer.Renderer
	quality  int
	now      func() time.Time
	log      *slog.Logger
	busy     atomic.Bool
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithQuality overrides the JPEG quality.
func WithQuality(q int) Option {
	return func(e *Exporter) {
		if q > 0 && q <= 100 {
			e.quality = q
		}
	}
}

// WithClock overrides the clock used for filenames.
func WithClock(now func() time.Time) Option {
	return func(e *Exporter) { e.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Exporter) {
		if l != nil {
			e.log = l
		}
	}
}

// New creates an exporter over r.
func New(r renderer.Renderer, opts ...Option) *Exporter {
	e := &Exporter{
		renderer: r,
		quality:  Quality,
		now:      time.Now,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Busy reports whether an export is in progress.
func (e *Exporter) Busy() bool { return e.busy.Load() }

// Export renders scene at the export scale and encodes it. Concurrent calls
// fail fast with ErrBusy. When ctx ends first the context error is returned
// and the guard is released; the scene is never modified.
func (e *Exporter) Export(ctx context.Context, scene renderer.Scene) (Result, error) {
	if !e.busy.CompareAndSwap(false, true) {
		return Result{}, ErrBusy
	}
	defer e.busy.Store(false)

	type outcome struct {
		res Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := e.export(scene)
		done <- outcome{res: res, err: err}
	}()

	select {
	case <-ctx.Done():
		e.log.Warn("导出超时或被取消", "error", ctx.Err())
		return Result{}, ctx.Err()
	case o := <-done:
		return o.res, o.err
	}
}

func (e *Exporter) export(scene renderer.Scene) (Result, error) {
	img, err := renderer.Export(e.renderer, scene)
	if err != nil {
		return Result{}, err
	}
	var buf bytes.Buffer
	if err := EncodeJPEG(&buf, img, e.quality); err != nil {
		return Result{}, fmt.Errorf("编码 JPEG 失败: %w", err)
	}
	b := img.Bounds()
	res := Result{
		Data:     buf.Bytes(),
		Filename: Filename(e.now()),
		Width:    b.Dx(),
		Height:   b.Dy(),
	}
	e.log.Debug("导出完成", "file", res.Filename, "bytes", len(res.Data), "width", res.Width, "height", res.Height)
	return res, nil
}
