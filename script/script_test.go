package script_test

import (
	"bytes"
	"context"
	"errors"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/ByLCY/vellum/editor"
	"github.com/ByLCY/vellum/export"
	"github.com/ByLCY/vellum/geometry"
	"github.com/ByLCY/vellum/layer"
	"github.com/ByLCY/vellum/publish"
	canvasrenderer "github.com/ByLCY/vellum/renderer/canvas"
	"github.com/ByLCY/vellum/script"
	"github.com/ByLCY/vellum/source"
)

const sampleScript = `
# 一个简单的会话
template Sunset; add
text "top\nline"   // 两行
box 10 20 300 80
color #fff
font arial black
drag 100 40 120 60
export out/meme.jpg
`

func TestParseScript(t *testing.T) {
	s, err := script.ParseString(sampleScript)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(s.Commands) != 8 {
		t.Fatalf("expected 8 commands, got %d", len(s.Commands))
	}

	text := s.Commands[2]
	if text.Name != "text" || len(text.Args) != 1 {
		t.Fatalf("unexpected text command: %+v", text)
	}
	if text.Args[0].Value != "top\nline" || text.Args[0].Type != "String" {
		t.Fatalf("string argument should be unquoted, got %+v", text.Args[0])
	}

	box := s.Commands[3]
	if len(box.Args) != 4 || box.Args[3].Value != "80" || box.Args[3].Type != "Number" {
		t.Fatalf("unexpected box args: %+v", box.Args)
	}
	if got := s.Commands[4].Args[0]; got.Type != "Color" || got.Value != "#fff" {
		t.Fatalf("expected color token, got %+v", got)
	}
	if got := len(s.Commands[5].Args); got != 2 {
		t.Fatalf("font name should keep both words, got %d args", got)
	}
	if got := s.Commands[7].Args[0].Value; got != "out/meme.jpg" {
		t.Fatalf("expected bare path argument, got %q", got)
	}
	if s.Commands[1].Pos.Line != 3 {
		t.Fatalf("expected add on line 3, got %d", s.Commands[1].Pos.Line)
	}
}

func newRunner(t *testing.T) (*script.Runner, *bytes.Buffer) {
	t.Helper()
	r := canvasrenderer.NewRenderer(nil)
	exp := export.New(r, export.WithClock(func() time.Time { return time.UnixMilli(1700000000000) }))
	box := &publish.Mailbox{}
	auth := publish.NewAuth(box)
	mem := publish.NewMemory()
	out := &bytes.Buffer{}
	return &script.Runner{
		Session:   editor.New(),
		Renderer:  r,
		Exporter:  exp,
		Auth:      auth,
		Publisher: publish.NewPublisher(auth, mem, mem, exp),
		Mailbox:   box.Last,
		Templates: source.Builtin(),
		Data:      map[string]any{"user": map[string]any{"name": "Ada"}},
		OutDir:    t.TempDir(),
		DPR:       1,
		Out:       out,
	}, out
}

func run(t *testing.T, r *script.Runner, src string) error {
	t.Helper()
	s, err := script.ParseString(src)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	return r.Run(context.Background(), s)
}

func TestRunEditsAndExports(t *testing.T) {
	r, out := newRunner(t)
	err := run(t, r, `
template Sunset
add "Hello ${user.name}"
size 40
color #ff0000
drag 250 200 270 220
export
`)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	l, ok := r.Session.Selected()
	if !ok {
		t.Fatalf("expected a selected layer")
	}
	if l.Text != "Hello Ada" {
		t.Fatalf("placeholder should be bound, got %q", l.Text)
	}
	if l.FontSize != 40 || l.Color != (layer.Color{R: 0xff}) {
		t.Fatalf("unexpected style: %+v", l)
	}
	want := geometry.Rect{X: 220, Y: 195, Width: 200, Height: 50}
	if l.Bounds != want {
		t.Fatalf("expected drag to move box to %+v, got %+v", want, l.Bounds)
	}

	files := r.Exported()
	if len(files) != 1 || filepath.Base(files[0]) != "meme-1700000000000.jpg" {
		t.Fatalf("unexpected exported files: %v", files)
	}
	data, err := os.ReadFile(files[0])
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("export is not a JPEG: %v", err)
	}
	if cfg.Width != 1200 || cfg.Height != 800 {
		t.Fatalf("expected 1200x800 export, got %dx%d", cfg.Width, cfg.Height)
	}
	if !strings.Contains(out.String(), "exported") {
		t.Fatalf("expected export report, got %q", out.String())
	}
}

func TestRunZoomMapsPointer(t *testing.T) {
	r, _ := newRunner(t)
	err := run(t, r, `
template Sunset
add
zoom in; zoom in
drag 450 300 470 300
`)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if z := r.Session.Zoom(); z != 1.5 {
		t.Fatalf("expected zoom 1.5, got %v", z)
	}
	l, _ := r.Session.Selected()
	// 在 1.5 倍缩放下，显示坐标移动 20 对应逻辑坐标约 13.33
	if dx := l.Bounds.X - 200; dx < 13.3 || dx > 13.4 {
		t.Fatalf("expected logical move of ~13.33, got %v", dx)
	}
}

func TestRunKeyDeletesSelection(t *testing.T) {
	r, _ := newRunner(t)
	if err := run(t, r, "template Sunset\nadd\nadd\nkey Delete\n"); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if n := len(r.Session.Layers()); n != 1 {
		t.Fatalf("expected 1 layer left, got %d", n)
	}
	if err := run(t, r, "select 1\nkey Delete editing\n"); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if n := len(r.Session.Layers()); n != 1 {
		t.Fatalf("key while editing text must not delete, got %d layers", n)
	}
}

func TestRunReportsPosition(t *testing.T) {
	r, _ := newRunner(t)
	err := run(t, r, "template Sunset\n\nfrobnicate 1\n")
	if !errors.Is(err, script.ErrUnknownCommand) {
		t.Fatalf("expected ErrUnknownCommand, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "3:1:") {
		t.Fatalf("error should carry the line number, got %q", err.Error())
	}
}

func TestRunAddWithoutImage(t *testing.T) {
	r, _ := newRunner(t)
	err := run(t, r, "add\n")
	if !errors.Is(err, editor.ErrNoImage) {
		t.Fatalf("expected ErrNoImage, got %v", err)
	}
}

func TestRunPublishFlow(t *testing.T) {
	r, out := newRunner(t)
	err := run(t, r, `
template Sunset
add "ship it"
login ada@example.com
publish
upvote
feed
`)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	text := out.String()
	if !strings.Contains(text, "signed in ada@example.com") {
		t.Fatalf("expected sign-in report, got %q", text)
	}
	if !strings.Contains(text, "upvote ") || !strings.Contains(text, " true") {
		t.Fatalf("expected upvote report, got %q", text)
	}
	if !strings.Contains(text, "\tjust now\t1\t") {
		t.Fatalf("expected feed line with one upvote, got %q", text)
	}
}

func TestRunPublishRequiresSignIn(t *testing.T) {
	r, _ := newRunner(t)
	err := run(t, r, "template Sunset\npublish\n")
	if !errors.Is(err, publish.ErrSignedOut) {
		t.Fatalf("expected ErrSignedOut, got %v", err)
	}
}

func TestRunSnapshotAndDebug(t *testing.T) {
	r, _ := newRunner(t)
	err := run(t, r, `
template Sunset
add "caption"
zoom in
snapshot shots/view.png
debug shots/session.json
`)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	files := r.Exported()
	if len(files) != 1 {
		t.Fatalf("expected one snapshot, got %v", files)
	}
	f, err := os.Open(files[0])
	if err != nil {
		t.Fatalf("open snapshot: %v", err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatalf("snapshot is not a PNG: %v", err)
	}
	if cfg.Width != 750 || cfg.Height != 500 {
		t.Fatalf("expected 750x500 snapshot at 1.25x, got %dx%d", cfg.Width, cfg.Height)
	}
	if _, err := os.Stat(filepath.Join(r.OutDir, "shots", "session.json")); err != nil {
		t.Fatalf("debug JSON missing: %v", err)
	}
}

func TestRunUploadRejectsNonImage(t *testing.T) {
	r, _ := newRunner(t)
	dir := t.TempDir()
	bogus := filepath.Join(dir, "notes.png")
	if err := os.WriteFile(bogus, []byte("definitely not a png"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	if err := run(t, r, "template Sunset\nadd\n"); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	err := run(t, r, "upload "+strconv.Quote(bogus)+" image/png\n")
	if !errors.Is(err, source.ErrNotImage) {
		t.Fatalf("expected ErrNotImage, got %v", err)
	}
	if !r.Session.Ready() || len(r.Session.Layers()) != 1 {
		t.Fatalf("failed upload must leave the session unchanged")
	}
}

func TestParseBareWords(t *testing.T) {
	s, err := script.ParseString("login ada+memes@example.com\ntext ${user.name}!\n")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(s.Commands) != 2 {
		t.Fatalf("expected 2 commands, got %d", len(s.Commands))
	}
	login := s.Commands[0]
	if len(login.Args) != 1 || login.Args[0].Value != "ada+memes@example.com" {
		t.Fatalf("email should be a single argument, got %+v", login.Args)
	}
	text := s.Commands[1]
	if len(text.Args) != 1 || text.Args[0].Value != "${user.name}!" {
		t.Fatalf("placeholder should be a single argument, got %+v", text.Args)
	}
}

func TestRunLoginUsesDefaultEmail(t *testing.T) {
	r, out := newRunner(t)
	if err := run(t, r, "login\n"); err == nil {
		t.Fatalf("login without any address should fail")
	}
	r.Email = "grace@example.com"
	if err := run(t, r, "login\n"); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !strings.Contains(out.String(), "signed in grace@example.com") {
		t.Fatalf("expected sign-in report, got %q", out.String())
	}
}

func TestRunFeedLimit(t *testing.T) {
	r, out := newRunner(t)
	err := run(t, r, `
template Sunset
guest
publish
publish
publish
`)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	out.Reset()
	if err := run(t, r, "feed 2\n"); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if n := strings.Count(out.String(), "\n"); n != 2 {
		t.Fatalf("expected 2 feed lines, got %d: %q", n, out.String())
	}
}
