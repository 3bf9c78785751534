// Package script drives an editing session from a small line-oriented
// command language, so that captions can be composed and exported headless.
package script

import (
	"context"
	"errors"
	"fmt"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ByLCY/vellum/editor"
	"github.com/ByLCY/vellum/export"
	"github.com/ByLCY/vellum/geometry"
	"github.com/ByLCY/vellum/layer"
	"github.com/ByLCY/vellum/publish"
	"github.com/ByLCY/vellum/renderer"
	"github.com/ByLCY/vellum/source"
)

// ErrUnknownCommand is returned for command names the runner does not know.
var ErrUnknownCommand = errors.New("未知命令")

// Renderer is what the runner needs from a rendering backend.
type Renderer interface {
	renderer.Renderer
	renderer.Typesetter
}

// Runner executes scripts against one session.
type Runner struct {
	Session   *editor.Session
	Renderer  Renderer
	Exporter  *export.Exporter
	Publisher *publish.Publisher // optional
	Auth      *publish.Auth      // optional
	// Mailbox returns the last code delivered to email; used by "login".
	Mailbox func(email string) (string, bool)
	// Email is used by "login" when no address is given.
	Email     string
	Templates []source.Template
	Data      any
	OutDir    string
	DPR       float64
	Timeout   time.Duration
	Out       io.Writer
	Log       *slog.Logger

	lastMeme string
	exported []string
}

// Exported returns the files written by export and snapshot commands.
func (r *Runner) Exported() []string { return append([]string(nil), r.exported...) }

// Run executes every command in order and stops at the first error.
func (r *Runner) Run(ctx context.Context, s *Script) error {
	if r.Log == nil {
		r.Log = slog.Default()
	}
	if r.Out == nil {
		r.Out = io.Discard
	}
	for _, cmd := range s.Commands {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.Log.Debug("执行命令", "cmd", cmd.Name, "pos", cmd.Pos.String())
		if err := r.exec(ctx, cmd); err != nil {
			return fmt.Errorf("%s: %s: %w", cmd.Pos, cmd.Name, err)
		}
	}
	return nil
}

func (r *Runner) exec(ctx context.Context, cmd *Command) error {
	a := args{cmd: cmd, data: r.Data}
	s := r.Session
	name := strings.ToLower(cmd.Name)
	switch name {
	case "template":
		if err := a.want(1, 1); err != nil {
			return err
		}
		tpl, ok := source.Find(r.Templates, a.str(0))
		if !ok {
			return fmt.Errorf("找不到模板 %q", a.str(0))
		}
		img, err := tpl.Open()
		if err != nil {
			return err
		}
		s.SetImage(img)
	case "image", "upload":
		if err := a.want(1, 2); err != nil {
			return err
		}
		return r.load(ctx, a.str(0), a.str(1))
	case "add":
		if err := a.want(0, 1); err != nil {
			return err
		}
		if _, err := s.AddLayer(); err != nil {
			return err
		}
		if a.len() == 1 {
			text := a.str(0)
			return s.UpdateSelected(layer.Patch{Text: &text})
		}
	case "text":
		if err := a.want(1, 1); err != nil {
			return err
		}
		text := a.str(0)
		return r.updateSelected(layer.Patch{Text: &text})
	case "font":
		if err := a.want(1, -1); err != nil {
			return err
		}
		family, err := layer.ParseFontFamily(joinArgs(a))
		if err != nil {
			return err
		}
		return r.updateSelected(layer.Patch{FontFamily: &family})
	case "size":
		if err := a.want(1, 1); err != nil {
			return err
		}
		size, err := a.int(0)
		if err != nil {
			return err
		}
		return r.updateSelected(layer.Patch{FontSize: &size})
	case "color":
		if err := a.want(1, 1); err != nil {
			return err
		}
		c, err := layer.ParseColor(a.str(0))
		if err != nil {
			return err
		}
		return r.updateSelected(layer.Patch{Color: &c})
	case "box":
		if err := a.want(4, 4); err != nil {
			return err
		}
		v, err := a.floats(0, 4)
		if err != nil {
			return err
		}
		return r.updateSelected(layer.Patch{Bounds: &geometry.Rect{X: v[0], Y: v[1], Width: v[2], Height: v[3]}})
	case "select":
		if err := a.want(1, 1); err != nil {
			return err
		}
		id, err := a.int(0)
		if err != nil {
			return err
		}
		if !s.Select(id) {
			return fmt.Errorf("图层 %d 不存在", id)
		}
	case "deselect":
		s.ClearSelection()
	case "raise":
		id, err := r.layerArg(a)
		if err != nil {
			return err
		}
		s.Raise(id)
	case "delete":
		id, err := r.layerArg(a)
		if err != nil {
			return err
		}
		s.DeleteLayer(id)
	case "down", "move":
		if err := a.want(2, 2); err != nil {
			return err
		}
		p, err := r.pointer(a, 0)
		if err != nil {
			return err
		}
		if name == "down" {
			s.PointerDown(p)
		} else {
			s.PointerMove(p)
		}
	case "up":
		s.PointerUp()
	case "drag":
		if err := a.want(4, 4); err != nil {
			return err
		}
		from, err := r.pointer(a, 0)
		if err != nil {
			return err
		}
		to, err := r.pointer(a, 2)
		if err != nil {
			return err
		}
		s.Drag(from, to)
	case "key":
		if err := a.want(1, 2); err != nil {
			return err
		}
		s.KeyDown(editor.Key(a.str(0)), a.str(1) == "editing")
	case "zoom":
		if err := a.want(1, 1); err != nil {
			return err
		}
		switch a.str(0) {
		case "in":
			s.ZoomIn()
		case "out":
			s.ZoomOut()
		case "reset":
			s.ZoomReset()
		default:
			return fmt.Errorf("未知的缩放操作 %q", a.str(0))
		}
	case "wheel":
		if err := a.want(1, 2); err != nil {
			return err
		}
		dy, err := a.float(0)
		if err != nil {
			return err
		}
		s.Wheel(dy, a.str(1) != "")
	case "export":
		if err := a.want(0, 1); err != nil {
			return err
		}
		return r.export(ctx, a.str(0))
	case "snapshot":
		if err := a.want(1, 1); err != nil {
			return err
		}
		return r.snapshot(a.str(0))
	case "debug":
		if err := a.want(1, 1); err != nil {
			return err
		}
		path := r.outPath(a.str(0))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("创建调试目录失败: %w", err)
		}
		return s.WriteDebugJSON(path, r.Renderer)
	case "guest":
		if r.Auth == nil {
			return errors.New("未配置身份服务")
		}
		u := r.Auth.SignInAsGuest()
		fmt.Fprintf(r.Out, "guest %s\n", u.ID)
	case "login":
		if err := a.want(0, 1); err != nil {
			return err
		}
		email := a.str(0)
		if email == "" {
			email = r.Email
		}
		if email == "" {
			return errors.New("未指定登录邮箱")
		}
		return r.login(ctx, email)
	case "publish":
		return r.publish(ctx)
	case "upvote":
		if err := a.want(0, 1); err != nil {
			return err
		}
		return r.upvote(ctx, a.str(0))
	case "feed":
		if err := a.want(0, 1); err != nil {
			return err
		}
		limit := 0
		if a.len() == 1 {
			n, err := a.int(0)
			if err != nil {
				return err
			}
			limit = n
		}
		return r.feed(ctx, limit)
	default:
		return ErrUnknownCommand
	}
	return nil
}

func (r *Runner) load(ctx context.Context, path, mimeType string) error {
	if mimeType == "" {
		img, err := source.ReadFile(path)
		if err != nil {
			return err
		}
		r.Session.SetImage(img)
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("读取图片 %s 失败: %w", path, err)
	}
	return r.Session.LoadImage(ctx, filepath.Base(path), mimeType, data)
}

func (r *Runner) updateSelected(p layer.Patch) error {
	if r.Session.SelectedID() == 0 {
		r.Log.Warn("没有选中的图层，忽略修改")
	}
	return r.Session.UpdateSelected(p)
}

// layerArg returns the optional id argument, defaulting to the selection.
func (r *Runner) layerArg(a args) (int, error) {
	if err := a.want(0, 1); err != nil {
		return 0, err
	}
	if a.len() == 1 {
		return a.int(0)
	}
	id := r.Session.SelectedID()
	if id == 0 {
		return 0, errors.New("没有选中的图层")
	}
	return id, nil
}

// pointer reads a display-space point at argument i and maps it into
// logical coordinates for the current zoom.
func (r *Runner) pointer(a args, i int) (geometry.Point, error) {
	v, err := a.floats(i, 2)
	if err != nil {
		return geometry.Point{}, err
	}
	vp := r.Session.Viewport(r.DPR)
	return vp.ToLogical(geometry.Point{X: v[0], Y: v[1]}), nil
}

func (r *Runner) context(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.Timeout > 0 {
		return context.WithTimeout(ctx, r.Timeout)
	}
	return context.WithCancel(ctx)
}

func (r *Runner) export(ctx context.Context, name string) error {
	ctx, cancel := r.context(ctx)
	defer cancel()
	res, err := r.Exporter.Export(ctx, r.Session.Scene())
	if err != nil {
		return err
	}
	if name == "" {
		name = res.Filename
	}
	path := r.outPath(name)
	if err := writeFile(path, res.Data); err != nil {
		return err
	}
	r.exported = append(r.exported, path)
	fmt.Fprintf(r.Out, "exported %s (%dx%d)\n", path, res.Width, res.Height)
	return nil
}

func (r *Runner) snapshot(name string) error {
	img, err := renderer.Interactive(r.Renderer, r.Session.Scene(), r.Session.Viewport(r.DPR))
	if err != nil {
		return err
	}
	path := r.outPath(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("编码 PNG 失败: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	r.exported = append(r.exported, path)
	return nil
}

func (r *Runner) login(ctx context.Context, email string) error {
	if r.Auth == nil || r.Mailbox == nil {
		return errors.New("未配置身份服务")
	}
	form := &publish.SignInForm{Email: email}
	if err := form.RequestCode(ctx, r.Auth); err != nil {
		return err
	}
	code, ok := r.Mailbox(email)
	if !ok {
		return fmt.Errorf("没有收到发往 %s 的验证码", email)
	}
	form.Code = code
	u, err := form.Submit(ctx, r.Auth)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.Out, "signed in %s\n", u.Email)
	return nil
}

func (r *Runner) publish(ctx context.Context) error {
	if r.Publisher == nil {
		return errors.New("未配置发布服务")
	}
	ctx, cancel := r.context(ctx)
	defer cancel()
	meme, err := r.Publisher.Publish(ctx, r.Session.Scene())
	if err != nil {
		return err
	}
	r.lastMeme = meme.ID
	fmt.Fprintf(r.Out, "published %s %s\n", meme.ID, meme.ImageURL)
	return nil
}

func (r *Runner) upvote(ctx context.Context, id string) error {
	if r.Publisher == nil {
		return errors.New("未配置发布服务")
	}
	if id == "" {
		id = r.lastMeme
	}
	if id == "" {
		return errors.New("没有可点赞的作品")
	}
	on, err := r.Publisher.ToggleUpvote(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.Out, "upvote %s %t\n", id, on)
	return nil
}

func (r *Runner) feed(ctx context.Context, limit int) error {
	if r.Publisher == nil {
		return errors.New("未配置发布服务")
	}
	memes, err := r.Publisher.Recent(ctx, limit)
	if err != nil {
		return err
	}
	now := time.Now()
	for _, m := range memes {
		fmt.Fprintf(r.Out, "%s\t%s\t%d\t%s\n", m.ID, m.Age(now), m.Upvotes, m.ImageURL)
	}
	return nil
}

func (r *Runner) outPath(name string) string {
	if filepath.IsAbs(name) || r.OutDir == "" {
		return name
	}
	return filepath.Join(r.OutDir, name)
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("写入文件 %s 失败: %w", path, err)
	}
	return nil
}

func joinArgs(a args) string {
	parts := make([]string, a.len())
	for i := range parts {
		parts[i] = a.str(i)
	}
	return strings.Join(parts, " ")
}
