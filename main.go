package main

import (
	"context"
	"encoding/json"
	"fmt"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/tdewolff/argp"

	"github.com/ByLCY/vellum/config"
	"github.com/ByLCY/vellum/editor"
	"github.com/ByLCY/vellum/export"
	"github.com/ByLCY/vellum/publish"
	canvasrenderer "github.com/ByLCY/vellum/renderer/canvas"
	"github.com/ByLCY/vellum/script"
	"github.com/ByLCY/vellum/source"
)

// Run executes a session script.
type Run struct {
	Config string  `short:"c" desc:"配置文件路径（默认 ~/.vellum.toml）"`
	Out    string  `short:"o" desc:"输出目录"`
	Data   string  `desc:"绑定到脚本 ${...} 占位符的 JSON 数据"`
	Debug  string  `desc:"会话调试 JSON 输出路径"`
	DPR    float64 `desc:"设备像素比"`
	Script string  `index:"0" desc:"会话脚本路径"`
}

// Templates lists the available templates.
type Templates struct {
	Config string `short:"c" desc:"配置文件路径（默认 ~/.vellum.toml）"`
	Thumbs string `desc:"缩略图 PNG 输出目录"`
}

const thumbSize = 160

func main() {
	root := argp.NewCmd(&Run{}, "vellum: 图片配字编辑器")
	root.AddCmd(&Templates{}, "templates", "列出可用模板")
	root.Parse()
	root.PrintHelp()
}

func setup(path string) (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, nil, err
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))
	slog.SetDefault(log)
	return cfg, log, nil
}

func templates(cfg config.Config) ([]source.Template, error) {
	all := source.Builtin()
	if cfg.TemplatesDir == "" {
		return all, nil
	}
	extra, err := source.LoadTemplateDir(cfg.TemplatesDir)
	if err != nil {
		return nil, err
	}
	return append(all, extra...), nil
}

func (cmd *Run) Run() error {
	if cmd.Script == "" {
		return argp.ShowUsage
	}
	cfg, log, err := setup(cmd.Config)
	if err != nil {
		return err
	}
	if cmd.Out != "" {
		cfg.OutputDir = cmd.Out
	}
	if cmd.DPR > 0 {
		cfg.DevicePixelRatio = cmd.DPR
	}

	var data any
	if cmd.Data != "" {
		if err := json.Unmarshal([]byte(cmd.Data), &data); err != nil {
			return fmt.Errorf("解析 data JSON 失败: %w", err)
		}
	}

	tpls, err := templates(cfg)
	if err != nil {
		return err
	}

	f, err := os.Open(cmd.Script)
	if err != nil {
		return fmt.Errorf("无法打开脚本 %s: %w", cmd.Script, err)
	}
	defer f.Close()
	s, err := script.Parse(f)
	if err != nil {
		return fmt.Errorf("解析脚本失败: %w", err)
	}

	r := canvasrenderer.NewRenderer(log)
	exp := export.New(r, export.WithQuality(cfg.ExportQuality), export.WithLogger(log))

	var memOpts []publish.MemoryOption
	if cfg.BlobDir != "" {
		memOpts = append(memOpts, publish.WithBlobDir(cfg.BlobDir))
	}
	mem := publish.NewMemory(memOpts...)
	mailbox := &publish.Mailbox{}
	auth := publish.NewAuth(mailbox)
	if cfg.User.Guest {
		auth.SignInAsGuest()
	}

	session := editor.New(
		editor.WithLogger(log),
		editor.WithMaxDisplay(cfg.DisplayWidth, cfg.DisplayHeight),
	)
	runner := &script.Runner{
		Session:   session,
		Renderer:  r,
		Exporter:  exp,
		Publisher: publish.NewPublisher(auth, mem, mem, exp, publish.WithPublishLogger(log)),
		Auth:      auth,
		Mailbox:   mailbox.Last,
		Email:     cfg.User.Email,
		Templates: tpls,
		Data:      data,
		OutDir:    cfg.OutputDir,
		DPR:       cfg.DevicePixelRatio,
		Timeout:   time.Duration(cfg.ExportTimeout),
		Out:       os.Stdout,
		Log:       log,
	}
	if err := runner.Run(context.Background(), s); err != nil {
		return fmt.Errorf("执行脚本失败: %w", err)
	}

	if cmd.Debug != "" {
		if err := os.MkdirAll(filepath.Dir(cmd.Debug), 0o755); err != nil {
			return fmt.Errorf("创建调试目录失败: %w", err)
		}
		if err := session.WriteDebugJSON(cmd.Debug, r); err != nil {
			return fmt.Errorf("输出调试 JSON 失败: %w", err)
		}
	}
	for _, path := range runner.Exported() {
		fmt.Printf("已生成：%s\n", path)
	}
	return nil
}

func (cmd *Templates) Run() error {
	cfg, _, err := setup(cmd.Config)
	if err != nil {
		return err
	}
	tpls, err := templates(cfg)
	if err != nil {
		return err
	}
	if cmd.Thumbs != "" {
		if err := os.MkdirAll(cmd.Thumbs, 0o755); err != nil {
			return fmt.Errorf("创建缩略图目录失败: %w", err)
		}
	}
	for _, t := range tpls {
		img, err := t.Open()
		if err != nil {
			return err
		}
		fmt.Printf("%-12s %dx%d\n", t.Name, img.Width(), img.Height())
		if cmd.Thumbs == "" {
			continue
		}
		if err := writeThumb(filepath.Join(cmd.Thumbs, t.Name+".png"), img); err != nil {
			return err
		}
	}
	return nil
}

func writeThumb(path string, img *source.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("创建缩略图失败: %w", err)
	}
	if err := png.Encode(f, source.Thumbnail(img.Bitmap, thumbSize, thumbSize)); err != nil {
		f.Close()
		return fmt.Errorf("编码缩略图失败: %w", err)
	}
	return f.Close()
}
