// Package config loads vellum's TOML settings file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
)

// DefaultFile is the settings file looked up when no path is given.
const DefaultFile = "~/.vellum.toml"

// Duration is a time.Duration written as a Go duration string ("10s").
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return fmt.Errorf("无效的时长 %q: %w", b, err)
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// User holds the identity used by scripted sessions.
type User struct {
	Email string `toml:"email"`
	Guest bool   `toml:"guest"`
}

// Config is the settings file. Every field is optional.
type Config struct {
	OutputDir        string   `toml:"output_dir"`
	TemplatesDir     string   `toml:"templates_dir"`
	BlobDir          string   `toml:"blob_dir"`
	DevicePixelRatio float64  `toml:"device_pixel_ratio"`
	DisplayWidth     float64  `toml:"display_width"`
	DisplayHeight    float64  `toml:"display_height"`
	ExportQuality    int      `toml:"export_quality"`
	ExportTimeout    Duration `toml:"export_timeout"`
	LogLevel         string   `toml:"log_level"`
	User             User     `toml:"user"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		OutputDir:        "output",
		DevicePixelRatio: 1,
		DisplayWidth:     600,
		DisplayHeight:    400,
		ExportQuality:    95,
		ExportTimeout:    Duration(10 * time.Second),
		LogLevel:         "info",
	}
}

// DefaultPath returns DefaultFile with the home directory expanded.
func DefaultPath() (string, error) {
	return homedir.Expand(DefaultFile)
}

// Load reads path over the defaults. An empty path means DefaultPath. A
// missing file is not an error; a malformed one is.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return cfg, fmt.Errorf("无法定位配置文件: %w", err)
		}
		path = p
	}
	path, err := homedir.Expand(path)
	if err != nil {
		return cfg, fmt.Errorf("无法展开路径 %s: %w", path, err)
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	} else if err != nil {
		return cfg, fmt.Errorf("读取配置文件失败: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("解析配置文件 %s 失败: %w", path, err)
	}
	if err := cfg.expand(); err != nil {
		return Default(), err
	}
	return cfg, cfg.Validate()
}

func (c *Config) expand() error {
	for _, p := range []*string{&c.OutputDir, &c.TemplatesDir, &c.BlobDir} {
		v, err := homedir.Expand(*p)
		if err != nil {
			return fmt.Errorf("无法展开路径 %s: %w", *p, err)
		}
		*p = v
	}
	return nil
}

// Validate rejects values the editor cannot work with.
func (c Config) Validate() error {
	if c.DevicePixelRatio <= 0 {
		return fmt.Errorf("device_pixel_ratio 必须为正数，得到 %v", c.DevicePixelRatio)
	}
	if c.DisplayWidth <= 0 || c.DisplayHeight <= 0 {
		return fmt.Errorf("display_width 与 display_height 必须为正数，得到 %vx%v", c.DisplayWidth, c.DisplayHeight)
	}
	if c.ExportQuality < 1 || c.ExportQuality > 100 {
		return fmt.Errorf("export_quality 必须在 1 到 100 之间，得到 %d", c.ExportQuality)
	}
	if c.ExportTimeout < 0 {
		return fmt.Errorf("export_timeout 不能为负")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Level returns the configured log level.
func (c Config) Level() slog.Level {
	l, _ := ParseLevel(c.LogLevel)
	return l
}

// ParseLevel parses a slog level name such as "debug" or "warn+2". An empty
// string means info and "warning" is accepted for warn.
func ParseLevel(s string) (slog.Level, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "":
		return slog.LevelInfo, nil
	case "warning":
		return slog.LevelWarn, nil
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("未知的日志级别 %q: %w", s, err)
	}
	return l, nil
}
