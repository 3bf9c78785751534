// Package fonts maps the editor's font family names to embedded font
// programs. The families are substitutes with similar weight and width; no
// system fonts are read.
package fonts

import (
	"fmt"
	"strings"

	"codeberg.org/go-fonts/liberation/liberationsansbold"
	"codeberg.org/go-fonts/liberation/liberationserifregular"
	"github.com/go-fonts/latin-modern/lmsans10regular"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/goregular"
)

// FallbackName is the family used when a font cannot be loaded.
const FallbackName = "Go Regular"

var registry = map[string]func() []byte{
	"impact":        func() []byte { return gobold.TTF },
	"arial black":   func() []byte { return liberationsansbold.TTF },
	"comic sans ms": func() []byte { return gomedium.TTF },
	"verdana":       func() []byte { return lmsans10regular.TTF },
	"georgia":       func() []byte { return liberationserifregular.TTF },
	"go regular":    func() []byte { return goregular.TTF },
}

// Load 返回字体族对应的字体数据，名称不区分大小写。
func Load(family string) ([]byte, error) {
	load, ok := registry[strings.ToLower(strings.TrimSpace(family))]
	if !ok {
		return nil, fmt.Errorf("找不到内置字体 %q", family)
	}
	return load(), nil
}

// Fallback returns the fallback font program.
func Fallback() []byte { return goregular.TTF }
