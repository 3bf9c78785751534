// Package binding fills ${path} placeholders in caption text from
// decoded JSON data.
package binding

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var placeholder = regexp.MustCompile(`\$\{([^}]+)\}`)

// Interpolate replaces ${a.b[0]} placeholders with values from data.
// ${path|fallback} yields fallback when path does not resolve; otherwise
// an unresolved placeholder is left as written.
func Interpolate(text string, data any) string {
	if !strings.Contains(text, "${") {
		return text
	}
	return placeholder.ReplaceAllStringFunc(text, func(match string) string {
		expr := match[2 : len(match)-1]
		path, fallback, hasFallback := strings.Cut(expr, "|")
		path = strings.TrimSpace(path)
		if v, ok := Lookup(data, path); ok {
			return format(v)
		}
		if hasFallback {
			return fallback
		}
		return match
	})
}

// Lookup walks a dotted path with optional [n] indexes through maps and
// slices as produced by encoding/json.
func Lookup(data any, path string) (any, bool) {
	if data == nil || path == "" {
		return nil, false
	}
	cur := data
	for _, seg := range strings.Split(path, ".") {
		name, idx, ok := splitIndexes(seg)
		if !ok {
			return nil, false
		}
		if name != "" {
			m, isMap := cur.(map[string]any)
			if !isMap {
				return nil, false
			}
			if cur, ok = m[name]; !ok {
				return nil, false
			}
		}
		for _, i := range idx {
			list, isList := cur.([]any)
			if !isList || i < 0 || i >= len(list) {
				return nil, false
			}
			cur = list[i]
		}
	}
	return cur, true
}

func splitIndexes(seg string) (string, []int, bool) {
	open := strings.IndexByte(seg, '[')
	if open < 0 {
		return seg, nil, true
	}
	name, rest := seg[:open], seg[open:]
	var idx []int
	for rest != "" {
		end := strings.IndexByte(rest, ']')
		if rest[0] != '[' || end < 0 {
			return "", nil, false
		}
		n, err := strconv.Atoi(rest[1:end])
		if err != nil {
			return "", nil, false
		}
		idx = append(idx, n)
		rest = rest[end+1:]
	}
	return name, idx, true
}

// format prints whole JSON numbers without a trailing exponent or fraction.
func format(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}
