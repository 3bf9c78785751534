package fonts

import (
	"testing"

	"github.com/ByLCY/vellum/layer"
)

func TestEveryFamilyHasAFont(t *testing.T) {
	for _, f := range layer.Families() {
		data, err := Load(string(f))
		if err != nil {
			t.Fatalf("Load(%q) failed: %v", f, err)
		}
		if len(data) == 0 {
			t.Fatalf("字体 %q 数据为空", f)
		}
	}
}

func TestLoadUnknown(t *testing.T) {
	if _, err := Load("Papyrus"); err == nil {
		t.Fatalf("expected error for unknown family")
	}
	if len(Fallback()) == 0 {
		t.Fatalf("fallback font must not be empty")
	}
}
