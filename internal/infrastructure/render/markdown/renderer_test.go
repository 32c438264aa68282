package markdown

import (
	"strings"
	"testing"
)

func TestBlockRendersGFM(t *testing.T) {
	r := New()
	out, err := r.Block("**Normalization** removes ~~redundancy~~.\n\n| a | b |\n|---|---|\n| 1 | 2 |")
	if err != nil {
		t.Fatalf("Block() error = %v", err)
	}
	for _, want := range []string{"<strong>Normalization</strong>", "<del>redundancy</del>", "<table>"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %s", want, out)
		}
	}
}

func TestBlockEscapesRawHTML(t *testing.T) {
	out, err := New().Block("<script>alert(1)</script>")
	if err != nil {
		t.Fatalf("Block() error = %v", err)
	}
	if strings.Contains(out, "<script>") {
		t.Fatalf("raw html must not pass through: %s", out)
	}
}

func TestInlineDropsParagraphWrapper(t *testing.T) {
	r := New()
	tests := []struct {
		in   string
		want string
	}{
		{in: "2. What is *X*", want: "2. What is <em>X</em>"},
		{in: "", want: ""},
	}
	for _, tt := range tests {
		got, err := r.Inline(tt.in)
		if err != nil {
			t.Fatalf("Inline(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("Inline(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}
