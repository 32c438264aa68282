package markdown

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"
)

var leadingOrdinal = regexp.MustCompile(`^(\d+)\.(\s)`)

// Renderer turns the markdown the question service returns (question text,
// answers, summaries) into HTML fragments. Raw HTML in the source is not
// passed through.
type Renderer struct {
	engine goldmark.Markdown
}

func New() *Renderer {
	return &Renderer{
		engine: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				extension.Typographer,
			),
			goldmark.WithRendererOptions(
				htmlrenderer.WithHardWraps(),
				htmlrenderer.WithXHTML(),
			),
		),
	}
}

// Block renders a full markdown document.
func (r *Renderer) Block(source string) (string, error) {
	text := strings.TrimSpace(source)
	if text == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := r.engine.Convert([]byte(text), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// Inline renders a one-line fragment such as a question title, dropping the
// paragraph wrapper goldmark adds around it. A leading "12. " is kept as
// text instead of starting an ordered list.
func (r *Renderer) Inline(source string) (string, error) {
	out, err := r.Block(leadingOrdinal.ReplaceAllString(strings.TrimSpace(source), `$1\.$2`))
	if err != nil {
		return "", err
	}
	if strings.HasPrefix(out, "<p>") && strings.HasSuffix(out, "</p>") && strings.Count(out, "<p>") == 1 {
		out = strings.TrimSuffix(strings.TrimPrefix(out, "<p>"), "</p>")
	}
	return out, nil
}
