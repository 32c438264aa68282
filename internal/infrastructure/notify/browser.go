package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"

	"github.com/pkg/browser"
)

func init() {
	// Launcher output stays off the CLI stdout and the log stream.
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard
}

// BrowserOpener launches the system browser for found video links.
type BrowserOpener struct {
	logger *slog.Logger
	run    func(link string) error
}

func NewBrowserOpener(logger *slog.Logger) *BrowserOpener {
	if logger == nil {
		logger = slog.Default()
	}
	return &BrowserOpener{logger: logger, run: browser.OpenURL}
}

func (b *BrowserOpener) Open(ctx context.Context, link string) error {
	parsed, err := url.Parse(link)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return fmt.Errorf("refusing to open %q: not an http(s) url", link)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := b.run(parsed.String()); err != nil {
		return fmt.Errorf("open browser: %w", err)
	}
	b.logger.Info("video_link_opened", "url", parsed.String())
	return nil
}
