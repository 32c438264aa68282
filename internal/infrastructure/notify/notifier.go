package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/kirillkom/question-paper-analyzer/internal/core/ports"
)

// LogNotifier records user notices in the structured log.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, message string) {
	n.logger.Info("user_notice", "message", message)
}

// Console prints notices and links for terminal users.
type Console struct {
	mu  sync.Mutex
	out io.Writer
}

func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

func (c *Console) Notify(_ context.Context, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "! %s\n", message)
}

func (c *Console) Open(_ context.Context, url string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintf(c.out, "Video: %s\n", url)
	return err
}

type multiNotifier []ports.Notifier

// Notifiers fans a notice out to every non-nil notifier.
func Notifiers(notifiers ...ports.Notifier) ports.Notifier {
	out := make(multiNotifier, 0, len(notifiers))
	for _, n := range notifiers {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}

func (m multiNotifier) Notify(ctx context.Context, message string) {
	for _, n := range m {
		n.Notify(ctx, message)
	}
}

type multiOpener []ports.LinkOpener

// Openers hands a link to every non-nil opener and joins their errors.
func Openers(openers ...ports.LinkOpener) ports.LinkOpener {
	out := make(multiOpener, 0, len(openers))
	for _, o := range openers {
		if o != nil {
			out = append(out, o)
		}
	}
	return out
}

func (m multiOpener) Open(ctx context.Context, url string) error {
	var errs []error
	for _, o := range m {
		if err := o.Open(ctx, url); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
