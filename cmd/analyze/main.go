package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/kirillkom/question-paper-analyzer/internal/bootstrap"
	"github.com/kirillkom/question-paper-analyzer/internal/config"
	"github.com/kirillkom/question-paper-analyzer/internal/core/domain"
	"github.com/kirillkom/question-paper-analyzer/internal/core/usecase"
	"github.com/kirillkom/question-paper-analyzer/internal/infrastructure/export/xlsx"
	"github.com/kirillkom/question-paper-analyzer/internal/infrastructure/notify"
	"github.com/kirillkom/question-paper-analyzer/internal/observability/logging"
)

type options struct {
	file   string
	xlsx   string
	solve  int
	video  int
	expand bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return 1
	}
	logger := logging.NewJSONLoggerTo(stderr, "analyze", cfg.LogLevel)

	console := notify.NewConsole(stdout)
	surface := bootstrap.Surface{Notifier: console, Opener: console}
	if cfg.OpenVideoInBrowser {
		surface.Opener = notify.Openers(console, notify.NewBrowserOpener(logger))
	}
	app, err := bootstrap.NewWithSurface(cfg, logger, "analyze", surface)
	if err != nil {
		fmt.Fprintf(stderr, "bootstrap: %v\n", err)
		return 1
	}
	defer app.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-ctx.Done()
		app.Analyzer.Close()
	}()

	if err := analyze(app.Analyzer, opts, stdout); err != nil {
		fmt.Fprintf(stderr, "analyze: %v\n", err)
		return 1
	}
	return 0
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.file, "file", "", "question paper to upload (required)")
	fs.StringVar(&opts.xlsx, "xlsx", "", "write the classified questions to this spreadsheet")
	fs.IntVar(&opts.solve, "solve", 0, "request the solution for the N-th question in display order")
	fs.IntVar(&opts.video, "video", 0, "look up a video for the N-th question in display order")
	fs.BoolVar(&opts.expand, "expand", false, "list the questions of every group")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if strings.TrimSpace(opts.file) == "" {
		fmt.Fprintln(stderr, "-file is required")
		fs.Usage()
		return options{}, errors.New("missing -file")
	}
	if opts.solve < 0 || opts.video < 0 {
		fmt.Fprintln(stderr, "-solve and -video take a 1-based question number")
		return options{}, errors.New("negative question number")
	}
	return opts, nil
}

func analyze(analyzer *usecase.Analyzer, opts options, out io.Writer) error {
	content, err := os.ReadFile(opts.file)
	if err != nil {
		return fmt.Errorf("read %s: %w", opts.file, err)
	}
	filename := filepath.Base(opts.file)
	contentType := mime.TypeByExtension(filepath.Ext(filename))
	if contentType == "" {
		contentType = "application/pdf"
	}

	if _, err := analyzer.SelectFile(domain.Document{
		Filename:    filename,
		ContentType: contentType,
		Content:     content,
	}); err != nil {
		return err
	}
	analyzer.Wait()

	page := analyzer.View()
	if !page.ResultsVisible {
		if page.StatusText != "" {
			return errors.New(page.StatusText)
		}
		return fmt.Errorf("upload ended in status %s", page.Status)
	}

	if opts.expand || opts.solve > 0 || opts.video > 0 {
		for _, category := range domain.Categories {
			if _, err := analyzer.ToggleGroup(category); err != nil {
				return err
			}
		}
		page = analyzer.View()
	}
	printPage(out, page)

	if opts.solve > 0 {
		if err := solve(analyzer, page, opts.solve, out); err != nil {
			return err
		}
	}
	if opts.video > 0 {
		if err := lookupVideo(analyzer, page, opts.video); err != nil {
			return err
		}
	}
	if opts.xlsx != "" {
		if err := export(analyzer, filename, opts.xlsx); err != nil {
			return err
		}
		fmt.Fprintf(out, "Wrote %s\n", opts.xlsx)
	}
	return nil
}

func printPage(out io.Writer, page domain.PageView) {
	fmt.Fprintf(out, "%s: %s\n", page.Filename, page.Banner)
	for _, group := range page.Groups {
		fmt.Fprintf(out, "\n%s (%d)\n", group.Label, group.Count)
		if group.Placeholder != "" {
			fmt.Fprintf(out, "  %s\n", group.Placeholder)
		}
		for _, q := range group.Questions {
			fmt.Fprintf(out, "  %s %s\n", q.Text, q.Annotation)
		}
	}
	if page.Summary.Kind == domain.PanelPresent {
		fmt.Fprintf(out, "\nSummary\n%s\n", page.Summary.Text)
	}
}

// pick resolves a 1-based position across every expanded group in display
// order.
func pick(page domain.PageView, n int) (domain.Category, string, error) {
	i := n
	for _, group := range page.Groups {
		if i <= len(group.Questions) {
			return group.Category, group.Questions[i-1].Text, nil
		}
		i -= len(group.Questions)
	}
	return 0, "", domain.WrapError(domain.ErrInvalidInput, "pick question", fmt.Errorf("no question number %d", n))
}

func solve(analyzer *usecase.Analyzer, page domain.PageView, n int, out io.Writer) error {
	category, question, err := pick(page, n)
	if err != nil {
		return err
	}
	session, err := analyzer.SelectQuestion(category, question)
	if err != nil {
		return err
	}
	if _, err := analyzer.ChooseSolution(session.ID); err != nil {
		return err
	}
	analyzer.Wait()

	session, err = analyzer.Session(session.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nSolution: %s\n%s\n", question, session.Answer)
	return nil
}

// lookupVideo leaves reporting to the console surface: a found link is
// printed by the opener, anything else by the notifier.
func lookupVideo(analyzer *usecase.Analyzer, page domain.PageView, n int) error {
	category, question, err := pick(page, n)
	if err != nil {
		return err
	}
	session, err := analyzer.SelectQuestion(category, question)
	if err != nil {
		return err
	}
	if _, err := analyzer.ChooseVideo(session.ID); err != nil {
		return err
	}
	analyzer.Wait()
	return nil
}

func export(analyzer *usecase.Analyzer, filename, path string) (err error) {
	result, summary := analyzer.Snapshot()
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()
	return xlsx.NewExporter().Write(f, filename, result, summary)
}
