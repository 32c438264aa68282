package questionapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/question-paper-analyzer/internal/core/domain"
	"github.com/kirillkom/question-paper-analyzer/internal/core/ports"
	"github.com/kirillkom/question-paper-analyzer/internal/infrastructure/resilience"
)

const (
	uploadField = "file"

	opUpload    = "upload"
	opSummarize = "get-summary"
	opAnswer    = "get-answer"
	opVideo     = "get-video"
)

// Client talks to the question paper service over HTTP/JSON.
type Client struct {
	baseURL    string
	httpClient *http.Client
	executor   *resilience.Executor
	observer   ports.CallObserver
	logger     *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

func WithExecutor(executor *resilience.Executor) Option {
	return func(c *Client) {
		c.executor = executor
	}
}

func WithObserver(observer ports.CallObserver) Option {
	return func(c *Client) {
		c.observer = observer
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type uploadResponse struct {
	Questions    map[string][]any `json:"questions"`
	Length       *int             `json:"length"`
	AllQuestions []string         `json:"all_questions"`
}

type summaryRequest struct {
	Questions []string `json:"questions"`
}

type summaryResponse struct {
	Summary string `json:"summary"`
}

type questionRequest struct {
	Question string `json:"question"`
}

type answerResponse struct {
	Answer string `json:"answer"`
}

type videoResponse struct {
	VideoURL *string `json:"videoUrl"`
}

func (c *Client) Upload(ctx context.Context, doc domain.Document) (*domain.ClassificationResult, error) {
	if strings.TrimSpace(doc.Filename) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, opUpload, errors.New("filename is required"))
	}
	var resp uploadResponse
	err := c.call(ctx, opUpload, classifyUpload, func(ctx context.Context) error {
		resp = uploadResponse{}
		return c.postFile(ctx, "/upload", opUpload, schemaUpload, doc, &resp)
	})
	if err != nil {
		return nil, err
	}
	return c.normalizeUpload(resp), nil
}

func (c *Client) Summarize(ctx context.Context, questions []string) (string, error) {
	var resp summaryResponse
	err := c.call(ctx, opSummarize, classifyError, func(ctx context.Context) error {
		return c.postJSON(ctx, "/get-summary", opSummarize, schemaSummary, summaryRequest{Questions: questions}, &resp)
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Summary), nil
}

func (c *Client) Answer(ctx context.Context, question string) (string, error) {
	var resp answerResponse
	err := c.call(ctx, opAnswer, classifyError, func(ctx context.Context) error {
		return c.postJSON(ctx, "/get-answer", opAnswer, schemaAnswer, questionRequest{Question: question}, &resp)
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Answer), nil
}

// FindVideo returns an empty URL when the service found nothing.
func (c *Client) FindVideo(ctx context.Context, question string) (string, error) {
	var resp videoResponse
	err := c.call(ctx, opVideo, classifyError, func(ctx context.Context) error {
		return c.postJSON(ctx, "/get-video", opVideo, schemaVideo, questionRequest{Question: question}, &resp)
	})
	if err != nil {
		return "", err
	}
	if resp.VideoURL == nil {
		return "", nil
	}
	return strings.TrimSpace(*resp.VideoURL), nil
}

func (c *Client) call(ctx context.Context, operation string, classifier resilience.ErrorClassifier, fn func(context.Context) error) error {
	if c.observer != nil {
		c.observer.CallStarted(operation)
	}
	started := time.Now()
	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, operation, fn, classifier)
	} else {
		err = fn(ctx)
	}
	err = wrapError(operation, err)
	if c.observer != nil {
		c.observer.ObserveCall(operation, time.Since(started), err)
	}
	if err != nil && ctx.Err() == nil {
		c.logger.Warn("remote_call_failed", "operation", operation, "duration_ms", time.Since(started).Milliseconds(), "error", err)
	}
	return err
}

// normalizeUpload maps decorated category labels onto the enum and loosely
// shaped entries onto Question records.
func (c *Client) normalizeUpload(resp uploadResponse) *domain.ClassificationResult {
	result := &domain.ClassificationResult{
		QuestionsByCategory: make(map[domain.Category][]domain.Question, len(domain.Categories)),
	}
	for label, entries := range resp.Questions {
		category, ok := domain.ParseCategoryLabel(label)
		if !ok {
			c.logger.Warn("upload_category_dropped", "label", label, "entries", len(entries))
			continue
		}
		for _, entry := range entries {
			q, ok := domain.NormalizeQuestion(entry)
			if !ok {
				c.logger.Warn("upload_entry_dropped", "category", category.Slug(), "entry", fmt.Sprint(entry))
				continue
			}
			result.QuestionsByCategory[category] = append(result.QuestionsByCategory[category], q)
		}
	}

	if resp.AllQuestions != nil {
		result.AllQuestions = append([]string(nil), resp.AllQuestions...)
	} else {
		for _, category := range domain.Categories {
			for _, q := range result.QuestionsByCategory[category] {
				result.AllQuestions = append(result.AllQuestions, q.Text)
			}
		}
	}

	if resp.Length != nil {
		result.TotalCount = *resp.Length
	} else {
		for _, qs := range result.QuestionsByCategory {
			result.TotalCount += len(qs)
		}
	}
	return result
}
