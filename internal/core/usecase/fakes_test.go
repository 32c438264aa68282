package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/kirillkom/question-paper-analyzer/internal/core/domain"
)

type serviceFake struct {
	mu sync.Mutex

	uploads     map[string]*domain.ClassificationResult
	uploadErr   error
	uploadGates map[string]chan struct{}

	summary     string
	summaryErr  error
	summaryGate chan struct{}

	answers     map[string]string
	answerErrs  map[string]error
	answerGates map[string]chan struct{}

	videoURL   string
	videoErr   error
	videoGates map[string]chan struct{}

	uploadCalls  int
	summaryCalls int
	answerCalls  int
	videoCalls   int
	summaryInput []string
}

func newServiceFake() *serviceFake {
	return &serviceFake{
		uploads:     make(map[string]*domain.ClassificationResult),
		uploadGates: make(map[string]chan struct{}),
		answers:     make(map[string]string),
		answerErrs:  make(map[string]error),
		answerGates: make(map[string]chan struct{}),
		videoGates:  make(map[string]chan struct{}),
	}
}

// awaitGate blocks until gate is closed. It deliberately ignores ctx so tests
// can deliver a completion after the caller moved on.
func awaitGate(gate chan struct{}) {
	if gate != nil {
		<-gate
	}
}

func (f *serviceFake) Upload(_ context.Context, doc domain.Document) (*domain.ClassificationResult, error) {
	f.mu.Lock()
	f.uploadCalls++
	gate := f.uploadGates[doc.Filename]
	f.mu.Unlock()

	awaitGate(gate)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	return f.uploads[doc.Filename], nil
}

func (f *serviceFake) Summarize(_ context.Context, questions []string) (string, error) {
	f.mu.Lock()
	f.summaryCalls++
	f.summaryInput = append([]string(nil), questions...)
	gate := f.summaryGate
	f.mu.Unlock()

	awaitGate(gate)

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.summary, f.summaryErr
}

func (f *serviceFake) Answer(_ context.Context, question string) (string, error) {
	f.mu.Lock()
	f.answerCalls++
	gate := f.answerGates[question]
	f.mu.Unlock()

	awaitGate(gate)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.answerErrs[question]; err != nil {
		return "", err
	}
	return f.answers[question], nil
}

func (f *serviceFake) FindVideo(_ context.Context, question string) (string, error) {
	f.mu.Lock()
	f.videoCalls++
	gate := f.videoGates[question]
	f.mu.Unlock()

	awaitGate(gate)

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.videoURL, f.videoErr
}

func (f *serviceFake) calls() (upload, summary, answer, video int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.uploadCalls, f.summaryCalls, f.answerCalls, f.videoCalls
}

type openerFake struct {
	mu   sync.Mutex
	urls []string
}

func (f *openerFake) Open(_ context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.urls = append(f.urls, url)
	return nil
}

func (f *openerFake) opened() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.urls...)
}

type notifierFake struct {
	mu       sync.Mutex
	messages []string
}

func (f *notifierFake) Notify(_ context.Context, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, message)
}

func (f *notifierFake) notices() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.messages...)
}

type eventsFake struct {
	mu     sync.Mutex
	events []domain.Event
}

func (f *eventsFake) Publish(_ context.Context, event domain.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *eventsFake) types() []domain.EventType {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.EventType, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.Type)
	}
	return out
}

type staticSource struct {
	result *domain.ClassificationResult
}

func (s staticSource) Current() *domain.ClassificationResult {
	return s.result
}

func sampleResult() *domain.ClassificationResult {
	return &domain.ClassificationResult{
		QuestionsByCategory: map[domain.Category][]domain.Question{
			domain.CategoryFrequent: {
				{Text: "2. What is X", Frequency: 4},
				{Text: "1. What is Y", Frequency: 3},
				{Text: "10. What is Z", Frequency: 5},
			},
			domain.CategoryRare: {
				{Text: "1. Define a tuple", Frequency: 1},
			},
		},
		TotalCount:   7,
		AllQuestions: []string{"2. What is X", "1. What is Y", "10. What is Z", "1. Define a tuple"},
	}
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
}
