package ports

import (
	"context"
	"time"

	"github.com/kirillkom/question-paper-analyzer/internal/core/domain"
)

// QuestionService is the remote service that extracts, classifies, summarizes
// and answers questions. Any non-success outcome is returned as an error.
type QuestionService interface {
	Upload(ctx context.Context, doc domain.Document) (*domain.ClassificationResult, error)
	Summarize(ctx context.Context, questions []string) (string, error)
	Answer(ctx context.Context, question string) (string, error)
	// FindVideo returns an empty URL when the service has no video.
	FindVideo(ctx context.Context, question string) (string, error)
}

// LinkOpener opens a URL in a new viewing context.
type LinkOpener interface {
	Open(ctx context.Context, url string) error
}

// Notifier shows a one-off user-visible notice.
type Notifier interface {
	Notify(ctx context.Context, message string)
}

// EventPublisher hands workflow outcomes to outside observers.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.Event) error
}

// CallObserver records remote calls. Every CallStarted is followed by exactly
// one ObserveCall for the same operation.
type CallObserver interface {
	CallStarted(operation string)
	ObserveCall(operation string, duration time.Duration, err error)
}

// InteractionObserver records terminal outcomes of question interactions.
type InteractionObserver interface {
	ObserveInteraction(outcome string)
}
