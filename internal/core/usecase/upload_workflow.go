package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/kirillkom/question-paper-analyzer/internal/core/domain"
	"github.com/kirillkom/question-paper-analyzer/internal/core/ports"
)

// UploadWorkflow owns the lifecycle of one document submission and the
// summary request that follows a successful upload. Each SelectFile starts a
// new flow; completions from older flows are discarded.
type UploadWorkflow struct {
	service ports.QuestionService
	events  ports.EventPublisher
	logger  *slog.Logger
	tasks   *taskGroup

	mu             sync.RWMutex
	closed         bool
	flowID         uint64
	filename       string
	status         domain.UploadStatus
	resultsVisible bool
	result         *domain.ClassificationResult
	summary        domain.SummaryState
}

// UploadSnapshot is a consistent copy of the workflow state.
type UploadSnapshot struct {
	FlowID         uint64
	Filename       string
	Status         domain.UploadStatus
	ResultsVisible bool
	Result         *domain.ClassificationResult
	Summary        domain.SummaryState
}

func NewUploadWorkflow(service ports.QuestionService, events ports.EventPublisher, logger *slog.Logger) *UploadWorkflow {
	if logger == nil {
		logger = slog.Default()
	}
	return &UploadWorkflow{
		service: service,
		events:  events,
		logger:  logger,
		tasks:   newTaskGroup(),
		status:  domain.UploadIdle,
		summary: domain.SummaryState{Phase: domain.SummaryIdle},
	}
}

// SelectFile discards the previous result and summary and starts uploading
// doc. It returns the id of the new flow.
func (w *UploadWorkflow) SelectFile(doc domain.Document) (uint64, error) {
	if strings.TrimSpace(doc.Filename) == "" {
		return 0, domain.WrapError(domain.ErrInvalidInput, "select file", errors.New("no file selected"))
	}

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return 0, domain.WrapError(domain.ErrInvalidTransition, "select file", errors.New("workflow closed"))
	}
	w.tasks.CancelPending()
	w.flowID++
	flowID := w.flowID
	w.filename = doc.Filename
	w.status = domain.UploadUploading
	w.resultsVisible = false
	w.result = nil
	w.summary = domain.SummaryState{Phase: domain.SummaryIdle}
	w.mu.Unlock()

	w.logger.Info("upload_started", "flow_id", flowID, "filename", doc.Filename, "bytes", len(doc.Content))
	w.tasks.Go(func(ctx context.Context) {
		w.runUpload(ctx, flowID, doc)
	})
	return flowID, nil
}

func (w *UploadWorkflow) runUpload(ctx context.Context, flowID uint64, doc domain.Document) {
	result, err := w.service.Upload(ctx, doc)
	if err == nil && result == nil {
		err = domain.WrapError(domain.ErrContract, "upload", errors.New("empty classification result"))
	}
	if ctx.Err() != nil {
		w.logger.Debug("upload_discarded", "flow_id", flowID, "reason", "cancelled")
		return
	}

	w.mu.Lock()
	if flowID != w.flowID {
		w.mu.Unlock()
		w.logger.Debug("upload_discarded", "flow_id", flowID, "reason", "superseded")
		return
	}
	if err != nil {
		w.status = domain.UploadFailed
		w.resultsVisible = false
		w.mu.Unlock()

		w.logger.Warn("upload_failed", "flow_id", flowID, "filename", doc.Filename, "error", err)
		w.publish(ctx, domain.Event{Type: domain.EventUploadFailed, FlowID: flowID, Filename: doc.Filename})
		return
	}

	w.result = result
	w.status = domain.UploadSuccess
	w.resultsVisible = true
	if result.HasQuestions() {
		w.summary = domain.SummaryState{Phase: domain.SummaryLoading}
		questions := result.AllQuestions
		// Started under the lock so a superseding SelectFile cancels it.
		w.tasks.Go(func(ctx context.Context) {
			w.runSummary(ctx, flowID, questions)
		})
	}
	w.mu.Unlock()

	w.logger.Info("upload_succeeded",
		"flow_id", flowID,
		"filename", doc.Filename,
		"total_count", result.TotalCount,
		"all_questions", len(result.AllQuestions),
	)
	w.publish(ctx, domain.Event{Type: domain.EventUploadSucceeded, FlowID: flowID, Filename: doc.Filename, Count: result.TotalCount})
}

func (w *UploadWorkflow) runSummary(ctx context.Context, flowID uint64, questions []string) {
	text, err := w.service.Summarize(ctx, questions)
	if ctx.Err() != nil {
		w.logger.Debug("summary_discarded", "flow_id", flowID, "reason", "cancelled")
		return
	}

	w.mu.Lock()
	if flowID != w.flowID {
		w.mu.Unlock()
		w.logger.Debug("summary_discarded", "flow_id", flowID, "reason", "superseded")
		return
	}
	if err != nil {
		w.summary = domain.SummaryState{Phase: domain.SummaryFailed, Text: domain.SummaryFallbackMessage}
		w.mu.Unlock()

		w.logger.Warn("summary_failed", "flow_id", flowID, "error", err)
		w.publish(ctx, domain.Event{Type: domain.EventSummaryFailed, FlowID: flowID})
		return
	}
	w.summary = domain.SummaryState{Phase: domain.SummaryReady, Text: text}
	w.mu.Unlock()

	w.publish(ctx, domain.Event{Type: domain.EventSummaryReady, FlowID: flowID, Count: len(questions)})
}

// Current returns the active classification snapshot, or nil.
func (w *UploadWorkflow) Current() *domain.ClassificationResult {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.result
}

func (w *UploadWorkflow) Snapshot() UploadSnapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return UploadSnapshot{
		FlowID:         w.flowID,
		Filename:       w.filename,
		Status:         w.status,
		ResultsVisible: w.resultsVisible,
		Result:         w.result,
		Summary:        w.summary,
	}
}

func (w *UploadWorkflow) SummaryPanel() SummaryPanel {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return NewSummaryPanel(w.summary)
}

// Wait blocks until all outstanding remote calls have completed.
func (w *UploadWorkflow) Wait() {
	w.tasks.Wait()
}

// Close cancels outstanding calls. Late completions are discarded.
func (w *UploadWorkflow) Close() {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
	w.tasks.Close()
}

func (w *UploadWorkflow) publish(ctx context.Context, event domain.Event) {
	if w.events == nil {
		return
	}
	event.At = time.Now().UTC()
	if err := w.events.Publish(ctx, event); err != nil {
		w.logger.Warn("event_publish_failed", "type", event.Type, "error", err)
	}
}
