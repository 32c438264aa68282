package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/question-paper-analyzer/internal/core/domain"
	"github.com/kirillkom/question-paper-analyzer/internal/core/ports"
)

// Collaborators are the outbound ports shared by groups and their sessions.
// Only Service is required.
type Collaborators struct {
	Service  ports.QuestionService
	Opener   ports.LinkOpener
	Notifier ports.Notifier
	Events   ports.EventPublisher
	Observer ports.InteractionObserver
	Logger   *slog.Logger
}

func (c Collaborators) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

// InteractionSession is the per-question choice -> answer | video state
// machine. Sessions never share state; each owns its own remote calls.
type InteractionSession struct {
	id       string
	category domain.Category
	question string
	deps     Collaborators
	logger   *slog.Logger
	tasks    *taskGroup

	mu        sync.Mutex
	torn      bool
	gen       uint64
	phase     domain.Phase
	active    string
	answer    string
	lastVideo *domain.VideoOutcome
}

func newInteractionSession(category domain.Category, question string, deps Collaborators) *InteractionSession {
	id := uuid.NewString()
	return &InteractionSession{
		id:       id,
		category: category,
		question: question,
		deps:     deps,
		logger:   deps.logger().With("session_id", id, "category", category.Slug()),
		tasks:    newTaskGroup(),
		phase:    domain.PhaseIdle,
	}
}

func (s *InteractionSession) ID() string {
	return s.id
}

func (s *InteractionSession) Phase() domain.Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

func (s *InteractionSession) View() domain.SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	view := domain.SessionView{
		ID:       s.id,
		Category: s.category,
		Question: s.active,
		Phase:    s.phase,
	}
	if s.phase == domain.PhaseAnswerReady || s.phase == domain.PhaseAnswerFailed {
		view.Answer = s.answer
	}
	if s.lastVideo != nil {
		outcome := *s.lastVideo
		view.LastVideo = &outcome
	}
	return view
}

// Select opens the choice step for the session's question.
func (s *InteractionSession) Select() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.expect("select", domain.PhaseIdle); err != nil {
		return err
	}
	s.phase = domain.PhaseChoicePending
	s.active = s.question
	s.lastVideo = nil
	return nil
}

// Dismiss leaves the choice step without issuing a remote call.
func (s *InteractionSession) Dismiss() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.expect("dismiss", domain.PhaseChoicePending); err != nil {
		return err
	}
	s.toIdle()
	return nil
}

// ChooseSolution requests a generated answer. The session stays in
// AnswerLoading until the call resolves.
func (s *InteractionSession) ChooseSolution() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.expect("choose solution", domain.PhaseChoicePending); err != nil {
		return err
	}
	s.phase = domain.PhaseAnswerLoading
	s.answer = ""
	gen, question := s.gen, s.active
	s.tasks.Go(func(ctx context.Context) {
		s.runAnswer(ctx, gen, question)
	})
	return nil
}

// ChooseVideo requests a video link. Every outcome is terminal and returns
// the session to Idle.
func (s *InteractionSession) ChooseVideo() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.expect("choose video", domain.PhaseChoicePending); err != nil {
		return err
	}
	s.phase = domain.PhaseVideoLooking
	gen, question := s.gen, s.active
	s.tasks.Go(func(ctx context.Context) {
		s.runVideo(ctx, gen, question)
	})
	return nil
}

// Close hides the answer surface. Closing while the answer is still loading
// abandons the request.
func (s *InteractionSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.expect("close", domain.PhaseAnswerLoading, domain.PhaseAnswerReady, domain.PhaseAnswerFailed); err != nil {
		return err
	}
	s.toIdle()
	return nil
}

// Wait blocks until outstanding remote calls have completed.
func (s *InteractionSession) Wait() {
	s.tasks.Wait()
}

func (s *InteractionSession) teardown() {
	s.mu.Lock()
	s.torn = true
	s.toIdle()
	s.mu.Unlock()
	s.tasks.Close()
}

// toIdle must be called with mu held.
func (s *InteractionSession) toIdle() {
	s.gen++
	s.tasks.CancelPending()
	s.phase = domain.PhaseIdle
	s.active = ""
	s.answer = ""
}

// expect must be called with mu held.
func (s *InteractionSession) expect(op string, allowed ...domain.Phase) error {
	if s.torn {
		return domain.WrapError(domain.ErrInvalidTransition, op, fmt.Errorf("session %s is closed", s.id))
	}
	for _, phase := range allowed {
		if s.phase == phase {
			return nil
		}
	}
	return domain.WrapError(domain.ErrInvalidTransition, op, fmt.Errorf("not allowed from %s", s.phase))
}

func (s *InteractionSession) runAnswer(ctx context.Context, gen uint64, question string) {
	text, err := s.deps.Service.Answer(ctx, question)
	if ctx.Err() != nil {
		return
	}
	if err == nil && strings.TrimSpace(text) == "" {
		err = domain.WrapError(domain.ErrContract, "answer", fmt.Errorf("empty answer"))
	}

	s.mu.Lock()
	if gen != s.gen || s.phase != domain.PhaseAnswerLoading {
		s.mu.Unlock()
		s.logger.Debug("interaction_answer_discarded")
		return
	}
	eventType := domain.EventAnswerReady
	if err != nil {
		s.phase = domain.PhaseAnswerFailed
		s.answer = domain.AnswerFallbackMessage
		eventType = domain.EventAnswerFailed
	} else {
		s.phase = domain.PhaseAnswerReady
		s.answer = text
	}
	phase := s.phase
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn("interaction_answer_failed", "error", err)
	}
	s.observe(string(phase))
	s.publish(context.WithoutCancel(ctx), domain.Event{Type: eventType, Question: question})
}

func (s *InteractionSession) runVideo(ctx context.Context, gen uint64, question string) {
	url, err := s.deps.Service.FindVideo(ctx, question)
	if ctx.Err() != nil {
		return
	}

	var outcome domain.VideoOutcome
	switch {
	case err != nil:
		outcome = domain.VideoOutcome{Kind: domain.VideoError, Notice: domain.VideoErrorMessage}
	case strings.TrimSpace(url) == "":
		outcome = domain.VideoOutcome{Kind: domain.VideoNotFound, Notice: domain.VideoNotFoundMessage}
	default:
		outcome = domain.VideoOutcome{Kind: domain.VideoFound, URL: strings.TrimSpace(url)}
	}

	s.mu.Lock()
	if gen != s.gen || s.phase != domain.PhaseVideoLooking {
		s.mu.Unlock()
		s.logger.Debug("interaction_video_discarded")
		return
	}
	// Not toIdle: that would cancel this task's own context before delivery.
	s.gen++
	s.phase = domain.PhaseIdle
	s.active = ""
	s.lastVideo = &outcome
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn("interaction_video_failed", "error", err)
	}
	// The session is Idle now and may be pruned at any moment; the outcome
	// is still owed to the user.
	ctx = context.WithoutCancel(ctx)
	s.deliver(ctx, outcome)
	s.observe("video_" + string(outcome.Kind))
	s.publish(ctx, domain.Event{Type: domain.EventVideoLookupClosed, Question: question, Outcome: outcome.Kind})
}

func (s *InteractionSession) deliver(ctx context.Context, outcome domain.VideoOutcome) {
	if outcome.Kind == domain.VideoFound {
		if s.deps.Opener == nil {
			return
		}
		if err := s.deps.Opener.Open(ctx, outcome.URL); err != nil {
			s.logger.Warn("interaction_video_open_failed", "url", outcome.URL, "error", err)
		}
		return
	}
	if s.deps.Notifier != nil {
		s.deps.Notifier.Notify(ctx, outcome.Notice)
	}
}

func (s *InteractionSession) observe(outcome string) {
	if s.deps.Observer != nil {
		s.deps.Observer.ObserveInteraction(outcome)
	}
}

func (s *InteractionSession) publish(ctx context.Context, event domain.Event) {
	if s.deps.Events == nil {
		return
	}
	event.SessionID = s.id
	event.Category = s.category.Slug()
	event.At = time.Now().UTC()
	if err := s.deps.Events.Publish(ctx, event); err != nil {
		s.logger.Warn("event_publish_failed", "type", event.Type, "error", err)
	}
}
