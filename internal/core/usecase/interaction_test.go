package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/kirillkom/question-paper-analyzer/internal/core/domain"
)

type interactionHarness struct {
	svc      *serviceFake
	opener   *openerFake
	notifier *notifierFake
	group    *QuestionGroup
}

func newInteractionHarness(t *testing.T) *interactionHarness {
	t.Helper()
	h := &interactionHarness{
		svc:      newServiceFake(),
		opener:   &openerFake{},
		notifier: &notifierFake{},
	}
	h.group = NewQuestionGroup(domain.CategoryFrequent, staticSource{result: sampleResult()}, Collaborators{
		Service:  h.svc,
		Opener:   h.opener,
		Notifier: h.notifier,
	})
	h.group.ToggleExpanded()
	return h
}

func (h *interactionHarness) open(t *testing.T, question string) *InteractionSession {
	t.Helper()
	session, err := h.group.Select(question)
	if err != nil {
		t.Fatalf("Select(%q) error = %v", question, err)
	}
	if session.Phase() != domain.PhaseChoicePending {
		t.Fatalf("expected choice pending, got %s", session.Phase())
	}
	return session
}

func TestChooseVideoEmptyURLIsNotFound(t *testing.T) {
	h := newInteractionHarness(t)
	h.svc.videoURL = ""
	session := h.open(t, "1. What is Y")

	if err := session.ChooseVideo(); err != nil {
		t.Fatalf("ChooseVideo() error = %v", err)
	}
	session.Wait()

	view := session.View()
	if view.Phase != domain.PhaseIdle {
		t.Fatalf("expected idle after video lookup, got %s", view.Phase)
	}
	if view.LastVideo == nil || view.LastVideo.Kind != domain.VideoNotFound {
		t.Fatalf("expected not-found outcome, got %+v", view.LastVideo)
	}
	if len(h.opener.opened()) != 0 {
		t.Fatalf("not-found must not open a link")
	}
	if notices := h.notifier.notices(); len(notices) != 1 || notices[0] != domain.VideoNotFoundMessage {
		t.Fatalf("unexpected notices %v", notices)
	}
}

func TestChooseVideoWithURLOpensLinkAndReturnsToIdle(t *testing.T) {
	h := newInteractionHarness(t)
	h.svc.videoURL = "http://videos.example/watch?v=1"
	session := h.open(t, "1. What is Y")

	if err := session.ChooseVideo(); err != nil {
		t.Fatalf("ChooseVideo() error = %v", err)
	}
	session.Wait()

	view := session.View()
	if view.Phase != domain.PhaseIdle || view.Answer != "" {
		t.Fatalf("found video must not leave an answer surface, got %+v", view)
	}
	if view.LastVideo == nil || view.LastVideo.Kind != domain.VideoFound {
		t.Fatalf("expected found outcome, got %+v", view.LastVideo)
	}
	if urls := h.opener.opened(); len(urls) != 1 || urls[0] != h.svc.videoURL {
		t.Fatalf("unexpected opened urls %v", urls)
	}
	if _, _, answers, _ := h.svc.calls(); answers != 0 {
		t.Fatalf("video path must not request an answer")
	}
}

func TestChooseVideoTransportFailureIsErrorNotice(t *testing.T) {
	h := newInteractionHarness(t)
	h.svc.videoErr = errors.New("dial tcp: connection refused")
	session := h.open(t, "1. What is Y")

	if err := session.ChooseVideo(); err != nil {
		t.Fatalf("ChooseVideo() error = %v", err)
	}
	session.Wait()

	if session.Phase() != domain.PhaseIdle {
		t.Fatalf("expected idle, got %s", session.Phase())
	}
	if notices := h.notifier.notices(); len(notices) != 1 || notices[0] != domain.VideoErrorMessage {
		t.Fatalf("unexpected notices %v", notices)
	}
}

func TestChooseVideoWhileLookingReportsLooking(t *testing.T) {
	h := newInteractionHarness(t)
	gate := make(chan struct{})
	h.svc.videoGates["1. What is Y"] = gate
	session := h.open(t, "1. What is Y")

	if err := session.ChooseVideo(); err != nil {
		t.Fatalf("ChooseVideo() error = %v", err)
	}
	if session.Phase() != domain.PhaseVideoLooking {
		t.Fatalf("expected video looking, got %s", session.Phase())
	}
	close(gate)
	session.Wait()
}

func TestChooseSolutionLoadingThenReadyThenClose(t *testing.T) {
	h := newInteractionHarness(t)
	gate := make(chan struct{})
	h.svc.answerGates["2. What is X"] = gate
	h.svc.answers["2. What is X"] = "X is **this**."
	session := h.open(t, "2. What is X")

	if err := session.ChooseSolution(); err != nil {
		t.Fatalf("ChooseSolution() error = %v", err)
	}
	if session.Phase() != domain.PhaseAnswerLoading {
		t.Fatalf("expected answer loading while outstanding, got %s", session.Phase())
	}

	close(gate)
	session.Wait()

	view := session.View()
	if view.Phase != domain.PhaseAnswerReady || view.Answer != "X is **this**." {
		t.Fatalf("unexpected view %+v", view)
	}
	if err := session.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if session.Phase() != domain.PhaseIdle {
		t.Fatalf("expected idle after close, got %s", session.Phase())
	}
}

func TestChooseSolutionFailureUsesFallbackText(t *testing.T) {
	h := newInteractionHarness(t)
	h.svc.answerErrs["2. What is X"] = errors.New("status 502")
	session := h.open(t, "2. What is X")

	if err := session.ChooseSolution(); err != nil {
		t.Fatalf("ChooseSolution() error = %v", err)
	}
	session.Wait()

	view := session.View()
	if view.Phase != domain.PhaseAnswerFailed || view.Answer != domain.AnswerFallbackMessage {
		t.Fatalf("unexpected view %+v", view)
	}
	if err := session.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if session.Phase() != domain.PhaseIdle {
		t.Fatalf("expected idle after close, got %s", session.Phase())
	}
}

func TestEmptyAnswerIsTreatedAsFailure(t *testing.T) {
	h := newInteractionHarness(t)
	session := h.open(t, "2. What is X")

	if err := session.ChooseSolution(); err != nil {
		t.Fatalf("ChooseSolution() error = %v", err)
	}
	session.Wait()

	if session.Phase() != domain.PhaseAnswerFailed {
		t.Fatalf("expected answer failed, got %s", session.Phase())
	}
}

func TestCloseWhileLoadingDiscardsLateAnswer(t *testing.T) {
	h := newInteractionHarness(t)
	gate := make(chan struct{})
	h.svc.answerGates["2. What is X"] = gate
	h.svc.answers["2. What is X"] = "late"
	session := h.open(t, "2. What is X")

	if err := session.ChooseSolution(); err != nil {
		t.Fatalf("ChooseSolution() error = %v", err)
	}
	if err := session.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	close(gate)
	session.Wait()

	view := session.View()
	if view.Phase != domain.PhaseIdle || view.Answer != "" {
		t.Fatalf("late answer must be discarded, got %+v", view)
	}
}

func TestDismissReturnsToIdleWithoutRemoteCall(t *testing.T) {
	h := newInteractionHarness(t)
	session := h.open(t, "2. What is X")

	if err := session.Dismiss(); err != nil {
		t.Fatalf("Dismiss() error = %v", err)
	}
	if view := session.View(); view.Phase != domain.PhaseIdle || view.Question != "" {
		t.Fatalf("unexpected view %+v", view)
	}
	if _, _, answers, videos := h.svc.calls(); answers+videos != 0 {
		t.Fatalf("dismiss must not call the service")
	}
	if err := session.Select(); err != nil {
		t.Fatalf("reselect after dismiss error = %v", err)
	}
}

func TestInvalidTransitionsAreRejected(t *testing.T) {
	h := newInteractionHarness(t)
	session := h.open(t, "2. What is X")

	if err := session.Close(); !domain.IsKind(err, domain.ErrInvalidTransition) {
		t.Fatalf("close from choice pending: expected ErrInvalidTransition, got %v", err)
	}
	if err := session.Select(); !domain.IsKind(err, domain.ErrInvalidTransition) {
		t.Fatalf("select from choice pending: expected ErrInvalidTransition, got %v", err)
	}
	if err := session.Dismiss(); err != nil {
		t.Fatalf("Dismiss() error = %v", err)
	}
	if err := session.ChooseSolution(); !domain.IsKind(err, domain.ErrInvalidTransition) {
		t.Fatalf("solution from idle: expected ErrInvalidTransition, got %v", err)
	}
	if err := session.ChooseVideo(); !domain.IsKind(err, domain.ErrInvalidTransition) {
		t.Fatalf("video from idle: expected ErrInvalidTransition, got %v", err)
	}
}

func TestSessionsInDifferentGroupsAreIsolated(t *testing.T) {
	svc := newServiceFake()
	source := staticSource{result: sampleResult()}
	deps := Collaborators{Service: svc, Notifier: &notifierFake{}, Opener: &openerFake{}}
	frequent := NewQuestionGroup(domain.CategoryFrequent, source, deps)
	rare := NewQuestionGroup(domain.CategoryRare, source, deps)
	frequent.ToggleExpanded()
	rare.ToggleExpanded()

	failGate := make(chan struct{})
	okGate := make(chan struct{})
	svc.answerGates["2. What is X"] = failGate
	svc.answerErrs["2. What is X"] = errors.New("status 500")
	svc.answerGates["1. Define a tuple"] = okGate
	svc.answers["1. Define a tuple"] = "A tuple is a row."

	a, err := frequent.Select("2. What is X")
	if err != nil {
		t.Fatalf("Select(frequent) error = %v", err)
	}
	b, err := rare.Select("1. Define a tuple")
	if err != nil {
		t.Fatalf("Select(rare) error = %v", err)
	}
	if err := a.ChooseSolution(); err != nil {
		t.Fatalf("a.ChooseSolution() error = %v", err)
	}
	if err := b.ChooseSolution(); err != nil {
		t.Fatalf("b.ChooseSolution() error = %v", err)
	}

	close(failGate)
	a.Wait()
	if a.Phase() != domain.PhaseAnswerFailed {
		t.Fatalf("expected a failed, got %s", a.Phase())
	}
	if b.Phase() != domain.PhaseAnswerLoading {
		t.Fatalf("failure in a leaked into b: %s", b.Phase())
	}

	close(okGate)
	b.Wait()
	if b.Phase() != domain.PhaseAnswerReady {
		t.Fatalf("expected b ready, got %s", b.Phase())
	}
	if a.Phase() != domain.PhaseAnswerFailed {
		t.Fatalf("success in b leaked into a: %s", a.Phase())
	}
}

type blockingOpener struct {
	entered chan struct{}
	release chan struct{}
	ctxErr  error
}

func (o *blockingOpener) Open(ctx context.Context, _ string) error {
	close(o.entered)
	<-o.release
	o.ctxErr = ctx.Err()
	return o.ctxErr
}

func TestVideoOutcomeSurvivesPruneDuringDelivery(t *testing.T) {
	svc := newServiceFake()
	svc.videoURL = "http://videos.example/watch?v=1"
	opener := &blockingOpener{entered: make(chan struct{}), release: make(chan struct{})}
	events := &eventsFake{}
	group := NewQuestionGroup(domain.CategoryFrequent, staticSource{result: sampleResult()}, Collaborators{
		Service: svc,
		Opener:  opener,
		Events:  events,
	})
	group.ToggleExpanded()

	first, err := group.Select("1. What is Y")
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if err := first.ChooseVideo(); err != nil {
		t.Fatalf("ChooseVideo() error = %v", err)
	}
	<-opener.entered

	// The first session is Idle while its link is being opened; selecting
	// another question prunes and tears it down.
	if _, err := group.Select("2. What is X"); err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if _, ok := group.Session(first.ID()); ok {
		t.Fatalf("expected idle session to be pruned")
	}
	close(opener.release)
	first.Wait()

	if opener.ctxErr != nil {
		t.Fatalf("expected link to open on a live context, got %v", opener.ctxErr)
	}
	types := events.types()
	if len(types) != 1 || types[0] != domain.EventVideoLookupClosed {
		t.Fatalf("expected video outcome event, got %v", types)
	}
}
