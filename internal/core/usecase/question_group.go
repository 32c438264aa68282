package usecase

import (
	"errors"
	"fmt"
	"sync"

	"github.com/kirillkom/question-paper-analyzer/internal/core/domain"
)

// ResultSource exposes the current classification snapshot. Groups read it
// on every render instead of holding their own copy.
type ResultSource interface {
	Current() *domain.ClassificationResult
}

// QuestionGroup is one category bucket with its own expand state and the
// interaction sessions opened from it.
type QuestionGroup struct {
	category domain.Category
	source   ResultSource
	deps     Collaborators

	mu       sync.Mutex
	expanded bool
	sessions map[string]*InteractionSession
	order    []string
}

func NewQuestionGroup(category domain.Category, source ResultSource, deps Collaborators) *QuestionGroup {
	return &QuestionGroup{
		category: category,
		source:   source,
		deps:     deps,
		sessions: make(map[string]*InteractionSession),
	}
}

func (g *QuestionGroup) Category() domain.Category {
	return g.category
}

// ToggleExpanded flips the expand state and returns the new value.
func (g *QuestionGroup) ToggleExpanded() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.expanded = !g.expanded
	return g.expanded
}

func (g *QuestionGroup) Expanded() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.expanded
}

// Questions returns the bucket in display order. The snapshot itself is
// never reordered.
func (g *QuestionGroup) Questions() []domain.Question {
	return domain.SortByOrdinal(g.source.Current().Questions(g.category))
}

func (g *QuestionGroup) View() domain.GroupView {
	questions := g.Questions()
	view := domain.GroupView{
		Category: g.category,
		Label:    g.category.Label(),
		Color:    g.category.Color(),
		Expanded: g.Expanded(),
		Count:    len(questions),
	}
	if !view.Expanded {
		return view
	}
	if len(questions) == 0 {
		view.Placeholder = domain.NoQuestionsPlaceholder
		return view
	}
	view.Questions = make([]domain.QuestionView, 0, len(questions))
	for _, q := range questions {
		view.Questions = append(view.Questions, domain.QuestionView{
			Text:       q.Text,
			Frequency:  q.Frequency,
			Annotation: q.Annotation(),
			Variants:   q.Variants,
		})
	}
	return view
}

// Select opens a new interaction session for a question shown in this
// group. The group must be expanded.
func (g *QuestionGroup) Select(question string) (*InteractionSession, error) {
	if !g.contains(question) {
		return nil, domain.WrapError(domain.ErrNotFound, "select question", fmt.Errorf("question not in %s group", g.category.Slug()))
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.expanded {
		return nil, domain.WrapError(domain.ErrInvalidTransition, "select question", errors.New("group is collapsed"))
	}
	g.pruneIdleLocked()

	session := newInteractionSession(g.category, question, g.deps)
	if err := session.Select(); err != nil {
		return nil, err
	}
	g.sessions[session.ID()] = session
	g.order = append(g.order, session.ID())
	return session, nil
}

func (g *QuestionGroup) Session(id string) (*InteractionSession, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	session, ok := g.sessions[id]
	return session, ok
}

// Sessions returns the live sessions in creation order.
func (g *QuestionGroup) Sessions() []*InteractionSession {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]*InteractionSession, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.sessions[id])
	}
	return out
}

// Reset collapses the group and tears down every session.
func (g *QuestionGroup) Reset() {
	g.mu.Lock()
	sessions := make([]*InteractionSession, 0, len(g.sessions))
	for _, id := range g.order {
		sessions = append(sessions, g.sessions[id])
	}
	g.expanded = false
	g.sessions = make(map[string]*InteractionSession)
	g.order = nil
	g.mu.Unlock()

	for _, session := range sessions {
		session.teardown()
	}
}

// Wait blocks until every session's outstanding calls have completed.
func (g *QuestionGroup) Wait() {
	for _, session := range g.Sessions() {
		session.Wait()
	}
}

func (g *QuestionGroup) contains(question string) bool {
	for _, q := range g.source.Current().Questions(g.category) {
		if q.Text == question {
			return true
		}
	}
	return false
}

// pruneIdleLocked drops sessions that are back in Idle; they have nothing
// left to show. Must be called with mu held.
func (g *QuestionGroup) pruneIdleLocked() {
	kept := g.order[:0]
	for _, id := range g.order {
		session := g.sessions[id]
		if session.Phase() == domain.PhaseIdle {
			delete(g.sessions, id)
			session.teardown()
			continue
		}
		kept = append(kept, id)
	}
	g.order = kept
}
