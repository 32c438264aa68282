package usecase

import (
	"fmt"

	"github.com/kirillkom/question-paper-analyzer/internal/core/domain"
)

// Analyzer is the whole page: one upload workflow feeding a fixed set of
// question groups plus the summary panel.
type Analyzer struct {
	upload *UploadWorkflow
	groups []*QuestionGroup
}

func NewAnalyzer(deps Collaborators) *Analyzer {
	upload := NewUploadWorkflow(deps.Service, deps.Events, deps.logger())
	groups := make([]*QuestionGroup, 0, len(domain.Categories))
	for _, category := range domain.Categories {
		groups = append(groups, NewQuestionGroup(category, upload, deps))
	}
	return &Analyzer{upload: upload, groups: groups}
}

// SelectFile resets every group and starts a new upload flow.
func (a *Analyzer) SelectFile(doc domain.Document) (uint64, error) {
	flowID, err := a.upload.SelectFile(doc)
	if err != nil {
		return 0, err
	}
	for _, group := range a.groups {
		group.Reset()
	}
	return flowID, nil
}

func (a *Analyzer) Upload() *UploadWorkflow {
	return a.upload
}

func (a *Analyzer) Groups() []*QuestionGroup {
	return a.groups
}

func (a *Analyzer) Group(category domain.Category) (*QuestionGroup, error) {
	for _, group := range a.groups {
		if group.Category() == category {
			return group, nil
		}
	}
	return nil, domain.WrapError(domain.ErrNotFound, "group", fmt.Errorf("unknown category %d", int(category)))
}

func (a *Analyzer) View() domain.PageView {
	snap := a.upload.Snapshot()
	view := domain.PageView{
		FlowID:         snap.FlowID,
		Filename:       snap.Filename,
		Status:         snap.Status,
		StatusText:     snap.Status.StatusText(),
		ResultsVisible: snap.ResultsVisible,
		Summary:        domain.SummaryPanelView{Kind: domain.PanelAbsent},
	}
	if !snap.ResultsVisible || snap.Result == nil {
		return view
	}
	view.TotalCount = snap.Result.TotalCount
	view.Banner = domain.ExtractedBanner(snap.Result.TotalCount)
	view.Summary = NewSummaryPanel(snap.Summary).View()
	view.Groups = make([]domain.GroupView, 0, len(a.groups))
	for _, group := range a.groups {
		view.Groups = append(view.Groups, group.View())
	}
	return view
}

func (a *Analyzer) ToggleGroup(category domain.Category) (domain.GroupView, error) {
	group, err := a.Group(category)
	if err != nil {
		return domain.GroupView{}, err
	}
	group.ToggleExpanded()
	return group.View(), nil
}

func (a *Analyzer) SelectQuestion(category domain.Category, question string) (domain.SessionView, error) {
	group, err := a.Group(category)
	if err != nil {
		return domain.SessionView{}, err
	}
	session, err := group.Select(question)
	if err != nil {
		return domain.SessionView{}, err
	}
	return session.View(), nil
}

func (a *Analyzer) Session(id string) (domain.SessionView, error) {
	session, err := a.findSession(id)
	if err != nil {
		return domain.SessionView{}, err
	}
	return session.View(), nil
}

func (a *Analyzer) ChooseSolution(id string) (domain.SessionView, error) {
	return a.transition(id, (*InteractionSession).ChooseSolution)
}

func (a *Analyzer) ChooseVideo(id string) (domain.SessionView, error) {
	return a.transition(id, (*InteractionSession).ChooseVideo)
}

func (a *Analyzer) Dismiss(id string) (domain.SessionView, error) {
	return a.transition(id, (*InteractionSession).Dismiss)
}

func (a *Analyzer) CloseSession(id string) (domain.SessionView, error) {
	return a.transition(id, (*InteractionSession).Close)
}

// Snapshot returns the current result and summary state for export.
func (a *Analyzer) Snapshot() (*domain.ClassificationResult, domain.SummaryState) {
	snap := a.upload.Snapshot()
	return snap.Result, snap.Summary
}

// Wait blocks until no remote call is outstanding.
func (a *Analyzer) Wait() {
	a.upload.Wait()
	for _, group := range a.groups {
		group.Wait()
	}
}

// Close tears down the page and cancels every outstanding call.
func (a *Analyzer) Close() {
	a.upload.Close()
	for _, group := range a.groups {
		group.Reset()
	}
}

func (a *Analyzer) transition(id string, fn func(*InteractionSession) error) (domain.SessionView, error) {
	session, err := a.findSession(id)
	if err != nil {
		return domain.SessionView{}, err
	}
	if err := fn(session); err != nil {
		return session.View(), err
	}
	return session.View(), nil
}

func (a *Analyzer) findSession(id string) (*InteractionSession, error) {
	for _, group := range a.groups {
		if session, ok := group.Session(id); ok {
			return session, nil
		}
	}
	return nil, domain.WrapError(domain.ErrNotFound, "session", fmt.Errorf("id=%s", id))
}
