package httpadapter

import (
	"html"

	"github.com/kirillkom/question-paper-analyzer/internal/core/domain"
	"github.com/kirillkom/question-paper-analyzer/internal/infrastructure/notify"
)

type errorResponse struct {
	Error   string           `json:"error"`
	Session *sessionResponse `json:"session,omitempty"`
}

type uploadResponse struct {
	FlowID     uint64 `json:"flow_id"`
	Filename   string `json:"filename"`
	StatusText string `json:"status_text"`
}

type noticesResponse struct {
	Notices []notify.Notice `json:"notices"`
}

// The response types embed the domain views and shadow the fields that gain
// rendered HTML.

type pageResponse struct {
	domain.PageView
	Groups  []groupResponse `json:"groups,omitempty"`
	Summary summaryResponse `json:"summary"`
}

type groupResponse struct {
	domain.GroupView
	Questions []questionResponse `json:"questions,omitempty"`
}

type questionResponse struct {
	domain.QuestionView
	HTML string `json:"html,omitempty"`
}

type summaryResponse struct {
	domain.SummaryPanelView
	HTML string `json:"html,omitempty"`
}

type sessionResponse struct {
	domain.SessionView
	AnswerHTML string `json:"answer_html,omitempty"`
}

func (rt *Router) renderPage(page domain.PageView) pageResponse {
	out := pageResponse{
		PageView: page,
		Summary:  summaryResponse{SummaryPanelView: page.Summary},
	}
	if page.Summary.Kind == domain.PanelPresent {
		out.Summary.HTML = rt.markdown(page.Summary.Text, false)
	}
	for _, group := range page.Groups {
		out.Groups = append(out.Groups, rt.renderGroup(group))
	}
	return out
}

func (rt *Router) renderGroup(group domain.GroupView) groupResponse {
	out := groupResponse{GroupView: group}
	for _, q := range group.Questions {
		out.Questions = append(out.Questions, questionResponse{
			QuestionView: q,
			HTML:         rt.markdown(q.Text, true),
		})
	}
	return out
}

func (rt *Router) renderSession(session domain.SessionView) sessionResponse {
	out := sessionResponse{SessionView: session}
	if session.Phase == domain.PhaseAnswerReady {
		out.AnswerHTML = rt.markdown(session.Answer, false)
	}
	return out
}

func (rt *Router) markdown(source string, inline bool) string {
	if rt.deps.Renderer == nil {
		return ""
	}
	render := rt.deps.Renderer.Block
	if inline {
		render = rt.deps.Renderer.Inline
	}
	out, err := render(source)
	if err != nil {
		rt.logger.Warn("markdown_render_failed", "error", err)
		return html.EscapeString(source)
	}
	return out
}
