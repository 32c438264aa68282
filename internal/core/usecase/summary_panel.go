package usecase

import (
	"strings"

	"github.com/kirillkom/question-paper-analyzer/internal/core/domain"
)

// SummaryPanel renders the document summary. It has no behaviour of its own;
// the upload workflow drives it.
type SummaryPanel struct {
	state domain.SummaryState
}

func NewSummaryPanel(state domain.SummaryState) SummaryPanel {
	return SummaryPanel{state: state}
}

func (p SummaryPanel) View() domain.SummaryPanelView {
	switch {
	case p.state.Phase == domain.SummaryLoading:
		return domain.SummaryPanelView{Kind: domain.PanelLoading}
	case strings.TrimSpace(p.state.Text) != "":
		return domain.SummaryPanelView{Kind: domain.PanelPresent, Text: p.state.Text}
	default:
		return domain.SummaryPanelView{Kind: domain.PanelAbsent}
	}
}
