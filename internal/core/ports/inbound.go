package ports

import (
	"github.com/kirillkom/question-paper-analyzer/internal/core/domain"
)

// AnalyzerService is the inbound contract the presentation adapters drive.
type AnalyzerService interface {
	SelectFile(doc domain.Document) (uint64, error)
	View() domain.PageView
	ToggleGroup(category domain.Category) (domain.GroupView, error)
	SelectQuestion(category domain.Category, question string) (domain.SessionView, error)
	Session(id string) (domain.SessionView, error)
	ChooseSolution(id string) (domain.SessionView, error)
	ChooseVideo(id string) (domain.SessionView, error)
	Dismiss(id string) (domain.SessionView, error)
	CloseSession(id string) (domain.SessionView, error)
	Snapshot() (*domain.ClassificationResult, domain.SummaryState)
}
