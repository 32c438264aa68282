package domain

import "fmt"

type PanelKind string

const (
	PanelLoading PanelKind = "loading"
	PanelPresent PanelKind = "present"
	PanelAbsent  PanelKind = "absent"
)

type SummaryPanelView struct {
	Kind PanelKind `json:"kind"`
	Text string    `json:"text,omitempty"`
}

type QuestionView struct {
	Text       string   `json:"text"`
	Frequency  int      `json:"frequency"`
	Annotation string   `json:"annotation"`
	Variants   []string `json:"variants,omitempty"`
}

// GroupView is the rendering of one category bucket. Questions and
// Placeholder are only populated while the group is expanded.
type GroupView struct {
	Category    Category       `json:"category"`
	Label       string         `json:"label"`
	Color       string         `json:"color"`
	Expanded    bool           `json:"expanded"`
	Count       int            `json:"count"`
	Questions   []QuestionView `json:"questions,omitempty"`
	Placeholder string         `json:"placeholder,omitempty"`
}

type SessionView struct {
	ID        string        `json:"id"`
	Category  Category      `json:"category"`
	Question  string        `json:"question"`
	Phase     Phase         `json:"phase"`
	Answer    string        `json:"answer,omitempty"`
	LastVideo *VideoOutcome `json:"last_video,omitempty"`
}

// PageView is a point-in-time rendering of the whole analyzer page. Groups
// and Summary are only set while the results view is visible.
type PageView struct {
	FlowID         uint64           `json:"flow_id"`
	Filename       string           `json:"filename"`
	Status         UploadStatus     `json:"status"`
	StatusText     string           `json:"status_text,omitempty"`
	ResultsVisible bool             `json:"results_visible"`
	Banner         string           `json:"banner,omitempty"`
	TotalCount     int              `json:"total_count"`
	Groups         []GroupView      `json:"groups,omitempty"`
	Summary        SummaryPanelView `json:"summary"`
}

func ExtractedBanner(total int) string {
	return fmt.Sprintf("Extracted %d questions from uploaded pdfs", total)
}
