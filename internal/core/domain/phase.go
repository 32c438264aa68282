package domain

type UploadStatus string

const (
	UploadIdle      UploadStatus = "idle"
	UploadUploading UploadStatus = "uploading"
	UploadSuccess   UploadStatus = "success"
	UploadFailed    UploadStatus = "failed"
)

// StatusText is the status line shown under the file picker.
func (s UploadStatus) StatusText() string {
	switch s {
	case UploadUploading:
		return "Uploading..."
	case UploadFailed:
		return "Upload failed"
	default:
		return ""
	}
}

type SummaryPhase string

const (
	SummaryIdle    SummaryPhase = "idle"
	SummaryLoading SummaryPhase = "loading"
	SummaryReady   SummaryPhase = "ready"
	SummaryFailed  SummaryPhase = "failed"
)

// SummaryState is the summary sub-flow state owned by the upload workflow.
type SummaryState struct {
	Phase SummaryPhase `json:"phase"`
	Text  string       `json:"text"`
}

type Phase string

const (
	PhaseIdle          Phase = "idle"
	PhaseChoicePending Phase = "choice_pending"
	PhaseAnswerLoading Phase = "answer_loading"
	PhaseAnswerReady   Phase = "answer_ready"
	PhaseAnswerFailed  Phase = "answer_failed"
	PhaseVideoLooking  Phase = "video_looking"
)

type VideoOutcomeKind string

const (
	VideoFound    VideoOutcomeKind = "found"
	VideoNotFound VideoOutcomeKind = "not_found"
	VideoError    VideoOutcomeKind = "error"
)

// VideoOutcome is the terminal result of one video lookup.
type VideoOutcome struct {
	Kind   VideoOutcomeKind `json:"kind"`
	URL    string           `json:"url,omitempty"`
	Notice string           `json:"notice,omitempty"`
}
