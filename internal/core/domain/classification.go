package domain

// ClassificationResult is the immutable snapshot produced by one successful
// upload. Callers must treat the maps and slices as read-only.
type ClassificationResult struct {
	QuestionsByCategory map[Category][]Question `json:"questions_by_category"`
	// TotalCount is what the service reported; it need not equal the sum of
	// the per-category list lengths.
	TotalCount   int      `json:"total_count"`
	AllQuestions []string `json:"all_questions"`
}

// Questions returns the bucket for c, or nil when the category is absent.
func (r *ClassificationResult) Questions(c Category) []Question {
	if r == nil {
		return nil
	}
	return r.QuestionsByCategory[c]
}

func (r *ClassificationResult) HasQuestions() bool {
	return r != nil && len(r.AllQuestions) > 0
}

// Document is the file picked by the user. Content is owned by the upload
// transport and dropped once the request completes.
type Document struct {
	Filename    string
	ContentType string
	Content     []byte
}
