package domain

const (
	AnswerFallbackMessage  = "Sorry, I couldn't get an answer for that question."
	SummaryFallbackMessage = "Could not generate a summary for this document."
	VideoNotFoundMessage   = "Sorry, couldn't find a video for that topic."
	VideoErrorMessage      = "An error occurred while searching for a video. Please ensure the backend server is running correctly."
	NoQuestionsPlaceholder = "No questions available."
)
