package models

// AnswerRequest is the body of a submit-answer call. CorrectAttempt lets the
// caller override the correctness implied by Status (a "correct" status with
// CorrectAttempt=false still breaks the streak). ResetTimesWrong zeroes the
// wrong counter alongside a correct attempt, used when a question graduates
// out of the mistakes set.
type AnswerRequest struct {
	Status          AnswerStatus `json:"status"`
	Selection       []int        `json:"selection,omitempty"`
	CorrectAttempt  *bool        `json:"correct_attempt,omitempty"`
	ResetTimesWrong bool         `json:"reset_times_wrong,omitempty"`
}

type BookmarkResponse struct {
	Bookmarked bool `json:"bookmarked"`
}
