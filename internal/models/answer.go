package models

// SaveAnswerOptions modify how a submission is recorded.
type SaveAnswerOptions struct {
	// CorrectAttempt overrides correctness derivation from the status value.
	// When nil, the attempt counts as correct iff status == StatusCorrect.
	CorrectAttempt *bool
	// ResetTimesWrong forces timesWrong to 0 on a correct attempt. Used when a
	// question graduates out of the mistakes working set.
	ResetTimesWrong bool
}

// IsCorrectAttempt resolves the attempt outcome for the given status.
func (o SaveAnswerOptions) IsCorrectAttempt(status AnswerStatus) bool {
	if o.CorrectAttempt != nil {
		return *o.CorrectAttempt
	}
	return status == StatusCorrect
}

// ApplyAnswer returns prev updated with one submission. Exactly one of
// "streak incremented" or "streak reset and timesWrong incremented" happens
// per call. Status and lastAnswered are always set; userSelection is only
// overwritten when a selection is provided. prev is not modified.
func ApplyAnswer(prev *QuestionProgress, status AnswerStatus, selection []int, now int64, opts SaveAnswerOptions) *QuestionProgress {
	next := prev.Clone()
	if next == nil {
		next = &QuestionProgress{}
	}

	if opts.IsCorrectAttempt(status) {
		next.ConsecutiveCorrect = IntPtr(prev.Streak() + 1)
		if opts.ResetTimesWrong {
			next.TimesWrong = IntPtr(0)
		}
	} else {
		next.ConsecutiveCorrect = IntPtr(0)
		next.TimesWrong = IntPtr(prev.Wrong() + 1)
	}

	next.Status = StatusPtr(status)
	next.LastAnswered = Int64Ptr(now)
	if selection != nil {
		next.UserSelection = append([]int(nil), selection...)
	}
	return next
}
