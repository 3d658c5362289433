// Package mistakes derives the "My Mistakes" working set from progress
// records. The set is recomputed, never stored: recompute is idempotent and
// order-independent given the underlying progress map.
package mistakes

import "github.com/examtopics-practice/backend/internal/models"

// Flagged reports whether a record carries the mistake flag: it exists and
// was last answered incorrectly or has ever been answered incorrectly.
func Flagged(q *models.QuestionProgress) bool {
	return q != nil && (q.StatusIs(models.StatusIncorrect) || q.Wrong() > 0)
}

// InSet reports whether a record belongs to the working set under the given
// graduation threshold. A threshold of 0 means flagged questions never
// graduate, regardless of streak.
func InSet(q *models.QuestionProgress, threshold int) bool {
	if !Flagged(q) {
		return false
	}
	if threshold <= 0 {
		return true
	}
	return q.Streak() < threshold
}

// WorkingSet filters questions, preserving order, to those in the set.
func WorkingSet(questions []models.Question, progress models.ExamProgress, threshold int) []models.Question {
	var set []models.Question
	for _, q := range questions {
		if InSet(progress[q.ID], threshold) {
			set = append(set, q)
		}
	}
	return set
}

// ReadyToGraduate reports whether a flagged record already satisfies the
// threshold. Entering mistakes mode sweeps these out of the set with a
// streak-preserving correct write that resets timesWrong.
func ReadyToGraduate(q *models.QuestionProgress, threshold int) bool {
	return threshold > 0 && Flagged(q) && q.Streak() >= threshold
}

// Graduated reports whether one correct submission just pushed the streak
// across the threshold. This is the one-time graduation event.
func Graduated(prevStreak, newStreak, threshold int) bool {
	return threshold > 0 && prevStreak < threshold && newStreak >= threshold
}

// PersistStatus returns the status to record for an in-mode submission.
// A correct answer that has not yet reached the threshold is persisted as
// incorrect so the question stays in the set across reloads; it flips to
// correct at graduation.
func PersistStatus(correct bool, newStreak, threshold int) models.AnswerStatus {
	if !correct {
		return models.StatusIncorrect
	}
	if newStreak >= threshold {
		return models.StatusCorrect
	}
	return models.StatusIncorrect
}

// ClampIndex returns the view index to use after the set recomputes: the
// current index when still in bounds, else 0.
func ClampIndex(current, setSize int) int {
	if current >= 0 && current < setSize {
		return current
	}
	return 0
}
