// Package reconcile implements the three merge algorithms that keep guest,
// account, and remote copies of the progress tree convergent. All functions
// are deterministic given their inputs and never touch storage.
package reconcile

import "github.com/examtopics-practice/backend/internal/models"

// MergeQuestion merges a guest (source) record with an account (target)
// record: fields present in the target win field-by-field, the source fills
// gaps. Bookmarks use OR-logic — bookmarked if either side is.
//
// Note the precedence is intentionally asymmetric and presence-based, with no
// timestamp comparison: an account record with even one field set shadows the
// guest's value for that field. Preserved as-is from the shipped behavior.
func MergeQuestion(source, target *models.QuestionProgress) *models.QuestionProgress {
	merged := source.Clone()
	if merged == nil {
		merged = &models.QuestionProgress{}
	}
	if target != nil {
		if target.Status != nil {
			merged.Status = models.StatusPtr(*target.Status)
		}
		if target.LastAnswered != nil {
			merged.LastAnswered = models.Int64Ptr(*target.LastAnswered)
		}
		if target.ConsecutiveCorrect != nil {
			merged.ConsecutiveCorrect = models.IntPtr(*target.ConsecutiveCorrect)
		}
		if target.TimesWrong != nil {
			merged.TimesWrong = models.IntPtr(*target.TimesWrong)
		}
		if target.UserSelection != nil {
			merged.UserSelection = append([]int(nil), target.UserSelection...)
		}
		if target.Bookmarked != nil {
			merged.Bookmarked = models.BoolPtr(*target.Bookmarked)
		}
	}
	if source.IsBookmarked() || target.IsBookmarked() {
		merged.Bookmarked = models.BoolPtr(true)
	}
	return merged
}

// MergeUserProgress merges every exam and question of source into target,
// in place. Target records take precedence per MergeQuestion.
func MergeUserProgress(source, target models.UserProgress) {
	for examID, sourceExam := range source {
		if target[examID] == nil {
			target[examID] = models.ExamProgress{}
		}
		for questionID, sourceQ := range sourceExam {
			target[examID][questionID] = MergeQuestion(sourceQ, target[examID][questionID])
		}
	}
}

// MergeRemoteExamProgress merges a remote snapshot into the local exam tree.
// Per question, the strictly newer lastAnswered wins (absent counts as 0);
// on a remote win the local bookmark, if set, survives. Questions present
// only in remote are added as-is. Returns a new tree; inputs are unchanged.
func MergeRemoteExamProgress(local, remote models.ExamProgress) models.ExamProgress {
	merged := local.Clone()
	if merged == nil {
		merged = models.ExamProgress{}
	}
	for questionID, remoteQ := range remote {
		localQ := merged[questionID]
		if localQ != nil && remoteQ.AnsweredAt() <= localQ.AnsweredAt() {
			continue
		}
		next := remoteQ.Clone()
		if localQ != nil && localQ.Bookmarked != nil {
			next.Bookmarked = models.BoolPtr(*localQ.Bookmarked)
		}
		merged[questionID] = next
	}
	return merged
}

// MergeExamSettings merges guest (source) settings with account (target)
// settings: target wins field-by-field, source fills gaps, and owned uses
// OR-logic — owned if either side is.
func MergeExamSettings(source, target *models.ExamSettings) *models.ExamSettings {
	merged := source.Clone()
	if merged == nil {
		merged = &models.ExamSettings{}
	}
	if target != nil {
		if target.MistakesConsecutiveCorrect != nil {
			merged.MistakesConsecutiveCorrect = models.IntPtr(*target.MistakesConsecutiveCorrect)
		}
		if target.Owned != nil {
			merged.Owned = models.BoolPtr(*target.Owned)
		}
	}
	if source.IsOwned() || target.IsOwned() {
		merged.Owned = models.BoolPtr(true)
	}
	return merged
}

// MergeUserSettings merges every exam's settings of source into target,
// in place, per MergeExamSettings.
func MergeUserSettings(source, target models.UserSettings) {
	for examID, sourceES := range source {
		target[examID] = MergeExamSettings(sourceES, target[examID])
	}
}
