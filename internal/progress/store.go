package progress

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/examtopics-practice/backend/internal/models"
	"github.com/examtopics-practice/backend/internal/reconcile"
)

// Store is the synchronous local progress store. It keeps the whole
// AppProgress and AppSettings trees as two JSON documents behind an injected
// Storage and writes the full document back on every mutation. Malformed or
// missing stored data always reads as empty, never as an error.
type Store struct {
	storage Storage

	// now is the clock used for lastAnswered stamps. Overridable in tests.
	now func() int64
}

func New(storage Storage) *Store {
	return &Store{
		storage: storage,
		now:     func() int64 { return time.Now().UnixMilli() },
	}
}

// ── Reads ────────────────────────────────────────────────

// AllProgress returns the root progress tree, empty when absent or malformed.
func (s *Store) AllProgress() models.AppProgress {
	all := models.AppProgress{}
	data, err := s.storage.Read(ProgressKey)
	if err != nil || len(data) == 0 {
		return all
	}
	if err := json.Unmarshal(data, &all); err != nil {
		return models.AppProgress{}
	}
	return all
}

func (s *Store) UserProgress(userID string) models.UserProgress {
	if up := s.AllProgress()[userID]; up != nil {
		return up
	}
	return models.UserProgress{}
}

func (s *Store) ExamProgress(userID, examID string) models.ExamProgress {
	if ep := s.UserProgress(userID)[examID]; ep != nil {
		return ep
	}
	return models.ExamProgress{}
}

// AllSettings returns the root settings tree, empty when absent or malformed.
func (s *Store) AllSettings() models.AppSettings {
	all := models.AppSettings{}
	data, err := s.storage.Read(SettingsKey)
	if err != nil || len(data) == 0 {
		return all
	}
	if err := json.Unmarshal(data, &all); err != nil {
		return models.AppSettings{}
	}
	return all
}

func (s *Store) UserSettings(userID string) models.UserSettings {
	if us := s.AllSettings()[userID]; us != nil {
		return us
	}
	return models.UserSettings{}
}

func (s *Store) ExamSettings(userID, examID string) models.ExamSettings {
	if es := s.UserSettings(userID)[examID]; es != nil {
		return *es
	}
	return models.ExamSettings{}
}

// ── Mutations ────────────────────────────────────────────

// SaveAnswer records one submission, creating the nested path as needed.
// Counter rules live in models.ApplyAnswer.
func (s *Store) SaveAnswer(userID, examID, questionID string, status models.AnswerStatus, selection []int, opts models.SaveAnswerOptions) error {
	all := s.AllProgress()
	exam := ensureExam(all, userID, examID)
	exam[questionID] = models.ApplyAnswer(exam[questionID], status, selection, s.now(), opts)
	return s.writeProgress(all)
}

// ToggleBookmark flips the bookmark flag, creating structure as needed, and
// returns the new state.
func (s *Store) ToggleBookmark(userID, examID, questionID string) (bool, error) {
	all := s.AllProgress()
	exam := ensureExam(all, userID, examID)
	q := exam[questionID]
	if q == nil {
		q = &models.QuestionProgress{}
		exam[questionID] = q
	}
	next := !q.IsBookmarked()
	q.Bookmarked = models.BoolPtr(next)
	return next, s.writeProgress(all)
}

// ClearExamProgress deletes the answer-related fields of every question under
// the exam. Bookmarks survive. No-op when the user or exam is absent.
func (s *Store) ClearExamProgress(userID, examID string) error {
	all := s.AllProgress()
	exam := all[userID][examID]
	if exam == nil {
		return nil
	}
	for _, q := range exam {
		if q == nil {
			continue
		}
		q.Status = nil
		q.LastAnswered = nil
		q.ConsecutiveCorrect = nil
		q.UserSelection = nil
	}
	return s.writeProgress(all)
}

// SaveExamSettings shallow-merges the patch into the exam's settings: fields
// present in the patch overwrite, others are preserved.
func (s *Store) SaveExamSettings(userID, examID string, patch models.ExamSettings) error {
	all := s.AllSettings()
	if all[userID] == nil {
		all[userID] = models.UserSettings{}
	}
	existing := all[userID][examID]
	if existing == nil {
		existing = &models.ExamSettings{}
		all[userID][examID] = existing
	}
	if patch.MistakesConsecutiveCorrect != nil {
		existing.MistakesConsecutiveCorrect = patch.MistakesConsecutiveCorrect
	}
	if patch.Owned != nil {
		existing.Owned = patch.Owned
	}
	return s.writeSettings(all)
}

// SaveUserSettings shallow-merges the patch into the user's settings: exam
// entries present in the patch overwrite, other exams are preserved.
func (s *Store) SaveUserSettings(userID string, patch models.UserSettings) error {
	all := s.AllSettings()
	if all[userID] == nil {
		all[userID] = models.UserSettings{}
	}
	for examID, es := range patch {
		all[userID][examID] = es.Clone()
	}
	return s.writeSettings(all)
}

// ── Reconciliation entry points ──────────────────────────

// MergeProgress merges the source user's progress into the target user
// (guest → account). Source data is retained.
func (s *Store) MergeProgress(sourceUserID, targetUserID string) error {
	all := s.AllProgress()
	source := all[sourceUserID]
	if len(source) == 0 {
		return nil
	}
	if all[targetUserID] == nil {
		all[targetUserID] = models.UserProgress{}
	}
	reconcile.MergeUserProgress(source, all[targetUserID])
	return s.writeProgress(all)
}

// MergeRemoteExamProgress merges a remote snapshot into the local exam tree
// using last-write-wins on lastAnswered.
func (s *Store) MergeRemoteExamProgress(userID, examID string, remote models.ExamProgress) error {
	if len(remote) == 0 {
		return nil
	}
	all := s.AllProgress()
	exam := ensureExam(all, userID, examID)
	merged := reconcile.MergeRemoteExamProgress(exam, remote)
	all[userID][examID] = merged
	return s.writeProgress(all)
}

// MergeSettings merges the source user's settings into the target user.
func (s *Store) MergeSettings(sourceUserID, targetUserID string) error {
	all := s.AllSettings()
	source := all[sourceUserID]
	if len(source) == 0 {
		return nil
	}
	if all[targetUserID] == nil {
		all[targetUserID] = models.UserSettings{}
	}
	reconcile.MergeUserSettings(source, all[targetUserID])
	return s.writeSettings(all)
}

// ── Persistence ──────────────────────────────────────────

func (s *Store) writeProgress(all models.AppProgress) error {
	data, err := json.Marshal(all)
	if err != nil {
		return fmt.Errorf("encode progress: %w", err)
	}
	return s.storage.Write(ProgressKey, data)
}

func (s *Store) writeSettings(all models.AppSettings) error {
	data, err := json.Marshal(all)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	return s.storage.Write(SettingsKey, data)
}

func ensureExam(all models.AppProgress, userID, examID string) models.ExamProgress {
	if all[userID] == nil {
		all[userID] = models.UserProgress{}
	}
	if all[userID][examID] == nil {
		all[userID][examID] = models.ExamProgress{}
	}
	return all[userID][examID]
}
