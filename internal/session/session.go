// Package session orchestrates a practice session: local-first writes with
// fire-and-forget cloud mirroring, the sign-in reconciliation sequence, and
// subscription-driven remote merging.
package session

import (
	"context"
	"log"

	"github.com/examtopics-practice/backend/internal/content"
	"github.com/examtopics-practice/backend/internal/mistakes"
	"github.com/examtopics-practice/backend/internal/models"
	"github.com/examtopics-practice/backend/internal/progress"
	"github.com/examtopics-practice/backend/internal/remote"
)

type Session struct {
	local  *progress.Store
	mirror *remote.Mirror
	notify remote.Notifier
}

type Option func(*Session)

// WithNotifier routes user-facing session messages somewhere other than the
// log.
func WithNotifier(n remote.Notifier) Option {
	return func(s *Session) { s.notify = n }
}

func New(local *progress.Store, mirror *remote.Mirror, opts ...Option) *Session {
	s := &Session{
		local:  local,
		mirror: mirror,
		notify: func(msg string) { log.Printf("[session] %s", msg) },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ── Sign-in reconciliation ───────────────────────────────

// SignIn runs the guest → account transition: merge guest progress and
// settings into the account locally, push the merged local state to the
// remote store, then pull remote settings back down to reconcile state from
// other devices.
func (s *Session) SignIn(ctx context.Context, guestID, accountID string) error {
	if err := s.local.MergeProgress(guestID, accountID); err != nil {
		return err
	}
	if err := s.local.MergeSettings(guestID, accountID); err != nil {
		return err
	}

	s.mirror.MergeLocalIntoRemote(ctx, accountID, s.local.UserProgress(accountID))

	local := s.local.UserSettings(accountID)
	for examID, es := range local {
		if es != nil {
			s.mirror.SaveExamSettings(ctx, accountID, examID, *es)
		}
	}
	for examID := range local {
		rs, err := s.mirror.ExamSettings(ctx, accountID, examID)
		if err != nil {
			s.notify("Failed to load cloud settings")
			continue
		}
		if err := s.local.SaveExamSettings(accountID, examID, rs); err != nil {
			return err
		}
	}
	return nil
}

// ── Live remote sync ─────────────────────────────────────

// Watch subscribes to the exam's remote progress and merges every snapshot
// into the local tree with last-write-wins. The returned channel carries the
// merged local view after each remote delivery, starting with the initial
// snapshot; the func tears the subscription down.
func (s *Session) Watch(userID, examID string) (<-chan models.ExamProgress, func()) {
	snaps, cancel := s.mirror.SubscribeExamProgress(userID, examID)
	out := make(chan models.ExamProgress, 1)
	go func() {
		defer close(out)
		for snap := range snaps {
			if err := s.local.MergeRemoteExamProgress(userID, examID, snap); err != nil {
				log.Printf("[session] merge remote progress: %v", err)
				continue
			}
			merged := s.local.ExamProgress(userID, examID)
			select {
			case out <- merged:
			default:
				select {
				case <-out:
				default:
				}
				out <- merged
			}
		}
	}()
	return out, cancel
}

// ── Submissions ──────────────────────────────────────────

type SubmitInput struct {
	// UserID is the active local identity (guest or account).
	UserID string
	// RemoteUserID mirrors the write to the cloud when non-empty.
	RemoteUserID string
	ExamID       string
	Question     models.Question
	Selection    []int
	// MistakesMode applies the working-set persistence rules and graduation
	// under Threshold.
	MistakesMode bool
	Threshold    int
}

type SubmitResult struct {
	Correct bool
	Status  models.AnswerStatus
	Streak  int
	// Graduated fires once, the moment the streak crosses the threshold
	// inside mistakes mode.
	Graduated bool
}

// SubmitAnswer grades one submission against the question's answer key and
// records it locally first, then mirrors it to the cloud when signed in.
func (s *Session) SubmitAnswer(ctx context.Context, in SubmitInput) (SubmitResult, error) {
	correct := content.SameSelections(in.Selection, in.Question.CorrectAnswers)
	prev := s.local.ExamProgress(in.UserID, in.ExamID)[in.Question.ID]
	prevStreak := prev.Streak()
	newStreak := 0
	if correct {
		newStreak = prevStreak + 1
	}

	status := models.StatusCorrect
	if in.MistakesMode {
		status = mistakes.PersistStatus(correct, newStreak, in.Threshold)
	} else if !correct {
		status = models.StatusIncorrect
	}

	graduated := in.MistakesMode && correct &&
		mistakes.Graduated(prevStreak, newStreak, in.Threshold)

	opts := models.SaveAnswerOptions{
		CorrectAttempt:  models.BoolPtr(correct),
		ResetTimesWrong: graduated,
	}
	if err := s.local.SaveAnswer(in.UserID, in.ExamID, in.Question.ID, status, in.Selection, opts); err != nil {
		return SubmitResult{}, err
	}

	if in.RemoteUserID != "" {
		s.mirror.SaveAnswer(ctx, in.RemoteUserID, in.ExamID, in.Question.ID, status, in.Selection, prev, opts)
	} else {
		s.notify("Saved locally. Sign in to sync to cloud")
	}

	return SubmitResult{
		Correct:   correct,
		Status:    status,
		Streak:    newStreak,
		Graduated: graduated,
	}, nil
}

// ── Mistakes mode ────────────────────────────────────────

// EnterMistakesMode recomputes the working set. Flagged questions whose
// streak already satisfies the threshold are swept out first with a
// streak-preserving correct write that clears timesWrong, mirrored to the
// cloud when signed in.
func (s *Session) EnterMistakesMode(ctx context.Context, userID, remoteUserID, examID string, questions []models.Question, threshold int) ([]models.Question, error) {
	ep := s.local.ExamProgress(userID, examID)
	for _, q := range questions {
		prev := ep[q.ID]
		if !mistakes.ReadyToGraduate(prev, threshold) {
			continue
		}
		opts := models.SaveAnswerOptions{
			CorrectAttempt:  models.BoolPtr(true),
			ResetTimesWrong: true,
		}
		if err := s.local.SaveAnswer(userID, examID, q.ID, models.StatusCorrect, prev.UserSelection, opts); err != nil {
			return nil, err
		}
		if remoteUserID != "" {
			s.mirror.SaveAnswer(ctx, remoteUserID, examID, q.ID, models.StatusCorrect, prev.UserSelection, prev, opts)
		}
	}
	ep = s.local.ExamProgress(userID, examID)
	return mistakes.WorkingSet(questions, ep, threshold), nil
}

// ── Other mirrored operations ────────────────────────────

// ToggleBookmark flips the bookmark locally and mirrors the new state.
func (s *Session) ToggleBookmark(ctx context.Context, userID, remoteUserID, examID, questionID string) (bool, error) {
	next, err := s.local.ToggleBookmark(userID, examID, questionID)
	if err != nil {
		return false, err
	}
	if remoteUserID != "" {
		s.mirror.ToggleBookmark(ctx, remoteUserID, examID, questionID, next)
	}
	return next, nil
}

// ClearExamProgress clears answer fields locally and remotely; bookmarks
// survive on both sides.
func (s *Session) ClearExamProgress(ctx context.Context, userID, remoteUserID, examID string) error {
	if err := s.local.ClearExamProgress(userID, examID); err != nil {
		return err
	}
	if remoteUserID != "" {
		s.mirror.ClearExamProgress(ctx, remoteUserID, examID)
	}
	return nil
}

// SaveExamSettings persists a settings patch locally and mirrors it.
func (s *Session) SaveExamSettings(ctx context.Context, userID, remoteUserID, examID string, patch models.ExamSettings) error {
	if err := s.local.SaveExamSettings(userID, examID, patch); err != nil {
		return err
	}
	if remoteUserID != "" {
		s.mirror.SaveExamSettings(ctx, remoteUserID, examID, patch)
	}
	return nil
}

// MostRecentIndex returns the index of the last question in the list with
// recorded activity, for "resume where you left off" navigation. Returns -1
// when nothing has been answered.
func MostRecentIndex(questions []models.Question, ep models.ExamProgress) int {
	for i := len(questions) - 1; i >= 0; i-- {
		if ep[questions[i].ID].AnsweredAt() > 0 {
			return i
		}
	}
	return -1
}
