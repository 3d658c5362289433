// Package remote mirrors the progress schema to a tree database. Writes are
// best-effort: the caller's local state already succeeded, so failures here
// surface as a non-blocking warning and are never propagated or retried.
package remote

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/examtopics-practice/backend/internal/models"
	"github.com/examtopics-practice/backend/internal/treedb"
)

// base is the fixed namespace the progress tree lives under. Progress is
// sharded as {userId}/{examId}/{questionId}/{field}; per-exam settings live
// at {userId}/_settings/{examId}/{field}. The reserved "_settings" segment
// cannot collide with exam ids.
const base = "examtopics_progress"

const settingsSegment = "_settings"

// Notifier receives the transient user-facing sync warnings.
type Notifier func(msg string)

type Mirror struct {
	store  treedb.Store
	notify Notifier
	now    func() int64
}

type Option func(*Mirror)

// WithNotifier routes sync warnings somewhere other than the log.
func WithNotifier(n Notifier) Option {
	return func(m *Mirror) { m.notify = n }
}

func New(store treedb.Store, opts ...Option) *Mirror {
	m := &Mirror{
		store:  store,
		notify: func(msg string) { log.Printf("[remote] %s", msg) },
		now:    func() int64 { return time.Now().UnixMilli() },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func examPath(userID, examID string) string {
	return base + "/" + userID + "/" + examID
}

func questionPath(userID, examID, questionID string) string {
	return examPath(userID, examID) + "/" + questionID
}

func settingsPath(userID, examID string) string {
	return base + "/" + userID + "/" + settingsSegment + "/" + examID
}

// ── Reads ────────────────────────────────────────────────

// UserProgress returns the user's full remote progress tree, empty when
// absent. The reserved settings subtree is not part of progress.
func (m *Mirror) UserProgress(ctx context.Context, userID string) (models.UserProgress, error) {
	raw, err := m.store.Get(ctx, base+"/"+userID)
	if err != nil {
		return nil, err
	}
	up := models.UserProgress{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &up); err != nil {
			return nil, err
		}
	}
	delete(up, settingsSegment)
	return up, nil
}

// ExamProgress returns the user's remote progress for one exam, empty when
// absent.
func (m *Mirror) ExamProgress(ctx context.Context, userID, examID string) (models.ExamProgress, error) {
	raw, err := m.store.Get(ctx, examPath(userID, examID))
	if err != nil {
		return nil, err
	}
	ep := models.ExamProgress{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &ep); err != nil {
			return nil, err
		}
	}
	return ep, nil
}

// ExamSettings returns the user's remote settings for one exam, empty when
// absent.
func (m *Mirror) ExamSettings(ctx context.Context, userID, examID string) (models.ExamSettings, error) {
	raw, err := m.store.Get(ctx, settingsPath(userID, examID))
	if err != nil {
		return models.ExamSettings{}, err
	}
	var es models.ExamSettings
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &es); err != nil {
			return models.ExamSettings{}, err
		}
	}
	return es, nil
}

// ── Subscription ─────────────────────────────────────────

// SubscribeExamProgress delivers the exam's full remote progress: once
// immediately with the current state and again after every remote change.
// Subscribe never fails to the caller — on error it warns and delivers a
// single empty snapshot. The returned func tears the subscription down.
func (m *Mirror) SubscribeExamProgress(userID, examID string) (<-chan models.ExamProgress, func()) {
	sub, err := m.store.Subscribe(examPath(userID, examID))
	if err != nil {
		m.notify("Failed to subscribe to cloud progress")
		ch := make(chan models.ExamProgress, 1)
		ch <- models.ExamProgress{}
		close(ch)
		return ch, func() {}
	}

	out := make(chan models.ExamProgress, 1)
	go func() {
		defer close(out)
		for raw := range sub.C {
			ep := models.ExamProgress{}
			if len(raw) > 0 {
				if err := json.Unmarshal(raw, &ep); err != nil {
					// Treat undecodable remote state as empty.
					ep = models.ExamProgress{}
				}
			}
			select {
			case out <- ep:
			default:
				select {
				case <-out:
				default:
				}
				out <- ep
			}
		}
	}()
	return out, sub.Cancel
}

// ── Writes ───────────────────────────────────────────────

// SaveAnswer mirrors one submission, computing the counters from prev the
// same way the local store does. Every answer field is written explicitly —
// absent values become null markers so subscribers see fields cleared.
func (m *Mirror) SaveAnswer(ctx context.Context, userID, examID, questionID string, status models.AnswerStatus, selection []int, prev *models.QuestionProgress, opts models.SaveAnswerOptions) {
	next := models.ApplyAnswer(prev, status, selection, m.now(), opts)

	qp := questionPath(userID, examID, questionID)
	updates := map[string]any{
		qp + "/status":             *next.Status,
		qp + "/lastAnswered":       *next.LastAnswered,
		qp + "/consecutiveCorrect": next.Streak(),
		qp + "/timesWrong":         next.Wrong(),
	}
	if next.UserSelection != nil {
		updates[qp+"/userSelection"] = next.UserSelection
	} else {
		updates[qp+"/userSelection"] = nil
	}

	if err := m.store.Update(ctx, updates); err != nil {
		m.notify("Failed to sync answer to cloud")
	}
}

// ToggleBookmark mirrors a bookmark state change.
func (m *Mirror) ToggleBookmark(ctx context.Context, userID, examID, questionID string, newState bool) {
	err := m.store.Update(ctx, map[string]any{
		questionPath(userID, examID, questionID) + "/bookmarked": newState,
	})
	if err != nil {
		m.notify("Failed to sync bookmark to cloud")
	}
}

// ClearExamProgress clears the answer fields of every remote question under
// the exam. Bookmarks are preserved.
func (m *Mirror) ClearExamProgress(ctx context.Context, userID, examID string) {
	raw, err := m.store.Get(ctx, examPath(userID, examID))
	if err != nil {
		m.notify("Failed to clear cloud progress")
		return
	}
	exam := models.ExamProgress{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &exam); err != nil {
			m.notify("Failed to clear cloud progress")
			return
		}
	}
	updates := make(map[string]any)
	for questionID := range exam {
		qp := questionPath(userID, examID, questionID)
		updates[qp+"/status"] = nil
		updates[qp+"/lastAnswered"] = nil
		updates[qp+"/consecutiveCorrect"] = nil
		updates[qp+"/userSelection"] = nil
	}
	if len(updates) == 0 {
		return
	}
	if err := m.store.Update(ctx, updates); err != nil {
		m.notify("Failed to clear cloud progress")
	}
}

// SaveExamSettings writes the fields present in the patch. Per-field paths
// make this a shallow merge on the remote side as well.
func (m *Mirror) SaveExamSettings(ctx context.Context, userID, examID string, patch models.ExamSettings) {
	sp := settingsPath(userID, examID)
	updates := make(map[string]any)
	if patch.MistakesConsecutiveCorrect != nil {
		updates[sp+"/mistakesConsecutiveCorrect"] = *patch.MistakesConsecutiveCorrect
	}
	if patch.Owned != nil {
		updates[sp+"/owned"] = *patch.Owned
	}
	if len(updates) == 0 {
		return
	}
	if err := m.store.Update(ctx, updates); err != nil {
		m.notify("Failed to sync settings to cloud")
	}
}

// MergeLocalIntoRemote flattens the user's entire local progress tree into
// one batched multi-path write — one leaf per field across all exams and
// questions.
func (m *Mirror) MergeLocalIntoRemote(ctx context.Context, userID string, local models.UserProgress) {
	updates := make(map[string]any)
	for examID, exam := range local {
		for questionID, q := range exam {
			if q == nil {
				continue
			}
			qp := questionPath(userID, examID, questionID)
			if q.Status != nil {
				updates[qp+"/status"] = *q.Status
			}
			if q.Bookmarked != nil {
				updates[qp+"/bookmarked"] = *q.Bookmarked
			}
			if q.LastAnswered != nil {
				updates[qp+"/lastAnswered"] = *q.LastAnswered
			}
			if q.ConsecutiveCorrect != nil {
				updates[qp+"/consecutiveCorrect"] = *q.ConsecutiveCorrect
			}
			if q.TimesWrong != nil {
				updates[qp+"/timesWrong"] = *q.TimesWrong
			}
			if q.UserSelection != nil {
				updates[qp+"/userSelection"] = q.UserSelection
			}
		}
	}
	if len(updates) == 0 {
		return
	}
	if err := m.store.Update(ctx, updates); err != nil {
		m.notify("Failed to push merged progress to cloud")
	}
}
