package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examtopics-practice/backend/internal/models"
	"github.com/examtopics-practice/backend/internal/progress"
	"github.com/examtopics-practice/backend/internal/remote"
	"github.com/examtopics-practice/backend/internal/treedb"
)

func newTestSession() (*Session, *progress.Store, *remote.Mirror, *[]string) {
	local := progress.New(progress.NewMemStorage())
	mirror := remote.New(treedb.NewMemory())
	var messages []string
	s := New(local, mirror, WithNotifier(func(msg string) { messages = append(messages, msg) }))
	return s, local, mirror, &messages
}

func singleChoice(id string, correct int) models.Question {
	return models.Question{
		ID:                 id,
		Type:               models.QuestionSingle,
		Options:            []models.QuestionOption{{Text: "a"}, {Text: "b"}, {Text: "c"}},
		CorrectAnswers:     []int{correct},
		RequiredSelections: 1,
	}
}

func TestSubmitAnswer_CorrectPractice(t *testing.T) {
	s, local, _, _ := newTestSession()

	res, err := s.SubmitAnswer(context.Background(), SubmitInput{
		UserID:    "guest",
		ExamID:    "exam",
		Question:  singleChoice("1", 2),
		Selection: []int{2},
	})
	require.NoError(t, err)

	assert.True(t, res.Correct)
	assert.Equal(t, models.StatusCorrect, res.Status)
	assert.Equal(t, 1, res.Streak)
	assert.False(t, res.Graduated)

	q := local.ExamProgress("guest", "exam")["1"]
	assert.True(t, q.StatusIs(models.StatusCorrect))
}

func TestSubmitAnswer_WrongPractice(t *testing.T) {
	s, local, _, _ := newTestSession()

	res, err := s.SubmitAnswer(context.Background(), SubmitInput{
		UserID:    "guest",
		ExamID:    "exam",
		Question:  singleChoice("1", 2),
		Selection: []int{0},
	})
	require.NoError(t, err)

	assert.False(t, res.Correct)
	assert.Equal(t, models.StatusIncorrect, res.Status)
	assert.Equal(t, 0, res.Streak)
	assert.Equal(t, 1, local.ExamProgress("guest", "exam")["1"].Wrong())
}

func TestSubmitAnswer_MultipleChoiceOrderInsensitive(t *testing.T) {
	s, _, _, _ := newTestSession()

	q := models.Question{
		ID:                 "1",
		Type:               models.QuestionMultiple,
		Options:            []models.QuestionOption{{Text: "a"}, {Text: "b"}, {Text: "c"}},
		CorrectAnswers:     []int{0, 2},
		RequiredSelections: 2,
	}
	res, err := s.SubmitAnswer(context.Background(), SubmitInput{
		UserID:    "guest",
		ExamID:    "exam",
		Question:  q,
		Selection: []int{2, 0},
	})
	require.NoError(t, err)
	assert.True(t, res.Correct)
}

func TestSubmitAnswer_GuestGetsSignInNudge(t *testing.T) {
	s, _, _, messages := newTestSession()

	_, err := s.SubmitAnswer(context.Background(), SubmitInput{
		UserID:    "guest",
		ExamID:    "exam",
		Question:  singleChoice("1", 0),
		Selection: []int{0},
	})
	require.NoError(t, err)
	require.Len(t, *messages, 1)
	assert.Equal(t, "Saved locally. Sign in to sync to cloud", (*messages)[0])
}

func TestSubmitAnswer_SignedInMirrorsWrite(t *testing.T) {
	s, _, mirror, messages := newTestSession()
	ctx := context.Background()

	_, err := s.SubmitAnswer(ctx, SubmitInput{
		UserID:       "acct",
		RemoteUserID: "acct",
		ExamID:       "exam",
		Question:     singleChoice("1", 0),
		Selection:    []int{0},
	})
	require.NoError(t, err)
	assert.Empty(t, *messages)

	ep, err := mirror.ExamProgress(ctx, "acct", "exam")
	require.NoError(t, err)
	assert.True(t, ep["1"].StatusIs(models.StatusCorrect))
}

func TestSubmitAnswer_MistakesModePersistsIncorrectUntilGraduation(t *testing.T) {
	s, local, _, _ := newTestSession()
	ctx := context.Background()
	q := singleChoice("1", 0)

	// Flag the question first.
	_, err := s.SubmitAnswer(ctx, SubmitInput{
		UserID: "guest", ExamID: "exam", Question: q, Selection: []int{1},
	})
	require.NoError(t, err)

	in := SubmitInput{
		UserID: "guest", ExamID: "exam", Question: q, Selection: []int{0},
		MistakesMode: true, Threshold: 2,
	}

	res, err := s.SubmitAnswer(ctx, in)
	require.NoError(t, err)
	assert.True(t, res.Correct)
	// Still short of the threshold: recorded incorrect so the question stays
	// in the set across reloads.
	assert.Equal(t, models.StatusIncorrect, res.Status)
	assert.False(t, res.Graduated)
	assert.Equal(t, 1, res.Streak)

	res, err = s.SubmitAnswer(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCorrect, res.Status)
	assert.True(t, res.Graduated)
	assert.Equal(t, 2, res.Streak)

	rec := local.ExamProgress("guest", "exam")["1"]
	assert.Equal(t, 0, rec.Wrong(), "graduation resets timesWrong")
	assert.Equal(t, 2, rec.Streak())
}

func TestSubmitAnswer_GraduationFiresOnce(t *testing.T) {
	s, _, _, _ := newTestSession()
	ctx := context.Background()
	q := singleChoice("1", 0)

	s.SubmitAnswer(ctx, SubmitInput{UserID: "g", ExamID: "e", Question: q, Selection: []int{1}})

	in := SubmitInput{UserID: "g", ExamID: "e", Question: q, Selection: []int{0}, MistakesMode: true, Threshold: 1}

	res, _ := s.SubmitAnswer(ctx, in)
	assert.True(t, res.Graduated)

	res, _ = s.SubmitAnswer(ctx, in)
	assert.False(t, res.Graduated, "already past the threshold")
}

func TestEnterMistakesMode_SweepsAlreadyQualified(t *testing.T) {
	s, local, _, _ := newTestSession()
	ctx := context.Background()
	questions := []models.Question{singleChoice("1", 0), singleChoice("2", 0)}

	// q1: flagged with a streak that already satisfies the threshold (the
	// threshold was lowered since those answers were recorded).
	local.SaveAnswer("g", "e", "1", models.StatusIncorrect, nil, models.SaveAnswerOptions{})
	for i := 0; i < 3; i++ {
		local.SaveAnswer("g", "e", "1", models.StatusIncorrect, nil, models.SaveAnswerOptions{
			CorrectAttempt: models.BoolPtr(true),
		})
	}
	// q2: freshly wrong.
	local.SaveAnswer("g", "e", "2", models.StatusIncorrect, nil, models.SaveAnswerOptions{})

	set, err := s.EnterMistakesMode(ctx, "g", "", "e", questions, 2)
	require.NoError(t, err)

	require.Len(t, set, 1)
	assert.Equal(t, "2", set[0].ID)

	swept := local.ExamProgress("g", "e")["1"]
	assert.True(t, swept.StatusIs(models.StatusCorrect))
	assert.Equal(t, 0, swept.Wrong())
}

func TestEnterMistakesMode_ZeroThresholdKeepsEverythingFlagged(t *testing.T) {
	s, local, _, _ := newTestSession()

	questions := []models.Question{singleChoice("1", 0)}
	local.SaveAnswer("g", "e", "1", models.StatusIncorrect, nil, models.SaveAnswerOptions{})
	for i := 0; i < 10; i++ {
		local.SaveAnswer("g", "e", "1", models.StatusIncorrect, nil, models.SaveAnswerOptions{
			CorrectAttempt: models.BoolPtr(true),
		})
	}

	set, err := s.EnterMistakesMode(context.Background(), "g", "", "e", questions, 0)
	require.NoError(t, err)
	assert.Len(t, set, 1, "zero threshold never graduates")
}

func TestSignIn_MergesAndPushes(t *testing.T) {
	s, local, mirror, _ := newTestSession()
	ctx := context.Background()

	local.SaveAnswer("guest", "exam", "1", models.StatusCorrect, []int{0}, models.SaveAnswerOptions{})
	local.ToggleBookmark("guest", "exam", "2")
	local.SaveExamSettings("guest", "exam", models.ExamSettings{Owned: models.BoolPtr(true)})

	require.NoError(t, s.SignIn(ctx, "guest", "acct"))

	// Local account tree now holds the guest's work.
	acct := local.ExamProgress("acct", "exam")
	assert.True(t, acct["1"].StatusIs(models.StatusCorrect))
	assert.True(t, acct["2"].IsBookmarked())
	acctSettings := local.ExamSettings("acct", "exam")
	assert.True(t, acctSettings.IsOwned())

	// And the remote tree mirrors it.
	up, err := mirror.UserProgress(ctx, "acct")
	require.NoError(t, err)
	assert.True(t, up["exam"]["1"].StatusIs(models.StatusCorrect))

	es, err := mirror.ExamSettings(ctx, "acct", "exam")
	require.NoError(t, err)
	assert.True(t, es.IsOwned())
}

func TestSignIn_RemoteSettingsPulledBack(t *testing.T) {
	s, local, mirror, _ := newTestSession()
	ctx := context.Background()

	local.SaveExamSettings("guest", "exam", models.ExamSettings{Owned: models.BoolPtr(true)})
	// Another device already raised the threshold remotely.
	mirror.SaveExamSettings(ctx, "acct", "exam", models.ExamSettings{MistakesConsecutiveCorrect: models.IntPtr(7)})

	require.NoError(t, s.SignIn(ctx, "guest", "acct"))

	es := local.ExamSettings("acct", "exam")
	assert.Equal(t, 7, es.Threshold())
	assert.True(t, es.IsOwned())
}

func TestWatch_MergesRemoteIntoLocal(t *testing.T) {
	s, local, mirror, _ := newTestSession()
	ctx := context.Background()

	merged, cancel := s.Watch("acct", "exam")
	defer cancel()

	select {
	case ep := <-merged:
		assert.Empty(t, ep)
	case <-time.After(time.Second):
		t.Fatal("initial merged snapshot not delivered")
	}

	mirror.SaveAnswer(ctx, "acct", "exam", "1", models.StatusCorrect, nil, nil, models.SaveAnswerOptions{})

	select {
	case ep := <-merged:
		assert.True(t, ep["1"].StatusIs(models.StatusCorrect))
	case <-time.After(time.Second):
		t.Fatal("merged snapshot after remote write not delivered")
	}

	assert.True(t, local.ExamProgress("acct", "exam")["1"].StatusIs(models.StatusCorrect))
}

func TestToggleBookmark_Mirrored(t *testing.T) {
	s, _, mirror, _ := newTestSession()
	ctx := context.Background()

	on, err := s.ToggleBookmark(ctx, "acct", "acct", "exam", "5")
	require.NoError(t, err)
	assert.True(t, on)

	ep, err := mirror.ExamProgress(ctx, "acct", "exam")
	require.NoError(t, err)
	assert.True(t, ep["5"].IsBookmarked())
}

func TestClearExamProgress_Mirrored(t *testing.T) {
	s, local, mirror, _ := newTestSession()
	ctx := context.Background()

	s.SubmitAnswer(ctx, SubmitInput{
		UserID: "acct", RemoteUserID: "acct", ExamID: "exam",
		Question: singleChoice("1", 0), Selection: []int{0},
	})

	require.NoError(t, s.ClearExamProgress(ctx, "acct", "acct", "exam"))

	assert.Nil(t, local.ExamProgress("acct", "exam")["1"].Status)
	ep, err := mirror.ExamProgress(ctx, "acct", "exam")
	require.NoError(t, err)
	assert.Nil(t, ep["1"].Status)
}

func TestMostRecentIndex(t *testing.T) {
	questions := []models.Question{{ID: "1"}, {ID: "2"}, {ID: "3"}}

	assert.Equal(t, -1, MostRecentIndex(questions, models.ExamProgress{}))

	ep := models.ExamProgress{
		"1": {LastAnswered: models.Int64Ptr(500)},
		"2": {LastAnswered: models.Int64Ptr(100)},
		"3": {Bookmarked: models.BoolPtr(true)}, // never answered
	}
	assert.Equal(t, 1, MostRecentIndex(questions, ep))
}
