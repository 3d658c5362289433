package models

type AnswerStatus string

const (
	StatusCorrect   AnswerStatus = "correct"
	StatusIncorrect AnswerStatus = "incorrect"
	StatusSkipped   AnswerStatus = "skipped"
)

// QuestionProgress is the per-user, per-exam, per-question progress record.
// Every field is optional: pointers distinguish "absent" from a zero value,
// which the merge rules depend on.
type QuestionProgress struct {
	Status             *AnswerStatus `json:"status,omitempty"`
	Bookmarked         *bool         `json:"bookmarked,omitempty"`
	LastAnswered       *int64        `json:"lastAnswered,omitempty"`
	ConsecutiveCorrect *int          `json:"consecutiveCorrect,omitempty"`
	TimesWrong         *int          `json:"timesWrong,omitempty"`
	UserSelection      []int         `json:"userSelection,omitempty"`
}

// Streak returns consecutiveCorrect, treating absent as 0.
func (q *QuestionProgress) Streak() int {
	if q == nil || q.ConsecutiveCorrect == nil {
		return 0
	}
	return *q.ConsecutiveCorrect
}

// Wrong returns timesWrong, treating absent as 0.
func (q *QuestionProgress) Wrong() int {
	if q == nil || q.TimesWrong == nil {
		return 0
	}
	return *q.TimesWrong
}

// AnsweredAt returns lastAnswered in epoch milliseconds, treating absent as 0.
func (q *QuestionProgress) AnsweredAt() int64 {
	if q == nil || q.LastAnswered == nil {
		return 0
	}
	return *q.LastAnswered
}

// IsBookmarked returns the bookmark flag, treating absent as false.
func (q *QuestionProgress) IsBookmarked() bool {
	return q != nil && q.Bookmarked != nil && *q.Bookmarked
}

// StatusIs reports whether the record exists and has the given status.
func (q *QuestionProgress) StatusIs(s AnswerStatus) bool {
	return q != nil && q.Status != nil && *q.Status == s
}

// Clone returns a deep copy. Safe on nil.
func (q *QuestionProgress) Clone() *QuestionProgress {
	if q == nil {
		return nil
	}
	c := &QuestionProgress{}
	if q.Status != nil {
		s := *q.Status
		c.Status = &s
	}
	if q.Bookmarked != nil {
		b := *q.Bookmarked
		c.Bookmarked = &b
	}
	if q.LastAnswered != nil {
		t := *q.LastAnswered
		c.LastAnswered = &t
	}
	if q.ConsecutiveCorrect != nil {
		n := *q.ConsecutiveCorrect
		c.ConsecutiveCorrect = &n
	}
	if q.TimesWrong != nil {
		n := *q.TimesWrong
		c.TimesWrong = &n
	}
	if q.UserSelection != nil {
		c.UserSelection = append([]int(nil), q.UserSelection...)
	}
	return c
}

// ExamProgress maps questionId → progress record.
type ExamProgress map[string]*QuestionProgress

// Clone returns a deep copy. Safe on nil.
func (e ExamProgress) Clone() ExamProgress {
	if e == nil {
		return nil
	}
	c := make(ExamProgress, len(e))
	for qid, q := range e {
		c[qid] = q.Clone()
	}
	return c
}

// UserProgress maps examId → ExamProgress.
type UserProgress map[string]ExamProgress

// AppProgress maps userId → UserProgress. This is the root persisted structure.
type AppProgress map[string]UserProgress

// ExamSettings is the per-user, per-exam configuration.
type ExamSettings struct {
	// MistakesConsecutiveCorrect is the graduation threshold for the
	// "My Mistakes" working set. 0 means never graduate.
	MistakesConsecutiveCorrect *int `json:"mistakesConsecutiveCorrect,omitempty"`
	// Owned marks an exam the user has explicitly joined.
	Owned *bool `json:"owned,omitempty"`
}

// IsOwned returns the owned flag, treating absent as false.
func (s *ExamSettings) IsOwned() bool {
	return s != nil && s.Owned != nil && *s.Owned
}

// Threshold returns the graduation threshold, treating absent as 0.
func (s *ExamSettings) Threshold() int {
	if s == nil || s.MistakesConsecutiveCorrect == nil {
		return 0
	}
	return *s.MistakesConsecutiveCorrect
}

// Clone returns a copy. Safe on nil.
func (s *ExamSettings) Clone() *ExamSettings {
	if s == nil {
		return nil
	}
	c := &ExamSettings{}
	if s.MistakesConsecutiveCorrect != nil {
		n := *s.MistakesConsecutiveCorrect
		c.MistakesConsecutiveCorrect = &n
	}
	if s.Owned != nil {
		b := *s.Owned
		c.Owned = &b
	}
	return c
}

// UserSettings maps examId → ExamSettings.
type UserSettings map[string]*ExamSettings

// AppSettings maps userId → UserSettings.
type AppSettings map[string]UserSettings

// Ptr helpers for building optional fields in literals and tests.

func StatusPtr(s AnswerStatus) *AnswerStatus { return &s }
func BoolPtr(b bool) *bool                   { return &b }
func IntPtr(n int) *int                      { return &n }
func Int64Ptr(n int64) *int64                { return &n }
