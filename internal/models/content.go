package models

// ── Exam content wire format ─────────────────────────────
//
// Exam content is delivered as external read-only JSON, one file per exam id.
// The engine does not own this schema; it normalizes whatever resolves and
// degrades gracefully on partial data.

type ExamFile struct {
	Questions []ExamFileQuestion `json:"questions"`
}

type ExamFileQuestion struct {
	ID             string           `json:"id"`
	QuestionNumber int              `json:"questionNumber"`
	Type           string           `json:"type"`
	Content        string           `json:"content"`
	Options        []ExamFileOption `json:"options"`
	CorrectAnswer  string           `json:"correctAnswer"`
	Explanation    string           `json:"explanation,omitempty"`
}

type ExamFileOption struct {
	Label   string `json:"label"`
	Content string `json:"content"`
}

// ── Normalized question ──────────────────────────────────

type QuestionType string

const (
	QuestionSingle   QuestionType = "single"
	QuestionMultiple QuestionType = "multiple"
)

// Question is the normalized form consumed by the practice and exam modes.
type Question struct {
	ID                 string           `json:"id"`
	Type               QuestionType     `json:"type"`
	Text               string           `json:"text"`
	ContentHTML        string           `json:"content_html,omitempty"`
	Options            []QuestionOption `json:"options"`
	CorrectAnswers     []int            `json:"correct_answers"`
	RequiredSelections int              `json:"required_selections"`
	Explanation        string           `json:"explanation,omitempty"`
}

type QuestionOption struct {
	Text string `json:"text"`
	HTML string `json:"html,omitempty"`
}

// ExamSummary is one entry of the exam index resource.
type ExamSummary struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	QuestionCount int    `json:"questionCount,omitempty"`
}
