package content

import (
	"html"
	"sort"
	"strings"

	"github.com/examtopics-practice/backend/internal/models"
)

// ParseCorrectLabels extracts the unique uppercase letters of a correctness
// label string, in order of first appearance. Labels arrive in loose shapes
// ("B", "AC", "A, C", "bd") and this is deliberately permissive.
func ParseCorrectLabels(input string) []string {
	var labels []string
	seen := make(map[rune]bool)
	for _, r := range strings.ToUpper(input) {
		if r < 'A' || r > 'Z' || seen[r] {
			continue
		}
		seen[r] = true
		labels = append(labels, string(r))
	}
	return labels
}

// Normalize maps a raw exam file onto the question list consumed by the
// practice and exam modes. Questions are ordered by questionNumber and
// options by label. Malformed entries degrade to whatever resolves; an empty
// result is valid.
func Normalize(file models.ExamFile) []models.Question {
	raw := append([]models.ExamFileQuestion(nil), file.Questions...)
	sort.SliceStable(raw, func(i, j int) bool {
		return raw[i].QuestionNumber < raw[j].QuestionNumber
	})

	questions := make([]models.Question, 0, len(raw))
	for _, q := range raw {
		options := append([]models.ExamFileOption(nil), q.Options...)
		sort.SliceStable(options, func(i, j int) bool {
			return options[i].Label < options[j].Label
		})

		var correct []int
		for _, label := range ParseCorrectLabels(q.CorrectAnswer) {
			for i, o := range options {
				if o.Label == label {
					correct = append(correct, i)
					break
				}
			}
		}
		if len(correct) == 0 {
			correct = []int{0}
		}

		qType := models.QuestionSingle
		required := 1
		if q.Type == "multiple" {
			qType = models.QuestionMultiple
			if len(correct) > required {
				required = len(correct)
			}
		}

		opts := make([]models.QuestionOption, 0, len(options))
		for _, o := range options {
			opt := models.QuestionOption{Text: Text(o.Content)}
			if strings.Contains(o.Content, "<") {
				opt.HTML = o.Content
			}
			opts = append(opts, opt)
		}

		questions = append(questions, models.Question{
			ID:                 q.ID,
			Type:               qType,
			Text:               Text(q.Content),
			ContentHTML:        q.Content,
			Options:            opts,
			CorrectAnswers:     correct,
			RequiredSelections: required,
			Explanation:        strings.TrimSpace(q.Explanation),
		})
	}
	return questions
}

// Text strips markup from question HTML for plain-text display. Content
// files carry simple formatting tags only, so a tag scan is sufficient.
func Text(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
			b.WriteByte(' ')
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(html.UnescapeString(b.String())), " ")
}

// SameSelections reports whether two option index sets are equal, ignoring
// order. This is the submission correctness check.
func SameSelections(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]int(nil), a...)
	bs := append([]int(nil), b...)
	sort.Ints(as)
	sort.Ints(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}
