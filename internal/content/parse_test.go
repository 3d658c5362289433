package content

import (
	"reflect"
	"testing"

	"github.com/examtopics-practice/backend/internal/models"
)

func TestParseCorrectLabels(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"B", []string{"B"}},
		{"AC", []string{"A", "C"}},
		{"A, C", []string{"A", "C"}},
		{"bd", []string{"B", "D"}},
		{"AAB", []string{"A", "B"}},
		{"CA", []string{"C", "A"}}, // appearance order, not sorted
		{"1. x", nil},
		{"", nil},
	}

	for _, tt := range tests {
		if got := ParseCorrectLabels(tt.input); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParseCorrectLabels(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func sampleFile() models.ExamFile {
	return models.ExamFile{
		Questions: []models.ExamFileQuestion{
			{
				ID:             "2",
				QuestionNumber: 2,
				Type:           "multiple",
				Content:        "<p>Pick <b>two</b> regions.</p>",
				Options: []models.ExamFileOption{
					{Label: "C", Content: "eu-west-1"},
					{Label: "A", Content: "us-east-1"},
					{Label: "B", Content: "us-west-2"},
				},
				CorrectAnswer: "AC",
			},
			{
				ID:             "1",
				QuestionNumber: 1,
				Type:           "single",
				Content:        "What is an availability zone?",
				Options: []models.ExamFileOption{
					{Label: "B", Content: "A region"},
					{Label: "A", Content: "An isolated datacenter group"},
				},
				CorrectAnswer: "A",
				Explanation:   "  AZs are isolated locations within a region. ",
			},
		},
	}
}

func TestNormalize_OrderingAndIndices(t *testing.T) {
	questions := Normalize(sampleFile())

	if len(questions) != 2 {
		t.Fatalf("len = %d, want 2", len(questions))
	}
	if questions[0].ID != "1" || questions[1].ID != "2" {
		t.Errorf("questions not ordered by questionNumber: [%s %s]", questions[0].ID, questions[1].ID)
	}

	q1 := questions[0]
	if q1.Options[0].Text != "An isolated datacenter group" {
		t.Errorf("options not sorted by label: %v", q1.Options)
	}
	if !reflect.DeepEqual(q1.CorrectAnswers, []int{0}) {
		t.Errorf("q1 correct = %v, want [0] after option sort", q1.CorrectAnswers)
	}
	if q1.Explanation != "AZs are isolated locations within a region." {
		t.Errorf("explanation not trimmed: %q", q1.Explanation)
	}

	q2 := questions[1]
	if q2.Type != models.QuestionMultiple {
		t.Errorf("q2 type = %v, want multiple", q2.Type)
	}
	if !reflect.DeepEqual(q2.CorrectAnswers, []int{0, 2}) {
		t.Errorf("q2 correct = %v, want [0 2]", q2.CorrectAnswers)
	}
	if q2.RequiredSelections != 2 {
		t.Errorf("q2 requiredSelections = %d, want 2", q2.RequiredSelections)
	}
	if q2.Text != "Pick two regions." {
		t.Errorf("q2 text = %q, want stripped markup", q2.Text)
	}
}

func TestNormalize_UnresolvableLabelFallsBack(t *testing.T) {
	file := models.ExamFile{
		Questions: []models.ExamFileQuestion{{
			ID:             "1",
			QuestionNumber: 1,
			Type:           "single",
			Content:        "q",
			Options: []models.ExamFileOption{
				{Label: "A", Content: "a"},
				{Label: "B", Content: "b"},
			},
			CorrectAnswer: "Z",
		}},
	}

	questions := Normalize(file)
	if !reflect.DeepEqual(questions[0].CorrectAnswers, []int{0}) {
		t.Errorf("unresolvable label should fall back to [0], got %v", questions[0].CorrectAnswers)
	}
}

func TestNormalize_OptionHTMLOnlyWhenMarkup(t *testing.T) {
	questions := Normalize(sampleFile())

	for _, o := range questions[0].Options {
		if o.HTML != "" {
			t.Errorf("plain-text option should have no HTML field, got %q", o.HTML)
		}
	}
}

func TestText(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"<p>Hello <b>world</b></p>", "Hello world"},
		{"no markup", "no markup"},
		{"a&nbsp;b &amp; c", "a b & c"},
		{"<ul><li>one</li><li>two</li></ul>", "one two"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Text(tt.input); got != tt.want {
			t.Errorf("Text(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSameSelections(t *testing.T) {
	tests := []struct {
		a, b []int
		want bool
	}{
		{[]int{0, 2}, []int{2, 0}, true},
		{[]int{1}, []int{1}, true},
		{[]int{0, 2}, []int{0, 1}, false},
		{[]int{0}, []int{0, 1}, false},
		{nil, nil, true},
		{nil, []int{}, true},
	}

	for _, tt := range tests {
		if got := SameSelections(tt.a, tt.b); got != tt.want {
			t.Errorf("SameSelections(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
