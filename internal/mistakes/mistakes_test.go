package mistakes

import (
	"testing"

	"github.com/examtopics-practice/backend/internal/models"
)

func record(status models.AnswerStatus, streak, wrong int) *models.QuestionProgress {
	return &models.QuestionProgress{
		Status:             models.StatusPtr(status),
		ConsecutiveCorrect: models.IntPtr(streak),
		TimesWrong:         models.IntPtr(wrong),
	}
}

func TestFlagged(t *testing.T) {
	tests := []struct {
		name string
		q    *models.QuestionProgress
		want bool
	}{
		{"nil record", nil, false},
		{"never answered", &models.QuestionProgress{}, false},
		{"currently incorrect", record(models.StatusIncorrect, 0, 1), true},
		{"ever wrong, now correct", record(models.StatusCorrect, 1, 2), true},
		{"correct, never wrong", record(models.StatusCorrect, 3, 0), false},
		{"skipped, never wrong", record(models.StatusSkipped, 0, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Flagged(tt.q); got != tt.want {
				t.Errorf("Flagged = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInSet(t *testing.T) {
	tests := []struct {
		name      string
		q         *models.QuestionProgress
		threshold int
		want      bool
	}{
		{"not flagged", record(models.StatusCorrect, 5, 0), 3, false},
		{"flagged, below threshold", record(models.StatusCorrect, 2, 1), 3, true},
		{"flagged, at threshold", record(models.StatusCorrect, 3, 1), 3, false},
		{"flagged, zero threshold never graduates", record(models.StatusCorrect, 99, 1), 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InSet(tt.q, tt.threshold); got != tt.want {
				t.Errorf("InSet = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWorkingSet_PreservesOrder(t *testing.T) {
	questions := []models.Question{{ID: "1"}, {ID: "2"}, {ID: "3"}, {ID: "4"}}
	progress := models.ExamProgress{
		"1": record(models.StatusCorrect, 5, 0),  // clean
		"2": record(models.StatusIncorrect, 0, 1),
		"4": record(models.StatusCorrect, 1, 2), // ever wrong, streak below threshold
	}

	set := WorkingSet(questions, progress, 3)

	if len(set) != 2 {
		t.Fatalf("working set size = %d, want 2", len(set))
	}
	if set[0].ID != "2" || set[1].ID != "4" {
		t.Errorf("working set order = [%s %s], want source order [2 4]", set[0].ID, set[1].ID)
	}
}

func TestReadyToGraduate(t *testing.T) {
	if !ReadyToGraduate(record(models.StatusCorrect, 3, 1), 3) {
		t.Error("flagged record at threshold should be ready")
	}
	if ReadyToGraduate(record(models.StatusCorrect, 2, 1), 3) {
		t.Error("below threshold is not ready")
	}
	if ReadyToGraduate(record(models.StatusCorrect, 99, 1), 0) {
		t.Error("zero threshold never graduates")
	}
	if ReadyToGraduate(record(models.StatusCorrect, 5, 0), 3) {
		t.Error("unflagged record has nothing to graduate from")
	}
}

func TestGraduated(t *testing.T) {
	tests := []struct {
		name                  string
		prev, next, threshold int
		want                  bool
	}{
		{"crosses threshold", 2, 3, 3, true},
		{"already past", 3, 4, 3, false},
		{"still below", 1, 2, 3, false},
		{"zero threshold", 2, 3, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Graduated(tt.prev, tt.next, tt.threshold); got != tt.want {
				t.Errorf("Graduated(%d, %d, %d) = %v, want %v", tt.prev, tt.next, tt.threshold, got, tt.want)
			}
		})
	}
}

func TestPersistStatus(t *testing.T) {
	if got := PersistStatus(false, 0, 3); got != models.StatusIncorrect {
		t.Errorf("wrong answer persists as %v, want incorrect", got)
	}
	// Correct but still short of the threshold stays incorrect so the
	// question remains in the set after a reload.
	if got := PersistStatus(true, 2, 3); got != models.StatusIncorrect {
		t.Errorf("pre-graduation correct persists as %v, want incorrect", got)
	}
	if got := PersistStatus(true, 3, 3); got != models.StatusCorrect {
		t.Errorf("graduating answer persists as %v, want correct", got)
	}
}

func TestClampIndex(t *testing.T) {
	if got := ClampIndex(2, 5); got != 2 {
		t.Errorf("in-bounds index = %d, want 2", got)
	}
	if got := ClampIndex(4, 3); got != 0 {
		t.Errorf("out-of-bounds index = %d, want 0", got)
	}
	if got := ClampIndex(-1, 3); got != 0 {
		t.Errorf("negative index = %d, want 0", got)
	}
}
