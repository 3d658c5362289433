// Package content fetches and normalizes exam question sets. Content is an
// external read-only collaborator: one JSON file per exam id plus an index,
// served from a base URL. The loader never owns the schema — it normalizes
// whatever resolves.
package content

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/examtopics-practice/backend/internal/models"
)

type Loader struct {
	baseURL string
	client  *http.Client
}

func NewLoader(baseURL string) *Loader {
	return &Loader{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// Exam fetches and normalizes the question set for one exam id.
func (l *Loader) Exam(ctx context.Context, examID string) ([]models.Question, error) {
	var file models.ExamFile
	if err := l.getJSON(ctx, l.baseURL+"/"+examID+".json", &file); err != nil {
		return nil, fmt.Errorf("load exam %s: %w", examID, err)
	}
	return Normalize(file), nil
}

// Index fetches the exam index.
func (l *Loader) Index(ctx context.Context) ([]models.ExamSummary, error) {
	var index []models.ExamSummary
	if err := l.getJSON(ctx, l.baseURL+"/index.json", &index); err != nil {
		return nil, fmt.Errorf("load exam index: %w", err)
	}
	return index, nil
}

func (l *Loader) getJSON(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}
