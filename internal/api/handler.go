// Package api exposes the progress mirror over HTTP. Reads go straight to
// the tree store; writes share the mirror's field-level write paths so every
// connected subscriber observes the same leaf updates.
package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/examtopics-practice/backend/internal/middleware"
	"github.com/examtopics-practice/backend/internal/models"
	"github.com/examtopics-practice/backend/internal/remote"
)

type Handler struct {
	mirror *remote.Mirror
}

func NewHandler(mirror *remote.Mirror) *Handler {
	return &Handler{mirror: mirror}
}

// remoteUserID maps the authenticated account to its progress-tree shard.
func remoteUserID(r *http.Request) (string, bool) {
	uid, ok := middleware.UserID(r)
	if !ok {
		return "", false
	}
	return strconv.FormatInt(uid, 10), true
}

func (h *Handler) GetProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := remoteUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}
	examID := mux.Vars(r)["examID"]

	ep, err := h.mirror.ExamProgress(r.Context(), userID, examID)
	if err != nil {
		log.Printf("[api] GetProgress error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to read progress"})
		return
	}
	writeJSON(w, http.StatusOK, ep)
}

// StreamProgress pushes the exam's progress as server-sent events: one event
// immediately with the current state, then one per remote change, until the
// client disconnects.
func (h *Handler) StreamProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := remoteUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}
	examID := mux.Vars(r)["examID"]

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Streaming not supported"})
		return
	}

	snapshots, cancel := h.mirror.SubscribeExamProgress(userID, examID)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ep, open := <-snapshots:
			if !open {
				return
			}
			payload, err := json.Marshal(ep)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: progress\ndata: %s\n\n", payload)
			flusher.Flush()
		}
	}
}

func (h *Handler) SaveAnswer(w http.ResponseWriter, r *http.Request) {
	userID, ok := remoteUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}
	vars := mux.Vars(r)
	examID, questionID := vars["examID"], vars["questionID"]

	var req models.AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.Status != models.StatusCorrect && req.Status != models.StatusIncorrect && req.Status != models.StatusSkipped {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "status must be 'correct', 'incorrect', or 'skipped'"})
		return
	}

	// Counters derive from the stored state, never from the client.
	ep, err := h.mirror.ExamProgress(r.Context(), userID, examID)
	if err != nil {
		log.Printf("[api] SaveAnswer error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to read progress"})
		return
	}

	opts := models.SaveAnswerOptions{CorrectAttempt: req.CorrectAttempt, ResetTimesWrong: req.ResetTimesWrong}
	h.mirror.SaveAnswer(r.Context(), userID, examID, questionID, req.Status, req.Selection, ep[questionID], opts)

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ToggleBookmark(w http.ResponseWriter, r *http.Request) {
	userID, ok := remoteUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}
	vars := mux.Vars(r)
	examID, questionID := vars["examID"], vars["questionID"]

	ep, err := h.mirror.ExamProgress(r.Context(), userID, examID)
	if err != nil {
		log.Printf("[api] ToggleBookmark error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to read progress"})
		return
	}

	newState := !ep[questionID].IsBookmarked()
	h.mirror.ToggleBookmark(r.Context(), userID, examID, questionID, newState)

	writeJSON(w, http.StatusOK, models.BookmarkResponse{Bookmarked: newState})
}

func (h *Handler) ClearProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := remoteUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}
	examID := mux.Vars(r)["examID"]

	h.mirror.ClearExamProgress(r.Context(), userID, examID)
	w.WriteHeader(http.StatusNoContent)
}

// MergeProgress pushes a full client-side progress document into the user's
// remote tree. Present fields overwrite; absent fields are left alone, which
// is exactly the union the sign-in flow needs.
func (h *Handler) MergeProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := remoteUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var local models.UserProgress
	if err := json.NewDecoder(r.Body).Decode(&local); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	h.mirror.MergeLocalIntoRemote(r.Context(), userID, local)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := remoteUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}
	examID := mux.Vars(r)["examID"]

	es, err := h.mirror.ExamSettings(r.Context(), userID, examID)
	if err != nil {
		log.Printf("[api] GetSettings error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to read settings"})
		return
	}
	writeJSON(w, http.StatusOK, es)
}

func (h *Handler) PutSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := remoteUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}
	examID := mux.Vars(r)["examID"]

	var patch models.ExamSettings
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	h.mirror.SaveExamSettings(r.Context(), userID, examID, patch)
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
