package handlers

import (
	"context"
	"fmt"
	"html"
	"net/http"

	"coachpath/internal/models"
	"coachpath/internal/service"
)

// CoachingHandler serves the quiz, dashboard, lesson and reminder endpoints
type CoachingHandler struct {
	coaching  *service.CoachingService
	reminders *service.ReminderService
}

// NewCoachingHandler creates a new coaching handler
func NewCoachingHandler(coaching *service.CoachingService, reminders *service.ReminderService) *CoachingHandler {
	return &CoachingHandler{
		coaching:  coaching,
		reminders: reminders,
	}
}

// GetQuiz returns the quiz questions
func (h *CoachingHandler) GetQuiz(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string][]models.QuizQuestion{
		"questions": h.coaching.Questions(),
	})
}

// SubmitQuiz scores the answers and assigns the pathway
func (h *CoachingHandler) SubmitQuiz(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req struct {
		Answers []string `json:"answers"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidJSON, "", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	pathway, err := h.coaching.SubmitQuiz(ctx, user.ID, req.Answers)
	if err != nil {
		respondWithServiceError(w, "Failed to submit quiz", err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]models.Pathway{"pathway": pathway})
}

// QuizStatus tells the client whether to skip the quiz
func (h *CoachingHandler) QuizStatus(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	status, err := h.coaching.QuizStatus(ctx, user.ID)
	if err != nil {
		respondWithServiceError(w, "Failed to get quiz status", err)
		return
	}
	respondWithJSON(w, http.StatusOK, status)
}

// Dashboard returns the progress overview of the signed-in user
func (h *CoachingHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	dash, err := h.coaching.Dashboard(ctx, user.ID)
	if err != nil {
		respondWithServiceError(w, "Failed to build dashboard", err)
		return
	}

	respondWithJSON(w, http.StatusOK, struct {
		Name string `json:"name"`
		*service.Dashboard
	}{Name: user.Name, Dashboard: dash})
}

// TodayLesson returns the lesson of the current day
func (h *CoachingHandler) TodayLesson(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	view, err := h.coaching.TodayLesson(ctx, user.ID)
	if err != nil {
		respondWithServiceError(w, "Failed to get lesson", err)
		return
	}
	respondWithJSON(w, http.StatusOK, view)
}

// CompleteLesson marks the current day as done
func (h *CoachingHandler) CompleteLesson(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	view, err := h.coaching.CompleteLesson(ctx, user.ID)
	if err != nil {
		respondWithServiceError(w, "Failed to complete lesson", err)
		return
	}
	respondWithJSON(w, http.StatusOK, view)
}

// SetReminders stores the reminder email preference
func (h *CoachingHandler) SetReminders(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req struct {
		Enabled *bool `json:"enabled"`
	}
	if err := decodeJSON(r, &req); err != nil || req.Enabled == nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidJSON, "", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.reminders.SetReminders(ctx, user.ID, *req.Enabled); err != nil {
		respondWithServiceError(w, "Failed to update reminders", err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]bool{"reminders_enabled": *req.Enabled})
}

// Unsubscribe handles the signed link of a reminder email
func (h *CoachingHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.reminders.Unsubscribe(ctx, r.URL.Query().Get("token")); err != nil {
		respondWithServiceError(w, "Failed to unsubscribe", err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, "<!DOCTYPE html><html><body><p>%s</p></body></html>",
		html.EscapeString("Vous ne recevrez plus de rappels quotidiens."))
}
