package httpadapter

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/munidigital/tramites-assistant/internal/core/domain"
)

func (rt *Router) submitFeedback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req struct {
		SessionID string   `json:"session_id"`
		MessageID string   `json:"message_id"`
		Query     string   `json:"query"`
		Answer    string   `json:"answer"`
		IsCorrect *bool    `json:"is_correct"`
		Rating    *int     `json:"rating"`
		Comment   string   `json:"comment"`
		Sources   []string `json:"sources"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	now := time.Now().UTC()
	feedback, err := domain.NewFeedback(uuid.NewString(), req.Query, req.Answer, now)
	if err != nil {
		writeError(w, err)
		return
	}
	feedback.SessionID = strings.TrimSpace(req.SessionID)
	feedback.MessageID = strings.TrimSpace(req.MessageID)
	feedback.Comment = req.Comment
	feedback.Sources = req.Sources
	if req.IsCorrect != nil {
		feedback.MarkCorrect(*req.IsCorrect, now)
	}
	if req.Rating != nil {
		if err := feedback.SetRating(*req.Rating, now); err != nil {
			writeError(w, err)
			return
		}
	}

	if err := rt.feedback.Submit(r.Context(), feedback); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, feedback)
}

func (rt *Router) updateFeedback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
		methodNotAllowed(w)
		return
	}

	messageID := strings.TrimPrefix(r.URL.Path, "/v1/feedback/")
	if messageID == "" || strings.Contains(messageID, "/") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "message id is required"})
		return
	}

	var req struct {
		IsCorrect *bool  `json:"is_correct"`
		Rating    *int   `json:"rating"`
		Comment   string `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	if err := rt.feedback.Update(r.Context(), messageID, req.IsCorrect, req.Rating, req.Comment); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (rt *Router) feedbackMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	days := 0
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "days must be a non-negative integer"})
			return
		}
		days = parsed
	}

	metrics, err := rt.feedback.Metrics(r.Context(), days)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"metrics": metrics,
		"label":   metrics.Label(),
	})
}
