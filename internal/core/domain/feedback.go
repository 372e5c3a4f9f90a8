package domain

import (
	"fmt"
	"strings"
	"time"
)

// Feedback is a user's evaluation of one generated answer.
type Feedback struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id,omitempty"`
	MessageID string    `json:"message_id,omitempty"`
	Query     string    `json:"query"`
	Answer    string    `json:"answer"`
	IsCorrect *bool     `json:"is_correct,omitempty"`
	Rating    *int      `json:"rating,omitempty"`
	Comment   string    `json:"comment,omitempty"`
	Sources   []string  `json:"sources,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewFeedback(id, query, answer string, now time.Time) (*Feedback, error) {
	if strings.TrimSpace(query) == "" {
		return nil, WrapError(ErrInvalidInput, "new feedback", fmt.Errorf("query is empty"))
	}
	if strings.TrimSpace(answer) == "" {
		return nil, WrapError(ErrInvalidInput, "new feedback", fmt.Errorf("answer is empty"))
	}
	return &Feedback{
		ID:        id,
		Query:     query,
		Answer:    answer,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (f *Feedback) SetRating(rating int, now time.Time) error {
	if rating < 1 || rating > 5 {
		return WrapError(ErrInvalidInput, "set rating", fmt.Errorf("rating %d out of range 1..5", rating))
	}
	f.Rating = &rating
	f.UpdatedAt = now
	return nil
}

func (f *Feedback) MarkCorrect(correct bool, now time.Time) {
	f.IsCorrect = &correct
	f.UpdatedAt = now
}

func (f *Feedback) IsEvaluated() bool {
	return f.IsCorrect != nil
}

// AccuracyMetrics aggregates evaluated feedback:
// accuracy = correct / evaluated * 100.
type AccuracyMetrics struct {
	TotalEvaluations int     `json:"total_evaluations"`
	Correct          int     `json:"correct"`
	Incorrect        int     `json:"incorrect"`
	Unevaluated      int     `json:"unevaluated"`
	AccuracyPercent  float64 `json:"accuracy_percent"`
	AverageRating    float64 `json:"average_rating,omitempty"`
}

func (m AccuracyMetrics) Label() string {
	switch {
	case m.AccuracyPercent >= 90:
		return "excelente"
	case m.AccuracyPercent >= 75:
		return "buena"
	case m.AccuracyPercent >= 60:
		return "regular"
	default:
		return "necesita mejora"
	}
}
