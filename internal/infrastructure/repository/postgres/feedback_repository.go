package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/munidigital/tramites-assistant/internal/core/domain"
)

type FeedbackRepository struct {
	db *sql.DB
}

func NewFeedbackRepository(db *sql.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

func (r *FeedbackRepository) Save(ctx context.Context, feedback *domain.Feedback) error {
	sourcesJSON, err := json.Marshal(feedback.Sources)
	if err != nil {
		return fmt.Errorf("marshal sources: %w", err)
	}
	if feedback.Sources == nil {
		sourcesJSON = []byte("[]")
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO rag_feedback (
	id, session_id, message_id, query, answer, is_correct, rating, comment, sources, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
`,
		feedback.ID, feedback.SessionID, feedback.MessageID, feedback.Query, feedback.Answer,
		feedback.IsCorrect, feedback.Rating, feedback.Comment, sourcesJSON,
		feedback.CreatedAt, feedback.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}
	return nil
}

func (r *FeedbackRepository) Update(ctx context.Context, messageID string, isCorrect *bool, rating *int, comment string) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE rag_feedback
SET is_correct = COALESCE($2, is_correct),
	rating = COALESCE($3, rating),
	comment = CASE WHEN $4 <> '' THEN $4 ELSE comment END,
	updated_at = $5
WHERE message_id = $1
`, messageID, isCorrect, rating, comment, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update feedback: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return domain.WrapError(domain.ErrNotFound, "update feedback", sql.ErrNoRows)
	}
	return nil
}

func (r *FeedbackRepository) GetByMessage(ctx context.Context, messageID string) (*domain.Feedback, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, session_id, message_id, query, answer, is_correct, rating, comment, sources, created_at, updated_at
FROM rag_feedback
WHERE message_id = $1
ORDER BY created_at DESC
LIMIT 1
`, messageID)

	var feedback domain.Feedback
	var sourcesRaw []byte
	err := row.Scan(
		&feedback.ID, &feedback.SessionID, &feedback.MessageID, &feedback.Query, &feedback.Answer,
		&feedback.IsCorrect, &feedback.Rating, &feedback.Comment, &sourcesRaw,
		&feedback.CreatedAt, &feedback.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get feedback", err)
		}
		return nil, fmt.Errorf("scan feedback: %w", err)
	}
	if err := json.Unmarshal(sourcesRaw, &feedback.Sources); err != nil {
		return nil, fmt.Errorf("unmarshal sources: %w", err)
	}
	return &feedback, nil
}

func (r *FeedbackRepository) AccuracyMetrics(ctx context.Context, days int) (domain.AccuracyMetrics, error) {
	if days <= 0 {
		days = 30
	}
	since := time.Now().UTC().AddDate(0, 0, -days)

	row := r.db.QueryRowContext(ctx, `
SELECT
	COUNT(*) FILTER (WHERE is_correct IS NOT NULL),
	COUNT(*) FILTER (WHERE is_correct = TRUE),
	COUNT(*) FILTER (WHERE is_correct = FALSE),
	COUNT(*) FILTER (WHERE is_correct IS NULL),
	COALESCE(AVG(rating) FILTER (WHERE rating IS NOT NULL), 0)
FROM rag_feedback
WHERE created_at >= $1
`, since)

	var metrics domain.AccuracyMetrics
	err := row.Scan(
		&metrics.TotalEvaluations, &metrics.Correct, &metrics.Incorrect,
		&metrics.Unevaluated, &metrics.AverageRating,
	)
	if err != nil {
		return domain.AccuracyMetrics{}, fmt.Errorf("scan accuracy metrics: %w", err)
	}
	if metrics.TotalEvaluations > 0 {
		metrics.AccuracyPercent = float64(metrics.Correct) / float64(metrics.TotalEvaluations) * 100
	}
	return metrics, nil
}
