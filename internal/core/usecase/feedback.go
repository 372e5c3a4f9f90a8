package usecase

import (
	"context"
	"fmt"

	"github.com/munidigital/tramites-assistant/internal/core/domain"
	"github.com/munidigital/tramites-assistant/internal/core/ports"
)

const defaultAccuracyWindowDays = 30

// FeedbackUseCase records answer evaluations and computes accuracy.
type FeedbackUseCase struct {
	repo ports.FeedbackRepository
}

func NewFeedbackUseCase(repo ports.FeedbackRepository) *FeedbackUseCase {
	return &FeedbackUseCase{repo: repo}
}

func (uc *FeedbackUseCase) Submit(ctx context.Context, feedback *domain.Feedback) error {
	if feedback == nil {
		return domain.WrapError(domain.ErrInvalidInput, "submit feedback", fmt.Errorf("feedback is nil"))
	}
	if feedback.Rating != nil && (*feedback.Rating < 1 || *feedback.Rating > 5) {
		return domain.WrapError(domain.ErrInvalidInput, "submit feedback",
			fmt.Errorf("rating %d out of range 1..5", *feedback.Rating))
	}
	if err := uc.repo.Save(ctx, feedback); err != nil {
		return domain.WrapError(domain.ErrTemporary, "submit feedback", err)
	}
	return nil
}

func (uc *FeedbackUseCase) Update(ctx context.Context, messageID string, isCorrect *bool, rating *int, comment string) error {
	if messageID == "" {
		return domain.WrapError(domain.ErrInvalidInput, "update feedback", fmt.Errorf("message id is empty"))
	}
	if isCorrect == nil && rating == nil && comment == "" {
		return domain.WrapError(domain.ErrInvalidInput, "update feedback", fmt.Errorf("nothing to update"))
	}
	if rating != nil && (*rating < 1 || *rating > 5) {
		return domain.WrapError(domain.ErrInvalidInput, "update feedback",
			fmt.Errorf("rating %d out of range 1..5", *rating))
	}
	if err := uc.repo.Update(ctx, messageID, isCorrect, rating, comment); err != nil {
		if domain.IsKind(err, domain.ErrNotFound) {
			return err
		}
		return domain.WrapError(domain.ErrTemporary, "update feedback", err)
	}
	return nil
}

func (uc *FeedbackUseCase) Metrics(ctx context.Context, days int) (domain.AccuracyMetrics, error) {
	if days <= 0 {
		days = defaultAccuracyWindowDays
	}
	metrics, err := uc.repo.AccuracyMetrics(ctx, days)
	if err != nil {
		return domain.AccuracyMetrics{}, domain.WrapError(domain.ErrStatistics, "accuracy metrics", err)
	}
	return metrics, nil
}
