package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/munidigital/tramites-assistant/internal/core/domain"
)

type feedbackRepoFake struct {
	saved    []*domain.Feedback
	updated  map[string]int
	saveErr  error
	metrics  domain.AccuracyMetrics
	metrDays int
}

func (f *feedbackRepoFake) Save(_ context.Context, feedback *domain.Feedback) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, feedback)
	return nil
}

func (f *feedbackRepoFake) Update(_ context.Context, messageID string, _ *bool, _ *int, _ string) error {
	if f.updated == nil {
		f.updated = make(map[string]int)
	}
	f.updated[messageID]++
	return nil
}

func (f *feedbackRepoFake) GetByMessage(context.Context, string) (*domain.Feedback, error) {
	return nil, domain.WrapError(domain.ErrNotFound, "get feedback", errors.New("missing"))
}

func (f *feedbackRepoFake) AccuracyMetrics(_ context.Context, days int) (domain.AccuracyMetrics, error) {
	f.metrDays = days
	return f.metrics, nil
}

func TestFeedbackSubmit(t *testing.T) {
	repo := &feedbackRepoFake{}
	uc := NewFeedbackUseCase(repo)

	fb, err := domain.NewFeedback("f1", "pregunta", "respuesta", time.Now().UTC())
	if err != nil {
		t.Fatalf("NewFeedback() error = %v", err)
	}
	if err := uc.Submit(context.Background(), fb); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if len(repo.saved) != 1 {
		t.Fatalf("expected 1 saved feedback, got %d", len(repo.saved))
	}
}

func TestFeedbackSubmitRejectsBadRating(t *testing.T) {
	uc := NewFeedbackUseCase(&feedbackRepoFake{})
	fb, _ := domain.NewFeedback("f1", "q", "a", time.Now().UTC())
	bad := 6
	fb.Rating = &bad
	if err := uc.Submit(context.Background(), fb); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestFeedbackUpdateRequiresChanges(t *testing.T) {
	uc := NewFeedbackUseCase(&feedbackRepoFake{})
	if err := uc.Update(context.Background(), "m1", nil, nil, ""); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty update, got %v", err)
	}
	if err := uc.Update(context.Background(), "", nil, nil, "bien"); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty message id, got %v", err)
	}
}

func TestFeedbackUpdatePasses(t *testing.T) {
	repo := &feedbackRepoFake{}
	uc := NewFeedbackUseCase(repo)

	correct := true
	if err := uc.Update(context.Background(), "m1", &correct, nil, ""); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if repo.updated["m1"] != 1 {
		t.Fatalf("expected one update for m1, got %d", repo.updated["m1"])
	}
}

func TestFeedbackMetricsDefaultWindow(t *testing.T) {
	repo := &feedbackRepoFake{metrics: domain.AccuracyMetrics{
		TotalEvaluations: 10, Correct: 9, Incorrect: 1, AccuracyPercent: 90,
	}}
	uc := NewFeedbackUseCase(repo)

	metrics, err := uc.Metrics(context.Background(), 0)
	if err != nil {
		t.Fatalf("Metrics() error = %v", err)
	}
	if repo.metrDays != 30 {
		t.Fatalf("expected 30 day default window, got %d", repo.metrDays)
	}
	if metrics.Label() != "excelente" {
		t.Fatalf("expected excelente, got %q", metrics.Label())
	}
}

func TestFeedbackStoreFailureIsTemporary(t *testing.T) {
	repo := &feedbackRepoFake{saveErr: errors.New("connection refused")}
	uc := NewFeedbackUseCase(repo)

	fb, err := domain.NewFeedback("f1", "pregunta", "respuesta", time.Now().UTC())
	if err != nil {
		t.Fatalf("NewFeedback() error = %v", err)
	}

	err = uc.Submit(context.Background(), fb)
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected ErrTemporary, got %v", err)
	}
	if domain.IsKind(err, domain.ErrStatistics) {
		t.Fatalf("store failure must not be labeled as a statistics error: %v", err)
	}
}
