package ports

import (
	"context"
	"io"

	"github.com/munidigital/tramites-assistant/internal/core/domain"
)

// QueryService is the inbound contract for RAG question answering.
type QueryService interface {
	Execute(ctx context.Context, input domain.QueryInput) (*domain.QueryOutput, error)
}

// StatisticsService reports aggregated corpus statistics.
type StatisticsService interface {
	Execute(ctx context.Context) (*domain.StatsOutput, error)
}

// SessionManager is the inbound contract for session CRUD.
type SessionManager interface {
	Create(ctx context.Context, sessionID string) (*domain.ChatSession, error)
	Get(ctx context.Context, sessionID string) (*domain.ChatSession, error)
	List(ctx context.Context, limit int) ([]domain.ChatSession, error)
	Delete(ctx context.Context, sessionID string) error
	ClearHistory(ctx context.Context, sessionID string) error
}

// FeedbackService records and aggregates answer evaluations.
type FeedbackService interface {
	Submit(ctx context.Context, feedback *domain.Feedback) error
	Update(ctx context.Context, messageID string, isCorrect *bool, rating *int, comment string) error
	Metrics(ctx context.Context, days int) (domain.AccuracyMetrics, error)
}

// DocumentIngestor is the inbound contract for document upload orchestration.
type DocumentIngestor interface {
	Upload(ctx context.Context, filename string, body io.Reader) (*domain.Document, error)
}

// DocumentProcessor is the inbound contract for asynchronous processing.
type DocumentProcessor interface {
	ProcessByID(ctx context.Context, documentID string) error
}
