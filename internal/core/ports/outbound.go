package ports

import (
	"context"
	"io"

	"github.com/munidigital/tramites-assistant/internal/core/domain"
)

// Embedder builds vectors for chunks and query text.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
}

// VectorStore performs similarity search over indexed chunks and reports
// corpus-level counts.
type VectorStore interface {
	SearchSimilarChunks(ctx context.Context, queryVector []float32, limit int) ([]domain.SimilarChunk, error)
	Statistics(ctx context.Context) (domain.RawStatistics, error)
}

// AnswerGenerator creates the final user-facing answer from retrieved context
// and conversation history.
type AnswerGenerator interface {
	GenerateAnswer(ctx context.Context, query, context, history string) (string, error)
}

// SessionStore persists conversation sessions. Load returns ErrNotFound when
// the session does not exist.
type SessionStore interface {
	Load(ctx context.Context, sessionID string) (*domain.ChatSession, error)
	Create(ctx context.Context) (*domain.ChatSession, error)
	CreateWithID(ctx context.Context, sessionID string) (*domain.ChatSession, error)
	AppendMessages(ctx context.Context, sessionID string, messages []domain.ChatMessage) error
	List(ctx context.Context, limit int) ([]domain.ChatSession, error)
	Delete(ctx context.Context, sessionID string) error
	ClearHistory(ctx context.Context, sessionID string) error
}

// FeedbackRepository stores answer evaluations and computes accuracy.
type FeedbackRepository interface {
	Save(ctx context.Context, feedback *domain.Feedback) error
	Update(ctx context.Context, messageID string, isCorrect *bool, rating *int, comment string) error
	GetByMessage(ctx context.Context, messageID string) (*domain.Feedback, error)
	AccuracyMetrics(ctx context.Context, days int) (domain.AccuracyMetrics, error)
}

// DocumentRepository persists document metadata and chunk rows.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	FindByHash(ctx context.Context, hash string) (*domain.Document, error)
	MarkProcessed(ctx context.Context, id string, totalPages int) error
	InsertChunks(ctx context.Context, chunks []domain.DocumentChunk) error
}

// ObjectStorage stores uploaded source files.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue publishes/consumes ingestion events.
type MessageQueue interface {
	PublishDocumentIngested(ctx context.Context, documentID string) error
	SubscribeDocumentIngested(ctx context.Context, handler func(context.Context, string) error) error
}

// TextExtractor extracts plain text (and a page count) from a stored file.
type TextExtractor interface {
	Extract(ctx context.Context, doc *domain.Document) (text string, pages int, err error)
}

// Chunker splits cleaned text into retrieval units.
type Chunker interface {
	Split(text string) []string
}
