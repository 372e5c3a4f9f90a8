package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/munidigital/tramites-assistant/internal/core/domain"
)

// DocumentRepository persists document metadata and chunk vectors, and runs
// pgvector similarity search over them.
type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO documents (
	id, filename, document_type, category, total_pages, file_hash, storage_path, processed, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
`,
		doc.ID, doc.Filename, string(doc.Type), doc.Category, doc.TotalPages,
		doc.FileHash, doc.StoragePath, doc.Processed, doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	return r.getBy(ctx, "id = $1", id)
}

func (r *DocumentRepository) FindByHash(ctx context.Context, hash string) (*domain.Document, error) {
	return r.getBy(ctx, "file_hash = $1", hash)
}

func (r *DocumentRepository) getBy(ctx context.Context, where string, arg any) (*domain.Document, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, filename, document_type, category, total_pages, file_hash, storage_path, processed, created_at, updated_at
FROM documents
WHERE `+where, arg)

	var doc domain.Document
	var docType string
	err := row.Scan(
		&doc.ID, &doc.Filename, &docType, &doc.Category, &doc.TotalPages,
		&doc.FileHash, &doc.StoragePath, &doc.Processed, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get document", err)
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}
	doc.Type = domain.DocumentType(docType)
	return &doc, nil
}

func (r *DocumentRepository) MarkProcessed(ctx context.Context, id string, totalPages int) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE documents
SET processed = TRUE, total_pages = $2, updated_at = $3
WHERE id = $1
`, id, totalPages, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("mark document processed: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return domain.WrapError(domain.ErrNotFound, "mark document processed", sql.ErrNoRows)
	}
	return nil
}

func (r *DocumentRepository) InsertChunks(ctx context.Context, chunks []domain.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin chunk tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, chunk := range chunks {
		_, err := tx.ExecContext(ctx, `
INSERT INTO document_chunks (id, document_id, chunk_index, page_number, chunk_text, embedding)
VALUES ($1,$2,$3,$4,$5,$6::vector)
`, chunk.ID, chunk.DocumentID, chunk.ChunkIndex, chunk.PageNumber, chunk.Text, formatVector(chunk.Embedding))
		if err != nil {
			return fmt.Errorf("insert chunk %d: %w", chunk.ChunkIndex, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit chunk tx: %w", err)
	}
	return nil
}

func (r *DocumentRepository) SearchSimilarChunks(ctx context.Context, queryVector []float32, limit int) ([]domain.SimilarChunk, error) {
	if limit <= 0 {
		limit = 5
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT c.chunk_text, c.document_id, d.filename, c.page_number,
	1 - (c.embedding <=> $1::vector) AS score
FROM document_chunks c
JOIN documents d ON d.id = c.document_id
ORDER BY c.embedding <=> $1::vector
LIMIT $2
`, formatVector(queryVector), limit)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	defer rows.Close()

	chunks := make([]domain.SimilarChunk, 0, limit)
	for rows.Next() {
		var chunk domain.SimilarChunk
		if err := rows.Scan(&chunk.Text, &chunk.DocumentID, &chunk.DocumentName, &chunk.PageNumber, &chunk.Score); err != nil {
			return nil, fmt.Errorf("scan similar chunk: %w", err)
		}
		chunks = append(chunks, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate similar chunks: %w", err)
	}
	return chunks, nil
}

func (r *DocumentRepository) Statistics(ctx context.Context) (domain.RawStatistics, error) {
	var stats domain.RawStatistics

	row := r.db.QueryRowContext(ctx, `
SELECT
	(SELECT COUNT(*) FROM documents),
	(SELECT COUNT(*) FROM document_chunks),
	(SELECT COALESCE(SUM(total_pages), 0) FROM documents)
`)
	if err := row.Scan(&stats.TotalDocuments, &stats.TotalChunks, &stats.TotalPages); err != nil {
		return domain.RawStatistics{}, fmt.Errorf("scan totals: %w", err)
	}

	categories, err := r.groupCount(ctx, "category")
	if err != nil {
		return domain.RawStatistics{}, err
	}
	types, err := r.groupCount(ctx, "document_type")
	if err != nil {
		return domain.RawStatistics{}, err
	}

	stats.Categories = categories
	stats.DocumentTypes = types
	return stats, nil
}

func (r *DocumentRepository) groupCount(ctx context.Context, column string) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT %s, COUNT(*) FROM documents GROUP BY %s`, column, column))
	if err != nil {
		return nil, fmt.Errorf("group by %s: %w", column, err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return nil, fmt.Errorf("scan %s count: %w", column, err)
		}
		out[key] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s counts: %w", column, err)
	}
	return out, nil
}

// formatVector renders an embedding in pgvector's text format.
func formatVector(embedding []float32) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range embedding {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(v), 'f', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}
