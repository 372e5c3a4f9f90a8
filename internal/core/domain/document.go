package domain

import (
	"fmt"
	"strings"
	"time"
)

// EmbeddingDimensions is fixed by the embedding model (text-embedding-004).
const EmbeddingDimensions = 768

type DocumentType string

const (
	TypeLey        DocumentType = "ley"
	TypeOrdenanza  DocumentType = "ordenanza"
	TypeDecreto    DocumentType = "decreto"
	TypeReglamento DocumentType = "reglamento"
	TypeFormulario DocumentType = "formulario"
	TypeGuia       DocumentType = "guia"
	TypeGeneral    DocumentType = "documento_general"
)

// Document is a processed municipal document. Immutable after ingestion.
type Document struct {
	ID          string       `json:"id"`
	Filename    string       `json:"filename"`
	Type        DocumentType `json:"document_type"`
	Category    string       `json:"category"`
	TotalPages  int          `json:"total_pages"`
	FileHash    string       `json:"file_hash"`
	StoragePath string       `json:"storage_path"`
	Processed   bool         `json:"processed"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// IsLegal reports whether the document carries normative content.
// Unrecognized types are treated as non-legal.
func (d *Document) IsLegal() bool {
	switch d.Type {
	case TypeLey, TypeOrdenanza, TypeDecreto, TypeReglamento:
		return true
	default:
		return false
	}
}

func (d *Document) IsSmall() bool {
	return d.TotalPages <= 5
}

// ShouldChunkByArticles: legal texts split on article boundaries so a chunk
// never mixes two articles.
func (d *Document) ShouldChunkByArticles() bool {
	return d.IsLegal()
}

// ShouldKeepSingleChunk: short forms and guides retrieve better whole.
func (d *Document) ShouldKeepSingleChunk() bool {
	if !d.IsSmall() {
		return false
	}
	switch d.Type {
	case TypeFormulario, TypeGuia, TypeGeneral:
		return true
	default:
		return false
	}
}

// DocumentChunk is the unit of retrieval: a text fragment with its vector.
type DocumentChunk struct {
	ID         string            `json:"id"`
	DocumentID string            `json:"document_id"`
	Text       string            `json:"text"`
	PageNumber int               `json:"page_number"`
	ChunkIndex int               `json:"chunk_index"`
	Embedding  []float32         `json:"embedding"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// NewDocumentChunk validates the two chunk invariants: non-blank text and an
// embedding of exactly EmbeddingDimensions values.
func NewDocumentChunk(id, documentID, text string, pageNumber, chunkIndex int, embedding []float32) (*DocumentChunk, error) {
	if strings.TrimSpace(text) == "" {
		return nil, WrapError(ErrInvalidInput, "new chunk", fmt.Errorf("chunk text is empty"))
	}
	if len(embedding) != EmbeddingDimensions {
		return nil, WrapError(ErrInvalidInput, "new chunk",
			fmt.Errorf("embedding has %d dimensions, want %d", len(embedding), EmbeddingDimensions))
	}
	return &DocumentChunk{
		ID:         id,
		DocumentID: documentID,
		Text:       text,
		PageNumber: pageNumber,
		ChunkIndex: chunkIndex,
		Embedding:  embedding,
	}, nil
}
