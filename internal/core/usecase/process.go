package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/munidigital/tramites-assistant/internal/core/domain"
	"github.com/munidigital/tramites-assistant/internal/core/ports"
)

var (
	hyphenBreakRe = regexp.MustCompile(`(\p{L})-\s*\n\s*(\p{L})`)
	whitespaceRe  = regexp.MustCompile(`[ \t]+`)
	blankLinesRe  = regexp.MustCompile(`\n{3,}`)
)

// ProcessDocumentUseCase runs the asynchronous half of ingestion: extract
// text, chunk, embed and index.
type ProcessDocumentUseCase struct {
	documents ports.DocumentRepository
	extractor ports.TextExtractor
	chunker   ports.Chunker
	embedder  ports.Embedder
	logger    *slog.Logger
	onChunks  func(count int)
}

func NewProcessDocumentUseCase(
	documents ports.DocumentRepository,
	extractor ports.TextExtractor,
	chunker ports.Chunker,
	embedder ports.Embedder,
	logger *slog.Logger,
) *ProcessDocumentUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProcessDocumentUseCase{
		documents: documents,
		extractor: extractor,
		chunker:   chunker,
		embedder:  embedder,
		logger:    logger,
	}
}

// SetChunkObserver registers a callback that receives the number of chunks
// indexed for each processed document.
func (uc *ProcessDocumentUseCase) SetChunkObserver(fn func(count int)) {
	uc.onChunks = fn
}

func (uc *ProcessDocumentUseCase) ProcessByID(ctx context.Context, documentID string) error {
	if documentID == "" {
		return domain.WrapError(domain.ErrInvalidInput, "process document", fmt.Errorf("document id is empty"))
	}

	doc, err := uc.documents.GetByID(ctx, documentID)
	if err != nil {
		if domain.IsKind(err, domain.ErrNotFound) {
			return err
		}
		return domain.WrapError(domain.ErrTemporary, "load document", err)
	}
	if doc.Processed {
		uc.logger.Info("document_already_processed", "document_id", documentID)
		return nil
	}

	text, pages, err := uc.extractor.Extract(ctx, doc)
	if err != nil {
		return domain.WrapError(domain.ErrTemporary, "extract text", err)
	}
	text = CleanExtractedText(text)
	if text == "" {
		return domain.WrapError(domain.ErrInvalidInput, "extract text",
			fmt.Errorf("document %s yielded no text", documentID))
	}
	doc.TotalPages = pages

	var parts []string
	if doc.ShouldKeepSingleChunk() {
		parts = []string{text}
	} else {
		parts = uc.chunker.Split(text)
	}
	texts := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			texts = append(texts, p)
		}
	}
	if len(texts) == 0 {
		return domain.WrapError(domain.ErrInvalidInput, "chunk text",
			fmt.Errorf("document %s produced no chunks", documentID))
	}

	vectors, err := uc.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return domain.WrapError(domain.ErrEmbedding, "embed chunks", err)
	}
	if len(vectors) != len(texts) {
		return domain.WrapError(domain.ErrEmbedding, "embed chunks",
			fmt.Errorf("got %d vectors for %d chunks", len(vectors), len(texts)))
	}

	chunks := make([]domain.DocumentChunk, 0, len(texts))
	for i, t := range texts {
		chunk, err := domain.NewDocumentChunk(uuid.NewString(), doc.ID, t, 0, i, vectors[i])
		if err != nil {
			return err
		}
		chunks = append(chunks, *chunk)
	}
	if err := uc.documents.InsertChunks(ctx, chunks); err != nil {
		return domain.WrapError(domain.ErrTemporary, "index chunks", err)
	}
	if err := uc.documents.MarkProcessed(ctx, doc.ID, pages); err != nil {
		return domain.WrapError(domain.ErrTemporary, "mark processed", err)
	}
	if uc.onChunks != nil {
		uc.onChunks(len(chunks))
	}

	uc.logger.Info("document_processed", "document_id", doc.ID, "chunks", len(chunks), "pages", pages)
	return nil
}

// CleanExtractedText normalizes raw extractor output: rejoins words split by
// end-of-line hyphenation and collapses runaway whitespace.
func CleanExtractedText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = hyphenBreakRe.ReplaceAllString(text, "$1$2")
	text = whitespaceRe.ReplaceAllString(text, " ")
	text = blankLinesRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
