package usecase

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/munidigital/tramites-assistant/internal/core/domain"
	"github.com/munidigital/tramites-assistant/internal/core/ports"
)

// IngestDocumentUseCase accepts an uploaded file, deduplicates by content
// hash, stores it and hands processing off to the queue.
type IngestDocumentUseCase struct {
	documents ports.DocumentRepository
	storage   ports.ObjectStorage
	queue     ports.MessageQueue
	logger    *slog.Logger
}

func NewIngestDocumentUseCase(
	documents ports.DocumentRepository,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
	logger *slog.Logger,
) *IngestDocumentUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &IngestDocumentUseCase{
		documents: documents,
		storage:   storage,
		queue:     queue,
		logger:    logger,
	}
}

func (uc *IngestDocumentUseCase) Upload(ctx context.Context, filename string, body io.Reader) (*domain.Document, error) {
	filename = filepath.Base(strings.TrimSpace(filename))
	if filename == "" || filename == "." {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload document", fmt.Errorf("filename is empty"))
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf", ".xlsx", ".txt", ".md":
	default:
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload document",
			fmt.Errorf("unsupported file extension %q", filepath.Ext(filename)))
	}

	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, domain.WrapError(domain.ErrTemporary, "read upload", err)
	}

	// Hash before touching storage; a duplicate upload must leave no
	// orphaned object behind.
	sum := sha256.Sum256(raw)
	hash := hex.EncodeToString(sum[:])

	if existing, err := uc.documents.FindByHash(ctx, hash); err == nil && existing != nil {
		uc.logger.Info("duplicate_upload", "filename", filename, "existing_id", existing.ID)
		return existing, nil
	} else if err != nil && !domain.IsKind(err, domain.ErrNotFound) {
		return nil, domain.WrapError(domain.ErrTemporary, "check duplicate", err)
	}

	id := uuid.NewString()
	storageKey := id + "/" + filename
	if err := uc.storage.Save(ctx, storageKey, bytes.NewReader(raw)); err != nil {
		return nil, domain.WrapError(domain.ErrTemporary, "store document", err)
	}

	now := time.Now().UTC()
	docType := ClassifyDocumentType(filename)
	doc := &domain.Document{
		ID:          id,
		Filename:    filename,
		Type:        docType,
		Category:    CategoryForType(docType),
		FileHash:    hash,
		StoragePath: storageKey,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.documents.Create(ctx, doc); err != nil {
		return nil, domain.WrapError(domain.ErrTemporary, "save document", err)
	}

	if err := uc.queue.PublishDocumentIngested(ctx, doc.ID); err != nil {
		// The document record stays; processing can be retried out of band.
		uc.logger.Warn("publish_failed", "document_id", doc.ID, "error", err)
		return doc, domain.WrapError(domain.ErrTemporary, "enqueue document", err)
	}

	uc.logger.Info("document_ingested", "document_id", doc.ID, "filename", filename, "type", doc.Type)
	return doc, nil
}

// ClassifyDocumentType infers the document type from filename keywords.
func ClassifyDocumentType(filename string) domain.DocumentType {
	name := strings.ToLower(filename)
	switch {
	case strings.Contains(name, "ley"):
		return domain.TypeLey
	case strings.Contains(name, "ordenanza"):
		return domain.TypeOrdenanza
	case strings.Contains(name, "decreto"):
		return domain.TypeDecreto
	case strings.Contains(name, "reglamento"):
		return domain.TypeReglamento
	case strings.Contains(name, "formulario"), strings.Contains(name, "solicitud"):
		return domain.TypeFormulario
	case strings.Contains(name, "guia"), strings.Contains(name, "guía"), strings.Contains(name, "instructivo"):
		return domain.TypeGuia
	default:
		return domain.TypeGeneral
	}
}

// CategoryForType maps document types onto the browse categories used by the
// statistics endpoint.
func CategoryForType(t domain.DocumentType) string {
	switch t {
	case domain.TypeLey, domain.TypeOrdenanza, domain.TypeDecreto, domain.TypeReglamento:
		return "normativa"
	case domain.TypeFormulario:
		return "comercio"
	case domain.TypeGuia:
		return "informacion"
	default:
		return "general"
	}
}
