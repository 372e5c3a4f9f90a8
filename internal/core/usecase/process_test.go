package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/munidigital/tramites-assistant/internal/core/domain"
)

type extractorFake struct {
	text  string
	pages int
	err   error
}

func (f *extractorFake) Extract(context.Context, *domain.Document) (string, int, error) {
	if f.err != nil {
		return "", 0, f.err
	}
	return f.text, f.pages, nil
}

type chunkerFake struct {
	parts []string
	calls int
}

func (f *chunkerFake) Split(text string) []string {
	f.calls++
	if f.parts != nil {
		return f.parts
	}
	return []string{text}
}

func seedDocument(repo *documentRepoFake, doc domain.Document) *domain.Document {
	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	copyDoc := doc
	repo.byID[doc.ID] = &copyDoc
	repo.byHash[doc.FileHash] = &copyDoc
	return &copyDoc
}

func newTestProcessUseCase(repo *documentRepoFake, ex *extractorFake, ch *chunkerFake, em *embedderFake) *ProcessDocumentUseCase {
	return NewProcessDocumentUseCase(repo, ex, ch, em, slog.New(slog.DiscardHandler))
}

func TestProcessChunksEmbedsAndMarks(t *testing.T) {
	repo := newDocumentRepoFake()
	seedDocument(repo, domain.Document{ID: "d1", Filename: "ordenanza.pdf", Type: domain.TypeOrdenanza})
	chunker := &chunkerFake{parts: []string{"articulo 1", "articulo 2", "   "}}
	uc := newTestProcessUseCase(repo, &extractorFake{text: "articulo 1 articulo 2", pages: 12}, chunker, &embedderFake{})

	if err := uc.ProcessByID(context.Background(), "d1"); err != nil {
		t.Fatalf("ProcessByID() error = %v", err)
	}
	if len(repo.chunks) != 2 {
		t.Fatalf("blank parts must be dropped, got %d chunks", len(repo.chunks))
	}
	if repo.chunks[0].ChunkIndex != 0 || repo.chunks[1].ChunkIndex != 1 {
		t.Fatalf("chunk indexes not sequential: %d %d", repo.chunks[0].ChunkIndex, repo.chunks[1].ChunkIndex)
	}
	if repo.processed["d1"] != 12 {
		t.Fatalf("expected 12 pages recorded, got %d", repo.processed["d1"])
	}
}

func TestProcessSmallGuideStaysWhole(t *testing.T) {
	repo := newDocumentRepoFake()
	seedDocument(repo, domain.Document{ID: "g1", Filename: "guia.pdf", Type: domain.TypeGuia, TotalPages: 3})
	chunker := &chunkerFake{parts: []string{"a", "b"}}
	uc := newTestProcessUseCase(repo, &extractorFake{text: "texto completo de la guia", pages: 3}, chunker, &embedderFake{})

	if err := uc.ProcessByID(context.Background(), "g1"); err != nil {
		t.Fatalf("ProcessByID() error = %v", err)
	}
	if chunker.calls != 0 {
		t.Fatalf("small guides must skip the chunker")
	}
	if len(repo.chunks) != 1 {
		t.Fatalf("expected single chunk, got %d", len(repo.chunks))
	}
}

func TestProcessEmptyTextFails(t *testing.T) {
	repo := newDocumentRepoFake()
	seedDocument(repo, domain.Document{ID: "d1", Filename: "x.pdf", Type: domain.TypeGeneral})
	uc := newTestProcessUseCase(repo, &extractorFake{text: "   \n  "}, &chunkerFake{}, &embedderFake{})

	err := uc.ProcessByID(context.Background(), "d1")
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestProcessAlreadyProcessedIsNoop(t *testing.T) {
	repo := newDocumentRepoFake()
	seedDocument(repo, domain.Document{ID: "d1", Filename: "x.pdf", Type: domain.TypeGeneral, Processed: true})
	extractor := &extractorFake{err: errors.New("must not be called")}
	uc := newTestProcessUseCase(repo, extractor, &chunkerFake{}, &embedderFake{})

	if err := uc.ProcessByID(context.Background(), "d1"); err != nil {
		t.Fatalf("expected noop, got %v", err)
	}
}

func TestProcessUnknownDocument(t *testing.T) {
	uc := newTestProcessUseCase(newDocumentRepoFake(), &extractorFake{}, &chunkerFake{}, &embedderFake{})
	err := uc.ProcessByID(context.Background(), "missing")
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestProcessEmbeddingErrorTyped(t *testing.T) {
	repo := newDocumentRepoFake()
	seedDocument(repo, domain.Document{ID: "d1", Filename: "x.pdf", Type: domain.TypeGeneral})
	embedder := &embedderFake{docErr: errors.New("model down")}
	uc := newTestProcessUseCase(repo, &extractorFake{text: "contenido"}, &chunkerFake{}, embedder)

	err := uc.ProcessByID(context.Background(), "d1")
	if !domain.IsKind(err, domain.ErrEmbedding) {
		t.Fatalf("expected ErrEmbedding, got %v", err)
	}
}

func TestCleanExtractedText(t *testing.T) {
	in := "habilita-\ncion   comercial\r\n\n\n\n\nfin"
	got := CleanExtractedText(in)
	if !strings.Contains(got, "habilitacion comercial") {
		t.Fatalf("hyphenation not rejoined: %q", got)
	}
	if strings.Contains(got, "\n\n\n") {
		t.Fatalf("blank runs not collapsed: %q", got)
	}
}

func TestProcessReportsChunkCount(t *testing.T) {
	repo := newDocumentRepoFake()
	seedDocument(repo, domain.Document{ID: "d1", Filename: "x.pdf", Type: domain.TypeGeneral})
	chunker := &chunkerFake{parts: []string{"uno", "dos", "tres"}}
	uc := newTestProcessUseCase(repo, &extractorFake{text: "uno dos tres", pages: 9}, chunker, &embedderFake{})

	var reported int
	uc.SetChunkObserver(func(count int) { reported = count })

	if err := uc.ProcessByID(context.Background(), "d1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reported != 3 {
		t.Fatalf("expected 3 chunks reported, got %d", reported)
	}
}
