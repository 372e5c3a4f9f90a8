package extractor

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/munidigital/tramites-assistant/internal/core/domain"
	"github.com/munidigital/tramites-assistant/internal/core/ports"
	"github.com/munidigital/tramites-assistant/internal/infrastructure/extractor/plaintext"
)

type storageFake struct {
	objects map[string]string
}

func (s *storageFake) Save(context.Context, string, io.Reader) error { return nil }

func (s *storageFake) Open(_ context.Context, key string) (io.ReadCloser, error) {
	content, ok := s.objects[key]
	if !ok {
		return nil, errors.New("missing object")
	}
	return io.NopCloser(strings.NewReader(content)), nil
}

type extractorStub struct {
	text  string
	pages int
	calls int
}

func (e *extractorStub) Extract(context.Context, *domain.Document) (string, int, error) {
	e.calls++
	return e.text, e.pages, nil
}

func TestRegistryDispatchesByExtension(t *testing.T) {
	pdfStub := &extractorStub{text: "desde pdf", pages: 3}
	txtStub := &extractorStub{text: "desde txt", pages: 1}

	registry := NewRegistry()
	registry.Register(".PDF", pdfStub)
	registry.Register(".txt", txtStub)

	text, pages, err := registry.Extract(context.Background(), &domain.Document{Filename: "ordenanza.pdf"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "desde pdf" || pages != 3 {
		t.Fatalf("unexpected result %q / %d", text, pages)
	}
	if pdfStub.calls != 1 || txtStub.calls != 0 {
		t.Fatalf("wrong extractor called: pdf=%d txt=%d", pdfStub.calls, txtStub.calls)
	}
}

func TestRegistryRejectsUnknownExtension(t *testing.T) {
	registry := NewRegistry()
	registry.Register(".txt", &extractorStub{})

	_, _, err := registry.Extract(context.Background(), &domain.Document{Filename: "foto.png"})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input error, got %v", err)
	}
}

func TestPlaintextExtractorReadsFromStorage(t *testing.T) {
	storage := &storageFake{objects: map[string]string{
		"d1/tasas.txt": "  Tasas municipales vigentes.  ",
	}}
	var e ports.TextExtractor = plaintext.NewExtractor(storage)

	text, pages, err := e.Extract(context.Background(), &domain.Document{
		Filename:    "tasas.txt",
		StoragePath: "d1/tasas.txt",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Tasas municipales vigentes." {
		t.Fatalf("unexpected text %q", text)
	}
	if pages != 1 {
		t.Fatalf("expected 1 page, got %d", pages)
	}
}

func TestPlaintextExtractorRejectsBinary(t *testing.T) {
	storage := &storageFake{objects: map[string]string{
		"d1/blob.txt": string([]byte{0xff, 0xfe, 0x00, 0x80}),
	}}
	e := plaintext.NewExtractor(storage)

	_, _, err := e.Extract(context.Background(), &domain.Document{
		Filename:    "blob.txt",
		StoragePath: "d1/blob.txt",
	})
	if err == nil || !strings.Contains(err.Error(), "not a text file") {
		t.Fatalf("expected binary rejection, got %v", err)
	}
}
