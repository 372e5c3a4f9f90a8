package extractor

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/munidigital/tramites-assistant/internal/core/domain"
	"github.com/munidigital/tramites-assistant/internal/core/ports"
)

// Registry routes documents to a concrete extractor by file extension.
type Registry struct {
	byExtension map[string]ports.TextExtractor
}

func NewRegistry() *Registry {
	return &Registry{byExtension: make(map[string]ports.TextExtractor)}
}

func (r *Registry) Register(extension string, extractor ports.TextExtractor) {
	r.byExtension[strings.ToLower(extension)] = extractor
}

func (r *Registry) Extract(ctx context.Context, doc *domain.Document) (string, int, error) {
	ext := strings.ToLower(filepath.Ext(doc.Filename))
	extractor, ok := r.byExtension[ext]
	if !ok {
		return "", 0, domain.WrapError(domain.ErrInvalidInput, "extract text",
			fmt.Errorf("no extractor for %q", ext))
	}
	return extractor.Extract(ctx, doc)
}
