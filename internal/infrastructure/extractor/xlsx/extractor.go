package xlsx

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/munidigital/tramites-assistant/internal/core/domain"
	"github.com/munidigital/tramites-assistant/internal/core/ports"
)

// Extractor flattens spreadsheets (fee schedules, requirement matrices) into
// one line of pipe-separated cells per row. Each sheet counts as a page.
type Extractor struct {
	storage ports.ObjectStorage
}

func NewExtractor(storage ports.ObjectStorage) *Extractor {
	return &Extractor{storage: storage}
}

func (e *Extractor) Extract(ctx context.Context, doc *domain.Document) (string, int, error) {
	reader, err := e.storage.Open(ctx, doc.StoragePath)
	if err != nil {
		return "", 0, fmt.Errorf("open source document: %w", err)
	}
	defer reader.Close()

	workbook, err := excelize.OpenReader(reader)
	if err != nil {
		return "", 0, fmt.Errorf("open workbook %s: %w", doc.Filename, err)
	}
	defer workbook.Close()

	sheets := workbook.GetSheetList()
	var b strings.Builder
	for _, sheet := range sheets {
		if err := ctx.Err(); err != nil {
			return "", 0, err
		}
		rows, err := workbook.GetRows(sheet)
		if err != nil {
			return "", 0, fmt.Errorf("read sheet %s: %w", sheet, err)
		}
		b.WriteString(sheet)
		b.WriteString("\n")
		for _, row := range rows {
			line := strings.TrimSpace(strings.Join(row, " | "))
			if line != "" {
				b.WriteString(line)
				b.WriteString("\n")
			}
		}
		b.WriteString("\n")
	}

	return strings.TrimSpace(b.String()), len(sheets), nil
}
