package usecase

import (
	"context"

	"github.com/munidigital/tramites-assistant/internal/core/domain"
	"github.com/munidigital/tramites-assistant/internal/core/ports"
)

// GetStatisticsUseCase reports corpus-level counts for the stats endpoint.
type GetStatisticsUseCase struct {
	store ports.VectorStore
}

func NewGetStatisticsUseCase(store ports.VectorStore) *GetStatisticsUseCase {
	return &GetStatisticsUseCase{store: store}
}

func (uc *GetStatisticsUseCase) Execute(ctx context.Context) (*domain.StatsOutput, error) {
	raw, err := uc.store.Statistics(ctx)
	if err != nil {
		return nil, domain.WrapError(domain.ErrStatistics, "collect statistics", err)
	}

	out := &domain.StatsOutput{
		TotalDocuments: raw.TotalDocuments,
		TotalChunks:    raw.TotalChunks,
		TotalPages:     raw.TotalPages,
		Categories:     raw.Categories,
		DocumentTypes:  raw.DocumentTypes,
	}
	if out.Categories == nil {
		out.Categories = map[string]int{}
	}
	if out.DocumentTypes == nil {
		out.DocumentTypes = map[string]int{}
	}
	return out, nil
}
