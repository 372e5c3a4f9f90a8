package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/munidigital/tramites-assistant/internal/config"
	"github.com/munidigital/tramites-assistant/internal/core/ports"
	"github.com/munidigital/tramites-assistant/internal/core/usecase"
	"github.com/munidigital/tramites-assistant/internal/infrastructure/chunking"
	"github.com/munidigital/tramites-assistant/internal/infrastructure/extractor"
	"github.com/munidigital/tramites-assistant/internal/infrastructure/extractor/pdf"
	"github.com/munidigital/tramites-assistant/internal/infrastructure/extractor/plaintext"
	"github.com/munidigital/tramites-assistant/internal/infrastructure/extractor/xlsx"
	"github.com/munidigital/tramites-assistant/internal/infrastructure/llm/gemini"
	"github.com/munidigital/tramites-assistant/internal/infrastructure/queue/nats"
	"github.com/munidigital/tramites-assistant/internal/infrastructure/repository/postgres"
	"github.com/munidigital/tramites-assistant/internal/infrastructure/resilience"
	"github.com/munidigital/tramites-assistant/internal/infrastructure/storage/localfs"
)

// App holds the wired application graph shared by the API and the worker.
type App struct {
	Config config.Config
	Logger *slog.Logger

	Queue     ports.MessageQueue
	Documents ports.DocumentRepository
	Storage   ports.ObjectStorage

	QueryUC    ports.QueryService
	StatsUC    ports.StatisticsService
	SessionUC  ports.SessionManager
	FeedbackUC ports.FeedbackService
	IngestUC   ports.DocumentIngestor
	ProcessUC  *usecase.ProcessDocumentUseCase

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	documents := postgres.NewDocumentRepository(db)
	sessions := postgres.NewSessionRepository(db)
	feedback := postgres.NewFeedbackRepository(db)

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultPolicy())

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		Executor: executor,
		Logger:   logger,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	llm := gemini.New(cfg.GeminiBaseURL, cfg.GeminiAPIKey, cfg.GeminiGenModel, cfg.GeminiEmbedModel, executor)
	embedder := gemini.NewEmbedder(llm)
	generator := gemini.NewGenerator(llm)

	extractors := extractor.NewRegistry()
	extractors.Register(".pdf", pdf.NewExtractor(storage))
	extractors.Register(".xlsx", xlsx.NewExtractor(storage))
	extractors.Register(".txt", plaintext.NewExtractor(storage))
	extractors.Register(".md", plaintext.NewExtractor(storage))

	chunker := chunking.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)

	commands, err := usecase.LoadCommandTable(cfg.CommandTablePath)
	if err != nil {
		queue.Close()
		_ = db.Close()
		return nil, fmt.Errorf("load command table: %w", err)
	}

	queryUC := usecase.NewQueryRAGUseCase(embedder, documents, generator, sessions, commands, usecase.QueryRAGConfig{
		HistoryWindow: cfg.HistoryWindow,
		TopK:          cfg.RAGTopK,
	}, logger)

	return &App{
		Config: cfg,
		Logger: logger,

		Queue:     queue,
		Documents: documents,
		Storage:   storage,

		QueryUC:    queryUC,
		StatsUC:    usecase.NewGetStatisticsUseCase(documents),
		SessionUC:  usecase.NewSessionUseCase(sessions),
		FeedbackUC: usecase.NewFeedbackUseCase(feedback),
		IngestUC:   usecase.NewIngestDocumentUseCase(documents, storage, queue, logger),
		ProcessUC:  usecase.NewProcessDocumentUseCase(documents, extractors, chunker, embedder, logger),

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
