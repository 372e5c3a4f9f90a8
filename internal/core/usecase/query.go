package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/munidigital/tramites-assistant/internal/core/domain"
	"github.com/munidigital/tramites-assistant/internal/core/ports"
)

const unknownDocumentLabel = "Documento Desconocido"

type QueryRAGConfig struct {
	HistoryWindow int
	TopK          int
}

// QueryRAGUseCase turns a user question into a grounded answer:
// special-command short-circuit, otherwise embed, search, build context,
// generate, then persist the turn best-effort.
type QueryRAGUseCase struct {
	embedder  ports.Embedder
	vectorDB  ports.VectorStore
	generator ports.AnswerGenerator
	sessions  ports.SessionStore
	commands  *CommandTable
	cfg       QueryRAGConfig
	logger    *slog.Logger
}

func NewQueryRAGUseCase(
	embedder ports.Embedder,
	vectorDB ports.VectorStore,
	generator ports.AnswerGenerator,
	sessions ports.SessionStore,
	commands *CommandTable,
	cfg QueryRAGConfig,
	logger *slog.Logger,
) *QueryRAGUseCase {
	if cfg.HistoryWindow <= 0 {
		cfg.HistoryWindow = 10
	}
	if cfg.TopK <= 0 {
		cfg.TopK = 5
	}
	if commands == nil {
		commands = DefaultCommandTable()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &QueryRAGUseCase{
		embedder:  embedder,
		vectorDB:  vectorDB,
		generator: generator,
		sessions:  sessions,
		commands:  commands,
		cfg:       cfg,
		logger:    logger,
	}
}

func (uc *QueryRAGUseCase) Execute(ctx context.Context, input domain.QueryInput) (*domain.QueryOutput, error) {
	query := strings.TrimSpace(input.Query)
	if query == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "execute query", fmt.Errorf("query is empty"))
	}

	// Operational intents never consume inference budget and leave no trace
	// in the conversation history.
	if out, ok := uc.commands.Match(query); ok {
		uc.logger.Info("special_command", "command", out.DocumentName)
		out.SessionID = input.SessionID
		return out, nil
	}

	session := uc.resolveSession(ctx, input.SessionID)
	history := session.HistoryContext(uc.cfg.HistoryWindow)

	vector, err := uc.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, domain.WrapError(domain.ErrEmbedding, "embed query", err)
	}

	chunks, err := uc.vectorDB.SearchSimilarChunks(ctx, vector, uc.cfg.TopK)
	if err != nil {
		return nil, domain.WrapError(domain.ErrSearch, "search similar chunks", err)
	}

	ordered := orderByScore(chunks)
	contextBlock := buildContext(ordered)

	// An empty context is passed through: the generator is expected to
	// answer that no relevant information was found.
	answer, err := uc.generator.GenerateAnswer(ctx, query, contextBlock, history)
	if err != nil {
		return nil, domain.WrapError(domain.ErrGeneration, "generate answer", err)
	}

	out := &domain.QueryOutput{
		Answer:    answer,
		Sources:   distinctSources(ordered),
		SessionID: session.ID,
	}
	if len(ordered) > 0 {
		out.DocumentName = sourceName(ordered[0])
		if ordered[0].DocumentID != "" {
			out.DownloadURL = "/v1/documents/" + ordered[0].DocumentID + "/download"
		}
	}

	uc.persistTurn(ctx, session.ID, query, answer)
	return out, nil
}

// resolveSession never fails the query: a missing session is started fresh
// under the requested id, and an unreadable store degrades to an in-memory
// session for this call.
func (uc *QueryRAGUseCase) resolveSession(ctx context.Context, sessionID string) *domain.ChatSession {
	if sessionID == "" {
		session, err := uc.sessions.Create(ctx)
		if err != nil {
			uc.logger.Warn("session_create_failed", "error", err)
			return domain.NewChatSession(uuid.NewString(), time.Now().UTC())
		}
		return session
	}

	session, err := uc.sessions.Load(ctx, sessionID)
	if err == nil {
		return session
	}
	if domain.IsKind(err, domain.ErrNotFound) {
		created, createErr := uc.sessions.CreateWithID(ctx, sessionID)
		if createErr == nil {
			return created
		}
		uc.logger.Warn("session_create_failed", "session_id", sessionID, "error", createErr)
	} else {
		uc.logger.Warn("session_load_failed", "session_id", sessionID, "error", err)
	}
	return domain.NewChatSession(sessionID, time.Now().UTC())
}

// persistTurn appends the user/assistant pair. Durability of history is
// best-effort relative to answering: failures are logged, never surfaced.
func (uc *QueryRAGUseCase) persistTurn(ctx context.Context, sessionID, query, answer string) {
	now := time.Now().UTC()
	userMsg, err := domain.NewChatMessage(uuid.NewString(), domain.RoleUser, query, now)
	if err != nil {
		uc.logger.Warn("history_save_skipped", "session_id", sessionID, "error", err)
		return
	}
	// The assistant message is stamped strictly later; the store reloads
	// messages ordered by (created_at, id), which must match insertion order.
	assistantMsg, err := domain.NewChatMessage(uuid.NewString(), domain.RoleAssistant, answer, now.Add(time.Millisecond))
	if err != nil {
		uc.logger.Warn("history_save_skipped", "session_id", sessionID, "error", err)
		return
	}

	if err := uc.sessions.AppendMessages(ctx, sessionID, []domain.ChatMessage{*userMsg, *assistantMsg}); err != nil {
		uc.logger.Warn("history_save_failed", "session_id", sessionID, "error", err)
	}
}

// orderByScore sorts descending by similarity; the stable sort keeps the
// store's retrieval order for equal scores.
func orderByScore(chunks []domain.SimilarChunk) []domain.SimilarChunk {
	out := append([]domain.SimilarChunk(nil), chunks...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

func buildContext(chunks []domain.SimilarChunk) string {
	if len(chunks) == 0 {
		return ""
	}
	var b strings.Builder
	for i, chunk := range chunks {
		fmt.Fprintf(&b, "[Fuente %d: %s]\n%s\n\n", i+1, sourceName(chunk), chunk.Text)
	}
	return strings.TrimRight(b.String(), "\n")
}

func distinctSources(chunks []domain.SimilarChunk) []string {
	out := make([]string, 0, len(chunks))
	seen := make(map[string]struct{}, len(chunks))
	for _, chunk := range chunks {
		name := chunk.DocumentName
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

func sourceName(chunk domain.SimilarChunk) string {
	if chunk.DocumentName == "" {
		return unknownDocumentLabel
	}
	return chunk.DocumentName
}
