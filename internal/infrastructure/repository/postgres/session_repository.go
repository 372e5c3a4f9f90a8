package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/munidigital/tramites-assistant/internal/core/domain"
)

type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Load(ctx context.Context, sessionID string) (*domain.ChatSession, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, created_at, updated_at
FROM chat_sessions
WHERE id = $1
`, sessionID)

	var session domain.ChatSession
	if err := row.Scan(&session.ID, &session.CreatedAt, &session.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "load session", err)
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT id, role, content, created_at
FROM chat_messages
WHERE session_id = $1
ORDER BY created_at, id
`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	session.Messages = []domain.ChatMessage{}
	for rows.Next() {
		var msg domain.ChatMessage
		var role string
		if err := rows.Scan(&msg.ID, &role, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msg.Role = domain.MessageRole(role)
		session.Messages = append(session.Messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return &session, nil
}

func (r *SessionRepository) Create(ctx context.Context) (*domain.ChatSession, error) {
	return r.CreateWithID(ctx, uuid.NewString())
}

func (r *SessionRepository) CreateWithID(ctx context.Context, sessionID string) (*domain.ChatSession, error) {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
INSERT INTO chat_sessions (id, created_at, updated_at)
VALUES ($1,$2,$3)
`, sessionID, now, now)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	return domain.NewChatSession(sessionID, now), nil
}

func (r *SessionRepository) AppendMessages(ctx context.Context, sessionID string, messages []domain.ChatMessage) error {
	if len(messages) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin message tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var latest time.Time
	for _, msg := range messages {
		_, err := tx.ExecContext(ctx, `
INSERT INTO chat_messages (id, session_id, role, content, created_at)
VALUES ($1,$2,$3,$4,$5)
`, msg.ID, sessionID, string(msg.Role), msg.Content, msg.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert message: %w", err)
		}
		if msg.CreatedAt.After(latest) {
			latest = msg.CreatedAt
		}
	}

	if _, err := tx.ExecContext(ctx, `
UPDATE chat_sessions SET updated_at = GREATEST(updated_at, $2) WHERE id = $1
`, sessionID, latest); err != nil {
		return fmt.Errorf("touch session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit message tx: %w", err)
	}
	return nil
}

func (r *SessionRepository) List(ctx context.Context, limit int) ([]domain.ChatSession, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, created_at, updated_at
FROM chat_sessions
ORDER BY updated_at DESC
LIMIT $1
`, limit)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]domain.ChatSession, 0, limit)
	for rows.Next() {
		var session domain.ChatSession
		if err := rows.Scan(&session.ID, &session.CreatedAt, &session.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		session.Messages = []domain.ChatMessage{}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

func (r *SessionRepository) Delete(ctx context.Context, sessionID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM chat_sessions WHERE id = $1`, sessionID)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return domain.WrapError(domain.ErrNotFound, "delete session", sql.ErrNoRows)
	}
	return nil
}

func (r *SessionRepository) ClearHistory(ctx context.Context, sessionID string) error {
	var exists bool
	if err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM chat_sessions WHERE id = $1)`, sessionID).Scan(&exists); err != nil {
		return fmt.Errorf("check session: %w", err)
	}
	if !exists {
		return domain.WrapError(domain.ErrNotFound, "clear history", sql.ErrNoRows)
	}

	if _, err := r.db.ExecContext(ctx, `DELETE FROM chat_messages WHERE session_id = $1`, sessionID); err != nil {
		return fmt.Errorf("clear messages: %w", err)
	}
	if _, err := r.db.ExecContext(ctx,
		`UPDATE chat_sessions SET updated_at = $2 WHERE id = $1`, sessionID, time.Now().UTC()); err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	return nil
}
