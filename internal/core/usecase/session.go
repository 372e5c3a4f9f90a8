package usecase

import (
	"context"
	"fmt"

	"github.com/munidigital/tramites-assistant/internal/core/domain"
	"github.com/munidigital/tramites-assistant/internal/core/ports"
)

const defaultSessionListLimit = 50

// SessionUseCase exposes session CRUD over the session store.
type SessionUseCase struct {
	store ports.SessionStore
}

func NewSessionUseCase(store ports.SessionStore) *SessionUseCase {
	return &SessionUseCase{store: store}
}

// Create starts a session. With an explicit id, an existing session under
// that id is a caller error.
func (uc *SessionUseCase) Create(ctx context.Context, sessionID string) (*domain.ChatSession, error) {
	if sessionID == "" {
		session, err := uc.store.Create(ctx)
		if err != nil {
			return nil, domain.WrapError(domain.ErrSessionStore, "create session", err)
		}
		return session, nil
	}

	if _, err := uc.store.Load(ctx, sessionID); err == nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "create session",
			fmt.Errorf("session %s already exists", sessionID))
	} else if !domain.IsKind(err, domain.ErrNotFound) {
		return nil, domain.WrapError(domain.ErrSessionStore, "create session", err)
	}

	session, err := uc.store.CreateWithID(ctx, sessionID)
	if err != nil {
		return nil, domain.WrapError(domain.ErrSessionStore, "create session", err)
	}
	return session, nil
}

func (uc *SessionUseCase) Get(ctx context.Context, sessionID string) (*domain.ChatSession, error) {
	if sessionID == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "get session", fmt.Errorf("session id is empty"))
	}
	session, err := uc.store.Load(ctx, sessionID)
	if err != nil {
		if domain.IsKind(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, domain.WrapError(domain.ErrSessionStore, "get session", err)
	}
	return session, nil
}

func (uc *SessionUseCase) List(ctx context.Context, limit int) ([]domain.ChatSession, error) {
	if limit <= 0 {
		limit = defaultSessionListLimit
	}
	sessions, err := uc.store.List(ctx, limit)
	if err != nil {
		return nil, domain.WrapError(domain.ErrSessionStore, "list sessions", err)
	}
	if sessions == nil {
		sessions = []domain.ChatSession{}
	}
	return sessions, nil
}

func (uc *SessionUseCase) Delete(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return domain.WrapError(domain.ErrInvalidInput, "delete session", fmt.Errorf("session id is empty"))
	}
	if err := uc.store.Delete(ctx, sessionID); err != nil {
		if domain.IsKind(err, domain.ErrNotFound) {
			return err
		}
		return domain.WrapError(domain.ErrSessionStore, "delete session", err)
	}
	return nil
}

func (uc *SessionUseCase) ClearHistory(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return domain.WrapError(domain.ErrInvalidInput, "clear history", fmt.Errorf("session id is empty"))
	}
	if err := uc.store.ClearHistory(ctx, sessionID); err != nil {
		if domain.IsKind(err, domain.ErrNotFound) {
			return err
		}
		return domain.WrapError(domain.ErrSessionStore, "clear history", err)
	}
	return nil
}
