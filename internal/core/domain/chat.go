package domain

import (
	"fmt"
	"strings"
	"time"
)

type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
)

// ChatMessage is one conversation turn. Immutable once created.
type ChatMessage struct {
	ID        string            `json:"id"`
	Role      MessageRole       `json:"role"`
	Content   string            `json:"content"`
	CreatedAt time.Time         `json:"created_at"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

func NewChatMessage(id string, role MessageRole, content string, createdAt time.Time) (*ChatMessage, error) {
	switch role {
	case RoleUser, RoleAssistant, RoleSystem:
	default:
		return nil, WrapError(ErrInvalidInput, "new chat message", fmt.Errorf("unknown role %q", role))
	}
	if strings.TrimSpace(content) == "" {
		return nil, WrapError(ErrInvalidInput, "new chat message", fmt.Errorf("content is empty"))
	}
	return &ChatMessage{
		ID:        id,
		Role:      role,
		Content:   content,
		CreatedAt: createdAt,
	}, nil
}

// ChatSession is an ordered conversation thread. Messages are only ever
// appended or cleared; UpdatedAt never moves backwards.
type ChatSession struct {
	ID        string        `json:"session_id"`
	Messages  []ChatMessage `json:"messages"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

func NewChatSession(id string, now time.Time) *ChatSession {
	return &ChatSession{
		ID:        id,
		Messages:  []ChatMessage{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *ChatSession) Append(msg ChatMessage) {
	s.Messages = append(s.Messages, msg)
	if msg.CreatedAt.After(s.UpdatedAt) {
		s.UpdatedAt = msg.CreatedAt
	}
}

// RecentMessages returns up to limit most recent messages, oldest first.
func (s *ChatSession) RecentMessages(limit int) []ChatMessage {
	if limit <= 0 || len(s.Messages) == 0 {
		return nil
	}
	if len(s.Messages) <= limit {
		return append([]ChatMessage(nil), s.Messages...)
	}
	return append([]ChatMessage(nil), s.Messages[len(s.Messages)-limit:]...)
}

// HistoryContext renders the recent window as a prompt fragment. Roles are
// labeled in Spanish to match the answer language.
func (s *ChatSession) HistoryContext(limit int) string {
	recent := s.RecentMessages(limit)
	if len(recent) == 0 {
		return ""
	}

	lines := make([]string, 0, len(recent))
	for _, msg := range recent {
		label := string(msg.Role)
		switch msg.Role {
		case RoleUser:
			label = "Usuario"
		case RoleAssistant:
			label = "Asistente"
		case RoleSystem:
			label = "Sistema"
		}
		lines = append(lines, label+": "+msg.Content)
	}
	return strings.Join(lines, "\n\n")
}

func (s *ChatSession) ClearHistory(now time.Time) {
	s.Messages = s.Messages[:0]
	if now.After(s.UpdatedAt) {
		s.UpdatedAt = now
	}
}

func (s *ChatSession) HasMessages() bool {
	return len(s.Messages) > 0
}
