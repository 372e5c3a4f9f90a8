package domain

import (
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestNewChatMessageValidatesRole(t *testing.T) {
	now := time.Now().UTC()

	for _, role := range []MessageRole{RoleUser, RoleAssistant, RoleSystem} {
		msg, err := NewChatMessage("m1", role, "hola", now)
		if err != nil {
			t.Fatalf("role %q: unexpected error %v", role, err)
		}
		if msg.Role != role {
			t.Fatalf("role %q not kept, got %q", role, msg.Role)
		}
	}

	if _, err := NewChatMessage("m1", MessageRole("operador"), "hola", now); !IsKind(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown role, got %v", err)
	}
}

func TestNewChatMessageRejectsBlankContent(t *testing.T) {
	if _, err := NewChatMessage("m1", RoleUser, "   \n\t ", time.Now().UTC()); !IsKind(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank content, got %v", err)
	}
}

func seedSession(t *testing.T, count int) *ChatSession {
	t.Helper()
	now := time.Now().UTC()
	session := NewChatSession("s1", now)
	for i := 0; i < count; i++ {
		role := RoleUser
		if i%2 == 1 {
			role = RoleAssistant
		}
		msg, err := NewChatMessage(fmt.Sprintf("m%d", i), role, fmt.Sprintf("mensaje %d", i), now.Add(time.Duration(i)*time.Second))
		if err != nil {
			t.Fatalf("seed message %d: %v", i, err)
		}
		session.Append(*msg)
	}
	return session
}

func TestRecentMessagesTruncatesToWindow(t *testing.T) {
	session := seedSession(t, 14)

	recent := session.RecentMessages(10)
	if len(recent) != 10 {
		t.Fatalf("expected 10 messages, got %d", len(recent))
	}
	if recent[0].Content != "mensaje 4" || recent[9].Content != "mensaje 13" {
		t.Fatalf("wrong window: first %q, last %q", recent[0].Content, recent[9].Content)
	}

	if got := session.RecentMessages(0); got != nil {
		t.Fatalf("limit 0 must return nil, got %d messages", len(got))
	}
	if got := session.RecentMessages(100); len(got) != 14 {
		t.Fatalf("oversized limit must return everything, got %d", len(got))
	}
}

func TestHistoryContextLabelsAndWindow(t *testing.T) {
	session := seedSession(t, 4)

	history := session.HistoryContext(2)
	if strings.Contains(history, "mensaje 0") || strings.Contains(history, "mensaje 1") {
		t.Fatalf("history went past the window: %q", history)
	}
	if !strings.Contains(history, "Usuario: mensaje 2") {
		t.Fatalf("missing user turn: %q", history)
	}
	if !strings.Contains(history, "Asistente: mensaje 3") {
		t.Fatalf("missing assistant turn: %q", history)
	}

	if got := NewChatSession("vacia", time.Now().UTC()).HistoryContext(10); got != "" {
		t.Fatalf("empty session must produce empty history, got %q", got)
	}
}

func TestClearHistoryAdvancesUpdatedAt(t *testing.T) {
	session := seedSession(t, 2)
	later := session.UpdatedAt.Add(time.Minute)

	session.ClearHistory(later)
	if session.HasMessages() {
		t.Fatalf("messages not cleared")
	}
	if !session.UpdatedAt.Equal(later) {
		t.Fatalf("UpdatedAt not advanced: %v", session.UpdatedAt)
	}

	session.ClearHistory(later.Add(-time.Hour))
	if !session.UpdatedAt.Equal(later) {
		t.Fatalf("UpdatedAt moved backwards: %v", session.UpdatedAt)
	}
}
