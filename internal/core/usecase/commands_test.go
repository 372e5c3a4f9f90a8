package usecase

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultCommandTableParses(t *testing.T) {
	table := DefaultCommandTable()
	if table.Len() != 4 {
		t.Fatalf("expected 4 embedded commands, got %d", table.Len())
	}
}

func TestCommandMatchIsCaseInsensitive(t *testing.T) {
	table := DefaultCommandTable()
	out, ok := table.Match("  AYUDA  ")
	if !ok {
		t.Fatalf("expected a match")
	}
	if out.DocumentName != "Sistema de Ayuda" {
		t.Fatalf("expected help command, got %q", out.DocumentName)
	}
	if out.Sources == nil || len(out.Sources) != 0 {
		t.Fatalf("expected empty non-nil sources, got %v", out.Sources)
	}
}

func TestCommandMatchSubstring(t *testing.T) {
	table := DefaultCommandTable()
	out, ok := table.Match("necesito ayuda con algo")
	if !ok {
		t.Fatalf("expected substring match")
	}
	if out.DocumentName != "Sistema de Ayuda" {
		t.Fatalf("got %q", out.DocumentName)
	}
}

func TestCommandOrderSpecificBeforeBroad(t *testing.T) {
	table := DefaultCommandTable()
	out, ok := table.Match("dame ayuda con el rag por favor")
	if !ok {
		t.Fatalf("expected a match")
	}
	// Contains "ayuda" too; the more specific command must win.
	if out.DocumentName != "Guía Técnica RAG" {
		t.Fatalf("expected rag_help to win, got %q", out.DocumentName)
	}
}

func TestCommandNoMatch(t *testing.T) {
	table := DefaultCommandTable()
	if _, ok := table.Match("requisitos para habilitar un comercio"); ok {
		t.Fatalf("expected no match for a domain question")
	}
	if _, ok := table.Match("   "); ok {
		t.Fatalf("expected no match for blank query")
	}
}

func TestLoadCommandTableFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "commands.yaml")
	raw := `commands:
  - name: hours
    document_name: "Horarios"
    triggers: ["horario", "hasta qué hora"]
    answer: "Atendemos de 8 a 14."
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	table, err := LoadCommandTable(path)
	if err != nil {
		t.Fatalf("LoadCommandTable() error = %v", err)
	}
	out, ok := table.Match("¿hasta qué hora atienden?")
	if !ok || out.Answer != "Atendemos de 8 a 14." {
		t.Fatalf("expected custom command match, ok=%v out=%+v", ok, out)
	}
}

func TestLoadCommandTableEmptyPathUsesDefaults(t *testing.T) {
	table, err := LoadCommandTable("")
	if err != nil {
		t.Fatalf("LoadCommandTable() error = %v", err)
	}
	if table.Len() != 4 {
		t.Fatalf("expected embedded defaults, got %d commands", table.Len())
	}
}

func TestParseCommandTableRejectsEmpty(t *testing.T) {
	if _, err := ParseCommandTable([]byte("commands: []")); err == nil {
		t.Fatalf("expected error for empty table")
	}
	if _, err := ParseCommandTable([]byte("{not yaml")); err == nil {
		t.Fatalf("expected error for malformed yaml")
	}
}
