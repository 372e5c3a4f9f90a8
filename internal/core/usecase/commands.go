package usecase

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/munidigital/tramites-assistant/internal/core/domain"
)

//go:embed commands.yaml
var defaultCommandsYAML []byte

// SpecialCommand is one entry in the trigger table: any query containing one
// of the trigger phrases (case-insensitive) is answered from the canned text
// without touching the embedding, search, or generation capabilities.
type SpecialCommand struct {
	Name         string   `yaml:"name"`
	DocumentName string   `yaml:"document_name"`
	Triggers     []string `yaml:"triggers"`
	Answer       string   `yaml:"answer"`
}

// CommandTable matches in declaration order, so specific commands (e.g.
// "ayuda con el rag") must precede broader ones ("ayuda").
type CommandTable struct {
	commands []SpecialCommand
}

func NewCommandTable(commands []SpecialCommand) *CommandTable {
	normalized := make([]SpecialCommand, 0, len(commands))
	for _, cmd := range commands {
		triggers := make([]string, 0, len(cmd.Triggers))
		for _, t := range cmd.Triggers {
			t = strings.ToLower(strings.TrimSpace(t))
			if t != "" {
				triggers = append(triggers, t)
			}
		}
		if len(triggers) == 0 {
			continue
		}
		cmd.Triggers = triggers
		normalized = append(normalized, cmd)
	}
	return &CommandTable{commands: normalized}
}

func DefaultCommandTable() *CommandTable {
	table, err := ParseCommandTable(defaultCommandsYAML)
	if err != nil {
		// The embedded table is validated by tests; reaching this means a
		// broken build artifact.
		panic(fmt.Sprintf("parse embedded command table: %v", err))
	}
	return table
}

func ParseCommandTable(raw []byte) (*CommandTable, error) {
	var doc struct {
		Commands []SpecialCommand `yaml:"commands"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal command table: %w", err)
	}
	if len(doc.Commands) == 0 {
		return nil, fmt.Errorf("command table has no commands")
	}
	return NewCommandTable(doc.Commands), nil
}

// LoadCommandTable reads a trigger table from a YAML file, falling back to
// the embedded defaults when path is empty.
func LoadCommandTable(path string) (*CommandTable, error) {
	if path == "" {
		return DefaultCommandTable(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read command table %s: %w", path, err)
	}
	return ParseCommandTable(raw)
}

// Match returns the canned output for the first command whose trigger appears
// in the normalized query.
func (t *CommandTable) Match(query string) (*domain.QueryOutput, bool) {
	normalized := strings.ToLower(strings.TrimSpace(query))
	if normalized == "" {
		return nil, false
	}
	for _, cmd := range t.commands {
		for _, trigger := range cmd.Triggers {
			if strings.Contains(normalized, trigger) {
				return &domain.QueryOutput{
					Answer:       cmd.Answer,
					Sources:      []string{},
					DocumentName: cmd.DocumentName,
				}, true
			}
		}
	}
	return nil, false
}

func (t *CommandTable) Len() int {
	return len(t.commands)
}
