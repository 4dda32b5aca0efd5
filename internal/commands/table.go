package commands

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Kind int

const (
	// Literal entries are sent back to the user as is.
	Literal Kind = iota
	// Prompt entries are sent to the model in place of the user's text.
	Prompt
)

func (k Kind) String() string {
	switch k {
	case Literal:
		return "literal"
	case Prompt:
		return "prompt"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

type Entry struct {
	Kind Kind
	Text string
}

// Table maps normalized phrases to entries. It is read-only once built.
type Table struct {
	entries map[string]Entry
	phrases []string
}

// Normalize trims surrounding whitespace and lowercases the text.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func (t *Table) Lookup(input string) (Entry, bool) {
	if t == nil {
		return Entry{}, false
	}
	e, ok := t.entries[Normalize(input)]
	return e, ok
}

// Phrases returns the original phrases in definition order, used as keyboard labels.
func (t *Table) Phrases() []string {
	if t == nil {
		return nil
	}
	return append([]string(nil), t.phrases...)
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

type Definition struct {
	Phrase  string `yaml:"phrase"`
	Literal string `yaml:"literal,omitempty"`
	Prompt  string `yaml:"prompt,omitempty"`
}

type fileFormat struct {
	Commands []Definition `yaml:"commands"`
}

func New(defs []Definition) (*Table, error) {
	t := &Table{entries: make(map[string]Entry, len(defs))}
	for i, d := range defs {
		key := Normalize(d.Phrase)
		if key == "" {
			return nil, fmt.Errorf("command #%d: empty phrase", i+1)
		}
		if _, dup := t.entries[key]; dup {
			return nil, fmt.Errorf("command %q: duplicate phrase", d.Phrase)
		}
		var e Entry
		switch {
		case d.Literal != "" && d.Prompt != "":
			return nil, fmt.Errorf("command %q: both literal and prompt set", d.Phrase)
		case d.Literal != "":
			e = Entry{Kind: Literal, Text: d.Literal}
		case d.Prompt != "":
			e = Entry{Kind: Prompt, Text: d.Prompt}
		default:
			return nil, fmt.Errorf("command %q: one of literal or prompt is required", d.Phrase)
		}
		t.entries[key] = e
		t.phrases = append(t.phrases, strings.TrimSpace(d.Phrase))
	}
	return t, nil
}

// Parse builds a table from YAML of the form
//
//	commands:
//	  - phrase: Jogadores
//	    literal: "..."
//	  - phrase: Conte uma história
//	    prompt: "Conte uma história sobre a FURIA"
func Parse(data []byte) (*Table, error) {
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode commands: %w", err)
	}
	if len(f.Commands) == 0 {
		return nil, errors.New("commands file has no entries")
	}
	return New(f.Commands)
}

// Load reads the table from a YAML file. A missing file is reported with os.ErrNotExist.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read commands: %w", err)
	}
	return Parse(data)
}
