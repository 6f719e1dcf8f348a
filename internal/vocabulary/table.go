// Package vocabulary rewrites colloquial pet-owner phrasing into veterinary
// technical terminology using a declarative replacement table.
package vocabulary

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// Entry is one colloquial phrase and its technical replacement.
type Entry struct {
	Colloquial string `yaml:"colloquial"`
	Technical  string `yaml:"technical"`
}

// Document is the YAML shape of a vocabulary file.
type Document struct {
	DefaultSubject  string   `yaml:"default_subject"`
	SubjectPrefixes []string `yaml:"subject_prefixes"`
	SubjectNouns    []string `yaml:"subject_nouns"`
	Entries         []Entry  `yaml:"entries"`
}

// Table is a validated, ordered vocabulary. Entries are sorted by descending
// key length in runes, ties broken lexicographically, and keys are stored
// lower-cased in NFC form.
type Table struct {
	defaultSubject string
	prefixes       []string
	nouns          []string
	entries        []Entry
}

// ParseTable decodes and validates a YAML vocabulary document.
func ParseTable(data []byte) (*Table, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse vocabulary: %w", err)
	}
	return NewTable(doc)
}

// NewTable validates doc and builds the ordered table. Empty keys or empty
// replacements are rejected; duplicate keys (case-insensitive) keep the last one.
func NewTable(doc Document) (*Table, error) {
	if strings.TrimSpace(doc.DefaultSubject) == "" {
		return nil, fmt.Errorf("vocabulary: default_subject is required")
	}

	byKey := make(map[string]string, len(doc.Entries))
	for i, e := range doc.Entries {
		key := fold(e.Colloquial)
		if key == "" {
			return nil, fmt.Errorf("vocabulary: entry %d has an empty colloquial phrase", i)
		}
		if strings.TrimSpace(e.Technical) == "" {
			return nil, fmt.Errorf("vocabulary: entry %d (%q) has an empty replacement", i, e.Colloquial)
		}
		byKey[key] = norm.NFC.String(strings.TrimSpace(e.Technical))
	}

	entries := make([]Entry, 0, len(byKey))
	for k, v := range byKey {
		entries = append(entries, Entry{Colloquial: k, Technical: v})
	}
	sort.Slice(entries, func(i, j int) bool {
		li, lj := utf8.RuneCountInString(entries[i].Colloquial), utf8.RuneCountInString(entries[j].Colloquial)
		if li != lj {
			return li > lj
		}
		return entries[i].Colloquial < entries[j].Colloquial
	})

	t := &Table{
		defaultSubject: norm.NFC.String(strings.TrimSpace(doc.DefaultSubject)),
		entries:        entries,
	}
	for _, p := range doc.SubjectPrefixes {
		if p = fold(p); p != "" {
			t.prefixes = append(t.prefixes, p)
		}
	}
	// longer prefixes first so "a paciente" never shadows a longer form
	sort.SliceStable(t.prefixes, func(i, j int) bool { return len(t.prefixes[i]) > len(t.prefixes[j]) })
	for _, n := range doc.SubjectNouns {
		if n = fold(n); n != "" {
			t.nouns = append(t.nouns, n)
		}
	}

	return t, nil
}

// DefaultTable returns the embedded clinic dictionary.
func DefaultTable() *Table {
	t, err := ParseTable(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded vocabulary is invalid: %v", err))
	}
	return t
}

// Entries returns a copy of the ordered entries.
func (t *Table) Entries() []Entry {
	return append([]Entry(nil), t.entries...)
}

func (t *Table) Len() int { return len(t.entries) }

func fold(s string) string {
	return strings.ToLower(norm.NFC.String(strings.Join(strings.Fields(s), " ")))
}
