package vocabulary

import (
	"strings"
	"sync/atomic"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Normalizer applies a Table to dictated text. It is safe for concurrent use;
// the table can be replaced at runtime with Swap.
type Normalizer struct {
	table atomic.Pointer[Table]
}

func NewNormalizer(t *Table) *Normalizer {
	n := &Normalizer{}
	n.table.Store(t)
	return n
}

// Swap installs a new table for subsequent calls.
func (n *Normalizer) Swap(t *Table) {
	n.table.Store(t)
}

func (n *Normalizer) Table() *Table {
	return n.table.Load()
}

// Normalize rewrites text into technical phrasing. Empty or blank input is
// returned unchanged.
func (n *Normalizer) Normalize(text string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	t := n.table.Load()

	s := strings.ToLower(norm.NFC.String(text))
	s = stripPrefix(s, t.prefixes)
	s = replaceAll(s, t.entries)
	s = capitalize(s)

	if !startsWithAny(strings.ToLower(s), t.nouns) {
		if s == "" {
			return t.defaultSubject
		}
		s = t.defaultSubject + " " + s
	}
	return s
}

// capitalize upper-cases the first rune. A Caser is stateful, so one is
// built per call.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return cases.Upper(language.BrazilianPortuguese).String(string(r)) + s[size:]
}

func stripPrefix(s string, prefixes []string) string {
	for _, p := range prefixes {
		if !strings.HasPrefix(s, p) {
			continue
		}
		rest := s[len(p):]
		trimmed := strings.TrimLeftFunc(rest, unicode.IsSpace)
		if trimmed == rest {
			// prefix must be followed by whitespace
			continue
		}
		return trimmed
	}
	return s
}

func startsWithAny(s string, words []string) bool {
	for _, w := range words {
		if strings.HasPrefix(s, w) {
			return true
		}
	}
	return false
}

// segment is a run of text; done segments came from a replacement and are
// never matched again.
type segment struct {
	text string
	done bool
}

// replaceAll applies entries in order. Each entry only sees text that no
// earlier (longer) entry has produced, so a shorter key can never rewrite
// part of a longer key's replacement.
func replaceAll(s string, entries []Entry) string {
	segs := []segment{{text: s}}
	for _, e := range entries {
		next := make([]segment, 0, len(segs))
		for _, sg := range segs {
			if sg.done {
				next = append(next, sg)
				continue
			}
			next = append(next, splitOn(sg.text, e)...)
		}
		segs = next
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, sg := range segs {
		b.WriteString(sg.text)
	}
	return b.String()
}

func splitOn(s string, e Entry) []segment {
	var out []segment
	key := e.Colloquial
	start := 0
	for start <= len(s) {
		i := strings.Index(s[start:], key)
		if i < 0 {
			break
		}
		i += start
		end := i + len(key)
		if !wordBoundary(s, i, end) {
			_, size := utf8.DecodeRuneInString(s[i:])
			start = i + size
			continue
		}
		if i > 0 {
			out = append(out, segment{text: s[:i]})
		}
		out = append(out, segment{text: e.Technical, done: true})
		s = s[end:]
		start = 0
	}
	if s != "" {
		out = append(out, segment{text: s})
	}
	return out
}

// wordBoundary reports whether s[i:end] is not glued to a letter or digit
// on either side.
func wordBoundary(s string, i, end int) bool {
	if i > 0 {
		r, _ := utf8.DecodeLastRuneInString(s[:i])
		if isWordRune(r) {
			return false
		}
	}
	if end < len(s) {
		r, _ := utf8.DecodeRuneInString(s[end:])
		if isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}
