// Package extraction turns the recognized text of a photographed vaccination
// card into vaccination record candidates. Every line is evaluated on its own;
// lines without a recognizable date or usable name are dropped silently.
package extraction

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Tier is the name-recognition strategy that produced a candidate.
type Tier string

const (
	TierKnown    Tier = "known"
	TierFallback Tier = "fallback"
)

var (
	doseRe = regexp.MustCompile(`(?i)(\d+)[ªºa°]\s*dose`)
	lotRe  = regexp.MustCompile(`(?i)\blote(?:\s*:\s*|\s+)([a-z0-9][a-z0-9/\-]*)`)
)

const minNameRunes = 2

// Candidate is an extracted vaccination awaiting operator review.
type Candidate struct {
	VaccineName     string
	Category        string
	ApplicationDate Date
	Dose            int
	NextDueDate     *Date
	LotCode         *string
	Confidence      float64
	Tier            Tier
	// Line is the 1-based line of the document the candidate came from.
	Line int
}

// NeedsAttention reports whether the candidate's confidence is below threshold.
func (c Candidate) NeedsAttention(threshold float64) bool {
	return c.Confidence < threshold
}

// Extractor applies a rule set to recognized documents.
type Extractor struct {
	rules *Rules
}

func NewExtractor(rules *Rules) *Extractor {
	return &Extractor{rules: rules}
}

func (e *Extractor) Rules() *Rules { return e.rules }

// Extract returns the candidates found in document in line order. An empty
// result means nothing was extracted.
func (e *Extractor) Extract(document string) []Candidate {
	var out []Candidate
	for i, line := range strings.Split(document, "\n") {
		if c, ok := e.extractLine(strings.TrimRight(line, "\r")); ok {
			c.Line = i + 1
			out = append(out, c)
		}
	}
	return out
}

func (e *Extractor) extractLine(line string) (Candidate, bool) {
	dates := findDates(line)
	if len(dates) == 0 {
		return Candidate{}, false
	}

	lot, lotStart, lotEnd := parseLot(line)
	c := Candidate{
		ApplicationDate: dates[0].date,
		Dose:            parseDose(line),
		LotCode:         lot,
	}
	if len(dates) > 1 {
		next := dates[1].date
		c.NextDueDate = &next
	}

	// the lot code is not part of the name
	if lot != nil {
		line = line[:lotStart] + strings.Repeat(" ", lotEnd-lotStart) + line[lotEnd:]
	}

	if name, category, ok := e.knownName(line); ok {
		c.VaccineName = name
		c.Category = category
		c.Tier = TierKnown
		c.Confidence = e.rules.knownConfidence
		return c, true
	}

	name := cleanName(line[:dates[0].start])
	if len([]rune(name)) < minNameRunes {
		return Candidate{}, false
	}
	c.VaccineName = name
	c.Tier = TierFallback
	c.Confidence = e.rules.fallbackConfidence
	return c, true
}

func (e *Extractor) knownName(line string) (name, category string, ok bool) {
	for _, r := range e.rules.names {
		idx := r.re.FindStringSubmatchIndex(line)
		if idx == nil {
			continue
		}
		if r.name != "" {
			name = string(r.re.ExpandString(nil, r.name, line, idx))
		} else {
			name = cases.Upper(language.BrazilianPortuguese).String(line[idx[0]:idx[1]])
		}
		name = strings.Join(strings.Fields(name), " ")
		if name == "" {
			continue
		}
		return name, r.category, true
	}
	return "", "", false
}

// cleanName keeps letters, digits, underscores, hyphens and spaces and
// collapses whitespace.
func cleanName(s string) string {
	kept := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '_', r == '-':
			return r
		case unicode.IsSpace(r):
			return ' '
		}
		return -1
	}, s)
	return strings.Join(strings.Fields(kept), " ")
}

func parseDose(line string) int {
	m := doseRe.FindStringSubmatch(line)
	if m == nil {
		return 1
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// parseLot returns the lot code and the byte span of the whole "lote ..."
// match. A token that is itself a date is not a lot code.
func parseLot(line string) (*string, int, int) {
	m := lotRe.FindStringSubmatchIndex(line)
	if m == nil {
		return nil, 0, 0
	}
	lot := line[m[2]:m[3]]
	if d := dateRe.FindString(lot); d == lot {
		return nil, 0, 0
	}
	return &lot, m[0], m[1]
}
