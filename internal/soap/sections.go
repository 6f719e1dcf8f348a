package soap

import (
	"regexp"
	"strings"
)

// Sections is a consult note split into its four SOAP parts.
type Sections struct {
	Subjective string `json:"subjetivo"`
	Objective  string `json:"objetivo"`
	Assessment string `json:"avaliacao"`
	Plan       string `json:"plano"`
}

// Headers must open a line; markdown emphasis and list markers before them
// are tolerated.
var headerRe = regexp.MustCompile(`(?im)^[ \t#*_>\-]*(SUBJETIVO|OBJETIVO|AVALIA[ÇC][ÃA]O|PLANO)\b`)

// ParseSections splits formatted text on the SUBJETIVO, OBJETIVO,
// AVALIAÇÃO and PLANO headers. A section body starts after the colon on the
// header line, or on the next line when the header has no colon, and runs
// to the next header. Missing sections stay empty; when a header repeats,
// the first occurrence is used.
func ParseSections(text string) Sections {
	var out Sections
	locs := headerRe.FindAllStringSubmatchIndex(text, -1)
	seen := map[string]bool{}

	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		body := text[loc[1]:end]
		line, rest, _ := strings.Cut(body, "\n")
		if _, after, ok := strings.Cut(line, ":"); ok {
			body = after + "\n" + rest
		} else {
			body = rest
		}
		body = strings.Trim(strings.TrimSpace(body), "*_")
		body = strings.TrimSpace(body)

		key := sectionKey(text[loc[2]:loc[3]])
		if seen[key] {
			continue
		}
		seen[key] = true

		switch key {
		case "S":
			out.Subjective = body
		case "O":
			out.Objective = body
		case "A":
			out.Assessment = body
		case "P":
			out.Plan = body
		}
	}
	return out
}

func sectionKey(header string) string {
	return strings.ToUpper(header[:1])
}

// IsEmpty reports whether no section was filled.
func (s Sections) IsEmpty() bool {
	return s == Sections{}
}
