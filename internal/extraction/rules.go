package extraction

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRulesYAML []byte

const (
	DefaultKnownConfidence    = 0.90
	DefaultFallbackConfidence = 0.60
	DefaultAttentionThreshold = 0.70
)

// NameRule is the YAML form of one known-name pattern.
type NameRule struct {
	Pattern  string `yaml:"pattern"`
	Category string `yaml:"category"`
	Name     string `yaml:"name"`
	Priority int    `yaml:"priority"`
}

// RulesDocument is the YAML shape of an extraction rules file.
type RulesDocument struct {
	Confidence struct {
		Known    float64 `yaml:"known"`
		Fallback float64 `yaml:"fallback"`
	} `yaml:"confidence"`
	AttentionThreshold float64    `yaml:"attention_threshold"`
	Names              []NameRule `yaml:"names"`
}

type compiledRule struct {
	re       *regexp.Regexp
	category string
	name     string
	priority int
}

// Rules is a compiled, priority-ordered rule set. It is immutable and safe
// for concurrent use.
type Rules struct {
	names              []compiledRule
	knownConfidence    float64
	fallbackConfidence float64
	attentionThreshold float64
}

// ParseRules decodes and compiles a YAML rules document.
func ParseRules(data []byte) (*Rules, error) {
	var doc RulesDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse extraction rules: %w", err)
	}
	return CompileRules(doc)
}

// CompileRules validates doc, compiles every pattern case-insensitively and
// orders them by descending priority. Zero confidences fall back to the
// documented defaults.
func CompileRules(doc RulesDocument) (*Rules, error) {
	r := &Rules{
		knownConfidence:    orDefault(doc.Confidence.Known, DefaultKnownConfidence),
		fallbackConfidence: orDefault(doc.Confidence.Fallback, DefaultFallbackConfidence),
		attentionThreshold: orDefault(doc.AttentionThreshold, DefaultAttentionThreshold),
	}
	for _, v := range []float64{r.knownConfidence, r.fallbackConfidence, r.attentionThreshold} {
		if v < 0 || v > 1 {
			return nil, fmt.Errorf("extraction rules: confidence %v outside [0,1]", v)
		}
	}

	for i, n := range doc.Names {
		if strings.TrimSpace(n.Pattern) == "" {
			return nil, fmt.Errorf("extraction rules: name rule %d has an empty pattern", i)
		}
		re, err := regexp.Compile("(?i)" + n.Pattern)
		if err != nil {
			return nil, fmt.Errorf("extraction rules: name rule %d: %w", i, err)
		}
		r.names = append(r.names, compiledRule{
			re:       re,
			category: n.Category,
			name:     n.Name,
			priority: n.Priority,
		})
	}
	sort.SliceStable(r.names, func(i, j int) bool {
		return r.names[i].priority > r.names[j].priority
	})

	return r, nil
}

// DefaultRules returns the embedded rule set.
func DefaultRules() *Rules {
	r, err := ParseRules(defaultRulesYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded extraction rules are invalid: %v", err))
	}
	return r
}

// LoadRules reads a rule file, or returns the embedded rules when path is empty.
func LoadRules(path string) (*Rules, error) {
	if path == "" {
		return DefaultRules(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules %q: %w", path, err)
	}
	r, err := ParseRules(data)
	if err != nil {
		return nil, fmt.Errorf("load %q: %w", path, err)
	}
	return r, nil
}

// AttentionThreshold is the confidence below which a candidate should be
// flagged to the operator.
func (r *Rules) AttentionThreshold() float64 { return r.attentionThreshold }

// Categories lists rule categories in evaluation order.
func (r *Rules) Categories() []string {
	out := make([]string, 0, len(r.names))
	for _, n := range r.names {
		out = append(out, n.category)
	}
	return out
}

func orDefault(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}
