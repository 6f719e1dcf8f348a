package extraction

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileRules_PriorityOrder(t *testing.T) {
	var doc RulesDocument
	doc.Names = []NameRule{
		{Pattern: `\bpolivalente\b`, Category: "low", Priority: 10},
		{Pattern: `\bpolivalente\b`, Category: "high", Name: "POLI", Priority: 90},
		{Pattern: `\bpolivalente\b`, Category: "high-second", Priority: 90},
	}
	rules, err := CompileRules(doc)
	require.NoError(t, err)
	assert.Equal(t, []string{"high", "high-second", "low"}, rules.Categories())

	got := NewExtractor(rules).Extract("Polivalente 10/10/2024")
	require.Len(t, got, 1)
	assert.Equal(t, "POLI", got[0].VaccineName)
	assert.Equal(t, "high", got[0].Category)
}

func TestCompileRules_Defaults(t *testing.T) {
	rules, err := CompileRules(RulesDocument{})
	require.NoError(t, err)
	assert.Equal(t, DefaultAttentionThreshold, rules.AttentionThreshold())

	got := NewExtractor(rules).Extract("Algo 10/10/2024")
	require.Len(t, got, 1)
	assert.Equal(t, DefaultFallbackConfidence, got[0].Confidence)
}

func TestCompileRules_Validation(t *testing.T) {
	empty := RulesDocument{Names: []NameRule{{Pattern: "  "}}}
	_, err := CompileRules(empty)
	require.Error(t, err)

	bad := RulesDocument{Names: []NameRule{{Pattern: "("}}}
	_, err = CompileRules(bad)
	require.Error(t, err)

	var outOfRange RulesDocument
	outOfRange.Confidence.Known = 1.5
	_, err = CompileRules(outOfRange)
	require.Error(t, err)
}

func TestParseRules(t *testing.T) {
	rules, err := ParseRules([]byte(`
confidence: {known: 0.95, fallback: 0.5}
attention_threshold: 0.8
names:
  - {pattern: 'canigen', category: marca, priority: 1}
`))
	require.NoError(t, err)
	assert.Equal(t, 0.8, rules.AttentionThreshold())

	got := NewExtractor(rules).Extract("Canigen 10/10/2024")
	require.Len(t, got, 1)
	assert.Equal(t, "CANIGEN", got[0].VaccineName)
	assert.Equal(t, 0.95, got[0].Confidence)

	_, err = ParseRules([]byte("names: [oops"))
	require.Error(t, err)
}

func TestDefaultRules_OrderedByPriority(t *testing.T) {
	cats := DefaultRules().Categories()
	require.NotEmpty(t, cats)
	assert.Equal(t, "polivalente-canina", cats[0])
	assert.Equal(t, "marca", cats[len(cats)-1])
}

func TestLoadRules(t *testing.T) {
	r, err := LoadRules("")
	require.NoError(t, err)
	assert.Equal(t, DefaultRules().Categories(), r.Categories())

	p := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(p, []byte("names:\n  - {pattern: 'v\\d+', category: poli, priority: 1}\n"), 0o600))
	r, err = LoadRules(p)
	require.NoError(t, err)
	assert.Equal(t, []string{"poli"}, r.Categories())

	require.NoError(t, os.WriteFile(p, []byte("names:\n  - {pattern: '(', category: bad}\n"), 0o600))
	_, err = LoadRules(p)
	require.Error(t, err)

	_, err = LoadRules(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
