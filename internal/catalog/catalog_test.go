package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `
version: "1"
default_domain: electrical
domains: [electrical, mathematics]
global_default: {tool: ai_image, lib: gpt-image-1}
code_better_types: [fsm_diagram]
tools:
  electrical:
    default: {tool: schemdraw, lib: schemdraw.elements}
    types:
      fsm_diagram: {tool: graphviz, lib: graphviz}
  mathematics:
    default: {tool: matplotlib, lib: matplotlib}
lexicon:
  - domain: electrical
    types:
      - type: fsm_diagram
        rules:
          - {phrase: "state diagram", weight: 4}
`

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cat, err := Default()
	require.NoError(t, err)

	assert.NotEmpty(t, cat.Version)
	assert.Equal(t, "electrical", cat.DefaultDomain)
	assert.True(t, cat.HasDomain("electrical"))
	assert.False(t, cat.HasDomain("astrology"))
}

// Every type some rule can vote for must resolve to an explicit tool entry.
func TestDefault_ReachableTypesHaveTools(t *testing.T) {
	cat, err := Default()
	require.NoError(t, err)

	pairs := cat.Reachable()
	require.NotEmpty(t, pairs)
	for _, p := range pairs {
		m, ok := cat.Tools[p.Domain].Types[p.DiagramType]
		if assert.Truef(t, ok, "no tool mapping for %s/%s", p.Domain, p.DiagramType) {
			assert.NotEmpty(t, m.Tool)
			assert.NotEmpty(t, m.Lib)
		}
	}
}

func TestDefault_ElectricalTypes(t *testing.T) {
	cat, err := Default()
	require.NoError(t, err)

	for _, typ := range []string{"sequential_circuit", "fsm_diagram", "timing_diagram", "cdc_diagram", "cmos_circuit"} {
		_, ok := cat.Tools["electrical"].Types[typ]
		assert.Truef(t, ok, "electrical/%s missing", typ)
	}
}

func TestCanonicalDomain(t *testing.T) {
	cat, err := Default()
	require.NoError(t, err)

	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"electrical", "electrical", true},
		{"  Electrical ", "electrical", true},
		{"Computer Science", "computer_science", true},
		{"computer-science", "computer_science", true},
		{"", "", false},
		{"astrology", "", false},
	}
	for _, tt := range tests {
		got, ok := cat.CanonicalDomain(tt.in)
		assert.Equalf(t, tt.ok, ok, "CanonicalDomain(%q)", tt.in)
		assert.Equalf(t, tt.want, got, "CanonicalDomain(%q)", tt.in)
	}
}

func TestLoad_Minimal(t *testing.T) {
	path := writeCatalog(t, minimalYAML)

	cat, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "1", cat.Version)
	assert.Equal(t, []string{"electrical", "mathematics"}, cat.Domains)
	assert.Equal(t, DefaultHintTolerance, cat.Tolerance())
	assert.Equal(t, []Pair{{Domain: "electrical", DiagramType: "fsm_diagram"}}, cat.Reachable())
}

func TestLoad_ExplicitTolerance(t *testing.T) {
	path := writeCatalog(t, minimalYAML+"hint_tolerance: 0\n")

	cat, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.0, cat.Tolerance())
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/catalog.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading catalog")
}

func TestParse_UnknownField(t *testing.T) {
	_, err := Parse([]byte(minimalYAML + "colour: blue\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing catalog")
}

func TestParse_MissingToolMappingIsFatal(t *testing.T) {
	broken := `
version: "1"
default_domain: electrical
domains: [electrical]
global_default: {tool: ai_image, lib: gpt-image-1}
tools:
  electrical:
    default: {tool: schemdraw, lib: schemdraw.elements}
    types: {}
lexicon:
  - domain: electrical
    types:
      - type: cdc_diagram
        rules:
          - {phrase: "clock domain crossing", weight: 5}
`
	_, err := Parse([]byte(broken))
	require.ErrorIs(t, err, ErrInvalidCatalog)
	assert.Contains(t, err.Error(), "lexicon.electrical.cdc_diagram: no tool mapping for reachable type")
}

func TestParse_CollectsAllProblems(t *testing.T) {
	broken := `
version: ""
default_domain: biology
hint_tolerance: -1
domains: [electrical, electrical, Bad-Name]
global_default: {tool: "", lib: ""}
code_better_types: ["Not A Label"]
tools:
  electrical:
    default: {tool: schemdraw, lib: ""}
    types:
      fsm_diagram: {tool: graphviz, lib: graphviz}
  geology:
    default: {tool: x, lib: y}
lexicon:
  - domain: electrical
    types:
      - type: fsm_diagram
        rules:
          - {phrase: "state diagram", tokens: [state], weight: 4}
          - {weight: 0}
          - {tokens: ["two words"], weight: 1}
      - type: empty_type
        rules: []
  - domain: astrology
    types: []
`
	_, err := Parse([]byte(broken))
	require.ErrorIs(t, err, ErrInvalidCatalog)

	msg := err.Error()
	for _, want := range []string{
		"version is required",
		`domain "electrical" declared twice`,
		`domain "Bad-Name" is not a lowercase label`,
		`default_domain "biology" is not a declared domain`,
		"hint_tolerance must not be negative",
		"global_default.tool is required",
		"global_default.lib is required",
		"tools.electrical.default.lib is required",
		"tools.geology: domain is not declared",
		`code_better_types: "Not A Label" is not a lowercase label`,
		"phrase and tokens are mutually exclusive",
		"phrase or tokens is required",
		"weight must be positive",
		`token "two words" does not normalize to a single word`,
		"lexicon.electrical.empty_type: no rules",
		"lexicon.electrical.empty_type: no tool mapping for reachable type",
		`lexicon: domain "astrology" is not declared`,
	} {
		assert.Contains(t, msg, want)
	}
}

func TestParse_RejectsRulesThatCannotMatch(t *testing.T) {
	tests := []struct {
		name string
		rule string
		want string
	}{
		{"phrase of punctuation", `{phrase: "!!!", weight: 2}`, `phrase "!!!" is empty after normalization`},
		{"hyphenated token", `{tokens: [flip-flop], weight: 2}`, `token "flip-flop" does not normalize to a single word`},
		{"token of punctuation", `{tokens: ["?"], weight: 2}`, `token "?" does not normalize to a single word`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := strings.Replace(minimalYAML, `{phrase: "state diagram", weight: 4}`, tt.rule, 1)
			require.NotEqual(t, minimalYAML, data)

			_, err := Parse([]byte(data))
			require.ErrorIs(t, err, ErrInvalidCatalog)
			assert.Contains(t, err.Error(), "lexicon.electrical.fsm_diagram rule 0")
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParse_AcceptsNormalizableRules(t *testing.T) {
	data := strings.Replace(minimalYAML, `{phrase: "state diagram", weight: 4}`,
		`{phrase: "Flip-Flop", weight: 2}
          - {tokens: ["Mohr's", "KΩ"], weight: 1}`, 1)
	_, err := Parse([]byte(data))
	require.NoError(t, err)
}
