package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/shahar-caura/diagroute/internal/diagram"
	"github.com/shahar-caura/diagroute/internal/textnorm"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var embedded []byte

// DefaultHintTolerance applies when a catalog does not set hint_tolerance.
const DefaultHintTolerance = 0.5

// ErrInvalidCatalog indicates the catalog failed load-time validation.
var ErrInvalidCatalog = errors.New("invalid catalog")

var labelRe = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Catalog is the declarative routing data: domain priority, keyword lexicon,
// tool selection table and the set of types that must be rendered by code.
// It is loaded once and never mutated afterwards.
type Catalog struct {
	Version         string                 `yaml:"version"`
	DefaultDomain   string                 `yaml:"default_domain"`
	HintTolerance   *float64               `yaml:"hint_tolerance"`
	Domains         []string               `yaml:"domains"`
	GlobalDefault   diagram.Mapping        `yaml:"global_default"`
	Tools           map[string]DomainTools `yaml:"tools"`
	CodeBetterTypes []string               `yaml:"code_better_types"`
	Lexicon         []DomainLexicon        `yaml:"lexicon"`
}

// DomainTools is one domain's slice of the tool selection table.
type DomainTools struct {
	Default diagram.Mapping            `yaml:"default"`
	Types   map[string]diagram.Mapping `yaml:"types"`
}

// DomainLexicon holds the keyword rules of one domain. Type order is the
// type tie-break priority.
type DomainLexicon struct {
	Domain string      `yaml:"domain"`
	Types  []TypeRules `yaml:"types"`
}

// TypeRules are the rules voting for one diagram type.
type TypeRules struct {
	Type  string `yaml:"type"`
	Rules []Rule `yaml:"rules"`
}

// Rule is a single weighted pattern. Exactly one of Phrase or Tokens is set.
type Rule struct {
	Phrase string   `yaml:"phrase,omitempty"`
	Tokens []string `yaml:"tokens,omitempty"`
	Weight float64  `yaml:"weight"`
}

// Pair identifies a (domain, diagram_type) combination.
type Pair struct {
	Domain      string
	DiagramType string
}

// Default returns the catalog compiled into the binary.
func Default() (*Catalog, error) {
	cat, err := Parse(embedded)
	if err != nil {
		return nil, fmt.Errorf("embedded catalog: %w", err)
	}
	return cat, nil
}

// Load reads and validates a catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates catalog YAML. Unknown keys are rejected.
func Parse(data []byte) (*Catalog, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var cat Catalog
	if err := dec.Decode(&cat); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}

	if err := cat.Validate(); err != nil {
		return nil, err
	}
	return &cat, nil
}

// Tolerance returns the hint tie-break tolerance.
func (c *Catalog) Tolerance() float64 {
	if c.HintTolerance == nil {
		return DefaultHintTolerance
	}
	return *c.HintTolerance
}

// HasDomain reports whether name is a declared domain.
func (c *Catalog) HasDomain(name string) bool {
	for _, d := range c.Domains {
		if d == name {
			return true
		}
	}
	return false
}

// CanonicalDomain maps loosely written domain names ("Computer Science",
// " ELECTRICAL ") onto a declared domain.
func (c *Catalog) CanonicalDomain(name string) (string, bool) {
	name, ok := diagram.CanonicalLabel(name)
	if !ok || !c.HasDomain(name) {
		return "", false
	}
	return name, true
}

// Reachable lists every (domain, diagram_type) pair some lexicon rule can vote for,
// in declaration order.
func (c *Catalog) Reachable() []Pair {
	var pairs []Pair
	for _, dl := range c.Lexicon {
		for _, tr := range dl.Types {
			if len(tr.Rules) > 0 {
				pairs = append(pairs, Pair{Domain: dl.Domain, DiagramType: tr.Type})
			}
		}
	}
	return pairs
}

// Validate checks every structural invariant and reports all violations at once.
// A type reachable from the lexicon without a tool entry is a violation.
func (c *Catalog) Validate() error {
	var errs []error

	if c.Version == "" {
		errs = append(errs, errors.New("version is required"))
	}
	if len(c.Domains) == 0 {
		errs = append(errs, errors.New("domains must list at least one domain"))
	}

	seen := make(map[string]bool, len(c.Domains))
	for _, d := range c.Domains {
		if !labelRe.MatchString(d) {
			errs = append(errs, fmt.Errorf("domain %q is not a lowercase label", d))
		}
		if seen[d] {
			errs = append(errs, fmt.Errorf("domain %q declared twice", d))
		}
		seen[d] = true
	}

	if c.DefaultDomain == "" {
		errs = append(errs, errors.New("default_domain is required"))
	} else if !seen[c.DefaultDomain] {
		errs = append(errs, fmt.Errorf("default_domain %q is not a declared domain", c.DefaultDomain))
	}

	if c.HintTolerance != nil && *c.HintTolerance < 0 {
		errs = append(errs, fmt.Errorf("hint_tolerance must not be negative, got %g", *c.HintTolerance))
	}

	if err := validateMapping("global_default", c.GlobalDefault); err != nil {
		errs = append(errs, err)
	}

	for _, d := range c.Domains {
		dt, ok := c.Tools[d]
		if !ok {
			errs = append(errs, fmt.Errorf("tools.%s: missing tool entries for declared domain", d))
			continue
		}
		if err := validateMapping("tools."+d+".default", dt.Default); err != nil {
			errs = append(errs, err)
		}
		for typ, m := range dt.Types {
			if err := validateMapping("tools."+d+".types."+typ, m); err != nil {
				errs = append(errs, err)
			}
		}
	}
	for d := range c.Tools {
		if !seen[d] {
			errs = append(errs, fmt.Errorf("tools.%s: domain is not declared", d))
		}
	}

	for _, typ := range c.CodeBetterTypes {
		if !labelRe.MatchString(typ) {
			errs = append(errs, fmt.Errorf("code_better_types: %q is not a lowercase label", typ))
		}
	}

	errs = append(errs, c.validateLexicon(seen)...)

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}
	return nil
}

func (c *Catalog) validateLexicon(domains map[string]bool) []error {
	var errs []error
	lexDomains := make(map[string]bool, len(c.Lexicon))

	for _, dl := range c.Lexicon {
		if !domains[dl.Domain] {
			errs = append(errs, fmt.Errorf("lexicon: domain %q is not declared", dl.Domain))
		}
		if lexDomains[dl.Domain] {
			errs = append(errs, fmt.Errorf("lexicon: domain %q listed twice", dl.Domain))
		}
		lexDomains[dl.Domain] = true

		types := make(map[string]bool, len(dl.Types))
		for _, tr := range dl.Types {
			where := "lexicon." + dl.Domain + "." + tr.Type
			if !labelRe.MatchString(tr.Type) {
				errs = append(errs, fmt.Errorf("%s: type is not a lowercase label", where))
			}
			if types[tr.Type] {
				errs = append(errs, fmt.Errorf("%s: type listed twice", where))
			}
			types[tr.Type] = true

			if len(tr.Rules) == 0 {
				errs = append(errs, fmt.Errorf("%s: no rules", where))
			}
			for i, r := range tr.Rules {
				if err := validateRule(r); err != nil {
					errs = append(errs, fmt.Errorf("%s rule %d: %w", where, i, err))
				}
			}

			if _, ok := c.Tools[dl.Domain].Types[tr.Type]; !ok {
				errs = append(errs, fmt.Errorf("%s: no tool mapping for reachable type", where))
			}
		}
	}
	return errs
}

func validateRule(r Rule) error {
	hasPhrase := strings.TrimSpace(r.Phrase) != ""
	hasTokens := len(r.Tokens) > 0

	var errs []error
	switch {
	case hasPhrase && hasTokens:
		errs = append(errs, errors.New("phrase and tokens are mutually exclusive"))
	case !hasPhrase && !hasTokens:
		errs = append(errs, errors.New("phrase or tokens is required"))
	}
	if hasPhrase && !hasTokens {
		if _, err := textnorm.Phrase(r.Phrase); err != nil {
			errs = append(errs, err)
		}
	}
	for _, tok := range r.Tokens {
		if _, err := textnorm.Token(tok); err != nil {
			errs = append(errs, err)
		}
	}
	if r.Weight <= 0 {
		errs = append(errs, fmt.Errorf("weight must be positive, got %g", r.Weight))
	}
	return errors.Join(errs...)
}

func validateMapping(where string, m diagram.Mapping) error {
	var errs []error
	if m.Tool == "" {
		errs = append(errs, fmt.Errorf("%s.tool is required", where))
	}
	if m.Lib == "" {
		errs = append(errs, fmt.Errorf("%s.lib is required", where))
	}
	return errors.Join(errs...)
}
