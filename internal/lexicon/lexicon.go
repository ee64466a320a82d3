package lexicon

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/shahar-caura/diagroute/internal/catalog"
	"github.com/shahar-caura/diagroute/internal/textnorm"
)

// Rule is a compiled keyword rule.
type Rule struct {
	Domain      string
	DiagramType string
	Weight      float64
	// Specificity ranks rules by how much text they pin down; longer phrases win
	// diagram type ties.
	Specificity int
	// Pattern is the normalized phrase, or the tokens joined by "+".
	Pattern string

	re     *regexp.Regexp
	tokens []string
}

// Matches reports whether the rule fires on already-normalized text.
func (r *Rule) Matches(normalized string, ws map[string]bool) bool {
	if r.re != nil {
		return r.re.MatchString(normalized)
	}
	for _, tok := range r.tokens {
		if !hasWord(ws, tok) {
			return false
		}
	}
	return true
}

// hasWord matches a token against a word set in either number: "domain"
// finds "domains" and "domains" finds "domain".
func hasWord(ws map[string]bool, tok string) bool {
	if ws[tok] || ws[tok+"s"] || ws[tok+"es"] {
		return true
	}
	if stem, ok := strings.CutSuffix(tok, "es"); ok && ws[stem] {
		return true
	}
	stem, ok := strings.CutSuffix(tok, "s")
	return ok && stem != "" && ws[stem]
}

// TypeRules are the compiled rules of one diagram type.
type TypeRules struct {
	DiagramType string
	Rules       []*Rule
}

// DomainRules are the compiled rules of one domain, types in priority order.
type DomainRules struct {
	Domain string
	Types  []TypeRules
}

// Lexicon is the compiled, read-only keyword lexicon. Safe for concurrent use.
type Lexicon struct {
	domains []DomainRules
}

// New compiles the catalog's rules. Domains appear in catalog priority order,
// including domains with no rules.
func New(cat *catalog.Catalog) (*Lexicon, error) {
	byDomain := make(map[string]catalog.DomainLexicon, len(cat.Lexicon))
	for _, dl := range cat.Lexicon {
		byDomain[dl.Domain] = dl
	}

	lx := &Lexicon{domains: make([]DomainRules, 0, len(cat.Domains))}
	for _, d := range cat.Domains {
		dr := DomainRules{Domain: d}
		for _, tr := range byDomain[d].Types {
			compiled := TypeRules{DiagramType: tr.Type}
			for i, r := range tr.Rules {
				rule, err := compile(d, tr.Type, r)
				if err != nil {
					return nil, fmt.Errorf("compiling %s/%s rule %d: %w", d, tr.Type, i, err)
				}
				compiled.Rules = append(compiled.Rules, rule)
			}
			dr.Types = append(dr.Types, compiled)
		}
		lx.domains = append(lx.domains, dr)
	}
	return lx, nil
}

// Domains returns the compiled rules in priority order.
func (l *Lexicon) Domains() []DomainRules {
	return l.domains
}

func compile(domain, diagramType string, r catalog.Rule) (*Rule, error) {
	rule := &Rule{Domain: domain, DiagramType: diagramType, Weight: r.Weight}

	if len(r.Tokens) > 0 {
		for _, tok := range r.Tokens {
			n, err := textnorm.Token(tok)
			if err != nil {
				return nil, err
			}
			rule.tokens = append(rule.tokens, n)
		}
		rule.Pattern = strings.Join(rule.tokens, "+")
		rule.Specificity = utf8.RuneCountInString(strings.Join(rule.tokens, " "))
		return rule, nil
	}

	parts, err := textnorm.Phrase(r.Phrase)
	if err != nil {
		return nil, err
	}
	quoted := make([]string, len(parts))
	for i, p := range parts {
		quoted[i] = regexp.QuoteMeta(p)
	}

	// Word boundaries are spelled out because RE2's \b only understands ASCII.
	expr := `(?:^|[^\p{L}\p{N}])` + strings.Join(quoted, `[\s\-]*`) + `(?:e?s)?(?:$|[^\p{L}\p{N}])`
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	rule.re = re
	rule.Pattern = strings.Join(parts, " ")
	rule.Specificity = utf8.RuneCountInString(rule.Pattern)
	return rule, nil
}
