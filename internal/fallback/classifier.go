// Package fallback implements the deterministic keyword classifier used when
// the primary classifier is unavailable or returns something unusable.
package fallback

import (
	"fmt"

	"github.com/shahar-caura/diagroute/internal/catalog"
	"github.com/shahar-caura/diagroute/internal/diagram"
	"github.com/shahar-caura/diagroute/internal/lexicon"
	"github.com/shahar-caura/diagroute/internal/textnorm"
	"github.com/shahar-caura/diagroute/internal/tooltable"
)

// epsilon is the distance under which two scores count as equal.
const epsilon = 1e-9

// Reasons recorded in an Explanation.
const (
	ReasonHighestScore = "highest score"
	ReasonHint         = "hint within tolerance"
	ReasonPriority     = "domain priority"
	ReasonNoMatch      = "no rule matched"
)

// Classifier scores questions against the keyword lexicon. It holds only
// read-only data and is safe for concurrent use.
type Classifier struct {
	cat        *catalog.Catalog
	lex        *lexicon.Lexicon
	table      *tooltable.Table
	codeBetter tooltable.CodeBetter
}

// New builds a classifier from a validated catalog.
func New(cat *catalog.Catalog, table *tooltable.Table, codeBetter tooltable.CodeBetter) (*Classifier, error) {
	lex, err := lexicon.New(cat)
	if err != nil {
		return nil, fmt.Errorf("building lexicon: %w", err)
	}
	return &Classifier{cat: cat, lex: lex, table: table, codeBetter: codeBetter}, nil
}

// Explanation is the evidence behind a fallback decision.
type Explanation struct {
	Normalized string                `json:"normalized"`
	Hint       string                `json:"hint,omitempty"`
	Reason     string                `json:"reason"`
	Scores     []lexicon.DomainScore `json:"scores"`
	Result     diagram.Result        `json:"result"`
}

// Classify returns the keyword-based decision for question. It never fails and
// identical inputs always produce identical results.
func (c *Classifier) Classify(question, hint string) diagram.Result {
	return c.Explain(question, hint).Result
}

// Explain runs the classification and returns the scores and tie-break used.
func (c *Classifier) Explain(question, hint string) Explanation {
	hint, _ = c.cat.CanonicalDomain(hint)
	scores := c.lex.Score(question)

	domain, reason := c.pickDomain(scores, hint)
	diagramType := diagram.GeneralDiagram
	if reason != ReasonNoMatch {
		diagramType = pickType(scores, domain)
	}

	return Explanation{
		Normalized: textnorm.Normalize(question),
		Hint:       hint,
		Reason:     reason,
		Scores:     scores,
		Result:     c.Result(domain, diagramType),
	}
}

// Default returns the generic result for a question with no usable content.
func (c *Classifier) Default(hint string) diagram.Result {
	domain, ok := c.cat.CanonicalDomain(hint)
	if !ok {
		domain = c.cat.DefaultDomain
	}
	return c.Result(domain, diagram.GeneralDiagram)
}

// Result finalizes a fallback decision against the tool table and the
// code-better set.
func (c *Classifier) Result(domain, diagramType string) diagram.Result {
	m := c.table.Resolve(domain, diagramType).Mapping
	res, err := diagram.NewResult(domain, diagramType, m, c.codeBetter.AISuitable(diagramType, nil), diagram.SourceFallback)
	if err != nil {
		// Unreachable for a validated catalog: every domain has a complete default.
		panic(fmt.Sprintf("fallback: %v", err))
	}
	return res
}

func (c *Classifier) pickDomain(scores []lexicon.DomainScore, hint string) (string, string) {
	best := 0.0
	for _, ds := range scores {
		best = max(best, ds.Score)
	}

	if best <= epsilon {
		if hint != "" {
			return hint, ReasonNoMatch
		}
		return c.cat.DefaultDomain, ReasonNoMatch
	}

	// Scores are in priority order, so the first domain at the maximum leads.
	var leaders int
	var winner string
	for _, ds := range scores {
		if ds.Score >= best-epsilon {
			if leaders == 0 {
				winner = ds.Domain
			}
			leaders++
		}
	}

	if hint != "" && !(leaders == 1 && winner == hint) {
		for _, ds := range scores {
			if ds.Domain == hint && ds.Score > epsilon && ds.Score >= best-c.cat.Tolerance()-epsilon {
				return hint, ReasonHint
			}
		}
	}

	if leaders > 1 {
		return winner, ReasonPriority
	}
	return winner, ReasonHighestScore
}

// pickType chooses the best type of a domain: highest score, then the most
// specific matched rule, then declaration order.
func pickType(scores []lexicon.DomainScore, domain string) string {
	for _, ds := range scores {
		if ds.Domain != domain {
			continue
		}
		var best *lexicon.TypeScore
		for i := range ds.Types {
			ts := &ds.Types[i]
			if ts.Score <= epsilon {
				continue
			}
			switch {
			case best == nil:
				best = ts
			case ts.Score > best.Score+epsilon:
				best = ts
			case ts.Score >= best.Score-epsilon && ts.Specificity > best.Specificity:
				best = ts
			}
		}
		if best != nil {
			return best.DiagramType
		}
	}
	return diagram.GeneralDiagram
}
