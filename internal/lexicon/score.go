package lexicon

import "github.com/shahar-caura/diagroute/internal/textnorm"

// TypeScore is the evidence collected for one diagram type.
type TypeScore struct {
	DiagramType string   `json:"diagram_type"`
	Score       float64  `json:"score"`
	Specificity int      `json:"specificity"`
	Matched     []string `json:"matched,omitempty"`
}

// DomainScore is the evidence collected for one domain. Types keep catalog order.
type DomainScore struct {
	Domain string      `json:"domain"`
	Score  float64     `json:"score"`
	Types  []TypeScore `json:"types"`
}

// Score evaluates every rule against question. The result lists all domains in
// priority order; domains and types without hits have a zero score.
func (l *Lexicon) Score(question string) []DomainScore {
	normalized := textnorm.Normalize(question)
	ws := make(map[string]bool)
	for _, w := range textnorm.Fields(normalized) {
		ws[w] = true
	}

	out := make([]DomainScore, 0, len(l.domains))
	for _, dr := range l.domains {
		ds := DomainScore{Domain: dr.Domain, Types: make([]TypeScore, 0, len(dr.Types))}
		for _, tr := range dr.Types {
			ts := TypeScore{DiagramType: tr.DiagramType}
			for _, rule := range tr.Rules {
				if !rule.Matches(normalized, ws) {
					continue
				}
				ts.Score += rule.Weight
				ts.Matched = append(ts.Matched, rule.Pattern)
				if rule.Specificity > ts.Specificity {
					ts.Specificity = rule.Specificity
				}
			}
			ds.Score += ts.Score
			ds.Types = append(ds.Types, ts)
		}
		out = append(out, ds)
	}
	return out
}
